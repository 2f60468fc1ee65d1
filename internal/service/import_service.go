package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/logger"
	"quizhub_backend/pkg/monitoring"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImportService 批量题目导入管道：
// 逐项校验 → 内容指纹 → 批量查重 → 批量写入（失败降级为逐条）→ 汇总报告。
// 单个坏条目只会被记入 skipped，不会中断整批；只有存储完全不可用时整个请求才失败。
type ImportService struct {
	QuestionRepo *repository.QuestionRepository
	Hasher       *ContentHasher
	MaxBatchSize int
}

func NewImportService(questionRepo *repository.QuestionRepository, hasher *ContentHasher, maxBatchSize int) *ImportService {
	if maxBatchSize <= 0 {
		maxBatchSize = 100
	}
	return &ImportService{
		QuestionRepo: questionRepo,
		Hasher:       hasher,
		MaxBatchSize: maxBatchSize,
	}
}

// QuestionDraft 导入请求中的单个题目。
// 字段保持 RawMessage：单条题目字段类型不对不应使整批请求解析失败。
type QuestionDraft struct {
	Question       json.RawMessage `json:"question"`
	Type           json.RawMessage `json:"type"`
	Answers        json.RawMessage `json:"answers"`
	CorrectAnswers json.RawMessage `json:"correctAnswers"`
	Metadata       json.RawMessage `json:"metadata"`
}

type ImportRequest struct {
	Questions []QuestionDraft `json:"questions"`
	ModuleID  string          `json:"moduleId"`
}

// QuestionSummary 写入成功后的题目摘要
type QuestionSummary struct {
	ID        uint      `json:"id"`
	UniqueID  string    `json:"uniqueId"`
	Question  string    `json:"question"`
	Type      string    `json:"type"`
	ModuleID  string    `json:"moduleId"`
	CreatedAt time.Time `json:"createdAt"`
}

// SkippedItem 未入库条目及原因
type SkippedItem struct {
	Question string  `json:"question"`
	UniqueID *string `json:"uniqueId"`
	Reason   string  `json:"reason"`
}

// ImportOutcome 单批导入结果，仅存在于响应中
type ImportOutcome struct {
	Created []QuestionSummary `json:"created"`
	Skipped []SkippedItem     `json:"skipped"`
}

// RequestError 请求整体不合法（HTTP 400），区别于基础设施错误（HTTP 500）
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// validatedQuestion 通过校验并分配了指纹与关联标识的题目
type validatedQuestion struct {
	text     string
	qtype    string
	draft    QuestionDraft
	hash     string
	uniqueID string
}

// Import 处理一批题目。返回 RequestError 表示请求形状不合法；
// 返回其它错误表示存储不可用，整批未产生可靠结果。
func (s *ImportService) Import(req *ImportRequest) (*ImportOutcome, error) {
	if req.ModuleID == "" {
		return nil, &RequestError{Message: "Module ID is required"}
	}
	if len(req.Questions) == 0 {
		return nil, &RequestError{Message: "Questions array cannot be empty"}
	}
	if len(req.Questions) > s.MaxBatchSize {
		return nil, &RequestError{Message: fmt.Sprintf("Cannot insert more than %d questions at once", s.MaxBatchSize)}
	}

	validated, validationSkipped := s.validate(req)

	newItems, duplicateSkipped, err := s.deduplicate(validated)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}

	created, writeSkipped, err := s.write(newItems, req.ModuleID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = []QuestionSummary{}
	}

	// 汇总顺序：校验失败 → 重复拒绝 → 写入失败
	skipped := make([]SkippedItem, 0, len(validationSkipped)+len(duplicateSkipped)+len(writeSkipped))
	skipped = append(skipped, validationSkipped...)
	skipped = append(skipped, duplicateSkipped...)
	skipped = append(skipped, writeSkipped...)

	monitoring.ImportItemCounter.WithLabelValues("created").Add(float64(len(created)))
	monitoring.ImportItemCounter.WithLabelValues("skipped_validation").Add(float64(len(validationSkipped)))
	monitoring.ImportItemCounter.WithLabelValues("skipped_duplicate").Add(float64(len(duplicateSkipped)))
	monitoring.ImportItemCounter.WithLabelValues("skipped_storage").Add(float64(len(writeSkipped)))

	logger.Log.Info("bulk import finished",
		zap.String("moduleId", req.ModuleID),
		zap.Int("received", len(req.Questions)),
		zap.Int("created", len(created)),
		zap.Int("skipped", len(skipped)),
	)

	return &ImportOutcome{Created: created, Skipped: skipped}, nil
}

// validate 逐项检查必填字段。失败条目被记录并剔除，批次继续。
// 题型在导入路径不做枚举校验，与单题创建接口保持的历史差异，见 DESIGN.md。
func (s *ImportService) validate(req *ImportRequest) ([]validatedQuestion, []SkippedItem) {
	var validated []validatedQuestion
	var skipped []SkippedItem

	for i, draft := range req.Questions {
		var fieldErrors []string

		text, ok := rawString(draft.Question)
		if !ok || text == "" {
			fieldErrors = append(fieldErrors, "Question text is required")
		}

		qtype, ok := rawString(draft.Type)
		if !ok || qtype == "" {
			fieldErrors = append(fieldErrors, "Question type is required")
		}

		if !rawPresent(draft.Answers) {
			fieldErrors = append(fieldErrors, "Answers are required")
		}

		if !rawPresent(draft.CorrectAnswers) {
			fieldErrors = append(fieldErrors, "Correct answers are required")
		}

		if len(fieldErrors) > 0 {
			name := text
			if name == "" {
				name = "Unknown"
			}
			logger.Log.Debug("import item failed validation",
				zap.Int("index", i),
				zap.Strings("errors", fieldErrors),
			)
			skipped = append(skipped, SkippedItem{
				Question: name,
				UniqueID: nil,
				Reason:   "Validation error: " + strings.Join(fieldErrors, ", "),
			})
			continue
		}

		validated = append(validated, validatedQuestion{
			text:     text,
			qtype:    qtype,
			draft:    draft,
			hash:     s.Hasher.Hash(text, qtype, req.ModuleID, draft.Answers, draft.CorrectAnswers),
			uniqueID: util.GenerateUniqueID(),
		})
	}

	return validated, skipped
}

// deduplicate 将已通过校验的条目划分为可写入与重复两组。
// 对存量只做一次批量存在性查询；批内指纹冲突保留首个，其余直接拒绝，
// 不留给写入阶段去撞唯一约束。
func (s *ImportService) deduplicate(validated []validatedQuestion) ([]validatedQuestion, []SkippedItem, error) {
	if len(validated) == 0 {
		return nil, nil, nil
	}

	hashes := make([]string, 0, len(validated))
	for _, v := range validated {
		hashes = append(hashes, v.hash)
	}

	existing, err := s.QuestionRepo.FindExistingHashes(hashes)
	if err != nil {
		return nil, nil, err
	}

	var newItems []validatedQuestion
	var skipped []SkippedItem
	seen := make(map[string]bool, len(validated))

	for _, v := range validated {
		uid := v.uniqueID
		switch {
		case existing[v.hash]:
			skipped = append(skipped, SkippedItem{
				Question: v.text,
				UniqueID: &uid,
				Reason:   "Duplicate question",
			})
		case seen[v.hash]:
			skipped = append(skipped, SkippedItem{
				Question: v.text,
				UniqueID: &uid,
				Reason:   "Duplicate question in batch",
			})
		default:
			seen[v.hash] = true
			newItems = append(newItems, v)
		}
	}

	return newItems, skipped, nil
}

// write 先尝试整批单条多行插入；整批失败时降级为逐条插入，
// 单条失败（含与并发导入竞争唯一约束落败）只记 skipped，其余条目继续。
func (s *ImportService) write(newItems []validatedQuestion, moduleID string) ([]QuestionSummary, []SkippedItem, error) {
	if len(newItems) == 0 {
		return nil, nil, nil
	}

	rows := make([]model.Question, len(newItems))
	for i, v := range newItems {
		rows[i] = model.Question{
			UniqueID:       v.uniqueID,
			Hash:           v.hash,
			Type:           v.qtype,
			Question:       v.text,
			Answers:        datatypes.JSON(v.draft.Answers),
			CorrectAnswers: datatypes.JSON(v.draft.CorrectAnswers),
			Metadata:       metadataOrEmpty(v.draft.Metadata),
			ModuleID:       moduleID,
		}
	}

	if err := s.QuestionRepo.CreateMany(rows); err != nil {
		logger.Log.Warn("bulk insert failed, falling back to per-item inserts", zap.Error(err))
		return s.writeIndividually(rows, newItems)
	}

	// 多行插入不保证回填每行的主键与时间戳，按指纹回读
	hashes := make([]string, len(newItems))
	for i, v := range newItems {
		hashes[i] = v.hash
	}
	stored, err := s.QuestionRepo.FindByHashes(hashes)
	if err != nil {
		return nil, nil, fmt.Errorf("post-insert read-back failed: %w", err)
	}

	byHash := make(map[string]model.Question, len(stored))
	for _, q := range stored {
		byHash[q.Hash] = q
	}

	created := make([]QuestionSummary, 0, len(newItems))
	for _, v := range newItems {
		if q, ok := byHash[v.hash]; ok {
			created = append(created, summarize(q))
		}
	}
	return created, nil, nil
}

// writeIndividually 降级路径：逐条插入，保证孤立失败不影响其余条目。
// 若没有任何条目写成功且所有失败都不是重复冲突，视为存储不可用。
func (s *ImportService) writeIndividually(rows []model.Question, items []validatedQuestion) ([]QuestionSummary, []SkippedItem, error) {
	var created []QuestionSummary
	var skipped []SkippedItem
	duplicateFailures := 0

	for i := range rows {
		row := rows[i]
		if err := s.QuestionRepo.Create(&row); err != nil {
			uid := items[i].uniqueID
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				duplicateFailures++
				skipped = append(skipped, SkippedItem{
					Question: items[i].text,
					UniqueID: &uid,
					Reason:   "Duplicate question",
				})
			} else {
				logger.Log.Error("question insert failed",
					zap.String("uniqueId", items[i].uniqueID),
					zap.Error(err),
				)
				skipped = append(skipped, SkippedItem{
					Question: items[i].text,
					UniqueID: &uid,
					Reason:   "Database error: " + err.Error(),
				})
			}
			continue
		}
		created = append(created, summarize(row))
	}

	if len(created) == 0 && duplicateFailures == 0 && len(rows) > 0 {
		return nil, nil, errors.New("storage unavailable: all inserts failed")
	}

	return created, skipped, nil
}

func summarize(q model.Question) QuestionSummary {
	return QuestionSummary{
		ID:        q.ID,
		UniqueID:  q.UniqueID,
		Question:  q.Question,
		Type:      q.Type,
		ModuleID:  q.ModuleID,
		CreatedAt: q.CreatedAt,
	}
}

func metadataOrEmpty(raw json.RawMessage) datatypes.JSON {
	if !rawPresent(raw) {
		return datatypes.JSON([]byte(`{}`))
	}
	return datatypes.JSON(raw)
}

// rawString 判断原始 JSON 值是否为字符串，并返回其内容
func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// rawPresent 判断字段是否出现且不为 null。空数组、空对象、空串均视为出现。
func rawPresent(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	return string(raw) != "null"
}

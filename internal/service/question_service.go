package service

import (
	"encoding/json"
	"errors"
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	Hasher       *ContentHasher
}

func NewQuestionService(questionRepo *repository.QuestionRepository, hasher *ContentHasher) *QuestionService {
	return &QuestionService{
		QuestionRepo: questionRepo,
		Hasher:       hasher,
	}
}

type CreateQuestionRequest struct {
	Type           string          `json:"type" binding:"required"`
	Question       string          `json:"question" binding:"required"`
	Answers        json.RawMessage `json:"answers"`
	CorrectAnswers json.RawMessage `json:"correctAnswers"`
	ImageURL       string          `json:"imageUrl"`
	ModuleID       string          `json:"moduleId"`
	Metadata       json.RawMessage `json:"metadata"`
}

// DuplicateQuestionError 已存在相同内容指纹的题目
type DuplicateQuestionError struct {
	ExistingID uint
}

func (e *DuplicateQuestionError) Error() string {
	return "Question already exists"
}

// CreateQuestion 创建单个题目。与批量导入不同，这里校验题型枚举。
func (s *QuestionService) CreateQuestion(req *CreateQuestionRequest, createdBy *uint) (*model.Question, error) {
	if !model.IsValidQuestionKind(req.Type) {
		return nil, util.ErrInvalidKind
	}

	answers := req.Answers
	if len(answers) == 0 {
		answers = json.RawMessage(`[]`)
	}
	correctAnswers := req.CorrectAnswers
	if len(correctAnswers) == 0 {
		correctAnswers = json.RawMessage(`null`)
	}

	hash := s.Hasher.Hash(req.Question, req.Type, req.ModuleID, answers, correctAnswers)

	existing, err := s.QuestionRepo.FindByHash(hash)
	if err == nil {
		return nil, &DuplicateQuestionError{ExistingID: existing.ID}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	question := &model.Question{
		UniqueID:       model.GenerateUUID(),
		Hash:           hash,
		Type:           req.Type,
		Question:       req.Question,
		Answers:        datatypes.JSON(answers),
		CorrectAnswers: datatypes.JSON(correctAnswers),
		ImageURL:       req.ImageURL,
		Metadata:       metadataOrEmpty(req.Metadata),
		ModuleID:       req.ModuleID,
		CreatedBy:      createdBy,
	}

	if err := s.QuestionRepo.Create(question); err != nil {
		// 并发创建相同内容时，唯一约束是最终裁决
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if q, ferr := s.QuestionRepo.FindByHash(hash); ferr == nil {
				return nil, &DuplicateQuestionError{ExistingID: q.ID}
			}
			return nil, &DuplicateQuestionError{}
		}
		return nil, err
	}

	return question, nil
}

func (s *QuestionService) GetQuestion(id uint) (*model.Question, error) {
	return s.QuestionRepo.FindByID(id)
}

// SearchQuestions 按题干/题型/模块过滤并分页
func (s *QuestionService) SearchQuestions(q, questionType, moduleID string, page, limit int) ([]model.Question, *util.Pagination, error) {
	questions, total, err := s.QuestionRepo.Search(q, questionType, moduleID, page, limit)
	if err != nil {
		return nil, nil, err
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	return questions, &util.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}, nil
}

func (s *QuestionService) DeleteQuestion(id uint) error {
	return s.QuestionRepo.Delete(id)
}

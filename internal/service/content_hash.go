package service

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"quizhub_backend/internal/config"
	"sort"
	"strings"
)

// ContentHasher 计算题目内容指纹。指纹是存储层唯一约束的键，
// 对同一逻辑输入必须跨进程、跨重启稳定，因此策略在启动时固定。
//
// narrow：仅对归一化题干（去首尾空白、转小写）做 SHA-256。
// wide：对 题干+答案+正确答案+题型+模块ID 的规范化 JSON 做 MD5，
// 能区分题干相同但答案或归属不同的题目。
type ContentHasher struct {
	policy string
}

func NewContentHasher(policy string) *ContentHasher {
	if policy == "" {
		policy = config.HashPolicyWide
	}
	return &ContentHasher{policy: policy}
}

func (h *ContentHasher) Policy() string {
	return h.policy
}

func (h *ContentHasher) Hash(question, questionType, moduleID string, answers, correctAnswers json.RawMessage) string {
	if h.policy == config.HashPolicyNarrow {
		sum := sha256.Sum256([]byte(normalizeText(question)))
		return hex.EncodeToString(sum[:])
	}
	return h.wideHash(question, questionType, moduleID, answers, correctAnswers)
}

// hashContent 的字段顺序即序列化顺序，不能调整：
// 调整会改变所有已入库指纹。
type hashContent struct {
	Question       string      `json:"question"`
	Answers        interface{} `json:"answers"`
	CorrectAnswers interface{} `json:"correctAnswers"`
	Type           string      `json:"type"`
	ModuleID       string      `json:"moduleId"`
}

func (h *ContentHasher) wideHash(question, questionType, moduleID string, answers, correctAnswers json.RawMessage) string {
	content := hashContent{
		Question:       normalizeText(question),
		Answers:        normalizeAnswerPayload(answers),
		CorrectAnswers: normalizeAnswerPayload(correctAnswers),
		Type:           normalizeText(questionType),
		ModuleID:       moduleID,
	}

	// struct 字段按声明序输出，map 键按字典序输出，编码结果确定
	encoded, err := json.Marshal(content)
	if err != nil {
		// 输入都来自合法 JSON，编码不会失败
		panic(err)
	}

	sum := md5.Sum(encoded)
	return hex.EncodeToString(sum[:])
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeAnswerPayload 归一化答案负载：数组按元素转字符串、
// 去空白转小写后按字典序排序（答案顺序不影响指纹）；
// 其它 JSON 值保持原样参与编码。
func normalizeAnswerPayload(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}

	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}

	arr, ok := value.([]interface{})
	if !ok {
		return value
	}

	normalized := make([]string, 0, len(arr))
	for _, elem := range arr {
		normalized = append(normalized, normalizeText(stringifyAnswer(elem)))
	}
	sort.Strings(normalized)
	return normalized
}

func stringifyAnswer(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(encoded)
}

package model

import (
	"gorm.io/datatypes"
)

type QuestionKind string

const (
	MultipleChoice   QuestionKind = "multiple_choice"
	MultipleResponse QuestionKind = "multiple_response"
	Numerical        QuestionKind = "numerical_question"
	Ordering         QuestionKind = "ordering_question"
	Matching         QuestionKind = "matching_question"
	Hotspot          QuestionKind = "hotspot_question"
	Fallback         QuestionKind = "fallback"
	FillInTheBlank   QuestionKind = "fill_in_the_blank"
)

var questionKinds = map[QuestionKind]bool{
	MultipleChoice:   true,
	MultipleResponse: true,
	Numerical:        true,
	Ordering:         true,
	Matching:         true,
	Hotspot:          true,
	Fallback:         true,
	FillInTheBlank:   true,
}

// IsValidQuestionKind 判断题型是否在支持的集合内
func IsValidQuestionKind(t string) bool {
	return questionKinds[QuestionKind(t)]
}

// Question 题目。Hash 是题目内容指纹，在全库范围内唯一，
// 作为去重检查的最终兜底（并发导入竞争由该唯一约束裁决）。
// swagger:model Question
type Question struct {
	BaseModel
	UniqueID       string         `gorm:"size:36;uniqueIndex" json:"uniqueId"`
	Hash           string         `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Type           string         `gorm:"size:50;not null;index" json:"type"`
	Question       string         `gorm:"type:text;not null" json:"question"`
	Answers        datatypes.JSON `gorm:"type:json" json:"answers"`
	CorrectAnswers datatypes.JSON `gorm:"type:json" json:"correctAnswers"`
	ImageURL       string         `gorm:"size:500" json:"imageUrl,omitempty"`
	Metadata       datatypes.JSON `gorm:"type:json" json:"metadata,omitempty"`
	ModuleID       string         `gorm:"size:36;index" json:"moduleId"`
	CreatedBy      *uint          `gorm:"index" json:"createdBy,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

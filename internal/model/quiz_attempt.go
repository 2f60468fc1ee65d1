package model

import (
	"time"

	"gorm.io/datatypes"
)

// QuizAttempt 一次模块测验记录
// swagger:model QuizAttempt
type QuizAttempt struct {
	BaseModel
	ModuleID    string     `gorm:"size:36;index" json:"moduleId"`
	UserID      *uint      `gorm:"index" json:"userId,omitempty"`
	Score       int        `json:"score"`
	Total       int        `json:"total"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// QuizAttemptAnswer 测验中单题的作答与判定结果
type QuizAttemptAnswer struct {
	BaseModel
	AttemptID  uint           `gorm:"index;not null" json:"attemptId"`
	QuestionID uint           `gorm:"index;not null" json:"questionId"`
	Response   datatypes.JSON `gorm:"type:json" json:"response"`
	Correct    bool           `gorm:"default:false" json:"correct"`
}

func (QuizAttemptAnswer) TableName() string {
	return "quiz_attempt_answers"
}

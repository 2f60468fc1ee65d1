package model

// QuizModule 题目集合（模块）。题目通过 ModuleID 归属某个模块。
// swagger:model QuizModule
type QuizModule struct {
	UUIDBase
	Title       string `gorm:"size:255;not null;index" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	IsPublic    bool   `gorm:"default:false" json:"isPublic"`
	CreatedBy   *uint  `gorm:"index" json:"createdBy,omitempty"`
}

func (QuizModule) TableName() string {
	return "quiz_modules"
}

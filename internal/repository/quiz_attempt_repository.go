package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

type QuizAttemptRepository struct {
	DB *gorm.DB
}

func NewQuizAttemptRepository(db *gorm.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{DB: db}
}

func (r *QuizAttemptRepository) Create(attempt *model.QuizAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *QuizAttemptRepository) FindByID(id uint) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.First(&attempt, id).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *QuizAttemptRepository) Update(attempt *model.QuizAttempt) error {
	return r.DB.Save(attempt).Error
}

// SaveAnswers 在同一事务内写入作答明细并更新成绩
func (r *QuizAttemptRepository) SaveAnswers(attempt *model.QuizAttempt, answers []model.QuizAttemptAnswer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return tx.Save(attempt).Error
	})
}

// ModuleStats 模块测验统计
type ModuleStats struct {
	Attempts     int64   `json:"attempts"`
	AverageScore float64 `json:"averageScore"`
	BestScore    int     `json:"bestScore"`
}

func (r *QuizAttemptRepository) StatsByModule(moduleID string) (*ModuleStats, error) {
	var stats ModuleStats
	err := r.DB.Model(&model.QuizAttempt{}).
		Where("module_id = ? AND completed = ?", moduleID, true).
		Select("COUNT(*) AS attempts, COALESCE(AVG(score), 0) AS average_score, COALESCE(MAX(score), 0) AS best_score").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

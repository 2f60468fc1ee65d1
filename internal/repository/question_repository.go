package repository

import (
	"quizhub_backend/internal/model"
	"strings"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}

// CreateMany 以单条多行插入写入整批题目
func (r *QuestionRepository) CreateMany(questions []model.Question) error {
	return r.DB.Create(&questions).Error
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	err := r.DB.First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *QuestionRepository) FindByHash(hash string) (*model.Question, error) {
	var question model.Question
	err := r.DB.Where("hash = ?", hash).First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// FindExistingHashes 批量存在性检查：一次查询返回已入库的指纹集合。
// 去重检查的存储往返次数与批大小无关。
func (r *QuestionRepository) FindExistingHashes(hashes []string) (map[string]bool, error) {
	if len(hashes) == 0 {
		return map[string]bool{}, nil
	}
	var existing []string
	err := r.DB.Model(&model.Question{}).
		Where("hash IN ?", hashes).
		Pluck("hash", &existing).Error
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(existing))
	for _, h := range existing {
		set[h] = true
	}
	return set, nil
}

// FindByHashes 按指纹取回已写入的记录，用于批量插入后的回读
func (r *QuestionRepository) FindByHashes(hashes []string) ([]model.Question, error) {
	var questions []model.Question
	if len(hashes) == 0 {
		return questions, nil
	}
	err := r.DB.Where("hash IN ?", hashes).Find(&questions).Error
	return questions, err
}

// Search 按题干模糊、题型、模块过滤并分页，按创建时间倒序
func (r *QuestionRepository) Search(q, questionType, moduleID string, page, limit int) ([]model.Question, int64, error) {
	db := r.DB.Model(&model.Question{})
	if q != "" {
		db = db.Where("LOWER(question) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if questionType != "" {
		db = db.Where("type = ?", questionType)
	}
	if moduleID != "" {
		db = db.Where("module_id = ?", moduleID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []model.Question
	offset := (page - 1) * limit
	err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&questions).Error
	return questions, total, err
}

func (r *QuestionRepository) CountByModule(moduleID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("module_id = ?", moduleID).Count(&count).Error
	return count, err
}

// FindByModule 取模块下的题目，用于组卷
func (r *QuestionRepository) FindByModule(moduleID string, limit int) ([]model.Question, error) {
	var questions []model.Question
	db := r.DB.Where("module_id = ?", moduleID).Order("created_at ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Question{}, id).Error
}

package repository

import (
	"quizhub_backend/internal/model"

	"gorm.io/gorm"
)

type ModuleRepository struct {
	DB *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{DB: db}
}

func (r *ModuleRepository) Create(module *model.QuizModule) error {
	return r.DB.Create(module).Error
}

func (r *ModuleRepository) FindByID(id string) (*model.QuizModule, error) {
	var module model.QuizModule
	err := r.DB.Where("id = ?", id).First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *ModuleRepository) FindByTitle(title string) (*model.QuizModule, error) {
	var module model.QuizModule
	err := r.DB.Where("title = ?", title).First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

// Search 按标题模糊过滤并分页，按创建时间倒序
func (r *ModuleRepository) Search(q string, publicOnly bool, page, limit int) ([]model.QuizModule, int64, error) {
	db := r.DB.Model(&model.QuizModule{})
	if q != "" {
		db = db.Where("title LIKE ?", "%"+q+"%")
	}
	if publicOnly {
		db = db.Where("is_public = ?", true)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var modules []model.QuizModule
	offset := (page - 1) * limit
	err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&modules).Error
	return modules, total, err
}

func (r *ModuleRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.QuizModule{}).Error
}

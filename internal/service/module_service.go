package service

import (
	"context"
	"errors"
	"fmt"
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 模块题目数的缓存时长。导入/创建题目后主动失效。
const questionCountTTL = 60 * time.Second

type ModuleService struct {
	ModuleRepo   *repository.ModuleRepository
	QuestionRepo *repository.QuestionRepository
	Redis        *redis.Client
}

func NewModuleService(moduleRepo *repository.ModuleRepository, questionRepo *repository.QuestionRepository, rdb *redis.Client) *ModuleService {
	return &ModuleService{
		ModuleRepo:   moduleRepo,
		QuestionRepo: questionRepo,
		Redis:        rdb,
	}
}

type CreateModuleRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
}

// ModuleWithCount 模块详情及其题目数
type ModuleWithCount struct {
	model.QuizModule
	QuestionCount int64 `json:"questionCount"`
}

// CreateOrGetModule 创建模块；同名模块已存在时直接返回现有模块（幂等创建）
func (s *ModuleService) CreateOrGetModule(req *CreateModuleRequest, createdBy *uint) (*ModuleWithCount, bool, error) {
	existing, err := s.ModuleRepo.FindByTitle(req.Title)
	if err == nil {
		count, cerr := s.QuestionCount(existing.ID)
		if cerr != nil {
			return nil, false, cerr
		}
		return &ModuleWithCount{QuizModule: *existing, QuestionCount: count}, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	module := &model.QuizModule{
		Title:       req.Title,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		CreatedBy:   createdBy,
	}
	if err := s.ModuleRepo.Create(module); err != nil {
		return nil, false, err
	}

	return &ModuleWithCount{QuizModule: *module, QuestionCount: 0}, true, nil
}

func (s *ModuleService) GetModule(id string) (*ModuleWithCount, error) {
	module, err := s.ModuleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	count, err := s.QuestionCount(module.ID)
	if err != nil {
		return nil, err
	}

	return &ModuleWithCount{QuizModule: *module, QuestionCount: count}, nil
}

// ListModules 分页列出模块，题目数逐个读缓存
func (s *ModuleService) ListModules(q string, publicOnly bool, page, limit int) ([]ModuleWithCount, *util.Pagination, error) {
	modules, total, err := s.ModuleRepo.Search(q, publicOnly, page, limit)
	if err != nil {
		return nil, nil, err
	}

	result := make([]ModuleWithCount, 0, len(modules))
	for _, m := range modules {
		count, cerr := s.QuestionCount(m.ID)
		if cerr != nil {
			return nil, nil, cerr
		}
		result = append(result, ModuleWithCount{QuizModule: m, QuestionCount: count})
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	return result, &util.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: pages,
	}, nil
}

// QuestionCount 模块题目数，经 redis 读穿缓存。缓存不可用时直接回源
func (s *ModuleService) QuestionCount(moduleID string) (int64, error) {
	key := countCacheKey(moduleID)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(context.Background(), key).Result(); err == nil {
			if count, perr := strconv.ParseInt(cached, 10, 64); perr == nil {
				return count, nil
			}
		}
	}

	count, err := s.QuestionRepo.CountByModule(moduleID)
	if err != nil {
		return 0, err
	}

	if s.Redis != nil {
		s.Redis.Set(context.Background(), key, strconv.FormatInt(count, 10), questionCountTTL)
	}

	return count, nil
}

// InvalidateQuestionCount 题目写入后使缓存失效
func (s *ModuleService) InvalidateQuestionCount(moduleID string) {
	if s.Redis == nil || moduleID == "" {
		return
	}
	s.Redis.Del(context.Background(), countCacheKey(moduleID))
}

func countCacheKey(moduleID string) string {
	return fmt.Sprintf("module:%s:question_count", moduleID)
}

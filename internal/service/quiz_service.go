package service

import (
	"encoding/json"
	"errors"
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizService struct {
	QuestionRepo *repository.QuestionRepository
	AttemptRepo  *repository.QuizAttemptRepository
	ModuleRepo   *repository.ModuleRepository
}

func NewQuizService(questionRepo *repository.QuestionRepository, attemptRepo *repository.QuizAttemptRepository, moduleRepo *repository.ModuleRepository) *QuizService {
	return &QuizService{
		QuestionRepo: questionRepo,
		AttemptRepo:  attemptRepo,
		ModuleRepo:   moduleRepo,
	}
}

// QuizQuestion 发给考生的题目视图，不含正确答案
type QuizQuestion struct {
	ID       uint           `json:"id"`
	UniqueID string         `json:"uniqueId"`
	Type     string         `json:"type"`
	Question string         `json:"question"`
	Answers  datatypes.JSON `json:"answers"`
	ImageURL string         `json:"imageUrl,omitempty"`
}

type StartQuizResult struct {
	AttemptID uint           `json:"attemptId"`
	ModuleID  string         `json:"moduleId"`
	Questions []QuizQuestion `json:"questions"`
}

// StartQuiz 为模块开启一次测验：取题并创建进行中的 attempt
func (s *QuizService) StartQuiz(moduleID string, userID *uint, limit int) (*StartQuizResult, error) {
	if _, err := s.ModuleRepo.FindByID(moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	questions, err := s.QuestionRepo.FindByModule(moduleID, limit)
	if err != nil {
		return nil, err
	}

	attempt := &model.QuizAttempt{
		ModuleID:  moduleID,
		UserID:    userID,
		Total:     len(questions),
		StartedAt: time.Now(),
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}

	view := make([]QuizQuestion, len(questions))
	for i, q := range questions {
		view[i] = QuizQuestion{
			ID:       q.ID,
			UniqueID: q.UniqueID,
			Type:     q.Type,
			Question: q.Question,
			Answers:  q.Answers,
			ImageURL: q.ImageURL,
		}
	}

	return &StartQuizResult{
		AttemptID: attempt.ID,
		ModuleID:  moduleID,
		Questions: view,
	}, nil
}

type SubmitQuizRequest struct {
	Answers map[uint]json.RawMessage `json:"answers" binding:"required"`
}

type SubmitQuizResult struct {
	AttemptID uint          `json:"attemptId"`
	Score     int           `json:"score"`
	Total     int           `json:"total"`
	Results   map[uint]bool `json:"results"`
}

// SubmitQuiz 判题并落库。重复提交同一 attempt 返回错误
func (s *QuizService) SubmitQuiz(attemptID uint, req *SubmitQuizRequest) (*SubmitQuizResult, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.Completed {
		return nil, util.ErrAttemptCompleted
	}

	questions, err := s.QuestionRepo.FindByModule(attempt.ModuleID, 0)
	if err != nil {
		return nil, err
	}

	results := make(map[uint]bool, len(req.Answers))
	answers := make([]model.QuizAttemptAnswer, 0, len(req.Answers))
	score := 0

	for _, q := range questions {
		response, answered := req.Answers[q.ID]
		if !answered {
			continue
		}
		correct := gradeAnswer(q.Type, json.RawMessage(q.CorrectAnswers), response)
		if correct {
			score++
		}
		results[q.ID] = correct
		answers = append(answers, model.QuizAttemptAnswer{
			AttemptID:  attempt.ID,
			QuestionID: q.ID,
			Response:   datatypes.JSON(response),
			Correct:    correct,
		})
	}

	now := time.Now()
	attempt.Score = score
	attempt.Total = len(questions)
	attempt.Completed = true
	attempt.CompletedAt = &now

	if err := s.AttemptRepo.SaveAnswers(attempt, answers); err != nil {
		return nil, err
	}

	return &SubmitQuizResult{
		AttemptID: attempt.ID,
		Score:     score,
		Total:     attempt.Total,
		Results:   results,
	}, nil
}

// ModuleStats 模块的完成测验统计
func (s *QuizService) ModuleStats(moduleID string) (*repository.ModuleStats, error) {
	if _, err := s.ModuleRepo.FindByID(moduleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}
	return s.AttemptRepo.StatsByModule(moduleID)
}

package service

import (
	"encoding/json"
	"errors"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"
	"strings"
	"testing"

	"gorm.io/gorm"
)

func newTestQuizService(t *testing.T) (*QuizService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewQuizService(
		repository.NewQuestionRepository(db),
		repository.NewQuizAttemptRepository(db),
		repository.NewModuleRepository(db),
	), db
}

func TestStartQuizHidesCorrectAnswers(t *testing.T) {
	svc, db := newTestQuizService(t)

	mod := createTestModule(t, db, "Geography")
	seedQuestion(t, db, "Capital of France?", mod.ID)
	seedQuestion(t, db, "Capital of Spain?", mod.ID)

	result, err := svc.StartQuiz(mod.ID, nil, 0)
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if result.AttemptID == 0 {
		t.Fatalf("attempt must be persisted")
	}
	if len(result.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(result.Questions))
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(encoded), "correctAnswers") {
		t.Fatalf("quiz view must not leak correct answers: %s", encoded)
	}
}

func TestStartQuizUnknownModule(t *testing.T) {
	svc, _ := newTestQuizService(t)

	_, err := svc.StartQuiz("no-such-module", nil, 0)
	if !errors.Is(err, util.ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
}

func TestStartQuizHonorsLimit(t *testing.T) {
	svc, db := newTestQuizService(t)

	mod := createTestModule(t, db, "Math")
	for _, q := range []string{"1+1?", "2+2?", "3+3?"} {
		seedQuestion(t, db, q, mod.ID)
	}

	result, err := svc.StartQuiz(mod.ID, nil, 2)
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if len(result.Questions) != 2 {
		t.Fatalf("expected question count capped at 2, got %d", len(result.Questions))
	}
}

func TestSubmitQuizGradesAndCompletes(t *testing.T) {
	svc, db := newTestQuizService(t)

	mod := createTestModule(t, db, "Geography")
	seedQuestion(t, db, "Capital of France?", mod.ID)
	seedQuestion(t, db, "Capital of Spain?", mod.ID)

	started, err := svc.StartQuiz(mod.ID, nil, 0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// seedQuestion 的正确答案都是 ["a"]
	answers := map[uint]json.RawMessage{
		started.Questions[0].ID: json.RawMessage(`"a"`),
		started.Questions[1].ID: json.RawMessage(`"wrong"`),
	}
	result, err := svc.SubmitQuiz(started.AttemptID, &SubmitQuizRequest{Answers: answers})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != 1 || result.Total != 2 {
		t.Fatalf("expected score 1/2, got %d/%d", result.Score, result.Total)
	}
	if !result.Results[started.Questions[0].ID] || result.Results[started.Questions[1].ID] {
		t.Fatalf("per-question results wrong: %+v", result.Results)
	}

	// 重复提交同一 attempt 必须被拒绝
	_, err = svc.SubmitQuiz(started.AttemptID, &SubmitQuizRequest{Answers: answers})
	if !errors.Is(err, util.ErrAttemptCompleted) {
		t.Fatalf("expected ErrAttemptCompleted, got %v", err)
	}
}

func TestSubmitQuizUnknownAttempt(t *testing.T) {
	svc, _ := newTestQuizService(t)

	_, err := svc.SubmitQuiz(99999, &SubmitQuizRequest{Answers: map[uint]json.RawMessage{}})
	if !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
}

func TestModuleStatsAggregatesCompletedAttempts(t *testing.T) {
	svc, db := newTestQuizService(t)

	mod := createTestModule(t, db, "Math")
	seedQuestion(t, db, "1+1?", mod.ID)
	seedQuestion(t, db, "2+2?", mod.ID)

	submit := func(first, second string) {
		t.Helper()
		started, err := svc.StartQuiz(mod.ID, nil, 0)
		if err != nil {
			t.Fatalf("start: %v", err)
		}
		_, err = svc.SubmitQuiz(started.AttemptID, &SubmitQuizRequest{
			Answers: map[uint]json.RawMessage{
				started.Questions[0].ID: json.RawMessage(first),
				started.Questions[1].ID: json.RawMessage(second),
			},
		})
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	submit(`"a"`, `"a"`) // 2 分
	submit(`"a"`, `"x"`) // 1 分

	stats, err := svc.ModuleStats(mod.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Attempts != 2 {
		t.Fatalf("expected 2 completed attempts, got %d", stats.Attempts)
	}
	if stats.BestScore != 2 {
		t.Fatalf("expected best score 2, got %d", stats.BestScore)
	}
	if stats.AverageScore < 1.49 || stats.AverageScore > 1.51 {
		t.Fatalf("expected average 1.5, got %f", stats.AverageScore)
	}
}

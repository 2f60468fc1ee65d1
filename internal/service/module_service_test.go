package service

import (
	"errors"
	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// redis 在测试中不可用，传 nil：计数路径必须能在无缓存时直接回源
func newTestModuleService(t *testing.T) (*ModuleService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewModuleService(
		repository.NewModuleRepository(db),
		repository.NewQuestionRepository(db),
		nil,
	), db
}

func seedQuestion(t *testing.T, db *gorm.DB, text, moduleID string) {
	t.Helper()
	q := model.Question{
		UniqueID:       model.GenerateUUID(),
		Hash:           "hash-" + text + "-" + moduleID,
		Type:           "multiple_choice",
		Question:       text,
		Answers:        datatypes.JSON(`["a"]`),
		CorrectAnswers: datatypes.JSON(`["a"]`),
		Metadata:       datatypes.JSON(`{}`),
		ModuleID:       moduleID,
	}
	if err := db.Create(&q).Error; err != nil {
		t.Fatalf("seed question %q: %v", text, err)
	}
}

func TestCreateOrGetModuleIsIdempotent(t *testing.T) {
	svc, _ := newTestModuleService(t)

	req := &CreateModuleRequest{Title: "Geography", Description: "Maps", IsPublic: true}

	first, created, err := svc.CreateOrGetModule(req, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !created {
		t.Fatalf("first call must create the module")
	}
	if first.ID == "" {
		t.Fatalf("module must get a generated id")
	}

	second, created, err := svc.CreateOrGetModule(req, nil)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if created {
		t.Fatalf("second call must return the existing module")
	}
	if second.ID != first.ID {
		t.Fatalf("expected same module, got %q vs %q", second.ID, first.ID)
	}
}

func TestGetModuleReportsQuestionCount(t *testing.T) {
	svc, db := newTestModuleService(t)

	mod, _, err := svc.CreateOrGetModule(&CreateModuleRequest{Title: "Math"}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	seedQuestion(t, db, "2+2?", mod.ID)
	seedQuestion(t, db, "3+3?", mod.ID)
	seedQuestion(t, db, "elsewhere", "other-module")

	got, err := svc.GetModule(mod.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.QuestionCount != 2 {
		t.Fatalf("expected 2 questions counted, got %d", got.QuestionCount)
	}
}

func TestGetModuleNotFound(t *testing.T) {
	svc, _ := newTestModuleService(t)

	_, err := svc.GetModule("no-such-module")
	if !errors.Is(err, util.ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
}

func TestListModulesPublicOnly(t *testing.T) {
	svc, _ := newTestModuleService(t)

	if _, _, err := svc.CreateOrGetModule(&CreateModuleRequest{Title: "Public", IsPublic: true}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := svc.CreateOrGetModule(&CreateModuleRequest{Title: "Private"}, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	modules, page, err := svc.ListModules("", true, 1, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(modules) != 1 || modules[0].Title != "Public" {
		t.Fatalf("expected only the public module, got %+v", modules)
	}
	if page.Total != 1 {
		t.Fatalf("expected total 1, got %d", page.Total)
	}
}

func TestInvalidateQuestionCountWithoutRedisIsNoop(t *testing.T) {
	svc, _ := newTestModuleService(t)
	// 不应 panic
	svc.InvalidateQuestionCount("mod-1")
	svc.InvalidateQuestionCount("")
}

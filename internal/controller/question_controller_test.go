package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"quizhub_backend/internal/config"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/service"
	"quizhub_backend/pkg/database"
	"quizhub_backend/pkg/logger"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

var ctrlTestSeq uint64

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := fmt.Sprintf("file:ctrl_test_%d?mode=memory&cache=shared", atomic.AddUint64(&ctrlTestSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	questionRepo := repository.NewQuestionRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	hasher := service.NewContentHasher(config.HashPolicyWide)

	ctrl := NewQuestionController(
		service.NewQuestionService(questionRepo, hasher),
		service.NewImportService(questionRepo, hasher, 100),
		service.NewModuleService(moduleRepo, questionRepo, nil),
	)

	r := gin.New()
	r.POST("/api/questions", ctrl.CreateQuestion)
	r.POST("/api/questions/bulk", ctrl.BulkImport)
	r.GET("/api/questions", ctrl.ListQuestions)
	r.GET("/api/questions/:id", ctrl.GetQuestion)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("response is not JSON: %v\n%s", err, w.Body.String())
		}
	}
	return w, decoded
}

func TestBulkImportSuccessResponseShape(t *testing.T) {
	r := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/questions/bulk", `{
		"moduleId": "mod-1",
		"questions": [
			{"question": "What is 2+2?", "type": "numerical_question", "answers": [], "correctAnswers": "4"},
			{"question": "Capital of France?", "type": "multiple_choice", "answers": ["Paris","London"], "correctAnswers": ["Paris"]}
		]
	}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if body["success"] != true {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	if body["message"] != "Created 2 question(s). 0 item(s) skipped." {
		t.Fatalf("unexpected message: %v", body["message"])
	}

	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing data object: %v", body)
	}
	if data["created"] != float64(2) {
		t.Fatalf("expected created=2, got %v", data["created"])
	}
	questions, ok := data["questions"].([]interface{})
	if !ok || len(questions) != 2 {
		t.Fatalf("expected 2 question summaries, got %v", data["questions"])
	}
	first := questions[0].(map[string]interface{})
	for _, field := range []string{"id", "uniqueId", "question", "type", "moduleId", "createdAt"} {
		if _, present := first[field]; !present {
			t.Fatalf("summary missing %q: %v", field, first)
		}
	}

	skipped, ok := body["skipped"].([]interface{})
	if !ok {
		t.Fatalf("skipped must be an array even when empty, got %v", body["skipped"])
	}
	if len(skipped) != 0 {
		t.Fatalf("expected no skipped items, got %v", skipped)
	}
}

func TestBulkImportMixedBatchReportsSkips(t *testing.T) {
	r := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/questions/bulk", `{
		"moduleId": "mod-1",
		"questions": [
			{"question": "Good?", "type": "multiple_choice", "answers": ["a"], "correctAnswers": ["a"]},
			{"type": "multiple_choice", "answers": ["a"], "correctAnswers": ["a"]}
		]
	}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("partial failure still answers 201, got %d: %s", w.Code, w.Body.String())
	}
	if body["message"] != "Created 1 question(s). 1 item(s) skipped." {
		t.Fatalf("unexpected message: %v", body["message"])
	}

	skipped := body["skipped"].([]interface{})
	item := skipped[0].(map[string]interface{})
	if item["question"] != "Unknown" {
		t.Fatalf("nameless item must report as Unknown, got %v", item["question"])
	}
	if item["reason"] != "Validation error: Question text is required" {
		t.Fatalf("unexpected reason: %v", item["reason"])
	}
}

func TestBulkImportRejectsNonArrayQuestions(t *testing.T) {
	r := newTestRouter(t)

	for _, payload := range []string{
		`{"moduleId": "mod-1", "questions": "not an array"}`,
		`{"moduleId": "mod-1"}`,
		`not even json`,
	} {
		w, body := doJSON(t, r, http.MethodPost, "/api/questions/bulk", payload)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("payload %q: expected 400, got %d", payload, w.Code)
		}
		if body["error"] != "Questions must be an array" {
			t.Fatalf("payload %q: unexpected error %v", payload, body["error"])
		}
	}
}

func TestBulkImportRejectsMissingModuleID(t *testing.T) {
	r := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/questions/bulk",
		`{"questions": [{"question": "Q?", "type": "t", "answers": [], "correctAnswers": []}]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["error"] != "Module ID is required" {
		t.Fatalf("unexpected error: %v", body["error"])
	}
}

func TestBulkImportRejectsEmptyArray(t *testing.T) {
	r := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/questions/bulk",
		`{"moduleId": "mod-1", "questions": []}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["error"] != "Questions array cannot be empty" {
		t.Fatalf("unexpected error: %v", body["error"])
	}
}

func TestBulkImportDuplicateSkipCarriesUniqueID(t *testing.T) {
	r := newTestRouter(t)

	payload := `{
		"moduleId": "mod-1",
		"questions": [{"question": "Q?", "type": "multiple_choice", "answers": ["a"], "correctAnswers": ["a"]}]
	}`
	if w, _ := doJSON(t, r, http.MethodPost, "/api/questions/bulk", payload); w.Code != http.StatusCreated {
		t.Fatalf("first import: %d", w.Code)
	}

	_, body := doJSON(t, r, http.MethodPost, "/api/questions/bulk", payload)
	skipped := body["skipped"].([]interface{})
	item := skipped[0].(map[string]interface{})
	if item["reason"] != "Duplicate question" {
		t.Fatalf("unexpected reason: %v", item["reason"])
	}
	uid, ok := item["uniqueId"].(string)
	if !ok || len(uid) != 16 {
		t.Fatalf("duplicate skip must carry the provisional uniqueId, got %v", item["uniqueId"])
	}
}

func TestCreateQuestionEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/questions",
		`{"type": "multiple_choice", "question": "Q?", "answers": ["a"], "correctAnswers": ["a"], "moduleId": "mod-1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if _, ok := body["uniqueId"].(string); !ok {
		t.Fatalf("expected uniqueId in response, got %v", body)
	}

	// 同内容重复创建
	w, body = doJSON(t, r, http.MethodPost, "/api/questions",
		`{"type": "multiple_choice", "question": "Q?", "answers": ["a"], "correctAnswers": ["a"], "moduleId": "mod-1"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if body["error"] != "Question already exists" {
		t.Fatalf("unexpected error: %v", body["error"])
	}
	if _, ok := body["id"].(float64); !ok {
		t.Fatalf("conflict response must reference the existing id, got %v", body)
	}

	// 未知题型
	w, body = doJSON(t, r, http.MethodPost, "/api/questions",
		`{"type": "essay_question", "question": "Explain"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body["error"] != "unsupported question type" {
		t.Fatalf("unexpected error: %v", body["error"])
	}

	// 缺必填字段
	w, _ = doJSON(t, r, http.MethodPost, "/api/questions", `{"question": "no type"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing type, got %d", w.Code)
	}
}

func TestGetQuestionNotFound(t *testing.T) {
	r := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/api/questions/12345", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

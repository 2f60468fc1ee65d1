package controller

import (
	"errors"
	"fmt"
	"net/http"
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"
	"quizhub_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuestionController struct {
	Service       *service.QuestionService
	ImportService *service.ImportService
	ModuleService *service.ModuleService
}

func NewQuestionController(svc *service.QuestionService, importSvc *service.ImportService, moduleSvc *service.ModuleService) *QuestionController {
	return &QuestionController{
		Service:       svc,
		ImportService: importSvc,
		ModuleService: moduleSvc,
	}
}

// @Summary 创建题目
// @Tags 题目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateQuestionRequest true "题目信息"
// @Success 201 {object} map[string]interface{}
// @Router /api/questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req service.CreateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "type and question are required"})
		return
	}

	var createdBy *uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		createdBy = &claims.UserID
	}

	question, err := c.Service.CreateQuestion(&req, createdBy)
	if err != nil {
		var dup *service.DuplicateQuestionError
		switch {
		case errors.Is(err, util.ErrInvalidKind):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "unsupported question type"})
		case errors.As(err, &dup):
			ctx.JSON(http.StatusConflict, gin.H{"error": "Question already exists", "id": dup.ExistingID})
		default:
			logger.Log.Error("create question failed", zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
		return
	}

	c.ModuleService.InvalidateQuestionCount(question.ModuleID)
	ctx.JSON(http.StatusCreated, gin.H{"id": question.ID, "uniqueId": question.UniqueID})
}

// @Summary 批量导入题目
// @Description 逐项校验并按内容指纹去重，单个条目失败不影响整批；返回创建结果与跳过清单
// @Tags 题目
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ImportRequest true "题目批次"
// @Success 201 {object} map[string]interface{}
// @Router /api/questions/bulk [post]
func (c *QuestionController) BulkImport(ctx *gin.Context) {
	var req service.ImportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Questions == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Questions must be an array"})
		return
	}

	outcome, err := c.ImportService.Import(&req)
	if err != nil {
		var reqErr *service.RequestError
		if errors.As(err, &reqErr) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": reqErr.Message})
			return
		}
		logger.Log.Error("bulk import failed", zap.String("moduleId", req.ModuleID), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": "Failed to create questions",
		})
		return
	}

	if len(outcome.Created) > 0 {
		c.ModuleService.InvalidateQuestionCount(req.ModuleID)
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": fmt.Sprintf("Created %d question(s). %d item(s) skipped.", len(outcome.Created), len(outcome.Skipped)),
		"data": gin.H{
			"created":   len(outcome.Created),
			"questions": outcome.Created,
		},
		"skipped": outcome.Skipped,
	})
}

// @Summary 题目列表
// @Tags 题目
// @Produce json
// @Param q query string false "题干关键字"
// @Param type query string false "题型"
// @Param moduleId query string false "模块ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.PageResponse
// @Router /api/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	page, limit := util.ParsePageQuery(ctx.Query("page"), ctx.Query("limit"), 100)

	questions, pagination, err := c.Service.SearchQuestions(
		ctx.Query("q"),
		ctx.Query("type"),
		ctx.Query("moduleId"),
		page,
		limit,
	)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, util.PageResponse{
		Items:      questions,
		Pagination: *pagination,
	})
}

// @Summary 题目详情
// @Tags 题目
// @Produce json
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	question, err := c.Service.GetQuestion(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, question)
}

// @Summary 删除题目
// @Tags 题目
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	question, err := c.Service.GetQuestion(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	if err := c.Service.DeleteQuestion(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	c.ModuleService.InvalidateQuestionCount(question.ModuleID)
	util.Success(ctx, gin.H{"deleted": id})
}

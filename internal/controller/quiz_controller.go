package controller

import (
	"errors"
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Service *service.QuizService
}

func NewQuizController(svc *service.QuizService) *QuizController {
	return &QuizController{Service: svc}
}

// @Summary 开始测验
// @Description 为模块创建一次测验，返回不含答案的题目列表
// @Tags 测验
// @Produce json
// @Param id path string true "模块ID"
// @Param limit query int false "题目数量上限"
// @Success 200 {object} util.Response
// @Router /api/modules/{id}/quiz [post]
func (c *QuizController) StartQuiz(ctx *gin.Context) {
	limit := 0
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	var userID *uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = &claims.UserID
	}

	result, err := c.Service.StartQuiz(ctx.Param("id"), userID, limit)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// @Summary 提交测验
// @Tags 测验
// @Accept json
// @Produce json
// @Param attemptId path int true "测验ID"
// @Param body body service.SubmitQuizRequest true "作答"
// @Success 200 {object} util.Response
// @Router /api/quiz/attempts/{attemptId}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	attemptID := util.MustParseUint(ctx.Param("attemptId"))
	if attemptID == 0 {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	var req service.SubmitQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "answers are required")
		return
	}

	result, err := c.Service.SubmitQuiz(attemptID, &req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAttemptNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAttemptCompleted):
			util.Error(ctx, 409, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// @Summary 模块测验统计
// @Tags 测验
// @Produce json
// @Param id path string true "模块ID"
// @Success 200 {object} util.Response
// @Router /api/modules/{id}/stats [get]
func (c *QuizController) ModuleStats(ctx *gin.Context) {
	stats, err := c.Service.ModuleStats(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, stats)
}

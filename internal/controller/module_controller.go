package controller

import (
	"errors"
	"net/http"
	"quizhub_backend/internal/service"
	"quizhub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	Service *service.ModuleService
}

func NewModuleController(svc *service.ModuleService) *ModuleController {
	return &ModuleController{Service: svc}
}

// @Summary 创建模块
// @Description 同名模块已存在时返回现有模块（200），否则创建（201）
// @Tags 模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateModuleRequest true "模块信息"
// @Success 201 {object} service.ModuleWithCount
// @Router /api/modules [post]
func (c *ModuleController) CreateModule(ctx *gin.Context) {
	var req service.CreateModuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	var createdBy *uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		createdBy = &claims.UserID
	}

	module, created, err := c.Service.CreateOrGetModule(&req, createdBy)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ctx.JSON(status, module)
}

// @Summary 模块列表
// @Tags 模块
// @Produce json
// @Param q query string false "标题关键字"
// @Param public query bool false "仅公开模块"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.PageResponse
// @Router /api/modules [get]
func (c *ModuleController) ListModules(ctx *gin.Context) {
	page, limit := util.ParsePageQuery(ctx.Query("page"), ctx.Query("limit"), 100)
	publicOnly := ctx.Query("public") == "true"

	modules, pagination, err := c.Service.ListModules(ctx.Query("q"), publicOnly, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, util.PageResponse{
		Items:      modules,
		Pagination: *pagination,
	})
}

// @Summary 模块详情
// @Tags 模块
// @Produce json
// @Param id path string true "模块ID"
// @Success 200 {object} service.ModuleWithCount
// @Router /api/modules/{id} [get]
func (c *ModuleController) GetModule(ctx *gin.Context) {
	module, err := c.Service.GetModule(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Module not found"})
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, module)
}

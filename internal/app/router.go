package app

import (
	"quizhub_backend/docs"
	"quizhub_backend/internal/config"
	"quizhub_backend/internal/middleware"
	"quizhub_backend/internal/model"
	"quizhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		// 浏览与搜索：允许游客访问，登录用户附带身份
		public.GET("/modules", middleware.TryAuthMiddleware(cfg), c.module.ListModules)
		public.GET("/modules/:id", middleware.TryAuthMiddleware(cfg), c.module.GetModule)
		public.GET("/questions", middleware.TryAuthMiddleware(cfg), c.question.ListQuestions)
		public.GET("/questions/:id", middleware.TryAuthMiddleware(cfg), c.question.GetQuestion)

		// 测验：游客可参加公开模块的测验
		public.POST("/modules/:id/quiz", middleware.TryAuthMiddleware(cfg), c.quiz.StartQuiz)
		public.POST("/quiz/attempts/:attemptId/submit", middleware.TryAuthMiddleware(cfg), c.quiz.SubmitQuiz)
		public.GET("/modules/:id/stats", c.quiz.ModuleStats)
	}

	// 2. 需要授权的创作路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.POST("/modules", c.module.CreateModule)

		authGroup.POST("/questions", c.question.CreateQuestion)
		authGroup.POST("/questions/bulk", c.question.BulkImport)
		authGroup.DELETE("/questions/:id", middleware.RoleMiddleware(model.Author), c.question.DeleteQuestion)

		authGroup.POST("/upload/image", c.upload.UploadImage)
	}
}

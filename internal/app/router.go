package app

import (
	"gmc_backend/docs"
	"gmc_backend/internal/config"
	"gmc_backend/internal/middleware"
	"gmc_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		public.POST("/users", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)

		// 题库管理接口历史上就没有鉴权，保持原状
		public.GET("/questions", c.question.List)
		public.GET("/questions/stats", c.question.Stats)
		public.GET("/questions/:id", c.question.GetByID)
		public.POST("/questions", c.question.Create)
		public.PUT("/questions/:id", c.question.Update)
		public.DELETE("/questions/:id", c.question.Delete)

		public.GET("/sample-test/:grade", c.question.SampleTest)
		public.GET("/live-test/:grade", c.question.LiveTest)

		public.POST("/otp/send", c.otp.SendOTP)
		public.POST("/otp/verify", c.otp.VerifyOTP)

		public.POST("/send-email", c.email.SendEmail)
	}

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, repos.user))
	{
		authGroup.GET("/auth/verify", c.auth.Verify)

		authGroup.GET("/users/me", c.user.GetProfile)
		authGroup.PUT("/users/me", c.user.UpdateProfile)
		authGroup.GET("/users/:id/tests", c.test.ListUserTests)

		authGroup.GET("/tests/:testType/eligibility", c.test.Eligibility)
		authGroup.POST("/tests/:testType/submit", c.test.Submit)

		authGroup.POST("/reports/upload", c.report.UploadReport)
	}
}

package app

import (
	"sems_backend/docs"
	"sems_backend/internal/config"
	"sems_backend/internal/middleware"
	"sems_backend/internal/model"
	"sems_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. public
	a.registerPublicRoutes(router, c)

	// 2. authenticated
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerAccountRoutes(authGroup, c)
		a.registerCatalogRoutes(authGroup, c)
		a.registerExamRoutes(authGroup, c)
		a.registerReportRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)

		guest := public.Group("/guest/exams")
		guest.GET("", c.guest.List)
		guest.GET("/:id/start", c.guest.Start)
		guest.POST("/:id/submit", c.guest.Submit)
	}
}

func (a *App) registerAccountRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/auth/me", c.auth.Me)
	group.PUT("/auth/update-profile", c.auth.UpdateProfile)
}

func (a *App) registerCatalogRoutes(group *gin.RouterGroup, c *controllers) {
	supervisor := middleware.RoleMiddleware(model.RoleSupervisor)
	staff := middleware.RoleMiddleware(model.RoleSupervisor, model.RoleManager)

	subjects := group.Group("/subjects")
	{
		subjects.GET("", c.subject.List)
		subjects.GET("/:id", c.subject.Get)
		subjects.POST("", supervisor, c.subject.Create)
		subjects.PUT("/:id", supervisor, c.subject.Update)
		subjects.DELETE("/:id", supervisor, c.subject.Delete)
	}

	sections := group.Group("/sections")
	{
		sections.GET("", staff, c.section.List)
		sections.GET("/:id", staff, c.section.Get)
		sections.POST("", supervisor, c.section.Create)
		sections.PUT("/:id", supervisor, c.section.Update)
		sections.DELETE("/:id", supervisor, c.section.Delete)
	}

	students := group.Group("/students")
	students.Use(supervisor)
	{
		students.GET("", c.student.List)
		students.GET("/:id", c.student.Get)
		students.POST("", c.student.Create)
		students.POST("/import", c.student.Import)
		students.PUT("/:id", c.student.Update)
		students.DELETE("/:id", c.student.Delete)
	}
}

func (a *App) registerExamRoutes(group *gin.RouterGroup, c *controllers) {
	supervisor := middleware.RoleMiddleware(model.RoleSupervisor)

	exams := group.Group("/exams")
	{
		exams.GET("", c.exam.List)
		exams.GET("/my/results", c.exam.MyResults)
		exams.GET("/:id", c.exam.Get)
		exams.GET("/:id/questions", c.exam.Questions)
		exams.POST("/:id/start", c.exam.Start)
		exams.POST("/:id/submit", c.exam.Submit)
		exams.POST("/:id/questions/:questionId/report", middleware.RoleMiddleware(model.RoleStudent), c.exam.ReportQuestion)

		exams.POST("", supervisor, c.exam.Create)
		exams.PUT("/:id", supervisor, c.exam.Update)
		exams.DELETE("/:id", supervisor, c.exam.Delete)
		exams.POST("/:id/questions", supervisor, c.exam.AddQuestion)
		exams.PUT("/:id/questions/:questionId", supervisor, c.exam.UpdateQuestion)
		exams.DELETE("/:id/questions/:questionId", supervisor, c.exam.DeleteQuestion)
		exams.POST("/:id/import-questions", supervisor, c.exam.ImportQuestions)
		exams.GET("/:id/reports", supervisor, c.exam.QuestionReports)
		exams.GET("/:id/import-logs", supervisor, c.exam.ImportLogs)
	}
}

func (a *App) registerReportRoutes(group *gin.RouterGroup, c *controllers) {
	reports := group.Group("/reports")
	reports.Use(middleware.RoleMiddleware(model.RoleSupervisor, model.RoleManager))
	{
		reports.GET("/performance", c.report.Performance)
		reports.GET("/students", c.report.Students)
		reports.GET("/sections", c.report.Sections)
		reports.GET("/export/excel", c.report.ExportExcel)
		reports.GET("/export/pdf", c.report.ExportPDF)
	}
}

package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/handler"
	"github.com/educ8/educ8-api/internal/middleware"
	"github.com/educ8/educ8-api/internal/models"
	"github.com/educ8/educ8-api/pkg/config"
	"github.com/educ8/educ8-api/pkg/logger"
	corsmiddleware "github.com/educ8/educ8-api/pkg/middleware/cors"
	reqidmiddleware "github.com/educ8/educ8-api/pkg/middleware/requestid"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Students    *handler.StudentHandler
	Teachers    *handler.TeacherHandler
	Parents     *handler.ParentHandler
	Classes     *handler.ClassHandler
	Assignments *handler.AssignmentHandler
	Submissions *handler.SubmissionHandler
	Grades      *handler.GradeHandler
	Attendance  *handler.AttendanceHandler
	Fees        *handler.FeeHandler
	Messages    *handler.MessageHandler
	Dashboard   *handler.DashboardHandler
	Exports     *handler.ExportHandler
	Uploads     *handler.UploadHandler
	Metrics     *handler.MetricsHandler
}

// Middleware bundles the cross-cutting gin middleware used by every route group.
type Middleware struct {
	JWT               gin.HandlerFunc
	Metrics           gin.HandlerFunc
	CacheInvalidation gin.HandlerFunc
}

// New builds the gin engine with all routes mounted under cfg.APIPrefix.
func New(cfg *config.Config, logr *zap.Logger, h Handlers, mw Middleware) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	if logr != nil {
		r.Use(logger.GinMiddleware(logr))
	}
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if mw.Metrics != nil {
		r.Use(mw.Metrics)
	}

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", mw.JWT, h.Auth.Logout)
	auth.POST("/change-password", mw.JWT, h.Auth.ChangePassword)
	auth.GET("/me", mw.JWT, h.Auth.Me)
	auth.PUT("/me", mw.JWT, h.Auth.UpdateMe)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RolePrincipal, models.RoleTeacher)
	admin := middleware.RequireRoles(models.RoleAdmin, models.RolePrincipal)

	protected := api.Group("", mw.JWT)
	if mw.CacheInvalidation != nil {
		protected.Use(mw.CacheInvalidation)
	}

	students := protected.Group("/students")
	students.GET("", h.Students.List)
	students.GET("/:id", h.Students.Get)
	students.POST("", admin, h.Students.Create)
	students.PUT("/:id", admin, h.Students.Update)
	students.DELETE("/:id", admin, h.Students.Delete)

	teachers := protected.Group("/teachers")
	teachers.GET("", staff, h.Teachers.List)
	teachers.GET("/:id", staff, h.Teachers.Get)
	teachers.POST("", admin, h.Teachers.Create)
	teachers.PUT("/:id", admin, h.Teachers.Update)
	teachers.DELETE("/:id", admin, h.Teachers.Delete)

	parents := protected.Group("/parents")
	parents.GET("", staff, h.Parents.List)
	parents.GET("/:id/children", middleware.RBAC(
		string(models.RoleAdmin),
		string(models.RolePrincipal),
		string(models.RoleTeacher),
		middleware.SelfParam,
	), h.Parents.Children)

	classes := protected.Group("/classes")
	classes.GET("", h.Classes.List)
	classes.GET("/:id", h.Classes.Get)
	classes.GET("/:id/roster", h.Classes.Roster)
	classes.POST("", admin, h.Classes.Create)
	classes.PUT("/:id", admin, h.Classes.Update)
	classes.DELETE("/:id", admin, h.Classes.Delete)

	assignments := protected.Group("/assignments")
	assignments.GET("", h.Assignments.List)
	assignments.GET("/stats", h.Assignments.Stats)
	assignments.GET("/:id", h.Assignments.Get)
	assignments.POST("", staff, h.Assignments.Create)
	assignments.PUT("/:id", staff, h.Assignments.Update)
	assignments.DELETE("/:id", staff, h.Assignments.Delete)

	submissions := protected.Group("/submissions")
	submissions.GET("", h.Submissions.List)
	submissions.GET("/:id", h.Submissions.Get)
	submissions.POST("", middleware.RequireRoles(models.RoleStudent), h.Submissions.Submit)
	submissions.POST("/:id/grade", staff, h.Submissions.Grade)

	grades := protected.Group("/grades")
	grades.GET("", h.Grades.List)
	grades.POST("", staff, h.Grades.Create)
	grades.PUT("/:id", staff, h.Grades.Update)
	grades.DELETE("/:id", staff, h.Grades.Delete)
	grades.GET("/gradebook/:classId", staff, h.Grades.Gradebook)
	grades.GET("/statistics/:classId", staff, h.Grades.SubjectStats)

	attendance := protected.Group("/attendance")
	attendance.GET("", h.Attendance.List)
	attendance.GET("/stats", h.Attendance.Stats)
	attendance.POST("", staff, h.Attendance.Record)
	attendance.POST("/bulk", staff, h.Attendance.RecordBulk)
	attendance.DELETE("/:id", staff, h.Attendance.Delete)

	fees := protected.Group("/fees")
	fees.GET("", h.Fees.List)
	fees.POST("", admin, h.Fees.Create)
	fees.PUT("/:id", admin, h.Fees.Update)
	fees.POST("/:id/payments", admin, h.Fees.RecordPayment)
	fees.DELETE("/:id", admin, h.Fees.Delete)

	messages := protected.Group("/messages")
	messages.GET("", h.Messages.List)
	messages.GET("/stats", h.Messages.Stats)
	messages.GET("/:id", h.Messages.Read)
	messages.POST("", h.Messages.Send)

	protected.GET("/dashboard", h.Dashboard.Me)

	exports := protected.Group("/exports")
	exports.GET("/gradebook/:classId", staff, h.Exports.GradebookCSV)
	exports.GET("/report-card/:studentId", h.Exports.ReportCardPDF)

	uploads := protected.Group("/uploads")
	uploads.POST("", h.Uploads.Upload)
	uploads.DELETE("", staff, h.Uploads.Delete)

	// signed token downloads work without a session
	api.GET("/uploads/download", h.Uploads.Download)

	return r
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	_ "github.com/educ8/educ8-api/api/swagger"
	"github.com/educ8/educ8-api/internal/handler"
	"github.com/educ8/educ8-api/internal/middleware"
	"github.com/educ8/educ8-api/internal/repository"
	"github.com/educ8/educ8-api/internal/router"
	"github.com/educ8/educ8-api/internal/service"
	"github.com/educ8/educ8-api/pkg/cache"
	"github.com/educ8/educ8-api/pkg/config"
	"github.com/educ8/educ8-api/pkg/database"
	"github.com/educ8/educ8-api/pkg/export"
	"github.com/educ8/educ8-api/pkg/logger"
	"github.com/educ8/educ8-api/pkg/storage"
)

// @title Educ8 API
// @version 1.0.0
// @description Role-based school management API: rosters, assignments, grades, attendance, fees and messaging.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	profileRepo := repository.NewProfileRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	feeRepo := repository.NewFeeRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)

	authSvc := service.NewAuthService(profileRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, profileRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, profileRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, profileRepo, studentRepo, validate, logr)
	parentSvc := service.NewParentService(profileRepo, studentRepo, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, submissionRepo, studentRepo, validate, logr)
	submissionSvc := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, validate, logr)
	feeSvc := service.NewFeeService(feeRepo, validate, logr)
	messageSvc := service.NewMessageService(messageRepo, profileRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(
		studentRepo,
		teacherRepo,
		classRepo,
		assignmentRepo,
		submissionRepo,
		gradeRepo,
		feeRepo,
		messageRepo,
		cacheSvc,
		cfg.Dashboard.CacheTTL,
		logr,
	)
	exportSvc := service.NewExportService(
		gradeRepo,
		classRepo,
		studentRepo,
		attendanceRepo,
		cfg.Reports.SchoolName,
		logr,
		export.NewCSVExporter(),
		export.NewPDFExporter(),
	)

	fileStore, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
	uploadSvc := service.NewUploadService(fileStore, signer, service.UploadConfig{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Uploads.AllowedMIMEs,
	}, logr)

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Students:    handler.NewStudentHandler(studentSvc),
		Teachers:    handler.NewTeacherHandler(teacherSvc),
		Parents:     handler.NewParentHandler(parentSvc),
		Classes:     handler.NewClassHandler(classSvc),
		Assignments: handler.NewAssignmentHandler(assignmentSvc),
		Submissions: handler.NewSubmissionHandler(submissionSvc),
		Grades:      handler.NewGradeHandler(gradeSvc),
		Attendance:  handler.NewAttendanceHandler(attendanceSvc),
		Fees:        handler.NewFeeHandler(feeSvc),
		Messages:    handler.NewMessageHandler(messageSvc),
		Dashboard:   handler.NewDashboardHandler(dashboardSvc),
		Exports:     handler.NewExportHandler(exportSvc),
		Uploads:     handler.NewUploadHandler(uploadSvc),
		Metrics:     handler.NewMetricsHandler(metricsSvc, db, redisClient),
	}

	engine := router.New(cfg, logr, handlers, router.Middleware{
		JWT:               middleware.JWT(authSvc),
		Metrics:           middleware.Metrics(metricsSvc),
		CacheInvalidation: middleware.CacheInvalidation(dashboardSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
	if err := cacheRepo.Close(); err != nil {
		logr.Sugar().Warnw("failed to close redis", "error", err)
	}
}

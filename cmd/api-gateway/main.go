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

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/alifdwt/lms-bff-api/api/swagger"
	"github.com/alifdwt/lms-bff-api/internal/fetch"
	"github.com/alifdwt/lms-bff-api/internal/handler"
	"github.com/alifdwt/lms-bff-api/internal/middleware"
	"github.com/alifdwt/lms-bff-api/internal/models"
	"github.com/alifdwt/lms-bff-api/internal/repository"
	"github.com/alifdwt/lms-bff-api/internal/service"
	"github.com/alifdwt/lms-bff-api/internal/source"
	"github.com/alifdwt/lms-bff-api/pkg/cache"
	"github.com/alifdwt/lms-bff-api/pkg/config"
	"github.com/alifdwt/lms-bff-api/pkg/database"
	"github.com/alifdwt/lms-bff-api/pkg/jobs"
	"github.com/alifdwt/lms-bff-api/pkg/logger"
	corsmiddleware "github.com/alifdwt/lms-bff-api/pkg/middleware/cors"
	reqidmiddleware "github.com/alifdwt/lms-bff-api/pkg/middleware/requestid"
	"github.com/alifdwt/lms-bff-api/pkg/storage"
)

// @title LMS BFF API
// @version 0.1.0
// @description Aggregation layer over the LMS owning services
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := source.NewRegistry(cfg.Sources, logr)
	coordinator := fetch.NewCoordinator(cfg.Fetch.MaxConcurrency)
	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	registry.Instrument(metricsSvc)

	var healthSvc *service.SourceHealthService
	if cfg.Health.Enabled {
		redisClient, err := cache.New(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("redis connection failed", "error", err)
		}
		healthRepo := repository.NewHealthRepository(redisClient, cfg.Health.StatusTTL, logr)
		defer healthRepo.Close() //nolint:errcheck
		healthSvc = service.NewSourceHealthService(healthRepo, logr)
	}

	recorder := service.NewOutcomeRecorder(healthSvc, metricsSvc)

	aggregateSvc := service.NewAggregateService(registry, coordinator, recorder, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Sources:     registry,
		Coordinator: coordinator,
		Health:      recorder,
		Logger:      logr,
	})
	rosterSvc := service.NewRosterService(registry, coordinator, recorder, logr)
	contentSvc := service.NewContentService(registry, coordinator, logr)
	attendanceSvc := service.NewAttendanceService(registry, registry, coordinator, validate, logr)
	gradeSvc := service.NewGradeService(registry, registry, coordinator, validate, logr)
	paymentSvc := service.NewPaymentService(registry, registry, coordinator, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(registry, validate, logr)
	reportSvc := service.NewReportService(registry, coordinator, recorder, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		db, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("database connection failed", "error", err)
		}
		defer db.Close() //nolint:errcheck

		artifacts, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("export storage init failed", "error", err)
		}
		exportSvc = service.NewExportService(service.ExportServiceParams{
			Store:      repository.NewExportJobRepository(db),
			Reports:    reportSvc,
			Attendance: attendanceSvc,
			Artifacts:  artifacts,
			Signer:     storage.NewTokenSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
			QueueCfg: jobs.QueueConfig{
				Workers:    cfg.Exports.WorkerConcurrency,
				MaxRetries: cfg.Exports.WorkerRetries,
				Logger:     logr,
			},
			Retention: cfg.Exports.RetentionTTL,
			Logger:    logr,
		})
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	healthHandler := handler.NewHealthHandler(healthSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r.GET("/health", healthHandler.Live)
	r.GET("/health/sources", healthHandler.Sources)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Auth(cfg.JWT.Secret))
	{
		aggregateHandler := handler.NewAggregateHandler(aggregateSvc)
		dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
		rosterHandler := handler.NewRosterHandler(rosterSvc)
		contentHandler := handler.NewContentHandler(contentSvc)
		attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
		gradeHandler := handler.NewGradeHandler(gradeSvc)
		paymentHandler := handler.NewPaymentHandler(paymentSvc)
		enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
		reportHandler := handler.NewReportHandler(reportSvc, nil)
		if exportSvc != nil {
			reportHandler = handler.NewReportHandler(reportSvc, exportSvc)
		}

		api.GET("/aggregate", aggregateHandler.Aggregate)
		api.GET("/dashboard/overview", dashboardHandler.Overview)
		api.GET("/courses/:id/roster", rosterHandler.CourseRoster)
		api.GET("/courses/:id/outline", contentHandler.CourseOutline)
		api.GET("/courses/:id/grades", gradeHandler.CourseGrades)
		api.GET("/sections/:id/attendance", attendanceHandler.SectionStatistics)

		staff := middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor)
		api.POST("/attendance/marks", staff, attendanceHandler.Mark)
		api.POST("/attendance/marks/bulk", staff, attendanceHandler.BulkMark)
		api.POST("/submissions/grade", staff, gradeHandler.GradeSubmission)

		api.GET("/payments", paymentHandler.List)
		api.POST("/payments", paymentHandler.Create)
		api.PATCH("/payments/:id/status", staff, paymentHandler.UpdateStatus)

		api.POST("/enrollments", enrollmentHandler.Enroll)
		api.PATCH("/enrollments/:id/status", staff, enrollmentHandler.UpdateStatus)
		api.DELETE("/enrollments/:id", middleware.RequireRoles(models.RoleAdmin), enrollmentHandler.Drop)

		api.GET("/reports/courses/:id", reportHandler.CourseReport)
		api.GET("/reports/instructors", reportHandler.InstructorReport)
		api.GET("/reports/students/:id", reportHandler.StudentReport)

		api.POST("/exports", staff, reportHandler.EnqueueExport)
		api.GET("/exports/:id", reportHandler.ExportStatus)
		api.GET("/exports/download", reportHandler.DownloadExport)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown incomplete", "error", err)
	}
}

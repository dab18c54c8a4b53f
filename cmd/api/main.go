package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hearthworks/volunteer-api/api/swagger"
	"github.com/hearthworks/volunteer-api/internal/handler"
	"github.com/hearthworks/volunteer-api/internal/middleware"
	"github.com/hearthworks/volunteer-api/internal/repository"
	"github.com/hearthworks/volunteer-api/internal/service"
	"github.com/hearthworks/volunteer-api/pkg/cache"
	"github.com/hearthworks/volunteer-api/pkg/config"
	"github.com/hearthworks/volunteer-api/pkg/database"
	"github.com/hearthworks/volunteer-api/pkg/jobs"
	"github.com/hearthworks/volunteer-api/pkg/logger"
	corsmiddleware "github.com/hearthworks/volunteer-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hearthworks/volunteer-api/pkg/middleware/requestid"
	"github.com/hearthworks/volunteer-api/pkg/storage"
)

// @title Volunteer Hub API
// @version 0.1.0
// @description Volunteer coordination and shift eligibility engine
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

	loc := time.Local
	if cfg.Scheduling.Timezone != "" {
		loaded, err := time.LoadLocation(cfg.Scheduling.Timezone)
		if err != nil {
			logr.Sugar().Fatalw("invalid scheduling timezone", "timezone", cfg.Scheduling.Timezone, "error", err)
		}
		loc = loaded
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
		}
	}

	validate := validator.New()

	volunteerRepo := repository.NewVolunteerRepository(db)
	eventRepo := repository.NewEventRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	signupRepo := repository.NewSignupRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	settingSvc := service.NewSettingService(settingRepo, logr, cfg.Scheduling.DefaultShiftHours)
	volunteerSvc := service.NewVolunteerService(volunteerRepo, settingSvc, validate, loc, logr)
	eventSvc := service.NewEventService(eventRepo, validate, logr)
	shiftSvc := service.NewShiftService(shiftRepo, signupRepo, eventRepo, validate, loc, logr)
	eligibilitySvc := service.NewEligibilityService(shiftRepo, volunteerRepo, signupRepo, settingSvc, metricsSvc, loc, logr)
	assignmentSvc := service.NewAssignmentService(shiftRepo, volunteerRepo, signupRepo, settingSvc, validate, loc, logr)
	reportSvc := service.NewReportService(signupRepo, logr)

	var exportSvc *service.ExportService
	var exportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Reports.ExportDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSigner(cfg.Reports.SigningSecret, cfg.Reports.ResultTTL)
		exportRepo := repository.NewExportRepository(db)
		exportCfg := service.ExportConfig{
			APIPrefix:       cfg.APIPrefix,
			ResultTTL:       cfg.Reports.ResultTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
		}
		// The worker needs the exporter and the exporter enqueues onto the
		// queue, so the queue handler resolves the worker lazily.
		var worker *service.ExportWorker
		exportQueue = jobs.NewQueue("exports", func(ctx context.Context, job jobs.Job) error {
			return worker.Handle(ctx, job)
		}, jobs.Config{
			Workers:    cfg.Reports.Workers,
			MaxRetries: cfg.Reports.MaxRetries,
			Logger:     logr,
		})
		exportSvc = service.NewExportService(exportRepo, exportQueue, reportSvc, store, signer, exportCfg, validate, logr)
		worker = service.NewExportWorker(exportRepo, exportSvc, cfg.Reports.MaxRetries, logr)
	}

	volunteerHandler := handler.NewVolunteerHandler(volunteerSvc)
	eventHandler := handler.NewEventHandler(eventSvc, shiftSvc, cacheSvc)
	shiftHandler := handler.NewShiftHandler(shiftSvc, eligibilitySvc, assignmentSvc)
	settingHandler := handler.NewSettingHandler(settingSvc)
	reportHandler := handler.NewReportHandler(reportSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	volunteers := api.Group("/volunteers")
	{
		volunteers.GET("", volunteerHandler.List)
		volunteers.POST("", volunteerHandler.Create)
		volunteers.GET("/:id", volunteerHandler.Get)
		volunteers.PATCH("/:id", volunteerHandler.Update)
		volunteers.DELETE("/:id", volunteerHandler.Delete)
		volunteers.PUT("/:id/availability", volunteerHandler.ReplaceAvailability)
		volunteers.POST("/:id/blackouts", volunteerHandler.AddBlackout)
		volunteers.DELETE("/:id/blackouts/:blackoutId", volunteerHandler.DeleteBlackout)
	}

	events := api.Group("/events")
	{
		events.GET("", eventHandler.List)
		events.POST("", eventHandler.Create)
		events.GET("/:id", eventHandler.Get)
		events.PATCH("/:id", eventHandler.Update)
		events.DELETE("/:id", eventHandler.Delete)
		events.GET("/:id/shifts", eventHandler.ListShifts)
		events.POST("/:id/shifts", eventHandler.CreateShift)
	}

	shifts := api.Group("/shifts")
	{
		shifts.GET("/:id", shiftHandler.Get)
		shifts.PATCH("/:id", shiftHandler.Update)
		shifts.DELETE("/:id", shiftHandler.Delete)
		shifts.POST("/:id/clone", shiftHandler.Clone)
		shifts.GET("/:id/requirements", shiftHandler.ListRequirements)
		shifts.POST("/:id/requirements", shiftHandler.AddRequirement)
		shifts.GET("/:id/eligible", shiftHandler.Eligible)
		shifts.POST("/:id/assign", shiftHandler.Assign)
		shifts.DELETE("/:id/signups/:volunteerId", shiftHandler.Unassign)
	}

	api.DELETE("/requirements/:id", shiftHandler.DeleteRequirement)

	api.GET("/settings", settingHandler.Get)
	api.PUT("/settings", settingHandler.Update)

	if cfg.Reports.Enabled {
		api.GET("/reports/hours", reportHandler.Hours)
		api.POST("/reports/exports", reportHandler.CreateExport)
		api.GET("/reports/exports/:id", reportHandler.ExportStatus)
		api.GET("/reports/export/:token", reportHandler.DownloadExport)
	}

	if exportQueue != nil {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		exportQueue.Start(ctx)
		defer exportQueue.Stop()
		exportSvc.RecoverPendingJobs(ctx)
		exportSvc.StartCleanup(ctx)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "timezone", loc.String())
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

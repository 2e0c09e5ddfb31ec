package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/edulegit-bridge/api/swagger"
	"github.com/noah-isme/edulegit-bridge/internal/client"
	"github.com/noah-isme/edulegit-bridge/internal/handler"
	"github.com/noah-isme/edulegit-bridge/internal/middleware"
	"github.com/noah-isme/edulegit-bridge/internal/repository"
	"github.com/noah-isme/edulegit-bridge/internal/service"
	"github.com/noah-isme/edulegit-bridge/pkg/cache"
	"github.com/noah-isme/edulegit-bridge/pkg/config"
	"github.com/noah-isme/edulegit-bridge/pkg/database"
	"github.com/noah-isme/edulegit-bridge/pkg/logger"
	corsmiddleware "github.com/noah-isme/edulegit-bridge/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/edulegit-bridge/pkg/middleware/requestid"
	"github.com/noah-isme/edulegit-bridge/pkg/signature"
)

// @title EduLegit Bridge API
// @version 0.1.0
// @description Synchronizes host-platform submissions with the EduLegit document analysis service
// @BasePath /
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
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var kv *cache.KV
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
		kv = cache.NewKV(redisClient)
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	submissions := repository.NewSubmissionRepository(db)
	pluginConfigs := repository.NewPluginConfigRepository(db)

	edulegit := client.New(cfg.EduLegit, logr, metrics)
	settings := service.NewSettingsService(pluginConfigs, cfg.Checks, logr)
	syncSvc := service.NewSyncService(edulegit, submissions, settings, kv, validate, logr, service.SyncServiceConfig{
		CallbackURL:     cfg.EduLegit.CallbackURL,
		PlatformVersion: cfg.EduLegit.PlatformVersion,
		PluginVersion:   cfg.EduLegit.PluginVersion,
		ContextCacheTTL: cfg.EduLegit.ContextCacheTTL,
	})
	webhookSvc := service.NewWebhookService(submissions, logr)
	exportSvc := service.NewExportService(submissions, nil, nil, logr)

	verifier := signature.NewVerifier(cfg.EduLegit.APIToken)
	webhookHandler := handler.NewWebhookHandler(verifier, webhookSvc, metrics, logr)
	submissionHandler := handler.NewSubmissionHandler(syncSvc, exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.POST("/callback", webhookHandler.Handle)

	api := r.Group("/api/v1")
	api.Use(middleware.JWT(cfg.Auth.Secret))
	{
		api.POST("/submissions/:ref/initiate", submissionHandler.Initiate)
		api.GET("/submissions/:ref", submissionHandler.Get)
		api.DELETE("/submissions/:ref", submissionHandler.DeleteSubmission)
		api.GET("/submissions/:ref/report.pdf", submissionHandler.Report)
		api.DELETE("/assignments/:ref", submissionHandler.DeleteAssignment)
		api.GET("/assignments/:ref/submissions.csv", submissionHandler.AssignmentCSV)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("bridge starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"logpulse/internal/cache"
	"logpulse/internal/config"
	logs_core "logpulse/internal/features/logs/core"
	logs_ingestion "logpulse/internal/features/logs/ingestion"
	logs_querying "logpulse/internal/features/logs/querying"
	logs_scheduling "logpulse/internal/features/logs/scheduling"
	system_healthcheck "logpulse/internal/features/system/healthcheck"
	cache_utils "logpulse/internal/util/cache"
	env_utils "logpulse/internal/util/env"
	"logpulse/internal/util/logger"
	_ "logpulse/swagger" // swagger docs

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title LogPulse API
// @version 1.0
// @description Log ingestion and error distribution service
// @termsOfService http://swagger.io/terms/

// @host localhost:8080
// @BasePath /
// @schemes http
func main() {
	log := logger.GetLogger()
	config.StartListeningForShutdownSignal()

	testCacheConnection(log)
	runMigrations(log)
	setUpDependencies()

	go generateSwaggerDocs(log)

	gin.SetMode(gin.ReleaseMode)
	ginApp := gin.Default()

	ginApp.Use(gzip.Gzip(gzip.DefaultCompression))

	enableCors(ginApp)
	setUpRoutes(ginApp)
	runBackgroundTasks(log)

	startServerWithGracefulShutdown(log, ginApp)
}

func startServerWithGracefulShutdown(log *slog.Logger, app *gin.Engine) {
	host := ""
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		// for dev we use localhost to avoid firewall
		// requests on each run for Windows
		host = "127.0.0.1"
	}

	srv := &http.Server{
		Addr:    host + ":" + config.GetEnv().ServerPort,
		Handler: app,
	}

	go func() {
		log.Info("Server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen:", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	// an ingestion cycle is not cancelled by its request, so give it time to finish
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown:", "error", err)
	}

	logs_scheduling.GetIngestionSchedulerBackgroundService().StopWorkers()
	logs_ingestion.GetProbeWorkerPool().StopWorkers()

	log.Info("Server gracefully stopped")
}

func setUpRoutes(r *gin.Engine) {
	root := r.Group("/")

	root.GET("/docs/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	logs_ingestion.GetIngestionController().RegisterRoutes(root)
	logs_querying.GetLogQueryController().RegisterRoutes(root)
	system_healthcheck.GetHealthcheckController().RegisterRoutes(root)
}

func setUpDependencies() {
	logs_querying.SetupDependencies()
}

func runBackgroundTasks(log *slog.Logger) {
	log.Info("Preparing to run background tasks...")

	logs_ingestion.GetProbeWorkerPool().StartWorkers()
	logs_scheduling.GetIngestionSchedulerBackgroundService().StartWorkers()

	log.Info("Background tasks started successfully")
}

// Keep in mind: docs appear after second launch, because Swagger
// is generated into Go files. So if we changed files, we generate
// new docs, but still need to restart the server to see them.
func generateSwaggerDocs(log *slog.Logger) {
	if config.GetEnv().EnvMode == env_utils.EnvModeProduction {
		return
	}

	currentDir, err := os.Getwd()
	if err != nil {
		log.Error("Failed to get current directory", "error", err)
		return
	}

	cmd := exec.Command("swag", "init", "-d", currentDir, "-g", "cmd/main.go", "-o", "swagger")

	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Warn("Failed to generate Swagger docs", "error", err, "output", string(output))
		return
	}

	log.Info("Swagger documentation generated successfully")
}

func testCacheConnection(log *slog.Logger) {
	log.Info("Testing cache connection...")

	if err := cache_utils.TestCacheConnection(cache.GetCache()); err != nil {
		log.Error("Failed to connect to cache", "error", err)
		os.Exit(1)
	}

	log.Info("Cache connection test successful")
}

func runMigrations(log *slog.Logger) {
	log.Info("Running database migrations...")

	if err := logs_core.GetLogRecordRepository().EnsureSchema(); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	log.Info("Database migrations completed successfully")
}

func enableCors(ginApp *gin.Engine) {
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		ginApp.Use(cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{
				"Origin",
				"Content-Length",
				"Content-Type",
				"Accept",
				"Accept-Encoding",
				"Access-Control-Request-Method",
				"Access-Control-Request-Headers",
			},
		}))
	}
}

// @title           Chat Stats API
// @version         1.0
// @description     카카오톡 대화 내보내기 CSV 통계 API

// @host      localhost:5000
// @BasePath  /

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/skylarnam/KakaoChatParserV2/internal/client"
	"github.com/skylarnam/KakaoChatParserV2/internal/config"
	"github.com/skylarnam/KakaoChatParserV2/internal/database"
	"github.com/skylarnam/KakaoChatParserV2/internal/job"
	"github.com/skylarnam/KakaoChatParserV2/internal/metrics"
	"github.com/skylarnam/KakaoChatParserV2/internal/repository"
	"github.com/skylarnam/KakaoChatParserV2/internal/router"
	"github.com/skylarnam/KakaoChatParserV2/internal/service"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the yaml config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Server.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting Chat Stats Service",
		zap.Int("port", cfg.Server.Port),
		zap.String("env", cfg.Server.Env),
		zap.String("db_driver", cfg.Database.Driver),
	)

	db, err := database.New(database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.AutoMigrateWithRetry(db, logger, 3); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize metrics
	m := metrics.NewWithLogger(logger)
	if err := database.RegisterMetricsCallbacks(db, m); err != nil {
		logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
	}
	stopDBStats := database.StartDBStatsCollector(db, m, 15*time.Second)
	defer close(stopDBStats)

	// Optional collaborators stay nil interfaces when not configured
	var (
		redisClient *redis.Client
		publisher   service.DatasetEventPublisher
		archiver    client.Archiver
	)

	if cfg.Redis.URL != "" {
		redisClient, err = database.InitRedis(context.Background(), cfg.Redis.URL, logger)
		if err != nil {
			logger.Warn("Failed to connect to Redis, dataset events disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			publisher = database.NewDatasetPublisher(redisClient, cfg.Redis.Channel)
		}
	} else {
		logger.Info("Redis not configured, dataset events disabled")
	}

	if cfg.S3.Enabled() {
		s3Archiver, err := client.NewS3Archiver(context.Background(), cfg.S3)
		if err != nil {
			logger.Warn("Failed to initialize S3 client, upload archiving disabled", zap.Error(err))
		} else {
			archiver = s3Archiver
			logger.Info("S3 client initialized",
				zap.String("bucket", cfg.S3.Bucket),
				zap.String("region", cfg.S3.Region),
			)
		}
	} else {
		logger.Info("S3 configuration incomplete, upload archiving disabled")
	}

	r := router.Setup(router.Config{
		DB:          db,
		Redis:       redisClient,
		Logger:      logger,
		Metrics:     m,
		Archiver:    archiver,
		Publisher:   publisher,
		Upload:      cfg.Upload,
		Stats:       cfg.Stats,
		CORSOrigins: cfg.CORS.AllowedOrigins,
	})

	// Dataset gauges
	messageRepo := repository.NewMessageRepository(db)
	snapshotJob := job.NewSnapshotJob(messageRepo, service.NewMembershipService(messageRepo, logger), m, logger)
	snapshotJob.Run()
	scheduler, err := job.Schedule(cfg.Jobs.SnapshotSchedule, snapshotJob, logger)
	if err != nil {
		logger.Warn("Failed to schedule snapshot job", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("Chat Stats Service started successfully",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.Server.Port)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

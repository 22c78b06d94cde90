package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/skylarnam/KakaoChatParserV2/docs" // Swagger docs import

	"github.com/skylarnam/KakaoChatParserV2/internal/client"
	"github.com/skylarnam/KakaoChatParserV2/internal/config"
	"github.com/skylarnam/KakaoChatParserV2/internal/handler"
	"github.com/skylarnam/KakaoChatParserV2/internal/metrics"
	"github.com/skylarnam/KakaoChatParserV2/internal/middleware"
	"github.com/skylarnam/KakaoChatParserV2/internal/repository"
	"github.com/skylarnam/KakaoChatParserV2/internal/service"
)

// Config holds router configuration
type Config struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Archiver    client.Archiver
	Publisher   service.DatasetEventPublisher
	Upload      config.UploadConfig
	Stats       config.StatsConfig
	CORSOrigins string
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = cfg.Upload.MaxSizeBytes

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	// Prometheus metrics endpoint
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Initialize repositories
	messageRepo := repository.NewMessageRepository(cfg.DB)

	// Initialize services
	membershipService := service.NewMembershipService(messageRepo, cfg.Logger)
	statsService := service.NewStatsService(messageRepo, membershipService, cfg.Stats, cfg.Logger)
	importService := service.NewImportService(messageRepo, cfg.Archiver, cfg.Publisher, cfg.Metrics, cfg.Upload, cfg.Logger)

	// Initialize handlers
	statsHandler := handler.NewStatsHandler(statsService, cfg.Logger)
	uploadHandler := handler.NewUploadHandler(importService, cfg.Upload, cfg.Logger)

	r.POST("/upload", uploadHandler.Upload)

	api := r.Group("/api")
	{
		api.GET("/monthly_stats", statsHandler.MonthlyStats)
		api.GET("/inactive_users/:days", statsHandler.InactiveUsers)
		api.GET("/inactive_users_by_date", statsHandler.InactiveUsersByDate)
		api.GET("/chat_trend", statsHandler.ChatTrend)
		api.GET("/users", statsHandler.Users)
		api.GET("/user_stats/*username", statsHandler.UserStats)
		api.GET("/active_user_stats/:days", statsHandler.ActiveUserStats)
		api.GET("/active_user_stats_by_date", statsHandler.ActiveUserStatsByDate)
	}

	return r
}

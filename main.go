package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/repairhub/repairhub-api/config"
	"github.com/repairhub/repairhub-api/middleware"
	"github.com/repairhub/repairhub-api/routes"
	"github.com/repairhub/repairhub-api/services"
	"github.com/repairhub/repairhub-api/utils"
)

func main() {
	bootstrap, _ := zap.NewProduction()
	config.SetLogger(bootstrap)

	cfg, err := config.Load()
	if err != nil {
		bootstrap.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, err := config.NewLogger(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		bootstrap.Fatal("Failed to build logger", zap.Error(err))
	}
	config.SetLogger(logger)
	defer logger.Sync() //nolint:errcheck

	logger.Info("Starting RepairHub API server...", zap.String("env", cfg.GoEnv))

	db, err := config.ConnectDatabase(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := config.Migrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migration completed successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	utils.UploadDir = cfg.UploadDir
	media, err := services.NewMediaStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize media storage", zap.Error(err))
	}

	cache, err := services.NewCache(cfg.RedisURL, "repairhub")
	if err != nil {
		logger.Fatal("Failed to initialize cache", zap.Error(err))
	}
	if redisCache, ok := cache.(*services.RedisCache); ok {
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("Redis is unreachable, dashboard statistics will not be cached", zap.Error(err))
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.New(routes.Deps{
		DB:     db,
		Config: cfg,
		Media:  media,
		Cache:  cache,
		Auth:   middleware.EnsureValidToken(cfg),
		Logger: logger,
	})

	addr := ":" + cfg.Port
	logger.Info("Server is running", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

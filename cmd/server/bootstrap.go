package main

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/codehive/server/internal/config"
	"github.com/codehive/server/internal/models"
	"github.com/codehive/server/internal/realtime"
	"github.com/codehive/server/internal/services"
	"github.com/codehive/server/internal/utils"
	"github.com/codehive/server/pkg/logger"
)

// appServices holds all initialized services needed by the application.
type appServices struct {
	cfg          *config.Config
	hub          *realtime.Hub
	presence     realtime.Registry
	bridge       *realtime.Bridge
	ragService   *services.RAGService
	taskQueue    services.TaskQueue
	worker       *services.Worker
	tokenCleanup *services.TokenCleanupScheduler
	redisClient  *redis.Client
}

// bootstrap initializes all application dependencies: database, realtime
// plumbing, background workers, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()
	hub := realtime.NewHub()

	// Presence: Redis when enabled so every instance sees the same rosters,
	// otherwise in-process memory.
	var presence realtime.Registry
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		reg, err := realtime.NewRedisRegistry(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, using in-memory presence")
			presence = realtime.NewMemoryRegistry()
		} else {
			presence = reg
			redisClient = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
		}
	} else {
		presence = realtime.NewMemoryRegistry()
	}

	alertService := services.NewAlertService(db)
	bridge := realtime.NewBridge(hub, alertService)

	ragService := services.NewRAGService(db, &cfg.OpenAI, redisClient)
	indexProcessor := func(ctx context.Context, task *services.IndexTask) error {
		return ragService.BuildIndex(ctx, task.ProjectID)
	}

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(indexProcessor)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.NewWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(indexProcessor)
			worker.Start()
		}
	}

	// Nightly purge of expired refresh tokens
	tokenCleanup := services.NewTokenCleanupScheduler(services.NewAuthService(db, &cfg.JWT))
	if err := tokenCleanup.Start(); err != nil {
		logger.Warn().Err(err).Msg("Failed to start token cleanup scheduler")
	}

	return &appServices{
		cfg:          cfg,
		hub:          hub,
		presence:     presence,
		bridge:       bridge,
		ragService:   ragService,
		taskQueue:    taskQueue,
		worker:       worker,
		tokenCleanup: tokenCleanup,
		redisClient:  redisClient,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.tokenCleanup.Stop()

	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	if reg, ok := s.presence.(*realtime.RedisRegistry); ok {
		reg.Close()
	}
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	logger.Info().Msg("All services stopped")
}

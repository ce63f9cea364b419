package main

// @title Rock Radar API
// @version 1.0.0
// @description Ранжирование скалолазных районов и маршрутов.
// @description
// @description Основные возможности:
// @description - Дерево районов с агрегированной статистикой
// @description - Фильтр маршрутов и модели ранжирования raw, logarithmic, logistic
// @description - Сортировка уровней по выбранным ключам
// @description - Загрузка регионов источника во время работы

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/rock-radar/docs"
	"github.com/rock-radar/internal/config"
	httpDelivery "github.com/rock-radar/internal/delivery/http"
	"github.com/rock-radar/internal/delivery/http/handler"
	"github.com/rock-radar/internal/domain"
	"github.com/rock-radar/internal/domain/repository"
	"github.com/rock-radar/internal/pkg/logger"
	"github.com/rock-radar/internal/repository/cache"
	"github.com/rock-radar/internal/repository/file"
	"github.com/rock-radar/internal/repository/postgres"
	redisRepo "github.com/rock-radar/internal/repository/redis"
	"github.com/rock-radar/internal/usecase"
	"github.com/rock-radar/internal/worker"
	"github.com/rock-radar/internal/worker/region"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Rock Radar")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("source", cfg.Radar.Source),
		zap.Strings("regions", cfg.Radar.Regions),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	checks := make(map[string]httpDelivery.HealthChecker)

	// 3. Route source: JSON files or PostgreSQL
	var routeRepo repository.RouteRepository
	switch cfg.Radar.Source {
	case config.SourcePostgres:
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()
		if err := db.Migrate(ctx); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
		routeRepo = postgres.NewRouteRepository(db, log)
		checks["postgres"] = db
		log.Info("PostgreSQL connected")
	default:
		routeRepo = file.NewRouteRepository(cfg.Radar.DataDir, log)
		log.Info("Reading regions from files", zap.String("dir", cfg.Radar.DataDir))
	}

	// 4. Redis is optional: without it views are not cached and async import is disabled
	var (
		cacheRepo   repository.CacheRepository
		redisClient *cache.Redis
	)
	redisClient, err = cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Warn("Redis unavailable, view cache disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		cacheRepo = cache.NewCacheRepository(redisClient)
		checks["redis"] = redisClient
		log.Info("Redis connected")
	}

	var streamRepo repository.StreamRepository
	if redisClient != nil && cfg.Worker.Enabled {
		streamClient, err := cache.NewRedisStreams(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis Streams", zap.Error(err))
		}
		defer streamClient.Close()
		streamRepo = redisRepo.NewStreamRepository(streamClient, log,
			redisRepo.WithBlockTimeout(cfg.Worker.StreamReadTimeout))
	}

	// 5. Build the tree
	builder := usecase.NewTreeBuilder(routeRepo, cfg.Radar.BuildWorkers, log)
	tree, report, err := builder.BuildRegions(ctx, cfg.Radar.RootName, cfg.Radar.Regions)
	if err != nil {
		log.Fatal("Failed to build tree", zap.Error(err))
	}
	log.Info("Tree built",
		zap.Int("areas", tree.NumAreas()),
		zap.Int("routes", tree.NumRoutes()),
		zap.Int("skipped", report.Skipped))

	stats := domain.NewStatsContext()
	if err := stats.Model.SetModel(cfg.Radar.DefaultModel); err != nil {
		log.Fatal("Invalid RADAR_DEFAULT_MODEL", zap.Error(err))
	}

	// 6. Initialize use cases
	radarUC := usecase.NewRadarUseCase(tree, stats, cacheRepo, cfg.Cache.ViewCacheTTL, log)
	regionUC := usecase.NewRegionUseCase(builder, radarUC, streamRepo, log)
	regionUC.MarkLoaded(loadedRegions(ctx, builder, cfg.Radar.Regions, log)...)

	log.Info("Use cases initialized")

	// 7. Workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var workerManager *worker.WorkerManager
	if streamRepo != nil {
		workerManager = worker.NewWorkerManager(log)
		workerManager.Register(region.NewImportWorker(
			streamRepo,
			regionUC,
			cfg.Worker.ConsumerGroup,
			cfg.Worker.MaxRetries,
			log,
		))
		if err := workerManager.Start(workerCtx); err != nil {
			log.Fatal("Failed to start workers", zap.Error(err))
		}
	}

	// 8. HTTP server
	server := httpDelivery.NewServer(
		cfg,
		log,
		handler.NewRadarHandler(radarUC, log),
		handler.NewRegionHandler(regionUC, log),
		checks,
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.Bool("worker", workerManager != nil),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if workerManager != nil {
		stopWorkers()
		if err := workerManager.Stop(); err != nil {
			log.Error("Error stopping workers", zap.Error(err))
		}
	}

	log.Info("Server stopped successfully")
}

// loadedRegions - регионы, вошедшие в дерево при старте; пустой список означает все
func loadedRegions(ctx context.Context, builder *usecase.TreeBuilder, configured []string, log *zap.Logger) []string {
	if len(configured) > 0 {
		return configured
	}
	regions, err := builder.Regions(ctx)
	if err != nil {
		log.Warn("Failed to list regions", zap.Error(err))
		return nil
	}
	names := make([]string, 0, len(regions))
	for _, r := range regions {
		names = append(names, r.Name)
	}
	return names
}

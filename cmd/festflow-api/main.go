package main

import (
	"context"
	"database/sql"
	"log"
	"os/signal"
	"syscall"
	"time"

	"festflow/common/database"
	logpkg "festflow/common/logger"
	rediscommon "festflow/common/redis"
	"festflow/internal/broadcast"
	"festflow/internal/config"
	httpapi "festflow/internal/http"
	"festflow/internal/repository"
	"festflow/internal/service"
	"festflow/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "festflow-api")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 存储：优先 PostgreSQL，未启用或连接失败时退回内存（仅用于开发联调）
	var db *sql.DB
	var st repository.Store
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			logger.Info("DB enabled for festflow-api", zap.String("host", cfg.Database.Host))
		} else {
			logger.Warn("DB enabled but connection failed, falling back to memory store", zap.Error(err))
		}
	}
	if db != nil {
		schemaCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := repository.CreateSchema(schemaCtx, db)
		cancel()
		if err != nil {
			logger.Fatal("Failed to apply schema", zap.Error(err))
		}
		st = repository.NewPostgresStore(db)
	} else {
		st = repository.NewMemoryStore()
	}

	// Redis：占用缓存 + 报名事件流；不可用时二者均关闭
	var redisClient *redis.Client
	var kv store.KV
	var publisher broadcast.Publisher = broadcast.NopPublisher{}
	if cfg.RedisEnabled {
		if client, err := rediscommon.Connect(context.Background(), &cfg.Redis); err == nil {
			redisClient = client
			kv = store.NewRedisKV(client)
			publisher = broadcast.NewStreamPublisher(client, cfg.Registration.Stream)
			logger.Info("Redis enabled for festflow-api",
				zap.String("addr", cfg.Redis.Addr),
				zap.String("stream", cfg.Registration.Stream),
			)
		} else {
			logger.Warn("Redis unavailable, cache and registration events disabled", zap.Error(err))
		}
	}

	ledger := service.NewOccupancyLedger(logger)
	reservations := service.NewReservationManager(ledger, logger)
	allocator := service.NewRoomAllocator(reservations, cfg.Allocation.CandidateLimit, logger)

	registration := service.NewRegistrationService(st, allocator, reservations, publisher, kv, cfg.OccupancyCacheTTL, logger)
	accommodation := service.NewAccommodationService(st, allocator, reservations, kv, cfg.OccupancyCacheTTL, logger)
	catalog := service.NewCatalogService(st, logger)

	router := httpapi.NewRouter(logger)
	router.RegisterHealthRoutes()
	router.RegisterRegistrationRoutes(httpapi.NewRegistrationHandler(registration, accommodation, logger))
	router.RegisterRoomRoutes(httpapi.NewRoomHandler(accommodation, service.NewRosterExporter(st), logger))
	router.RegisterCatalogRoutes(httpapi.NewCatalogHandler(catalog, logger))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := service.NewServer(cfg.HTTP.Addr, router, logger)
	if err := srv.Run(ctx); err != nil {
		logger.Error("HTTP server stopped", zap.Error(err))
	}

	if redisClient != nil {
		_ = rediscommon.Close(redisClient)
	}
	if db != nil {
		_ = database.Close(db)
	}
	logger.Info("Service stopped")
}

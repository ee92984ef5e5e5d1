package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/MdAmzadAli/skillArena/internal/config"
	"github.com/MdAmzadAli/skillArena/internal/db"
	"github.com/MdAmzadAli/skillArena/internal/handler"
	"github.com/MdAmzadAli/skillArena/internal/middleware"
	"github.com/MdAmzadAli/skillArena/internal/router"
	"github.com/MdAmzadAli/skillArena/internal/service"
	"github.com/MdAmzadAli/skillArena/internal/storage"
	"github.com/MdAmzadAli/skillArena/internal/store"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		middleware.InitLogger("info", "skillarena-api")
		middleware.Logger.Fatal().Err(err).Msg("invalid configuration")
	}

	middleware.InitLogger(cfg.LogLevel, "skillarena-api")
	log := middleware.Logger

	ctx := context.Background()

	// Persistence backend, selected once at startup.
	var st store.Store
	var pool *pgxpool.Pool
	switch cfg.StoreBackend {
	case "postgres":
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		st = store.NewPostgresStore(pool)
	case "memory":
		log.Warn().Msg("using in-memory store; data is lost on restart")
		st = store.NewMemoryStore()
	}
	defer st.Close()

	// Object storage for clip binaries.
	var objects storage.ObjectStorage
	switch cfg.StorageBackend {
	case "minio":
		objects, err = storage.NewMinioStorage(ctx, cfg.Minio)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to object storage")
		}
	case "disk":
		objects, err = storage.NewDiskStorage(cfg.DataDir)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to prepare upload directory")
		}
	}

	cache := service.NewCacheService(cfg.RedisURL, log)
	defer cache.Close()

	handler.InitMetrics(pool)

	userSvc := service.NewUserService(st, cfg.SessionSecret)
	videoSvc := service.NewVideoService(st, objects, cache, log)
	voteSvc := service.NewVoteService(st, cache, log)
	scoreSvc := service.NewScoreService(st)

	app := fiber.New(fiber.Config{
		AppName:      "skillArena API",
		ServerHeader: "skillArena",
		BodyLimit:    52 << 20, // uploads cap at 50MB plus multipart overhead
	})

	router.Setup(app, &router.Handlers{
		Auth:        handler.NewAuthHandler(userSvc, cfg.Environment != "development"),
		Video:       handler.NewVideoHandler(videoSvc, cache),
		Vote:        handler.NewVoteHandler(voteSvc),
		Leaderboard: handler.NewLeaderboardHandler(scoreSvc, cache),
		Health:      handler.NewHealthHandler(pool, cache.Client()),
	}, cfg.CORSOrigins, cfg.SessionSecret)

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Environment).
		Str("store", cfg.StoreBackend).
		Str("storage", cfg.StorageBackend).
		Msg("skillArena backend starting")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

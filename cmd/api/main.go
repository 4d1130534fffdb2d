// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Yatra catalog HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis when configured (orphan ledger).
//  5. Run database migrations (idempotent).
//  6. Open the media store and seed default assets.
//  7. Wire the place controller and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/yatra/internal/api"
	"github.com/taibuivan/yatra/internal/core/lifecycle"
	"github.com/taibuivan/yatra/internal/core/place"
	"github.com/taibuivan/yatra/internal/platform/config"
	"github.com/taibuivan/yatra/internal/platform/constants"
	"github.com/taibuivan/yatra/internal/platform/migration"
	pgstore "github.com/taibuivan/yatra/internal/platform/postgres"
	redisstore "github.com/taibuivan/yatra/internal/platform/redis"
	"github.com/taibuivan/yatra/internal/platform/sec"
	"github.com/taibuivan/yatra/internal/platform/storage"
	"github.com/taibuivan/yatra/pkg/mediaurl"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(false)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(true)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("asset_backend", cfg.AssetBackend),
	)

	// Root context lives until shutdown; startup steps get their own deadline.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, pgstore.APIPoolOptions(), log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var rdb *goredis.Client
	var ledger storage.Ledger = storage.NewLogLedger(log)
	if cfg.RedisURL != "" {
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		ledger = storage.NewRedisLedger(rdb, log)
	} else {
		log.Warn("redis_not_configured", slog.String("ledger", "log"))
	}

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, cfg.Debug, log), "run migrations")

	// ── 6. Media Store ────────────────────────────────────────────────────
	media := mediaurl.New(cfg.PublicBaseURL, cfg.AssetSubdir)
	store, err := storage.Open(startupCtx, cfg.StorageOptions(), media, log)
	must(log, err, "open media store")

	var mediaHandler http.Handler
	if fs, ok := store.(*storage.FileSystem); ok {
		_, err := fs.SeedDefaults(cfg.AssetSeedDir)
		must(log, err, "seed default assets")
		mediaHandler = api.NewMediaHandler(fs.Dir())
	}

	// ── 7. Auth ───────────────────────────────────────────────────────────
	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize token verifier")

	// ── 8. Health handlers (wired with real dependency checkers) ──────────
	dependencies := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckStorage: func(ctx context.Context) error {
			_, err := store.Exists(ctx, media.Reference(".probe"))
			return err
		},
	}
	if rdb != nil {
		dependencies.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}
	}
	liveness, readiness := api.NewHealthHandlers(dependencies, log)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	assets := lifecycle.NewManager(store, ledger, log)
	placeRepository := place.NewPostgresRepository(pool)
	placeService := place.NewService(placeRepository, assets, media, storage.ImagePolicy(cfg.ImageMaxBytes), log)
	placeHandler := place.NewHandler(placeService, cfg.ImageMaxBytes)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Place:       placeHandler,
		Media:       mediaHandler,
		MediaPrefix: media.Subdir(),
	}

	server := api.NewServer(rootCtx, cfg, log, verifier, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// newLogger builds the JSON logger every entry of this process goes through.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
	slog.SetDefault(log)
	return log
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}

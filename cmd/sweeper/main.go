// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command sweeper removes orphaned media files in a single pass and exits.
//
// It drains the orphan ledger written by the API, then scans the media store
// for files older than ORPHAN_GRACE_PERIOD that no place row references.
// Seeded default assets are never removed. Run it from cron or a scheduled job.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/yatra/internal/core/lifecycle"
	"github.com/taibuivan/yatra/internal/core/place"
	"github.com/taibuivan/yatra/internal/platform/config"
	"github.com/taibuivan/yatra/internal/platform/constants"
	pgstore "github.com/taibuivan/yatra/internal/platform/postgres"
	redisstore "github.com/taibuivan/yatra/internal/platform/redis"
	"github.com/taibuivan/yatra/internal/platform/storage"
	"github.com/taibuivan/yatra/pkg/mediaurl"
)

func main() {
	log := newLogger(false)

	cfg, err := config.LoadSweeper()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(true)
	}

	// A signal cancels the sweep between files; partial progress is kept.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, pgstore.BatchPoolOptions(), log)
	must(log, err, "connect to postgres")
	defer pool.Close()

	var ledger storage.Ledger = storage.NewLogLedger(log)
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer rdb.Close()
		ledger = storage.NewRedisLedger(rdb, log)
	}

	media := mediaurl.New(cfg.PublicBaseURL, cfg.AssetSubdir)
	store, err := storage.Open(ctx, cfg.StorageOptions(), media, log)
	must(log, err, "open media store")

	protected, err := storage.SeedNames(cfg.AssetSeedDir)
	must(log, err, "list seeded assets")

	sweeper := lifecycle.NewSweeper(store, ledger, place.NewPostgresRepository(pool), media, lifecycle.SweepConfig{
		GracePeriod: cfg.OrphanGrace,
		Protected:   protected,
	}, log)

	report, err := sweeper.Run(ctx)
	if err != nil {
		log.Error("asset_sweep_failed",
			slog.Any("error", err),
			slog.Int("removed", report.Removed),
		)
		os.Exit(1)
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName), slog.String("job", "sweeper"))
	slog.SetDefault(log)
	return log
}

func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}

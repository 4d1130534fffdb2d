// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/yatra/internal/platform/constants"
)

// OrphanLedgerKey is the Redis set holding references awaiting cleanup.
const OrphanLedgerKey = constants.RedisPrefixAssets + "orphans"

// Ledger remembers stored files whose removal failed so a sweep can retry later.
type Ledger interface {
	// Record notes that reference may be an orphan.
	Record(ctx context.Context, reference, reason string) error
	// Drain pops up to max recorded references.
	Drain(ctx context.Context, max int) ([]string, error)
}

// RedisLedger keeps orphan candidates in a Redis set.
type RedisLedger struct {
	client *redis.Client
	key    string
	logger *slog.Logger
}

// NewRedisLedger creates a [RedisLedger] on [OrphanLedgerKey].
func NewRedisLedger(client *redis.Client, logger *slog.Logger) *RedisLedger {
	return &RedisLedger{client: client, key: OrphanLedgerKey, logger: logger}
}

// Record implements [Ledger].
func (ledger *RedisLedger) Record(ctx context.Context, reference, reason string) error {
	if err := ledger.client.SAdd(ctx, ledger.key, reference).Err(); err != nil {
		return fmt.Errorf("storage: failed to record orphan: %w", err)
	}
	ledger.logger.WarnContext(ctx, "asset_orphan_recorded",
		slog.String("reference", reference),
		slog.String("reason", reason),
	)
	return nil
}

// Drain implements [Ledger].
func (ledger *RedisLedger) Drain(ctx context.Context, max int) ([]string, error) {
	references, err := ledger.client.SPopN(ctx, ledger.key, int64(max)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("storage: failed to drain orphans: %w", err)
	}
	return references, nil
}

// LogLedger only logs orphan candidates. It is used when Redis is not configured;
// the store scan of the sweeper still finds those files later.
type LogLedger struct {
	logger *slog.Logger
}

// NewLogLedger creates a [LogLedger].
func NewLogLedger(logger *slog.Logger) *LogLedger {
	return &LogLedger{logger: logger}
}

// Record implements [Ledger].
func (ledger *LogLedger) Record(ctx context.Context, reference, reason string) error {
	ledger.logger.WarnContext(ctx, "asset_orphan_recorded",
		slog.String("reference", reference),
		slog.String("reason", reason),
	)
	return nil
}

// Drain implements [Ledger].
func (ledger *LogLedger) Drain(context.Context, int) ([]string, error) {
	return nil, nil
}

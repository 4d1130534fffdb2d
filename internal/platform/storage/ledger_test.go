// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yatra/internal/platform/storage"
	"github.com/taibuivan/yatra/internal/platform/storage/storagetest"
)

/*
TestRedisLedger_RecordDrain stores orphan candidates once and drains them.
*/
func TestRedisLedger_RecordDrain(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	ledger := storage.NewRedisLedger(client, storagetest.Logger())

	require.NoError(t, ledger.Record(ctx, "uploads/a.png", "rollback_failed"))
	require.NoError(t, ledger.Record(ctx, "uploads/b.png", "cleanup_failed"))
	require.NoError(t, ledger.Record(ctx, "uploads/a.png", "cleanup_failed"))

	members, err := mr.Members(storage.OrphanLedgerKey)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	drained, err := ledger.Drain(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"uploads/a.png", "uploads/b.png"}, drained)

	// Empty set drains to nothing.
	drained, err = ledger.Drain(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, drained)
}

/*
TestLogLedger never fails and never yields entries.
*/
func TestLogLedger(t *testing.T) {
	ledger := storage.NewLogLedger(storagetest.Logger())

	assert.NoError(t, ledger.Record(context.Background(), "uploads/a.png", "cleanup_failed"))

	drained, err := ledger.Drain(context.Background(), 5)
	assert.NoError(t, err)
	assert.Empty(t, drained)
}

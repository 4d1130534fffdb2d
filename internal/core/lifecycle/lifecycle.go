// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package lifecycle keeps stored files and the rows that reference them in lockstep.

[Manager] is the only component that touches both the [storage.Store] and a
row write in the same operation. Every compound operation ends with the pair
(file, row) either both present or both absent:

  - CreateWithAsset: put file → insert row → on insert failure remove the file.
  - ReplaceAsset:    put new → update row → only then remove the old file.
  - DeleteAsset:     best-effort removal; the caller owns the row deletion.

Put failures abort the operation. Cleanup failures never fail a request: they
are logged as storage_cleanup_failed and recorded in the orphan [storage.Ledger]
for the sweeper.
*/
package lifecycle

import (
	"context"
	"log/slog"

	"github.com/taibuivan/yatra/internal/platform/apperr"
	"github.com/taibuivan/yatra/internal/platform/storage"
)

// Reasons recorded in the orphan ledger.
const (
	reasonRollbackFailed = "rollback_failed"
	reasonCleanupFailed  = "cleanup_failed"
	reasonSweepDeferred  = "sweep_deferred"
)

// WriteFunc persists a row pointing at reference (nil means no media).
type WriteFunc func(ctx context.Context, reference *string) error

// Manager coordinates [storage.Store] writes with row mutations.
type Manager struct {
	store  storage.Store
	ledger storage.Ledger
	logger *slog.Logger
}

// NewManager creates a [Manager].
func NewManager(store storage.Store, ledger storage.Ledger, logger *slog.Logger) *Manager {
	return &Manager{store: store, ledger: ledger, logger: logger}
}

// CreateWithAsset stores file (when present) and runs insert with its reference.
//
// If insert fails the freshly written file is removed synchronously before the
// insert error is returned, so a failed insert never leaves an orphan behind.
func (manager *Manager) CreateWithAsset(ctx context.Context, file *storage.Upload, policy storage.Policy, insert WriteFunc) (*string, error) {
	var reference *string

	if file != nil {
		stored, err := manager.store.Put(ctx, *file, policy)
		if err != nil {
			return nil, err
		}
		reference = &stored
	}

	if err := insert(ctx, reference); err != nil {
		if reference != nil {
			manager.rollback(ctx, *reference)
		}
		return nil, err
	}

	return reference, nil
}

// ReplaceAsset swaps the media of an existing row.
//
// Without a file, update runs with previous unchanged. With a file, the new file
// is written first, update commits the new reference, and only then is previous
// removed. A failed update removes the new file and keeps previous in place.
// The returned reference is the one the row holds afterwards.
func (manager *Manager) ReplaceAsset(ctx context.Context, previous *string, file *storage.Upload, policy storage.Policy, update WriteFunc) (*string, error) {
	if file == nil {
		if err := update(ctx, previous); err != nil {
			return previous, err
		}
		return previous, nil
	}

	stored, err := manager.store.Put(ctx, *file, policy)
	if err != nil {
		return previous, err
	}

	if err := update(ctx, &stored); err != nil {
		manager.rollback(ctx, stored)
		return previous, err
	}

	if previous != nil && *previous != stored {
		manager.DeleteAsset(ctx, previous)
	}

	return &stored, nil
}

// Attach stores a required file and commits it with persist (gallery append).
func (manager *Manager) Attach(ctx context.Context, file *storage.Upload, policy storage.Policy, persist func(ctx context.Context, reference string) error) (string, error) {
	if file == nil {
		return "", apperr.ValidationError("Invalid upload", apperr.FieldError{Field: storage.FieldFile, Message: "No file was provided"})
	}

	reference, err := manager.CreateWithAsset(ctx, file, policy, func(ctx context.Context, reference *string) error {
		return persist(ctx, *reference)
	})
	if err != nil {
		return "", err
	}
	return *reference, nil
}

// Detach drops reference from its row via persist, then removes the file.
//
// The row changes first so it never points at a deleted file.
func (manager *Manager) Detach(ctx context.Context, reference string, persist func(ctx context.Context) error) error {
	if err := persist(ctx); err != nil {
		return err
	}
	manager.DeleteAsset(ctx, &reference)
	return nil
}

// DeleteAsset removes a file on a best-effort basis. Missing files are fine and
// failures are absorbed; nothing is returned.
func (manager *Manager) DeleteAsset(ctx context.Context, reference *string) {
	if reference == nil || *reference == "" {
		return
	}
	manager.remove(ctx, *reference, reasonCleanupFailed)
}

// DeleteAssets applies [Manager.DeleteAsset] to every reference.
func (manager *Manager) DeleteAssets(ctx context.Context, references []string) {
	for i := range references {
		manager.DeleteAsset(ctx, &references[i])
	}
}

// rollback removes a file written earlier in a failed operation.
func (manager *Manager) rollback(ctx context.Context, reference string) {
	manager.remove(ctx, reference, reasonRollbackFailed)
}

func (manager *Manager) remove(ctx context.Context, reference, reason string) {
	// Cleanup must still run when the request context is already cancelled.
	ctx = context.WithoutCancel(ctx)

	if _, err := manager.store.Remove(ctx, reference); err != nil {
		manager.logger.ErrorContext(ctx, "storage_cleanup_failed",
			slog.String("reference", reference),
			slog.String("reason", reason),
			slog.Any("error", err),
		)
		if recordErr := manager.ledger.Record(ctx, reference, reason); recordErr != nil {
			manager.logger.ErrorContext(ctx, "asset_orphan_record_failed",
				slog.String("reference", reference),
				slog.Any("error", recordErr),
			)
		}
	}
}

// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/yatra/internal/platform/storage"
	"github.com/taibuivan/yatra/pkg/mediaurl"
)

// defaultDrainBatch is how many ledger entries one sweep pops.
const defaultDrainBatch = 500

// ReferenceSource lists every media reference held by a live row.
type ReferenceSource interface {
	AssetReferences(ctx context.Context) ([]string, error)
}

// SweepConfig tunes a [Sweeper].
type SweepConfig struct {
	// GracePeriod protects recent files whose row insert may still be in flight.
	GracePeriod time.Duration
	// Protected holds filenames never removed (seeded defaults).
	Protected []string
	// DrainBatch caps the number of ledger entries handled per run.
	DrainBatch int
}

// SweepReport summarizes one sweep.
type SweepReport struct {
	Drained int `json:"drained"`
	Scanned int `json:"scanned"`
	Removed int `json:"removed"`
	Kept    int `json:"kept"`
}

// Sweeper removes orphaned files: ledger entries first, then any stored file
// older than the grace period that no live row references.
type Sweeper struct {
	store      storage.Store
	ledger     storage.Ledger
	references ReferenceSource
	names      *mediaurl.Normalizer
	config     SweepConfig
	logger     *slog.Logger
	now        func() time.Time
}

// NewSweeper creates a [Sweeper].
func NewSweeper(store storage.Store, ledger storage.Ledger, references ReferenceSource, names *mediaurl.Normalizer, config SweepConfig, logger *slog.Logger) *Sweeper {
	if config.DrainBatch <= 0 {
		config.DrainBatch = defaultDrainBatch
	}
	return &Sweeper{
		store:      store,
		ledger:     ledger,
		references: references,
		names:      names,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// Run performs a single sweep.
func (sweeper *Sweeper) Run(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	// 1. Pop ledger entries before loading references so that a reference
	// committed meanwhile is still seen as live.
	drained, err := sweeper.ledger.Drain(ctx, sweeper.config.DrainBatch)
	if err != nil {
		return report, err
	}
	report.Drained = len(drained)

	// 2. Live references, keyed by stored name. Drained entries go back to
	// the ledger when they cannot be judged.
	live, err := sweeper.liveNames(ctx)
	if err != nil {
		sweeper.requeue(ctx, drained)
		return report, err
	}

	// 3. Ledger entries carry no age; they were orphaned when recorded.
	for _, reference := range drained {
		sweeper.removeIfOrphan(ctx, reference, live, &report)
	}

	// 4. Full store scan
	objects, err := sweeper.store.List(ctx)
	if err != nil {
		return report, err
	}
	report.Scanned = len(objects)

	cutoff := sweeper.now().Add(-sweeper.config.GracePeriod)
	for _, object := range objects {
		if object.ModTime.After(cutoff) {
			report.Kept++
			continue
		}
		sweeper.removeIfOrphan(ctx, object.Reference, live, &report)
	}

	sweeper.logger.InfoContext(ctx, "asset_sweep_finished",
		slog.Int("drained", report.Drained),
		slog.Int("scanned", report.Scanned),
		slog.Int("removed", report.Removed),
		slog.Int("kept", report.Kept),
	)
	return report, nil
}

func (sweeper *Sweeper) liveNames(ctx context.Context) (map[string]struct{}, error) {
	references, err := sweeper.references.AssetReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("sweeper: failed to load live references: %w", err)
	}

	live := make(map[string]struct{}, len(references)+len(sweeper.config.Protected))
	for _, reference := range references {
		if name := sweeper.names.Filename(reference); name != "" {
			live[name] = struct{}{}
		}
	}
	for _, name := range sweeper.config.Protected {
		live[name] = struct{}{}
	}
	return live, nil
}

func (sweeper *Sweeper) removeIfOrphan(ctx context.Context, reference string, live map[string]struct{}, report *SweepReport) {
	name := sweeper.names.Filename(reference)
	if name == "" {
		return
	}
	if _, ok := live[name]; ok {
		report.Kept++
		return
	}

	removed, err := sweeper.store.Remove(ctx, reference)
	if err != nil {
		sweeper.logger.ErrorContext(ctx, "storage_cleanup_failed",
			slog.String("reference", reference),
			slog.Any("error", err),
		)
		sweeper.record(ctx, reference, reasonCleanupFailed)
		return
	}
	if removed {
		report.Removed++
		sweeper.logger.InfoContext(ctx, "asset_orphan_removed", slog.String("reference", reference))
	}
}

func (sweeper *Sweeper) requeue(ctx context.Context, references []string) {
	ctx = context.WithoutCancel(ctx)
	for _, reference := range references {
		sweeper.record(ctx, reference, reasonSweepDeferred)
	}
}

func (sweeper *Sweeper) record(ctx context.Context, reference, reason string) {
	if err := sweeper.ledger.Record(ctx, reference, reason); err != nil {
		sweeper.logger.ErrorContext(ctx, "asset_orphan_record_failed",
			slog.String("reference", reference),
			slog.String("reason", reason),
			slog.Any("error", err),
		)
	}
}

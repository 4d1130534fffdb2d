// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package place

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/taibuivan/yatra/internal/platform/apperr"
)

// tier is every row of one level collected by a cascade.
type tier struct {
	kind     Kind
	entities []*Entity
}

// CascadeError reports a delete that stopped after some rows were removed.
type CascadeError struct {
	Kind    Kind
	ID      int64
	Removed int
	Err     error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("place: cascade stopped at %s %d after removing %d rows: %v", e.Kind, e.ID, e.Removed, e.Err)
}

// Unwrap exposes an [apperr.AppError] carrying the remediation context.
func (e *CascadeError) Unwrap() error {
	failure := apperr.StorageWriteFailed(e.Err)
	failure.Message = "Delete stopped part way; remaining rows need attention"
	failure.Details = []apperr.FieldError{
		{Field: "taxonomy", Message: string(e.Kind.Taxonomy)},
		{Field: "level", Message: string(e.Kind.Level)},
		{Field: "id", Message: strconv.FormatInt(e.ID, 10)},
		{Field: "removed", Message: strconv.Itoa(e.Removed)},
	}
	return failure
}

// Delete removes a place, every descendant and all of their media.
//
// The whole subtree is enumerated before anything is mutated; an enumeration
// failure aborts with nothing removed. Rows are then removed leaf-to-root,
// each after its media, so a parent never disappears before its children.
// It returns the number of rows removed.
func (service *Service) Delete(ctx context.Context, kind Kind, id int64) (int, error) {
	// 1. EnumerateDescendants
	tiers, err := service.enumerate(ctx, kind, id)
	if err != nil {
		return 0, err
	}

	// 2-4. DeleteLeavesFirst: assets then row, deepest level first
	removed := 0
	for i := len(tiers) - 1; i >= 0; i-- {
		for _, entity := range tiers[i].entities {
			service.assets.DeleteAssets(ctx, entity.References())

			if err := service.repo.Delete(ctx, tiers[i].kind, entity.ID); err != nil {
				if apperr.HasCode(err, "NOT_FOUND") {
					// Already gone through a concurrent delete.
					continue
				}
				service.logger.ErrorContext(ctx, "cascade_delete_interrupted",
					slog.String("kind", tiers[i].kind.String()),
					slog.Int64("id", entity.ID),
					slog.Int("removed", removed),
					slog.Any("error", err),
				)
				return removed, &CascadeError{Kind: tiers[i].kind, ID: entity.ID, Removed: removed, Err: err}
			}
			removed++
		}
	}

	service.logger.InfoContext(ctx, "cascade_deleted",
		slog.String("kind", kind.String()),
		slog.Int64("id", id),
		slog.Int("rows", removed),
	)
	return removed, nil
}

// enumerate walks the subtree breadth-first, one query per level.
func (service *Service) enumerate(ctx context.Context, kind Kind, id int64) ([]tier, error) {
	root, err := service.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	tiers := []tier{{kind: kind, entities: []*Entity{root}}}
	current := tiers[0]

	for {
		child, ok := current.kind.Child()
		if !ok {
			break
		}

		parents := make(map[int64]struct{}, len(current.entities))
		parentIDs := make([]int64, 0, len(current.entities))
		for _, entity := range current.entities {
			parents[entity.ID] = struct{}{}
			parentIDs = append(parentIDs, entity.ID)
		}

		children, err := service.repo.ChildrenOf(ctx, child, parentIDs)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			break
		}

		// The child query is bound to the same taxonomy; anything else is a bug.
		for _, entity := range children {
			if entity.Kind != child || entity.ParentID == nil {
				return nil, apperr.Internal(fmt.Errorf("place: %s row %d escaped its hierarchy", entity.Kind, entity.ID))
			}
			if _, ok := parents[*entity.ParentID]; !ok {
				return nil, apperr.Internal(fmt.Errorf("place: %s row %d has unexpected parent %d", entity.Kind, entity.ID, *entity.ParentID))
			}
		}

		current = tier{kind: child, entities: children}
		tiers = append(tiers, current)
	}

	return tiers, nil
}

// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package place

import (
	"context"
	"errors"
)

// ErrSlugConflict is returned by Create and Update when the slug is already
// taken within its scope (the unique index rejected the write).
var ErrSlugConflict = errors.New("place: slug already taken in scope")

// Repository persists place rows. Every method is scoped to one [Kind].
//
// Missing rows are reported as an apperr NOT_FOUND error.
type Repository interface {
	Get(ctx context.Context, kind Kind, id int64) (*Entity, error)
	GetBySlug(ctx context.Context, kind Kind, parentID *int64, slug string) (*Entity, error)
	List(ctx context.Context, kind Kind, filter Filter, limit, offset int) ([]*Entity, int, error)

	// ChildrenOf returns every row of kind whose parent is in parentIDs.
	ChildrenOf(ctx context.Context, kind Kind, parentIDs []int64) ([]*Entity, error)

	SlugExists(ctx context.Context, scope SlugScope, slug string) (bool, error)

	// Create inserts entity and fills its ID and timestamps.
	Create(ctx context.Context, entity *Entity) error
	// Update writes title, slug, image and content of entity.
	Update(ctx context.Context, entity *Entity) error
	Delete(ctx context.Context, kind Kind, id int64) error

	AppendGallery(ctx context.Context, kind Kind, id int64, reference string) error
	RemoveGallery(ctx context.Context, kind Kind, id int64, reference string) error

	// AssetReferences lists every media reference of every live row in all tables.
	AssetReferences(ctx context.Context) ([]string, error)
}

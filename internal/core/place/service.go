// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package place

import (
	"context"
	"log/slog"

	"github.com/taibuivan/yatra/internal/core/lifecycle"
	"github.com/taibuivan/yatra/internal/platform/apperr"
	"github.com/taibuivan/yatra/internal/platform/storage"
	"github.com/taibuivan/yatra/internal/platform/validate"
	"github.com/taibuivan/yatra/pkg/mediaurl"
	"github.com/taibuivan/yatra/pkg/slice"
)

// Service is the hierarchy controller: the single entry point that creates,
// updates and deletes places together with their media.
type Service struct {
	repo   Repository
	slugs  *SlugGenerator
	assets *lifecycle.Manager
	media  *mediaurl.Normalizer
	policy storage.Policy
	logger *slog.Logger
}

// NewService creates a [Service]. policy constrains every image upload.
func NewService(repo Repository, assets *lifecycle.Manager, media *mediaurl.Normalizer, policy storage.Policy, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		slugs:  NewSlugGenerator(repo),
		assets: assets,
		media:  media,
		policy: policy,
		logger: logger,
	}
}

// # Reads

// Get returns one place.
func (service *Service) Get(ctx context.Context, kind Kind, id int64) (*View, error) {
	entity, err := service.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return service.view(entity), nil
}

// GetBySlug resolves a slug within its scope. parentID is ignored for
// table-scoped kinds.
func (service *Service) GetBySlug(ctx context.Context, kind Kind, parentID *int64, slug string) (*View, error) {
	if kind.SlugScope() == ScopeTable {
		parentID = nil
	}
	entity, err := service.repo.GetBySlug(ctx, kind, parentID, slug)
	if err != nil {
		return nil, notFoundAs(err, kind)
	}
	return service.view(entity), nil
}

// List returns a page of places and the total count.
func (service *Service) List(ctx context.Context, kind Kind, filter Filter, limit, offset int) ([]*View, int, error) {
	entities, total, err := service.repo.List(ctx, kind, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return slice.Map(entities, service.view), total, nil
}

// Children returns the direct children of a place.
func (service *Service) Children(ctx context.Context, kind Kind, id int64) ([]*View, error) {
	if _, err := service.load(ctx, kind, id); err != nil {
		return nil, err
	}

	child, ok := kind.Child()
	if !ok {
		return []*View{}, nil
	}

	entities, err := service.repo.ChildrenOf(ctx, child, []int64{id})
	if err != nil {
		return nil, err
	}
	return slice.Map(entities, service.view), nil
}

// # Insert

// Create runs ValidateParent → GenerateSlug → PersistWithAsset.
//
// The parent is checked before any file is written. The slug is claimed by the
// insert itself so concurrent creates of the same title end up suffixed.
func (service *Service) Create(ctx context.Context, kind Kind, input Input, file *storage.Upload) (*View, error) {
	validator := &validate.Validator{}
	validator.Title(FieldTitle, input.Title, maxTitleLength).JSONObject(FieldContent, input.Content)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 1. ValidateParent
	if err := service.validateParent(ctx, kind, input.ParentID); err != nil {
		return nil, err
	}

	entity := &Entity{
		Kind:     kind,
		ParentID: input.ParentID,
		Title:    input.Title,
		Content:  input.Content,
		Gallery:  []string{},
	}

	candidate := input.Slug
	if candidate == "" {
		candidate = input.Title
	}
	scope := NewSlugScope(kind, input.ParentID)

	// 2-3. GenerateSlug + PersistWithAsset
	_, err := service.assets.CreateWithAsset(ctx, file, service.policy, func(ctx context.Context, reference *string) error {
		entity.Image = reference
		_, err := service.slugs.Claim(ctx, candidate, scope, func(ctx context.Context, slug string) error {
			entity.Slug = slug
			return service.repo.Create(ctx, entity)
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "place_created",
		slog.String("kind", kind.String()),
		slog.Int64("id", entity.ID),
		slog.String("slug", entity.Slug),
	)
	return service.view(entity), nil
}

// validateParent enforces that roots have no parent and that every other row
// points at an existing row one level up in the same taxonomy.
func (service *Service) validateParent(ctx context.Context, kind Kind, parentID *int64) error {
	parentKind, hasParent := kind.Parent()

	if !hasParent {
		if parentID != nil {
			return validate.Invalid(FieldParentID, kind.Label()+" cannot have a parent")
		}
		return nil
	}

	if parentID == nil {
		return validate.Invalid(FieldParentID, "A "+parentKind.Label()+" is required")
	}

	if _, err := service.repo.Get(ctx, parentKind, *parentID); err != nil {
		return notFoundAs(err, parentKind)
	}
	return nil
}

// # Update

// Update runs LoadExisting → ReplaceAsset → PersistFields.
//
// A missing row fails before any file is written. The slug only changes when
// a new one is explicitly requested.
func (service *Service) Update(ctx context.Context, kind Kind, id int64, patch Patch, file *storage.Upload) (*View, error) {
	// 1. LoadExisting
	existing, err := service.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if patch.Title != nil {
		validator.Title(FieldTitle, *patch.Title, maxTitleLength)
	}
	if patch.Slug != nil {
		validator.Required(FieldSlug, *patch.Slug)
	}
	validator.JSONObject(FieldContent, patch.Content)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	updated := *existing
	if patch.Title != nil {
		updated.Title = *patch.Title
	}
	if patch.Content != nil {
		updated.Content = patch.Content
	}

	// 2-3. ReplaceAsset + PersistFields
	_, err = service.assets.ReplaceAsset(ctx, existing.Image, file, service.policy, func(ctx context.Context, reference *string) error {
		updated.Image = reference
		return service.persist(ctx, &updated, patch.Slug)
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "place_updated",
		slog.String("kind", kind.String()),
		slog.Int64("id", id),
		slog.Bool("media_replaced", file != nil),
	)
	return service.view(&updated), nil
}

// persist writes entity, re-claiming the slug when a new one is requested.
func (service *Service) persist(ctx context.Context, entity *Entity, requested *string) error {
	if requested == nil || *requested == entity.Slug {
		return service.repo.Update(ctx, entity)
	}

	scope := NewSlugScope(entity.Kind, entity.ParentID)
	scope.ExcludeID = entity.ID

	_, err := service.slugs.Claim(ctx, *requested, scope, func(ctx context.Context, slug string) error {
		entity.Slug = slug
		return service.repo.Update(ctx, entity)
	})
	return err
}

// # Gallery

// AddGalleryImage stores file and appends it to the gallery of a place.
func (service *Service) AddGalleryImage(ctx context.Context, kind Kind, id int64, file *storage.Upload) (*View, error) {
	if _, err := service.load(ctx, kind, id); err != nil {
		return nil, err
	}

	reference, err := service.assets.Attach(ctx, file, service.policy, func(ctx context.Context, reference string) error {
		return service.repo.AppendGallery(ctx, kind, id, reference)
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "gallery_image_added",
		slog.String("kind", kind.String()),
		slog.Int64("id", id),
		slog.String("reference", reference),
	)
	return service.Get(ctx, kind, id)
}

// RemoveGalleryImage detaches one gallery image. reference may be the stored
// value or its public URL.
func (service *Service) RemoveGalleryImage(ctx context.Context, kind Kind, id int64, reference string) (*View, error) {
	if err := (&validate.Validator{}).Required(FieldGallery, reference).Err(); err != nil {
		return nil, err
	}

	entity, err := service.load(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	wanted := service.media.Filename(reference)
	stored := ""
	for _, candidate := range entity.Gallery {
		if wanted != "" && service.media.Filename(candidate) == wanted {
			stored = candidate
			break
		}
	}
	if stored == "" {
		return nil, apperr.NotFound("Gallery image")
	}

	err = service.assets.Detach(ctx, stored, func(ctx context.Context) error {
		return service.repo.RemoveGallery(ctx, kind, id, stored)
	})
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "gallery_image_removed",
		slog.String("kind", kind.String()),
		slog.Int64("id", id),
		slog.String("reference", stored),
	)
	return service.Get(ctx, kind, id)
}

// # Helpers

func (service *Service) load(ctx context.Context, kind Kind, id int64) (*Entity, error) {
	entity, err := service.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, notFoundAs(err, kind)
	}
	return entity, nil
}

func (service *Service) view(entity *Entity) *View {
	gallery := service.media.PublicAll(entity.Gallery)
	return &View{
		ID:        entity.ID,
		Taxonomy:  entity.Kind.Taxonomy,
		Level:     entity.Kind.Level,
		ParentID:  entity.ParentID,
		Title:     entity.Title,
		Slug:      entity.Slug,
		ImageURL:  service.media.PublicPtr(entity.Image),
		Gallery:   gallery,
		Content:   entity.Content,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}
}

// notFoundAs renames a generic NOT_FOUND after the kind that was looked up.
func notFoundAs(err error, kind Kind) error {
	if apperr.HasCode(err, "NOT_FOUND") {
		return apperr.NotFound(kind.Label())
	}
	return err
}


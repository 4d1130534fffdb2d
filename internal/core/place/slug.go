// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package place

import (
	"context"
	"errors"

	"github.com/taibuivan/yatra/internal/platform/apperr"
	"github.com/taibuivan/yatra/pkg/slug"
)

// maxSlugAttempts bounds the numeric suffix search.
const maxSlugAttempts = 1000

// SlugGenerator produces slugs that are unique within a [SlugScope].
type SlugGenerator struct {
	repo Repository
}

// NewSlugGenerator creates a [SlugGenerator].
func NewSlugGenerator(repo Repository) *SlugGenerator {
	return &SlugGenerator{repo: repo}
}

// Generate returns the first candidate that is currently free in scope.
//
// The answer can be stale by the time it is written; writers use [SlugGenerator.Claim].
func (generator *SlugGenerator) Generate(ctx context.Context, candidate string, scope SlugScope) (string, error) {
	base := slug.From(candidate)

	for n := 0; n < maxSlugAttempts; n++ {
		value := slug.WithSuffix(base, n)
		taken, err := generator.repo.SlugExists(ctx, scope, value)
		if err != nil {
			return "", err
		}
		if !taken {
			return value, nil
		}
	}
	return "", exhausted()
}

// Claim finds a free slug and persists it through write.
//
// The unique index is the arbiter: when write reports [ErrSlugConflict]
// because a concurrent writer took the same candidate, the next suffix is
// tried. Any other write error is returned as is.
func (generator *SlugGenerator) Claim(ctx context.Context, candidate string, scope SlugScope, write func(ctx context.Context, slug string) error) (string, error) {
	base := slug.From(candidate)

	for n := 0; n < maxSlugAttempts; n++ {
		value := slug.WithSuffix(base, n)

		taken, err := generator.repo.SlugExists(ctx, scope, value)
		if err != nil {
			return "", err
		}
		if taken {
			continue
		}

		err = write(ctx, value)
		if errors.Is(err, ErrSlugConflict) {
			continue
		}
		if err != nil {
			return "", err
		}
		return value, nil
	}
	return "", exhausted()
}

func exhausted() error {
	return apperr.ValidationError("Validation failed", apperr.FieldError{
		Field:   FieldSlug,
		Message: "No free slug is left for this title",
	})
}

// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package place_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yatra/internal/core/lifecycle"
	"github.com/taibuivan/yatra/internal/core/place"
	"github.com/taibuivan/yatra/internal/core/place/placetest"
	"github.com/taibuivan/yatra/internal/platform/apperr"
	"github.com/taibuivan/yatra/internal/platform/storage"
	"github.com/taibuivan/yatra/internal/platform/storage/storagetest"
	"github.com/taibuivan/yatra/pkg/mediaurl"
	"github.com/taibuivan/yatra/pkg/pointer"
)

const cdn = "https://cdn.example.com"

type fixture struct {
	service *place.Service
	repo    *placetest.Memory
	store   *storage.FileSystem
	media   *mediaurl.Normalizer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	media := mediaurl.New(cdn, "")
	store, err := storage.NewFileSystem(t.TempDir(), media, storagetest.Logger())
	require.NoError(t, err)

	repo := placetest.NewMemory()
	assets := lifecycle.NewManager(store, storage.NewLogLedger(storagetest.Logger()), storagetest.Logger())
	service := place.NewService(repo, assets, media, storage.ImagePolicy(storage.DefaultImageMaxBytes), storagetest.Logger())

	return &fixture{service: service, repo: repo, store: store, media: media}
}

func (f *fixture) files(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.store.Dir())
	require.NoError(t, err)
	return len(entries)
}

// exists resolves a public URL back to the stored file.
func (f *fixture) exists(t *testing.T, url *string) bool {
	t.Helper()
	require.NotNil(t, url)
	ok, err := f.store.Exists(context.Background(), f.media.Reference(f.media.Filename(*url)))
	require.NoError(t, err)
	return ok
}

func (f *fixture) create(t *testing.T, kind place.Kind, parentID *int64, title string, withImage bool) *place.View {
	t.Helper()
	var file *storage.Upload
	if withImage {
		file = storagetest.ImageUpload(title + ".png")
	}
	view, err := f.service.Create(context.Background(), kind, place.Input{ParentID: parentID, Title: title}, file)
	require.NoError(t, err)
	return view
}

/*
TestService_Create stores the image, derives the slug and renders public URLs.
*/
func TestService_Create(t *testing.T) {
	f := newFixture(t)

	view := f.create(t, stateRegion, nil, "Rishikesh Rafting!!", true)

	assert.NotZero(t, view.ID)
	assert.Equal(t, "rishikesh-rafting", view.Slug)
	assert.Equal(t, place.TaxonomyState, view.Taxonomy)
	assert.Equal(t, place.LevelRegion, view.Level)
	require.NotNil(t, view.ImageURL)
	assert.Regexp(t, `^https://cdn\.example\.com/uploads/\d+-\d+\.png$`, *view.ImageURL)
	assert.True(t, f.exists(t, view.ImageURL))
	assert.Equal(t, []string{}, view.Gallery)

	again := f.create(t, stateRegion, nil, "Rishikesh Rafting!!", false)
	assert.Equal(t, "rishikesh-rafting-1", again.Slug)
	assert.Nil(t, again.ImageURL)
}

/*
TestService_Create_ParentRules rejects orphans and misplaced roots before any
file is written.
*/
func TestService_Create_ParentRules(t *testing.T) {
	f := newFixture(t)
	region := f.create(t, stateRegion, nil, "Ladakh", false)
	missing := int64(404)

	tests := []struct {
		name     string
		kind     place.Kind
		parentID *int64
		code     string
	}{
		{"root with parent", stateRegion, &region.ID, "VALIDATION_ERROR"},
		{"district without parent", stateDistrict, nil, "VALIDATION_ERROR"},
		{"district with missing parent", stateDistrict, &missing, "NOT_FOUND"},
		{"parent from the other taxonomy", place.Kind{Taxonomy: place.TaxonomyTerritory, Level: place.LevelDistrict}, &region.ID, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Create(context.Background(), tt.kind,
				place.Input{ParentID: tt.parentID, Title: "Leh"}, storagetest.ImageUpload("leh.png"),
			)
			assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
			assert.Equal(t, 0, f.files(t))
		})
	}
}

/*
TestService_Create_Validation rejects empty titles and non-object content.
*/
func TestService_Create_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), stateRegion, place.Input{Title: ""}, nil)
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	_, err = f.service.Create(context.Background(), stateRegion,
		place.Input{Title: "Goa", Content: json.RawMessage(`[1,2]`)}, nil,
	)
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))

	view, err := f.service.Create(context.Background(), stateRegion,
		place.Input{Title: "Goa", Content: json.RawMessage(`{"best_season":"winter"}`)}, nil,
	)
	require.NoError(t, err)
	assert.JSONEq(t, `{"best_season":"winter"}`, string(view.Content))
}

/*
TestService_Create_InsertFailureRemovesFile leaves no file behind when the row
insert fails after the upload.
*/
func TestService_Create_InsertFailureRemovesFile(t *testing.T) {
	f := newFixture(t)
	region := f.create(t, stateRegion, nil, "Kerala", false)

	f.repo.CreateErr = errors.New("simulated store fault")

	_, err := f.service.Create(context.Background(), stateDistrict,
		place.Input{ParentID: &region.ID, Title: "Munnar"}, storagetest.ImageUpload("munnar.png"),
	)
	require.Error(t, err)
	assert.Equal(t, 0, f.files(t))
	assert.Equal(t, 0, f.repo.Count(stateDistrict))
}

/*
TestService_Create_InvalidImage fails validation without inserting a row.
*/
func TestService_Create_InvalidImage(t *testing.T) {
	f := newFixture(t)

	upload := storagetest.ImageUpload("cover.svg")
	upload.Reader = bytes.NewReader([]byte("<svg xmlns=\"http://www.w3.org/2000/svg\"/>"))
	upload.Size = 0

	_, err := f.service.Create(context.Background(), stateRegion, place.Input{Title: "Goa"}, upload)
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
	assert.Equal(t, 0, f.repo.Count(stateRegion))
}

/*
TestService_Update replaces media only after a successful write and keeps the
slug unless a new one is requested.
*/
func TestService_Update(t *testing.T) {
	t.Run("replace image", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t, stateRegion, nil, "Sikkim", true)

		updated, err := f.service.Update(context.Background(), stateRegion, created.ID,
			place.Patch{Title: pointer.To("Sikkim Hills")}, storagetest.ImageUpload("new.png"),
		)
		require.NoError(t, err)

		assert.Equal(t, "Sikkim Hills", updated.Title)
		assert.Equal(t, "sikkim", updated.Slug)
		assert.NotEqual(t, *created.ImageURL, *updated.ImageURL)
		assert.True(t, f.exists(t, updated.ImageURL))
		assert.False(t, f.exists(t, created.ImageURL))
		assert.Equal(t, 1, f.files(t))
	})

	t.Run("missing row writes nothing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.Update(context.Background(), stateRegion, 99, place.Patch{}, storagetest.ImageUpload("x.png"))
		assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
		assert.Equal(t, 0, f.files(t))
	})

	t.Run("fields only keeps image", func(t *testing.T) {
		f := newFixture(t)
		created := f.create(t, stateRegion, nil, "Assam", true)

		content := json.RawMessage(`{"tea":true}`)
		updated, err := f.service.Update(context.Background(), stateRegion, created.ID, place.Patch{Content: content}, nil)
		require.NoError(t, err)
		assert.Equal(t, *created.ImageURL, *updated.ImageURL)
		assert.True(t, f.exists(t, updated.ImageURL))
	})

	t.Run("requested slug is suffixed on collision", func(t *testing.T) {
		f := newFixture(t)
		f.create(t, stateRegion, nil, "Goa", false)
		other := f.create(t, stateRegion, nil, "Daman", false)

		updated, err := f.service.Update(context.Background(), stateRegion, other.ID, place.Patch{Slug: pointer.To("Goa")}, nil)
		require.NoError(t, err)
		assert.Equal(t, "goa-1", updated.Slug)
	})
}

/*
TestService_GetBySlug resolves slugs within their scope.
*/
func TestService_GetBySlug(t *testing.T) {
	f := newFixture(t)
	north := f.create(t, stateRegion, nil, "North", false)
	south := f.create(t, stateRegion, nil, "South", false)
	f.create(t, stateDistrict, &north.ID, "Old Town", false)
	southTown := f.create(t, stateDistrict, &south.ID, "Old Town", false)

	view, err := f.service.GetBySlug(context.Background(), stateDistrict, &south.ID, "old-town")
	require.NoError(t, err)
	assert.Equal(t, southTown.ID, view.ID)

	view, err = f.service.GetBySlug(context.Background(), stateRegion, &south.ID, "north")
	require.NoError(t, err)
	assert.Equal(t, north.ID, view.ID)

	_, err = f.service.GetBySlug(context.Background(), stateRegion, nil, "east")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))
}

/*
TestService_ListAndChildren pages rows and lists direct children only.
*/
func TestService_ListAndChildren(t *testing.T) {
	f := newFixture(t)
	region := f.create(t, stateRegion, nil, "Rajasthan", false)
	jaipur := f.create(t, stateDistrict, &region.ID, "Jaipur", false)
	f.create(t, stateDistrict, &region.ID, "Udaipur", false)
	f.create(t, place.Kind{Taxonomy: place.TaxonomyState, Level: place.LevelSubdistrict}, &jaipur.ID, "Amer", false)

	views, total, err := f.service.List(context.Background(), stateDistrict, place.Filter{ParentID: &region.ID}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, views, 1)
	assert.Equal(t, "Jaipur", views[0].Title)

	children, err := f.service.Children(context.Background(), stateRegion, region.ID)
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

/*
TestService_Gallery appends stored images and removes them by public URL.
*/
func TestService_Gallery(t *testing.T) {
	f := newFixture(t)
	region := f.create(t, stateRegion, nil, "Meghalaya", false)

	view, err := f.service.AddGalleryImage(context.Background(), stateRegion, region.ID, storagetest.ImageUpload("falls.png"))
	require.NoError(t, err)
	require.Len(t, view.Gallery, 1)
	url := view.Gallery[0]
	assert.True(t, f.exists(t, &url))

	_, err = f.service.RemoveGalleryImage(context.Background(), stateRegion, region.ID, "uploads/unknown.png")
	assert.True(t, apperr.HasCode(err, "NOT_FOUND"))

	view, err = f.service.RemoveGalleryImage(context.Background(), stateRegion, region.ID, url)
	require.NoError(t, err)
	assert.Empty(t, view.Gallery)
	assert.Equal(t, 0, f.files(t))

	_, err = f.service.AddGalleryImage(context.Background(), stateRegion, region.ID, nil)
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
}

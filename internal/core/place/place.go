// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package place manages the two parallel place hierarchies of the catalog.

Both taxonomies ("state" and "territory") share the same four levels:

	region → district → subdistrict → village

Each (taxonomy, level) pair is a [Kind] and lives in its own table. A single
implementation serves all eight tables: the Kind is threaded through every
call and never inferred, so an operation on one taxonomy can never reach into
the other even when numeric ids collide.

[Service] is the only path that inserts or destroys rows. It validates
parents before inserts, claims collision-free slugs, keeps media files in
lockstep with rows through the lifecycle manager, and deletes whole subtrees
leaf-to-root.
*/
package place

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/taibuivan/yatra/internal/platform/apperr"
	"github.com/taibuivan/yatra/internal/platform/database/schema"
)

// # Taxonomies & Levels

// Taxonomy names one of the parallel hierarchies.
type Taxonomy string

const (
	TaxonomyState     Taxonomy = "state"
	TaxonomyTerritory Taxonomy = "territory"
)

// Level is a rank within a taxonomy.
type Level string

const (
	LevelRegion      Level = "region"
	LevelDistrict    Level = "district"
	LevelSubdistrict Level = "subdistrict"
	LevelVillage     Level = "village"
)

// levels is ordered root first.
var levels = []Level{LevelRegion, LevelDistrict, LevelSubdistrict, LevelVillage}

var taxonomies = []Taxonomy{TaxonomyState, TaxonomyTerritory}

// Scope is the uniqueness boundary of a slug.
type Scope int

const (
	// ScopeTable makes slugs unique across the whole table.
	ScopeTable Scope = iota
	// ScopeParent makes slugs unique among siblings only.
	ScopeParent
)

// slugScopes selects the slug scope per level.
var slugScopes = map[Level]Scope{
	LevelRegion:      ScopeTable,
	LevelDistrict:    ScopeParent,
	LevelSubdistrict: ScopeParent,
	LevelVillage:     ScopeParent,
}

// Kind identifies one table: a level within a taxonomy.
type Kind struct {
	Taxonomy Taxonomy
	Level    Level
}

// ParseKind validates routing parameters into a [Kind].
func ParseKind(taxonomy, level string) (Kind, error) {
	kind := Kind{Taxonomy: Taxonomy(strings.ToLower(taxonomy)), Level: Level(strings.ToLower(level))}
	if _, ok := schema.GeoPlaces[kind.String()]; !ok {
		return Kind{}, apperr.NotFound("Place type")
	}
	return kind, nil
}

// AllKinds lists every kind, root levels first.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, len(taxonomies)*len(levels))
	for _, taxonomy := range taxonomies {
		for _, level := range levels {
			kinds = append(kinds, Kind{Taxonomy: taxonomy, Level: level})
		}
	}
	return kinds
}

// String returns "{taxonomy}/{level}".
func (k Kind) String() string {
	return string(k.Taxonomy) + "/" + string(k.Level)
}

// Label is the human name of the level, used in error messages.
func (k Kind) Label() string {
	if k.Level == "" {
		return "Place"
	}
	return strings.ToUpper(string(k.Level[:1])) + string(k.Level[1:])
}

// Table returns the table definition of the kind.
func (k Kind) Table() schema.GeoPlaceTable {
	return schema.GeoPlaces[k.String()]
}

// IsRoot reports whether rows of this kind have no parent.
func (k Kind) IsRoot() bool {
	return k.Level == LevelRegion
}

// Parent returns the kind one level up in the same taxonomy.
func (k Kind) Parent() (Kind, bool) {
	i := k.index()
	if i <= 0 {
		return Kind{}, false
	}
	return Kind{Taxonomy: k.Taxonomy, Level: levels[i-1]}, true
}

// Child returns the kind one level down in the same taxonomy.
func (k Kind) Child() (Kind, bool) {
	i := k.index()
	if i < 0 || i == len(levels)-1 {
		return Kind{}, false
	}
	return Kind{Taxonomy: k.Taxonomy, Level: levels[i+1]}, true
}

// SlugScope returns the slug uniqueness boundary of the kind.
func (k Kind) SlugScope() Scope {
	return slugScopes[k.Level]
}

func (k Kind) index() int {
	for i, level := range levels {
		if level == k.Level {
			return i
		}
	}
	return -1
}

// # Entities

// Entity is one row of a place table.
type Entity struct {
	ID        int64
	Kind      Kind
	ParentID  *int64
	Title     string
	Slug      string
	Image     *string
	Gallery   []string
	Content   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// References returns every media reference held by the row.
func (e *Entity) References() []string {
	references := make([]string, 0, len(e.Gallery)+1)
	if e.Image != nil && *e.Image != "" {
		references = append(references, *e.Image)
	}
	return append(references, e.Gallery...)
}

// View is the API representation of an [Entity]; media fields are public URLs.
type View struct {
	ID        int64           `json:"id"`
	Taxonomy  Taxonomy        `json:"taxonomy"`
	Level     Level           `json:"level"`
	ParentID  *int64          `json:"parent_id"`
	Title     string          `json:"title"`
	Slug      string          `json:"slug"`
	ImageURL  *string         `json:"image_url"`
	Gallery   []string        `json:"gallery"`
	Content   json.RawMessage `json:"content,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Input holds the fields of a create request.
type Input struct {
	ParentID *int64          `json:"parent_id"`
	Title    string          `json:"title"`
	Slug     string          `json:"slug"`
	Content  json.RawMessage `json:"content"`
}

// Patch holds the fields of an update request; nil means unchanged.
// The parent of a place is immutable.
type Patch struct {
	Title   *string         `json:"title"`
	Slug    *string         `json:"slug"`
	Content json.RawMessage `json:"content"`
}

// Filter narrows a list query.
type Filter struct {
	ParentID *int64
	Query    string
}

// SlugScope identifies where a slug must be unique.
type SlugScope struct {
	Kind     Kind
	ParentID *int64
	// ExcludeID ignores the row being renamed (0 for none).
	ExcludeID int64
}

// NewSlugScope derives the scope of a row from its kind's configuration.
func NewSlugScope(kind Kind, parentID *int64) SlugScope {
	scope := SlugScope{Kind: kind}
	if kind.SlugScope() == ScopeParent {
		scope.ParentID = parentID
	}
	return scope
}

// Field names for validation.
const (
	FieldParentID = "parent_id"
	FieldTitle    = "title"
	FieldSlug     = "slug"
	FieldContent  = "content"
	FieldGallery  = "gallery"
)

// maxTitleLength bounds titles.
const maxTitleLength = 200

// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package placetest provides an in-memory [place.Repository] for tests.
package placetest

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/yatra/internal/core/place"
	"github.com/taibuivan/yatra/internal/platform/apperr"
	"github.com/taibuivan/yatra/pkg/pointer"
)

// Memory keeps one table per kind and enforces the same constraints as the
// database: scoped slug uniqueness, parent existence and RESTRICT deletes.
type Memory struct {
	mu     sync.Mutex
	tables map[place.Kind]map[int64]*place.Entity
	nextID map[place.Kind]int64

	// CreateErr, when set, fails every Create.
	CreateErr error
	// DeleteErr, when set, is consulted before every Delete.
	DeleteErr func(kind place.Kind, id int64) error
}

// NewMemory creates an empty [Memory].
func NewMemory() *Memory {
	return &Memory{
		tables: make(map[place.Kind]map[int64]*place.Entity),
		nextID: make(map[place.Kind]int64),
	}
}

// Count returns the number of rows of kind.
func (m *Memory) Count(kind place.Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[kind])
}

// Seed inserts entity as is, bypassing every check. IDs are assigned when zero.
func (m *Memory) Seed(entity *place.Entity) *place.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entity.ID == 0 {
		m.nextID[entity.Kind]++
		entity.ID = m.nextID[entity.Kind]
	} else if entity.ID > m.nextID[entity.Kind] {
		m.nextID[entity.Kind] = entity.ID
	}
	if entity.Gallery == nil {
		entity.Gallery = []string{}
	}
	m.table(entity.Kind)[entity.ID] = clone(entity)
	return entity
}

func (m *Memory) Get(_ context.Context, kind place.Kind, id int64) (*place.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entity, ok := m.tables[kind][id]
	if !ok {
		return nil, apperr.NotFound("Record")
	}
	return clone(entity), nil
}

func (m *Memory) GetBySlug(_ context.Context, kind place.Kind, parentID *int64, slug string) (*place.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entity := range m.sorted(kind) {
		if entity.Slug != slug {
			continue
		}
		if parentID != nil && (entity.ParentID == nil || *entity.ParentID != *parentID) {
			continue
		}
		return clone(entity), nil
	}
	return nil, apperr.NotFound("Record")
}

func (m *Memory) List(_ context.Context, kind place.Kind, filter place.Filter, limit, offset int) ([]*place.Entity, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []*place.Entity{}
	for _, entity := range m.sorted(kind) {
		if filter.ParentID != nil && (entity.ParentID == nil || *entity.ParentID != *filter.ParentID) {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(entity.Title), strings.ToLower(filter.Query)) {
			continue
		}
		matched = append(matched, clone(entity))
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })

	total := len(matched)
	if offset >= total {
		return []*place.Entity{}, total, nil
	}
	end := min(offset+limit, total)
	return matched[offset:end], total, nil
}

func (m *Memory) ChildrenOf(_ context.Context, kind place.Kind, parentIDs []int64) ([]*place.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	children := []*place.Entity{}
	for _, entity := range m.sorted(kind) {
		if entity.ParentID != nil && slices.Contains(parentIDs, *entity.ParentID) {
			children = append(children, clone(entity))
		}
	}
	return children, nil
}

func (m *Memory) SlugExists(_ context.Context, scope place.SlugScope, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.taken(scope, slug), nil
}

func (m *Memory) Create(_ context.Context, entity *place.Entity) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if parent, ok := entity.Kind.Parent(); ok {
		if entity.ParentID == nil {
			return fmt.Errorf("placetest: %s row without parent", entity.Kind)
		}
		if _, found := m.tables[parent][*entity.ParentID]; !found {
			return apperr.NotFound(parent.Label())
		}
	}
	if m.taken(place.NewSlugScope(entity.Kind, entity.ParentID), entity.Slug) {
		return place.ErrSlugConflict
	}

	m.nextID[entity.Kind]++
	now := time.Now()
	entity.ID = m.nextID[entity.Kind]
	entity.CreatedAt = now
	entity.UpdatedAt = now
	m.table(entity.Kind)[entity.ID] = clone(entity)
	return nil
}

func (m *Memory) Update(_ context.Context, entity *place.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tables[entity.Kind][entity.ID]
	if !ok {
		return apperr.NotFound("Record")
	}

	scope := place.NewSlugScope(entity.Kind, stored.ParentID)
	scope.ExcludeID = entity.ID
	if m.taken(scope, entity.Slug) {
		return place.ErrSlugConflict
	}

	stored.Title = entity.Title
	stored.Slug = entity.Slug
	stored.Image = entity.Image
	stored.Content = entity.Content
	stored.UpdatedAt = time.Now()
	entity.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *Memory) Delete(_ context.Context, kind place.Kind, id int64) error {
	if m.DeleteErr != nil {
		if err := m.DeleteErr(kind, id); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[kind][id]; !ok {
		return apperr.NotFound("Record")
	}
	if child, ok := kind.Child(); ok {
		for _, entity := range m.tables[child] {
			if entity.ParentID != nil && *entity.ParentID == id {
				return apperr.Conflict("The record is still referenced")
			}
		}
	}
	delete(m.tables[kind], id)
	return nil
}

func (m *Memory) AppendGallery(_ context.Context, kind place.Kind, id int64, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entity, ok := m.tables[kind][id]
	if !ok {
		return apperr.NotFound("Record")
	}
	entity.Gallery = append(entity.Gallery, reference)
	return nil
}

func (m *Memory) RemoveGallery(_ context.Context, kind place.Kind, id int64, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entity, ok := m.tables[kind][id]
	if !ok {
		return apperr.NotFound("Record")
	}
	entity.Gallery = slices.DeleteFunc(entity.Gallery, func(value string) bool { return value == reference })
	return nil
}

func (m *Memory) AssetReferences(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	references := []string{}
	for _, table := range m.tables {
		for _, entity := range table {
			references = append(references, entity.References()...)
		}
	}
	return references, nil
}

// # Helpers

func (m *Memory) table(kind place.Kind) map[int64]*place.Entity {
	table, ok := m.tables[kind]
	if !ok {
		table = make(map[int64]*place.Entity)
		m.tables[kind] = table
	}
	return table
}

func (m *Memory) sorted(kind place.Kind) []*place.Entity {
	entities := make([]*place.Entity, 0, len(m.tables[kind]))
	for _, entity := range m.tables[kind] {
		entities = append(entities, entity)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].ID < entities[j].ID })
	return entities
}

func (m *Memory) taken(scope place.SlugScope, slug string) bool {
	for _, entity := range m.tables[scope.Kind] {
		if entity.ID == scope.ExcludeID || entity.Slug != slug {
			continue
		}
		if scope.Kind.SlugScope() == place.ScopeTable {
			return true
		}
		if sameParent(entity.ParentID, scope.ParentID) {
			return true
		}
	}
	return false
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func clone(entity *place.Entity) *place.Entity {
	copied := *entity
	copied.Gallery = slices.Clone(entity.Gallery)
	if copied.Gallery == nil {
		copied.Gallery = []string{}
	}
	copied.Image = pointer.Clone(entity.Image)
	copied.ParentID = pointer.Clone(entity.ParentID)
	return &copied
}

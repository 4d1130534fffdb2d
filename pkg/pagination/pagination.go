// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination reads page windows from list queries and describes the
// returned page to clients.
//
// Place listings are small per parent but a root level can hold hundreds of
// regions, so admin screens page with ?page=&limit= and read "meta" back.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the page size when none is requested.
	DefaultLimit = 20
	// MaxLimit caps the page size. Larger requests get MaxLimit rows.
	MaxLimit = 100
	// DefaultPage is the first page (1-indexed).
	DefaultPage = 1
)

// Params is one requested page window.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before the window.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Meta describes the returned window against total matching rows.
func (p Params) Meta(total int) Meta {
	return NewMeta(p.Page, p.Limit, total)
}

// Meta is the "meta" block of a list response.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewMeta builds a [Meta]; a non-positive limit yields zero pages.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// FromRequest reads "page" and "limit" from the query string.
//
// Missing, malformed or non-positive values fall back to the defaults and a
// limit above [MaxLimit] is capped, so a list request never fails on paging.
func FromRequest(r *http.Request) Params {
	query := r.URL.Query()
	page := intParam(query.Get("page"), DefaultPage)
	limit := intParam(query.Get("limit"), DefaultLimit)

	return Params{Page: page, Limit: min(limit, MaxLimit)}
}

// intParam parses a positive integer, returning fallback otherwise.
func intParam(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

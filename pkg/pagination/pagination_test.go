// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yatra/pkg/pagination"
)

/*
TestFromRequest falls back on bad input and caps large page sizes.
*/
func TestFromRequest(t *testing.T) {
	tests := []struct {
		query  string
		page   int
		limit  int
		offset int
	}{
		{"", 1, 20, 0},
		{"?page=3&limit=10", 3, 10, 20},
		{"?page=0&limit=0", 1, 20, 0},
		{"?page=-2&limit=500", 1, 100, 0},
		{"?page=2&limit=100", 2, 100, 100},
		{"?page=abc&limit=x", 1, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			params := pagination.FromRequest(httptest.NewRequest("GET", "/places/state/region"+tt.query, nil))
			assert.Equal(t, tt.page, params.Page)
			assert.Equal(t, tt.limit, params.Limit)
			assert.Equal(t, tt.offset, params.Offset())
		})
	}
}

/*
TestParams_Meta rounds the page count up and flags a following page.
*/
func TestParams_Meta(t *testing.T) {
	first := pagination.Params{Page: 1, Limit: 10}.Meta(21)
	assert.Equal(t, 3, first.TotalPages)
	assert.True(t, first.HasNext)

	last := pagination.Params{Page: 3, Limit: 10}.Meta(21)
	assert.False(t, last.HasNext)

	assert.Equal(t, 0, pagination.NewMeta(1, 10, 0).TotalPages)
	assert.False(t, pagination.NewMeta(1, 10, 0).HasNext)
	assert.Equal(t, 0, pagination.NewMeta(1, 0, 5).TotalPages)
}

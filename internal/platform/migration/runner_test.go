// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestPgx5DSN rewrites both postgres URL schemes and leaves the rest alone.
*/
func TestPgx5DSN(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://yatra:pw@db:5432/yatra?sslmode=disable", "pgx5://yatra:pw@db:5432/yatra?sslmode=disable"},
		{"postgresql://db/yatra", "pgx5://db/yatra"},
		{"pgx5://db/yatra", "pgx5://db/yatra"},
		{"host=db dbname=yatra", "host=db dbname=yatra"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Pgx5DSN(tt.in))
	}
}

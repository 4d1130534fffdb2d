// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://yatra@localhost/yatra")
	t.Setenv("JWT_PUBLIC_KEY_PATH", "/etc/yatra/jwt.pub")
}

/*
TestLoad_Defaults fills every optional key.
*/
func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "fs", cfg.AssetBackend)
	assert.Equal(t, "./data/media", cfg.StorageOptions().Root)
	assert.Equal(t, "uploads", cfg.AssetSubdir)
	assert.Equal(t, int64(5<<20), cfg.ImageMaxBytes)
	assert.Equal(t, 24*time.Hour, cfg.OrphanGrace)
	assert.Empty(t, cfg.RedisURL)
	assert.True(t, cfg.IsDevelopment())
}

/*
TestLoad_Overrides parses lists and durations.
*/
func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("EXTRA_ORIGINS", "https://partner.example.com,https://staging.example.com")
	t.Setenv("ORPHAN_GRACE_PERIOD", "90m")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://partner.example.com", "https://staging.example.com"}, cfg.AllowedOrigins())
	assert.Equal(t, 90*time.Minute, cfg.OrphanGrace)
	assert.True(t, cfg.IsProduction())
}

/*
TestLoad_Invalid rejects missing required keys and inconsistent backends.
*/
func TestLoad_Invalid(t *testing.T) {
	t.Run("missing database", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_PUBLIC_KEY_PATH", "/etc/yatra/jwt.pub")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ASSET_BACKEND", "s3")
		t.Setenv("S3_ENDPOINT", "r2.example.com")
		_, err := Load()
		assert.ErrorContains(t, err, "S3_BUCKET")
	})

	t.Run("unknown backend", func(t *testing.T) {
		setRequired(t)
		t.Setenv("ASSET_BACKEND", "ftp")
		_, err := Load()
		assert.ErrorContains(t, err, "ASSET_BACKEND")
	})
}

/*
TestLoadSweeper needs no token key and shares the media settings.
*/
func TestLoadSweeper(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://yatra@localhost/yatra")
	t.Setenv("ASSET_SUBDIR", "media")
	t.Setenv("ORPHAN_GRACE_PERIOD", "30s")

	_, err := LoadSweeper()
	assert.ErrorContains(t, err, "ORPHAN_GRACE_PERIOD")

	t.Setenv("ORPHAN_GRACE_PERIOD", "2h")
	cfg, err := LoadSweeper()
	require.NoError(t, err)
	assert.Equal(t, "media", cfg.AssetSubdir)
	assert.Equal(t, 2*time.Hour, cfg.OrphanGrace)
}

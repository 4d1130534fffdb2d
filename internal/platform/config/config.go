// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A '.env' file in the
working directory, when present, is loaded first; real environment variables
always win over it.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, storage, ledger) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/yatra/internal/platform/storage"
)

// # Configuration Schema

// Config holds all runtime configuration for the catalog API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// RedisURL enables the Redis orphan ledger. Empty falls back to a log-only ledger.
	RedisURL string `env:"REDIS_URL"`

	// JWTPubKeyPath is the RS256 public key of the identity service.
	JWTPubKeyPath string `env:"JWT_PUBLIC_KEY_PATH,required,notEmpty"`

	// Cross-Origin Resource Sharing
	ExtraOrigins []string `env:"EXTRA_ORIGINS" envSeparator:","`

	Media
}

// SweeperConfig holds the configuration of the orphan sweep command.
type SweeperConfig struct {
	Debug       bool   `env:"DEBUG"        envDefault:"false"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	RedisURL    string `env:"REDIS_URL"`

	Media
}

// Media holds the settings shared by every process that touches stored files.
type Media struct {
	// PublicBaseURL is the origin media URLs are rendered against.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	AssetBackend  string        `env:"ASSET_BACKEND"       envDefault:"fs"`
	AssetRoot     string        `env:"ASSET_ROOT"          envDefault:"./data/media"`
	AssetSubdir   string        `env:"ASSET_SUBDIR"        envDefault:"uploads"`
	AssetSeedDir  string        `env:"ASSET_SEED_DIR"`
	ImageMaxBytes int64         `env:"IMAGE_MAX_BYTES"     envDefault:"5242880"`
	OrphanGrace   time.Duration `env:"ORPHAN_GRACE_PERIOD" envDefault:"24h"`

	// Object Storage (S3-compatible), used when AssetBackend is "s3"
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3Bucket    string `env:"S3_BUCKET"`
	S3Region    string `env:"S3_REGION"  envDefault:"auto"`
	S3UseSSL    bool   `env:"S3_USE_SSL" envDefault:"true"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Media.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSweeper parses environment variables into a [SweeperConfig] struct.
func LoadSweeper() (*SweeperConfig, error) {
	cfg := &SweeperConfig{}
	if err := parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Media.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(target any) error {

	// Optional .env file; variables already set in the environment are kept.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: failed to read .env file: %w", err)
	}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return nil
}

func (m *Media) validate() error {
	switch m.AssetBackend {
	case storage.BackendFileSystem:
	case storage.BackendS3:
		if m.S3Endpoint == "" || m.S3Bucket == "" {
			return errors.New("config: S3_ENDPOINT and S3_BUCKET are required when ASSET_BACKEND=s3")
		}
	default:
		return fmt.Errorf("config: unknown ASSET_BACKEND %q (want %q or %q)", m.AssetBackend, storage.BackendFileSystem, storage.BackendS3)
	}

	if m.ImageMaxBytes <= 0 {
		return errors.New("config: IMAGE_MAX_BYTES must be positive")
	}
	if m.OrphanGrace < time.Minute {
		return errors.New("config: ORPHAN_GRACE_PERIOD must be at least one minute")
	}
	return nil
}

// StorageOptions maps the media settings onto [storage.BackendOptions].
func (m *Media) StorageOptions() storage.BackendOptions {
	return storage.BackendOptions{
		Backend: m.AssetBackend,
		Root:    m.AssetRoot,
		Bucket: storage.BucketConfig{
			Endpoint:  m.S3Endpoint,
			AccessKey: m.S3AccessKey,
			SecretKey: m.S3SecretKey,
			Bucket:    m.S3Bucket,
			Region:    m.S3Region,
			UseSSL:    m.S3UseSSL,
		},
	}
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOrigins lists the extra CORS origins.
func (c *Config) AllowedOrigins() []string {
	return c.ExtraOrigins
}

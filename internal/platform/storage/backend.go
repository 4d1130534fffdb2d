// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/taibuivan/yatra/pkg/mediaurl"
)

// Backend names accepted by [Open].
const (
	BackendFileSystem = "fs"
	BackendS3         = "s3"
)

// BackendOptions selects and configures a [Store].
type BackendOptions struct {
	Backend string
	// Root is the local directory of the filesystem backend.
	Root string
	// Bucket configures the S3 backend.
	Bucket BucketConfig
}

// Open builds the configured [Store].
func Open(ctx context.Context, options BackendOptions, refs *mediaurl.Normalizer, logger *slog.Logger) (Store, error) {
	switch options.Backend {
	case BackendFileSystem, "":
		return NewFileSystem(options.Root, refs, logger)
	case BackendS3:
		return NewBucket(ctx, options.Bucket, refs, logger)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", options.Backend)
	}
}

// SeedNames lists the default asset filenames found in seedDir. They are
// referenced by name from rows and templates and must never be swept.
func SeedNames(seedDir string) ([]string, error) {
	if seedDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(seedDir)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read seed directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

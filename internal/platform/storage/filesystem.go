// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/taibuivan/yatra/internal/platform/apperr"
	"github.com/taibuivan/yatra/pkg/mediaurl"
)

const (
	backendFileSystem = "filesystem"

	// maxNameAttempts bounds filename regeneration on an O_EXCL collision.
	maxNameAttempts = 5
)

// FileSystem stores uploads as flat files in {root}/{subdir}. Older rows may
// still reference nested files below it.
type FileSystem struct {
	dir    string
	refs   *mediaurl.Normalizer
	logger *slog.Logger
}

// NewFileSystem prepares the upload directory below root.
//
// The directory is created here, at construction, rather than as a side
// effect of importing the package.
func NewFileSystem(root string, refs *mediaurl.Normalizer, logger *slog.Logger) (*FileSystem, error) {
	if root == "" {
		return nil, errors.New("storage: filesystem root is required")
	}

	dir := filepath.Join(root, filepath.FromSlash(refs.Subdir()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create upload directory: %w", err)
	}

	return &FileSystem{dir: dir, refs: refs, logger: logger}, nil
}

// Dir returns the directory holding the stored files.
func (store *FileSystem) Dir() string { return store.dir }

// Put implements [Store].
func (store *FileSystem) Put(ctx context.Context, upload Upload, policy Policy) (string, error) {
	prepared, err := policy.prepare(upload)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", apperr.StorageWriteFailed(err)
	}

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := NewFilename(prepared.ext)
		target := filepath.Join(store.dir, name)

		file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", apperr.StorageWriteFailed(store.fail("put", name, err))
		}

		_, writeErr := file.Write(prepared.data)
		closeErr := file.Close()
		if writeErr != nil || closeErr != nil {
			// Never leave a truncated file behind.
			_ = os.Remove(target)
			return "", apperr.StorageWriteFailed(store.fail("put", name, errors.Join(writeErr, closeErr)))
		}

		return store.refs.Reference(name), nil
	}

	return "", apperr.StorageWriteFailed(store.fail("put", "", errors.New("filename collisions exhausted")))
}

// Remove implements [Store].
func (store *FileSystem) Remove(ctx context.Context, reference string) (bool, error) {
	name := store.refs.Filename(reference)
	if name == "" {
		store.logger.WarnContext(ctx, "asset_reference_unresolvable", slog.String("reference", reference))
		return false, nil
	}

	err := os.Remove(store.path(name))
	if errors.Is(err, os.ErrNotExist) {
		store.logger.InfoContext(ctx, "asset_already_absent", slog.String("reference", reference))
		return false, nil
	}
	if err != nil {
		return false, store.fail("remove", reference, err)
	}

	return true, nil
}

// Exists implements [Store].
func (store *FileSystem) Exists(_ context.Context, reference string) (bool, error) {
	name := store.refs.Filename(reference)
	if name == "" {
		return false, nil
	}

	_, err := os.Stat(store.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, store.fail("stat", reference, err)
	}
	return true, nil
}

// List implements [Store]. Legacy nested files are listed with their path
// below the upload directory.
func (store *FileSystem) List(_ context.Context) ([]Object, error) {
	var objects []Object
	err := filepath.WalkDir(store.dir, func(current string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		name, err := filepath.Rel(store.dir, current)
		if err != nil {
			return err
		}
		objects = append(objects, Object{
			Reference: store.refs.Reference(filepath.ToSlash(name)),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, store.fail("list", "", err)
	}
	return objects, nil
}

// SeedDefaults copies the default assets (placeholders, fallback banners) from
// seedDir into the upload directory. Files already present are left alone.
//
// It returns the number of files copied. An empty seedDir is a no-op.
func (store *FileSystem) SeedDefaults(seedDir string) (int, error) {
	if seedDir == "" {
		return 0, nil
	}

	entries, err := os.ReadDir(seedDir)
	if err != nil {
		return 0, fmt.Errorf("storage: failed to read seed directory: %w", err)
	}

	copied := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		target := filepath.Join(store.dir, entry.Name())
		if _, err := os.Stat(target); err == nil {
			continue
		}

		if err := copyFile(filepath.Join(seedDir, entry.Name()), target); err != nil {
			return copied, store.fail("seed", entry.Name(), err)
		}
		copied++
	}

	if copied > 0 {
		store.logger.Info("default_assets_seeded", slog.Int("count", copied), slog.String("dir", store.dir))
	}
	return copied, nil
}

// path resolves a stored name under the upload directory.
func (store *FileSystem) path(name string) string {
	return filepath.Join(store.dir, filepath.FromSlash(name))
}

func (store *FileSystem) fail(op, reference string, err error) error {
	return &Error{Backend: backendFileSystem, Op: op, Reference: reference, Err: err}
}

func copyFile(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(target)
		return err
	}
	return out.Close()
}

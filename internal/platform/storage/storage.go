// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage owns the bytes of uploaded media.

A [Store] accepts an [Upload], validates it against a [Policy], writes it under
a generated collision-free filename and hands back the stored reference
("uploads/{millis}-{random}.{ext}") that rows persist. Two backends exist:

  - [FileSystem]: a local directory, served by the API under /{subdir}/.
  - [Bucket]: an S3-compatible object store (MinIO, R2, S3).

Validation always runs before the first byte reaches the backend. Removing a
reference whose file is already gone is not an error.
*/
package storage

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"
)

// Upload is one file delivered by the transport layer.
type Upload struct {
	// Reader streams the file body.
	Reader io.Reader
	// Size is the declared length in bytes, or -1 when unknown.
	Size int64
	// FileName is the client-side name; only its extension is kept.
	FileName string
	// ContentType is the media type declared by the client.
	ContentType string
}

// Object describes a stored file.
type Object struct {
	Reference string
	Size      int64
	ModTime   time.Time
}

// Store is the contract every storage backend implements.
type Store interface {
	// Put validates upload against policy and persists it, returning the stored reference.
	Put(ctx context.Context, upload Upload, policy Policy) (string, error)

	// Remove deletes the referenced file. It reports false, without error,
	// when the file was already absent.
	Remove(ctx context.Context, reference string) (bool, error)

	// Exists reports whether the referenced file is present.
	Exists(ctx context.Context, reference string) (bool, error)

	// List enumerates every stored file.
	List(ctx context.Context) ([]Object, error)
}

// Error describes a failed backend operation.
type Error struct {
	Backend   string
	Op        string
	Reference string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s %q on %s: %v", e.Op, e.Reference, e.Backend, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// maxRandom bounds the random component of generated filenames.
const maxRandom = 1_000_000_000

// NewFilename returns "{unix-millis}-{random}.{ext}".
//
// The time plus random pair keeps concurrent writers apart without any shared
// counter. Backends that can detect an existing name retry with a fresh one.
func NewFilename(ext string) string {
	name := fmt.Sprintf("%d-%d", time.Now().UnixMilli(), rand.Int64N(maxRandom))
	if ext == "" {
		return name
	}
	return name + "." + ext
}

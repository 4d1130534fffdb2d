// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/taibuivan/yatra/internal/platform/apperr"
	"github.com/taibuivan/yatra/pkg/mediaurl"
)

const backendBucket = "bucket"

// BucketConfig holds the connection settings of an S3-compatible endpoint.
type BucketConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// ObjectAPI is the subset of *minio.Client the bucket backend relies on.
type ObjectAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// Bucket stores uploads as objects keyed by their stored reference.
type Bucket struct {
	client ObjectAPI
	bucket string
	refs   *mediaurl.Normalizer
	logger *slog.Logger
}

// NewBucket connects to an S3-compatible endpoint and ensures the bucket exists.
func NewBucket(ctx context.Context, cfg BucketConfig, refs *mediaurl.Normalizer, logger *slog.Logger) (*Bucket, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("storage: bucket endpoint and name are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: invalid bucket endpoint: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to reach bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("storage: failed to create bucket: %w", err)
		}
		logger.Info("bucket_created", slog.String("bucket", cfg.Bucket))
	}

	logger.Info("bucket_connected", slog.String("endpoint", cfg.Endpoint), slog.String("bucket", cfg.Bucket))
	return NewBucketFromClient(client, cfg.Bucket, refs, logger), nil
}

// NewBucketFromClient builds a [Bucket] over an existing client.
func NewBucketFromClient(client ObjectAPI, bucket string, refs *mediaurl.Normalizer, logger *slog.Logger) *Bucket {
	return &Bucket{client: client, bucket: bucket, refs: refs, logger: logger}
}

// Put implements [Store].
func (store *Bucket) Put(ctx context.Context, upload Upload, policy Policy) (string, error) {
	prepared, err := policy.prepare(upload)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		key := store.refs.Reference(NewFilename(prepared.ext))

		taken, err := store.exists(ctx, key)
		if err != nil {
			return "", apperr.StorageWriteFailed(store.fail("put", key, err))
		}
		if taken {
			continue
		}

		_, err = store.client.PutObject(ctx, store.bucket, key,
			bytes.NewReader(prepared.data), int64(len(prepared.data)),
			minio.PutObjectOptions{ContentType: prepared.contentType},
		)
		if err != nil {
			return "", apperr.StorageWriteFailed(store.fail("put", key, err))
		}
		return key, nil
	}

	return "", apperr.StorageWriteFailed(store.fail("put", "", errors.New("object key collisions exhausted")))
}

// Remove implements [Store].
func (store *Bucket) Remove(ctx context.Context, reference string) (bool, error) {
	name := store.refs.Filename(reference)
	if name == "" {
		store.logger.WarnContext(ctx, "asset_reference_unresolvable", slog.String("reference", reference))
		return false, nil
	}
	key := store.refs.Reference(name)

	// S3 deletes are idempotent, so presence is checked first to report it.
	present, err := store.exists(ctx, key)
	if err != nil {
		return false, store.fail("remove", key, err)
	}
	if !present {
		store.logger.InfoContext(ctx, "asset_already_absent", slog.String("reference", reference))
		return false, nil
	}

	if err := store.client.RemoveObject(ctx, store.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return false, store.fail("remove", key, err)
	}
	return true, nil
}

// Exists implements [Store].
func (store *Bucket) Exists(ctx context.Context, reference string) (bool, error) {
	name := store.refs.Filename(reference)
	if name == "" {
		return false, nil
	}
	present, err := store.exists(ctx, store.refs.Reference(name))
	if err != nil {
		return false, store.fail("stat", reference, err)
	}
	return present, nil
}

// List implements [Store].
func (store *Bucket) List(ctx context.Context) ([]Object, error) {
	prefix := store.refs.Subdir() + "/"

	// Cancelling stops the listing goroutine if iteration ends early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var objects []Object
	for info := range store.client.ListObjects(ctx, store.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, store.fail("list", prefix, info.Err)
		}
		if strings.HasSuffix(info.Key, "/") {
			continue
		}
		objects = append(objects, Object{Reference: info.Key, Size: info.Size, ModTime: info.LastModified})
	}
	return objects, nil
}

func (store *Bucket) exists(ctx context.Context, key string) (bool, error) {
	_, err := store.client.StatObject(ctx, store.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, err
}

func (store *Bucket) fail(op, reference string, err error) error {
	return &Error{Backend: backendBucket, Op: op, Reference: reference, Err: err}
}

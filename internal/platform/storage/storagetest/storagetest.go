// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package storagetest provides upload fixtures for tests.
package storagetest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"

	"github.com/taibuivan/yatra/internal/platform/storage"
)

// PNG returns the bytes of a valid 2x2 PNG image.
func PNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, G: 80, B: 20, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// ImageUpload wraps [PNG] in an [storage.Upload] named name.
func ImageUpload(name string) *storage.Upload {
	data := PNG()
	return &storage.Upload{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		FileName:    name,
		ContentType: "image/png",
	}
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package storage

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	// Decoders registered for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/taibuivan/yatra/internal/platform/apperr"
)

// Default upload limits.
const (
	DefaultImageMaxBytes    int64 = 5 << 20
	DefaultDocumentMaxBytes int64 = 10 << 20
)

// FieldFile is the validation field name reported for upload violations.
const FieldFile = "file"

// Policy is the per-call-site allow-list an upload must satisfy.
type Policy struct {
	Name       string
	MaxBytes   int64
	Extensions []string
	MediaTypes []string
	// DecodeImage additionally requires the body to decode as an image header.
	DecodeImage bool
}

// ImagePolicy accepts jpg, png, webp and gif up to maxBytes (5 MB when <= 0).
func ImagePolicy(maxBytes int64) Policy {
	if maxBytes <= 0 {
		maxBytes = DefaultImageMaxBytes
	}
	return Policy{
		Name:        "image",
		MaxBytes:    maxBytes,
		Extensions:  []string{"jpg", "jpeg", "png", "webp", "gif"},
		MediaTypes:  []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/gif"},
		DecodeImage: true,
	}
}

// DocumentPolicy accepts pdf and Word documents up to maxBytes (10 MB when <= 0).
func DocumentPolicy(maxBytes int64) Policy {
	if maxBytes <= 0 {
		maxBytes = DefaultDocumentMaxBytes
	}
	return Policy{
		Name:       "document",
		MaxBytes:   maxBytes,
		Extensions: []string{"pdf", "doc", "docx"},
		MediaTypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			// docx is a zip container; legacy .doc has no sniffable signature.
			"application/zip",
			"application/octet-stream",
		},
	}
}

// extensionsByType lists the extensions a sniffed media type may carry. The
// first one is used when the client sent a name without an extension. Types
// without an entry (legacy .doc sniffs as octet-stream) are only checked
// against the policy allow-list.
var extensionsByType = map[string][]string{
	"image/jpeg":      {"jpg", "jpeg"},
	"image/png":       {"png"},
	"image/webp":      {"webp"},
	"image/gif":       {"gif"},
	"application/pdf": {"pdf"},
	"application/zip": {"docx"},
}

// payload is an upload that passed its policy and is ready to be written.
type payload struct {
	data        []byte
	ext         string
	contentType string
}

// prepare buffers and validates an upload. Nothing is written anywhere.
func (p Policy) prepare(upload Upload) (*payload, error) {
	if upload.Reader == nil {
		return nil, violation("No file was provided")
	}

	// 1. Declared size
	if upload.Size > p.MaxBytes {
		return nil, violation(fmt.Sprintf("File exceeds the %d byte limit", p.MaxBytes))
	}

	// 2. Actual size (read at most one byte past the limit)
	data, err := io.ReadAll(io.LimitReader(upload.Reader, p.MaxBytes+1))
	if err != nil {
		return nil, violation("The uploaded file could not be read")
	}
	if len(data) == 0 {
		return nil, violation("The uploaded file is empty")
	}
	if int64(len(data)) > p.MaxBytes {
		return nil, violation(fmt.Sprintf("File exceeds the %d byte limit", p.MaxBytes))
	}

	// 3. Media type, sniffed from content and cross-checked with the declared type
	sniffed := normalizeContentType(http.DetectContentType(data))
	if !slices.Contains(p.MediaTypes, sniffed) {
		return nil, violation(fmt.Sprintf("Unsupported %s type %q", p.Name, sniffed))
	}
	declared := normalizeContentType(upload.ContentType)
	if declared != "" && declared != "application/octet-stream" && !slices.Contains(p.MediaTypes, declared) {
		return nil, violation(fmt.Sprintf("Unsupported %s type %q", p.Name, declared))
	}

	// 4. Extension, preserved from the original name and matching the content
	matching, known := extensionsByType[sniffed]
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(upload.FileName), "."))
	if ext == "" && known {
		ext = matching[0]
	}
	if !slices.Contains(p.Extensions, ext) {
		return nil, violation(fmt.Sprintf("Extension %q is not allowed for %s uploads", ext, p.Name))
	}
	if known && !slices.Contains(matching, ext) {
		return nil, violation(fmt.Sprintf("Extension %q does not match the %q content", ext, sniffed))
	}

	// 5. Image header
	if p.DecodeImage {
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return nil, violation("The uploaded file is not a valid image")
		}
	}

	return &payload{data: data, ext: ext, contentType: sniffed}, nil
}

func violation(message string) error {
	return apperr.ValidationError("Invalid upload", apperr.FieldError{Field: FieldFile, Message: message})
}

// normalizeContentType strips parameters and lowercases a media type.
func normalizeContentType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(value)
	}
	return strings.ToLower(mediaType)
}

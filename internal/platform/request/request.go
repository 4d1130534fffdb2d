// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and the
multipart body used by media-carrying writes, ensuring consistent error
handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yatra/internal/platform/apperr"
	"github.com/taibuivan/yatra/internal/platform/constants"
	"github.com/taibuivan/yatra/internal/platform/storage"
	"github.com/taibuivan/yatra/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns validate.ErrInvalidJSON if decoding fails.
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Int64Param parses a positive numeric URL parameter such as a row id.
*/
func Int64Param(request *http.Request, name string) (int64, error) {
	value, err := strconv.ParseInt(chi.URLParam(request, name), 10, 64)
	if err != nil || value <= 0 {
		return 0, apperr.ValidationError("Invalid path parameter", apperr.FieldError{Field: name, Message: "Must be a positive integer"})
	}
	return value, nil
}

/*
OptionalInt64Query parses a numeric query parameter; absent yields nil.
*/
func OptionalInt64Query(request *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(request.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return nil, apperr.ValidationError("Invalid query parameter", apperr.FieldError{Field: name, Message: "Must be a positive integer"})
	}
	return &value, nil
}

// # Multipart

/*
ParseMultipart bounds the body to maxBytes and parses it as multipart/form-data.

A plain JSON body is also accepted so clients that send no file can skip the
multipart encoding; [DecodeData] and [File] handle both shapes.
*/
func ParseMultipart(writer http.ResponseWriter, request *http.Request, maxBytes int64) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBytes)

	if !isMultipart(request) {
		return nil
	}

	if err := request.ParseMultipartForm(constants.MultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.ValidationError("Invalid upload", apperr.FieldError{Field: storage.FieldFile, Message: "Request body is too large"})
		}
		return apperr.ValidationError("Invalid multipart body")
	}
	return nil
}

/*
DecodeData decodes the JSON document of a write into target: the "data" form
field of a multipart body, or the whole body otherwise.
*/
func DecodeData(request *http.Request, target interface{}) error {
	if !isMultipart(request) {
		return DecodeJSON(request, target)
	}

	raw := request.FormValue(constants.FormFieldData)
	if raw == "" {
		return validate.Invalid(constants.FormFieldData, "The data field is required")
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
File returns the uploaded part named field, or nil when there is none.

The returned release function closes the part and must always be called.
*/
func File(request *http.Request, field string) (*storage.Upload, func(), error) {
	noop := func() {}
	if request.MultipartForm == nil {
		return nil, noop, nil
	}

	part, header, err := request.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, apperr.ValidationError("Invalid upload", apperr.FieldError{Field: field, Message: "The file could not be read"})
	}

	return upload(part, header), func() { _ = part.Close() }, nil
}

func upload(part multipart.File, header *multipart.FileHeader) *storage.Upload {
	return &storage.Upload{
		Reader:      part,
		Size:        header.Size,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}
}

func isMultipart(request *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(request.Header.Get("Content-Type")), "multipart/form-data")
}

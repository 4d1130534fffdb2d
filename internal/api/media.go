// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"
	"strings"
)

// mediaCacheControl applies to stored files; names are never reused.
const mediaCacheControl = "public, max-age=31536000, immutable"

// NewMediaHandler serves the files of dir without directory listings.
func NewMediaHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "" || strings.HasSuffix(request.URL.Path, "/") {
			http.NotFound(writer, request)
			return
		}
		writer.Header().Set("Cache-Control", mediaCacheControl)
		writer.Header().Set("X-Content-Type-Options", "nosniff")
		files.ServeHTTP(writer, request)
	})
}

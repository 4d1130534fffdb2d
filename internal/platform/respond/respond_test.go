// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yatra/internal/platform/apperr"
	"github.com/taibuivan/yatra/internal/platform/ctxutil"
	"github.com/taibuivan/yatra/internal/platform/respond"
	"github.com/taibuivan/yatra/internal/platform/sec"
	"github.com/taibuivan/yatra/pkg/pagination"
)

/*
TestError_StorageWriteFailed logs the failed write with the caller and the
place kind, and hides the cause from the client.
*/
func TestError_StorageWriteFailed(t *testing.T) {
	var logs bytes.Buffer
	ctx := ctxutil.WithLogger(t.Context(), slog.New(slog.NewJSONHandler(&logs, nil)))
	ctx = ctxutil.WithAuthUser(ctx, &sec.AuthClaims{UserID: "mod-1", Role: "moderator"})
	ctx = ctxutil.WithLogAttrs(ctx, slog.String("place_kind", "state/village"))

	request := httptest.NewRequest(http.MethodPost, "/places/state/village", nil).WithContext(ctx)
	recorder := httptest.NewRecorder()

	respond.Error(recorder, request, apperr.StorageWriteFailed(errors.New("connection reset during insert")))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	var body respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "STORAGE_WRITE_FAILED", body.Code)
	assert.NotContains(t, recorder.Body.String(), "connection reset")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &entry))
	assert.Equal(t, "api_server_error", entry["msg"])
	assert.Equal(t, "mod-1", entry["actor"])
	assert.Equal(t, "state/village", entry["place_kind"])
}

/*
TestError_Unclassified turns a bare error into INTERNAL_ERROR.
*/
func TestError_Unclassified(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/places/state/region", nil), errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "boom")

	recorder = httptest.NewRecorder()
	respond.Error(recorder, httptest.NewRequest(http.MethodGet, "/places/state/region/9", nil), apperr.NotFound("Region"))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Region not found")
}

/*
TestPaginated wraps a page in the list envelope.
*/
func TestPaginated(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.Paginated(recorder, []string{"Kerala"}, pagination.Params{Page: 1, Limit: 1}.Meta(2))

	assert.Equal(t, "application/json; charset=utf-8", recorder.Header().Get("Content-Type"))
	assert.JSONEq(t,
		`{"data":["Kerala"],"meta":{"page":1,"limit":1,"total":2,"total_pages":2,"has_next":true}}`,
		recorder.Body.String(),
	)
}

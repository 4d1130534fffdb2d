// Copyright (c) 2026 Yatra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yatra/internal/platform/apperr"
	requestutil "github.com/taibuivan/yatra/internal/platform/request"
)

type payload struct {
	Title string `json:"title"`
}

func multipartRequest(t *testing.T, data string, file []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if data != "" {
		require.NoError(t, writer.WriteField("data", data))
	}
	if file != nil {
		part, err := writer.CreateFormFile("file", "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	request := httptest.NewRequest(http.MethodPost, "/", body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	return request
}

/*
TestMultipart_DataAndFile reads the JSON part and the file part.
*/
func TestMultipart_DataAndFile(t *testing.T) {
	request := multipartRequest(t, `{"title":"Varanasi"}`, []byte("jpeg bytes"))
	require.NoError(t, requestutil.ParseMultipart(httptest.NewRecorder(), request, 1<<20))

	var target payload
	require.NoError(t, requestutil.DecodeData(request, &target))
	assert.Equal(t, "Varanasi", target.Title)

	upload, release, err := requestutil.File(request, "file")
	require.NoError(t, err)
	defer release()
	require.NotNil(t, upload)
	assert.Equal(t, "photo.jpg", upload.FileName)
	assert.Equal(t, int64(10), upload.Size)

	content, err := io.ReadAll(upload.Reader)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(content))
}

/*
TestMultipart_NoFile yields a nil upload and a usable release function.
*/
func TestMultipart_NoFile(t *testing.T) {
	request := multipartRequest(t, `{"title":"Puri"}`, nil)
	require.NoError(t, requestutil.ParseMultipart(httptest.NewRecorder(), request, 1<<20))

	upload, release, err := requestutil.File(request, "file")
	require.NoError(t, err)
	assert.Nil(t, upload)
	release()
}

/*
TestMultipart_Rejections covers oversize bodies, a missing data part and bad JSON.
*/
func TestMultipart_Rejections(t *testing.T) {
	t.Run("too large", func(t *testing.T) {
		request := multipartRequest(t, `{"title":"Agra"}`, bytes.Repeat([]byte{'x'}, 4096))
		err := requestutil.ParseMultipart(httptest.NewRecorder(), request, 512)
		assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
	})

	t.Run("missing data", func(t *testing.T) {
		request := multipartRequest(t, "", []byte("x"))
		require.NoError(t, requestutil.ParseMultipart(httptest.NewRecorder(), request, 1<<20))
		var target payload
		err := requestutil.DecodeData(request, &target)
		require.Error(t, err)
		assert.Equal(t, "data", apperr.As(err).Details[0].Field)
	})

	t.Run("bad json", func(t *testing.T) {
		request := multipartRequest(t, `{"title":`, nil)
		require.NoError(t, requestutil.ParseMultipart(httptest.NewRecorder(), request, 1<<20))
		var target payload
		assert.True(t, apperr.HasCode(requestutil.DecodeData(request, &target), "VALIDATION_ERROR"))
	})
}

/*
TestDecodeData_JSONBody accepts a plain JSON body when nothing is multipart.
*/
func TestDecodeData_JSONBody(t *testing.T) {
	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Hampi"}`))
	request.Header.Set("Content-Type", "application/json")
	require.NoError(t, requestutil.ParseMultipart(httptest.NewRecorder(), request, 1<<20))

	var target payload
	require.NoError(t, requestutil.DecodeData(request, &target))
	assert.Equal(t, "Hampi", target.Title)

	upload, _, err := requestutil.File(request, "file")
	require.NoError(t, err)
	assert.Nil(t, upload)
}

package handler

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cmsapi/internal/model"
	"cmsapi/internal/schema"
	"cmsapi/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		part.Write([]byte(content))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadFile(t *testing.T) {
	r := newRoutedApp(t, true)

	t.Run("success", func(t *testing.T) {
		body, ct := multipartBody(t, "test.txt", "hello world", nil)

		expected := &model.File{ID: 1, Name: "test.txt"}
		r.uploads.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.Filename == "test.txt" && in.Size == 11 && in.Ref == nil
		})).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := r.app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.File
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expected.ID, result.ID)
	})

	t.Run("with ref", func(t *testing.T) {
		body, ct := multipartBody(t, "logo.png", "png", map[string]string{
			"ref": "seller", "refId": "4", "field": "logo",
		})

		r.uploads.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.Ref != nil && *in.Ref == service.UploadRef{Resource: "seller", ID: 4, Field: "logo"}
		})).Return(&model.File{ID: 2}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := r.app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("invalid refId", func(t *testing.T) {
		body, ct := multipartBody(t, "logo.png", "png", map[string]string{"ref": "seller", "refId": "x"})

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := r.app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})

	t.Run("invalid ref field", func(t *testing.T) {
		body, ct := multipartBody(t, "logo.png", "png", map[string]string{
			"ref": "seller", "refId": "4", "field": "customers",
		})
		r.uploads.On("Upload", mock.Anything, mock.Anything).
			Return(nil, schema.ErrInvalidRelation).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := r.app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_RELATION", res.Error.Code)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		// Missing content-type and body
		resp, _ := r.app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		body, ct := multipartBody(t, "test.txt", "hello", nil)
		r.uploads.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := r.app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
	r.uploads.AssertExpectations(t)
}

func TestListFiles(t *testing.T) {
	r := newRoutedApp(t, true)

	t.Run("success", func(t *testing.T) {
		expected := &service.FileListResult{Items: []model.File{{ID: 1, Name: "test.pdf"}}, Total: 1}
		r.uploads.On("List", mock.Anything, service.FileListQuery{
			Limit: 10, RelatedType: "seller", RelatedID: 4, Field: "logo",
		}).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/upload/files?related_type=seller&related_id=4&field=logo", nil)
		resp, _ := r.app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.FileListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/upload/files?limit=abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		r.uploads.On("List", mock.Anything, service.FileListQuery{Limit: 10}).Return(nil, errors.New("service error")).Once()

		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/upload/files", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
	r.uploads.AssertExpectations(t)
}

func TestGetFile(t *testing.T) {
	r := newRoutedApp(t, true)

	t.Run("success", func(t *testing.T) {
		r.uploads.On("Get", mock.Anything, uint(5)).
			Return(&model.File{ID: 5, URL: "http://minio/x?sig"}, nil).Once()

		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/upload/files/5", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.File
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "http://minio/x?sig", result.URL)
	})

	t.Run("not found", func(t *testing.T) {
		r.uploads.On("Get", mock.Anything, uint(6)).Return(nil, service.ErrNotFound).Once()

		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/upload/files/6", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/upload/files/abc", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
	r.uploads.AssertExpectations(t)
}

func TestDownloadFile(t *testing.T) {
	r := newRoutedApp(t, true)
	r.uploads.On("Open", mock.Anything, uint(5)).
		Return(io.NopCloser(strings.NewReader("hello")), &model.File{ID: 5, Name: "a.txt", Mime: "text/plain", Size: 5}, nil).Once()

	resp, _ := r.app.Test(httptest.NewRequest(http.MethodGet, "/upload/files/5/content", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "a.txt")

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "hello", string(body))
	r.uploads.AssertExpectations(t)
}

func TestDeleteFile(t *testing.T) {
	r := newRoutedApp(t, true)

	t.Run("success", func(t *testing.T) {
		r.uploads.On("Delete", mock.Anything, uint(1)).Return(nil).Once()

		resp, _ := r.app.Test(httptest.NewRequest(http.MethodDelete, "/upload/files/1", nil))
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		r.uploads.On("Delete", mock.Anything, uint(2)).Return(service.ErrNotFound).Once()

		resp, _ := r.app.Test(httptest.NewRequest(http.MethodDelete, "/upload/files/2", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		r.uploads.On("Delete", mock.Anything, uint(3)).Return(errors.New("delete error")).Once()

		resp, _ := r.app.Test(httptest.NewRequest(http.MethodDelete, "/upload/files/3", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
	r.uploads.AssertExpectations(t)
}

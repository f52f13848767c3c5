package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mycloudbox/mycloudbox/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	cfg := testConfig()
	a, gateway := newTestApp(t, cfg)
	h := NewFileHandler(a.FileService, cfg.UploadMaxSize)
	user := registerUser(t, a, "up@example.com")

	rec := httptest.NewRecorder()
	h.Upload(rec, asUser(multipartUpload(t, "cat.png", pngBytes, ""), user))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var file model.File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &file))
	assert.Equal(t, user.ID, file.UserID)
	assert.Equal(t, "png", file.Format)
	assert.Nil(t, file.FolderID)
	require.NotNil(t, file.Name)
	assert.Equal(t, "cat.png", *file.Name)
	assert.True(t, gateway.Has(file.StorageRef, model.ResourceImage))
}

func TestUpload_Rejected(t *testing.T) {
	cfg := testConfig()
	cfg.UploadMaxSize = 64
	a, gateway := newTestApp(t, cfg)
	h := NewFileHandler(a.FileService, cfg.UploadMaxSize)
	user := registerUser(t, a, "reject@example.com")

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"too large", multipartUpload(t, "big.bin", bytes.Repeat([]byte("x"), 4<<20), ""), http.StatusRequestEntityTooLarge},
		{"over limit but under slack", multipartUpload(t, "big.bin", bytes.Repeat([]byte("x"), 100), ""), http.StatusBadRequest},
		{"blocked extension", multipartUpload(t, "setup.exe", []byte("MZ"), ""), http.StatusBadRequest},
		{"unknown folder", multipartUpload(t, "cat.png", pngBytes, "no-such-folder"), http.StatusNotFound},
		{"not multipart", jsonRequest(http.MethodPost, "/api/files/upload", `{}`), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Upload(rec, asUser(tt.req, user))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}

	assert.Zero(t, gateway.Len())
}

func TestFileEndpoints(t *testing.T) {
	cfg := testConfig()
	a, gateway := newTestApp(t, cfg)
	h := NewFileHandler(a.FileService, cfg.UploadMaxSize)
	ctx := context.Background()

	owner := registerUser(t, a, "owner@example.com")
	other := registerUser(t, a, "other@example.com")

	folder, err := a.FolderService.Create(ctx, owner.ID, "Receipts")
	require.NoError(t, err)
	file, err := a.FileService.Upload(ctx, owner.ID, pngBytes, "cat.png", nil)
	require.NoError(t, err)

	t.Run("move into folder", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Move(rec, asUser(jsonRequest(http.MethodPut, "/", `{"folderId":"`+folder.ID+`"}`), owner, "id", file.ID))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = httptest.NewRecorder()
		h.ByFolder(rec, asUser(httptest.NewRequest(http.MethodGet, "/", nil), owner, "folderId", folder.ID))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp filesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Files, 1)
		assert.Equal(t, file.ID, resp.Files[0].ID)
	})

	t.Run("other users are forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Move(rec, asUser(jsonRequest(http.MethodPut, "/", `{"folderId":null}`), other, "id", file.ID))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = httptest.NewRecorder()
		h.Delete(rec, asUser(httptest.NewRequest(http.MethodDelete, "/", nil), other, "id", file.ID))
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = httptest.NewRecorder()
		h.Download(rec, asUser(httptest.NewRequest(http.MethodGet, "/", nil), other, "id", file.ID))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("public view needs no user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Public(rec, asUser(httptest.NewRequest(http.MethodGet, "/", nil), nil, "id", file.ID))
		require.Equal(t, http.StatusOK, rec.Code)

		var public map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &public))
		assert.Equal(t, "cat.png", public["name"])
		assert.Equal(t, "png", public["format"])
		assert.NotContains(t, public, "userId")
		assert.NotContains(t, public, "storageRef")
	})

	t.Run("unfile with null", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Move(rec, asUser(jsonRequest(http.MethodPut, "/", `{"folderId":null}`), owner, "id", file.ID))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.Unfiled(rec, asUser(httptest.NewRequest(http.MethodGet, "/", nil), owner))

		var resp filesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Files, 1)
	})

	t.Run("download redirects", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Download(rec, asUser(httptest.NewRequest(http.MethodGet, "/", nil), owner, "id", file.ID))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, file.URL, rec.Header().Get("Location"))
	})

	t.Run("delete", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Delete(rec, asUser(httptest.NewRequest(http.MethodDelete, "/", nil), owner, "id", file.ID))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, gateway.Has(file.StorageRef, model.ResourceImage))

		rec = httptest.NewRecorder()
		h.Public(rec, asUser(httptest.NewRequest(http.MethodGet, "/", nil), nil, "id", file.ID))
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = httptest.NewRecorder()
		h.MyFiles(rec, asUser(httptest.NewRequest(http.MethodGet, "/", nil), owner))
		assert.JSONEq(t, `{"files":[]}`, rec.Body.String())
	})
}

func TestOptionalID(t *testing.T) {
	assert.Nil(t, optionalID(""))
	assert.Nil(t, optionalID("null"))
	require.NotNil(t, optionalID("abc"))
	assert.Equal(t, "abc", *optionalID("abc"))
}

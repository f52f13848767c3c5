package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mycloudbox/mycloudbox/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", fmt.Errorf("file 1: %w", service.ErrNotFound), http.StatusNotFound, "not found"},
		{"forbidden", fmt.Errorf("file 1: %w", service.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"invalid name", fmt.Errorf("%w: name is required", service.ErrInvalidName), http.StatusBadRequest, "invalid name: name is required"},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
		{"duplicate email", service.ErrEmailAlreadyExists, http.StatusConflict, "email already exists"},
		{"upload", fmt.Errorf("%w: timeout", service.ErrUploadFailed), http.StatusBadGateway, "upload failed"},
		{"storage delete", fmt.Errorf("%w: timeout", service.ErrStorageDeleteFailed), http.StatusBadGateway, "storage delete failed"},
		{"unexpected", errors.New("database is locked"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Error)
			assert.Nil(t, body.Result)
		})
	}
}

func TestHandleServiceError_CascadeCarriesReport(t *testing.T) {
	result := &service.CascadeResult{
		FolderID: "folder-1",
		Deleted:  []string{"f1"},
		Failed:   []service.FileFailure{{FileID: "f2", Reason: "storage delete failed"}},
	}
	err := fmt.Errorf("%w: %w", &service.CascadeError{Result: result}, service.ErrStorageDeleteFailed)

	rec := httptest.NewRecorder()
	handleServiceError(rec, httptest.NewRequest(http.MethodDelete, "/api/folders/folder-1", nil), err)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Result)
	assert.Equal(t, "folder-1", body.Result.FolderID)
	assert.Equal(t, []string{"f1"}, body.Result.Deleted)
	require.Len(t, body.Result.Failed, 1)
	assert.Equal(t, "f2", body.Result.Failed[0].FileID)
}

func TestDecodeJSON(t *testing.T) {
	var v folderRequest

	err := decodeJSON(httptest.NewRecorder(), jsonRequest(http.MethodPost, "/", ""), &v)
	assert.EqualError(t, err, "request body is required")

	err = decodeJSON(httptest.NewRecorder(), jsonRequest(http.MethodPost, "/", "{"), &v)
	assert.Error(t, err)

	err = decodeJSON(httptest.NewRecorder(), jsonRequest(http.MethodPost, "/", `{"name":"Receipts"}`), &v)
	require.NoError(t, err)
	assert.Equal(t, "Receipts", v.Name)
}

package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mycloudbox/mycloudbox/internal/app"
	"github.com/mycloudbox/mycloudbox/internal/config"
	"github.com/mycloudbox/mycloudbox/internal/ctxkeys"
	"github.com/mycloudbox/mycloudbox/internal/db"
	"github.com/mycloudbox/mycloudbox/internal/model"
	"github.com/mycloudbox/mycloudbox/internal/storage"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func testConfig() *config.Config {
	return &config.Config{
		AppName:         "MyCloudBox",
		AppEnv:          "development",
		AppURL:          "http://localhost:5000",
		JWTSecret:       "test-secret",
		JWTExpiry:       time.Hour,
		StorageDriver:   config.StorageDriverMemory,
		S3PresignExpiry: time.Minute,
		UploadMaxSize:   1 << 20,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) (*app.App, *storage.MemoryGateway) {
	t.Helper()

	gateway := storage.NewMemoryGateway(cfg.AppURL + "/storage")
	return newTestAppWithGateway(t, cfg, gateway), gateway
}

func newTestAppWithGateway(t *testing.T, cfg *config.Config, gateway storage.Gateway) *app.App {
	t.Helper()

	database, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	return app.Wire(cfg, database, gateway)
}

func registerUser(t *testing.T, a *app.App, email string) *model.User {
	t.Helper()
	user, err := a.AuthService.Register(context.Background(), "Test User", email, "correct-horse-battery")
	require.NoError(t, err)
	return user
}

// asUser attaches path values and the authenticated user the way the router
// and AuthMiddleware would.
func asUser(r *http.Request, user *model.User, pathValues ...string) *http.Request {
	for i := 0; i+1 < len(pathValues); i += 2 {
		r.SetPathValue(pathValues[i], pathValues[i+1])
	}
	if user == nil {
		return r
	}
	return r.WithContext(ctxkeys.WithUser(r.Context(), user))
}

func multipartUpload(t *testing.T, filename string, data []byte, folderID string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	if folderID != "" {
		require.NoError(t, mw.WriteField("folderId", folderID))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

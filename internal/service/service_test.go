package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mycloudbox/mycloudbox/internal/db"
	"github.com/mycloudbox/mycloudbox/internal/model"
	"github.com/mycloudbox/mycloudbox/internal/repository"
	"github.com/mycloudbox/mycloudbox/internal/storage"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	pdfBytes = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
)

type deleteCall struct {
	ref  string
	kind model.ResourceKind
}

// faultGateway wraps the in-memory gateway and fails on demand.
type faultGateway struct {
	*storage.MemoryGateway

	mu          sync.Mutex
	failUploads bool
	failDeletes map[string]bool // by ref; "*" fails every delete
	uploads     []*storage.Object
	deletes     []deleteCall
}

func newFaultGateway() *faultGateway {
	return &faultGateway{
		MemoryGateway: storage.NewMemoryGateway("http://localhost/storage"),
		failDeletes:   make(map[string]bool),
	}
}

func (g *faultGateway) Upload(ctx context.Context, data []byte, filename string) (*storage.Object, error) {
	g.mu.Lock()
	fail := g.failUploads
	g.mu.Unlock()

	if fail {
		return nil, fmt.Errorf("%w: simulated outage", storage.ErrGateway)
	}

	obj, err := g.MemoryGateway.Upload(ctx, data, filename)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.uploads = append(g.uploads, obj)
	g.mu.Unlock()
	return obj, nil
}

func (g *faultGateway) Delete(ctx context.Context, ref string, kind model.ResourceKind) error {
	g.mu.Lock()
	g.deletes = append(g.deletes, deleteCall{ref: ref, kind: kind})
	fail := g.failDeletes["*"] || g.failDeletes[ref]
	g.mu.Unlock()

	if fail {
		return fmt.Errorf("%w: simulated timeout", storage.ErrGateway)
	}
	return g.MemoryGateway.Delete(ctx, ref, kind)
}

func (g *faultGateway) failDeletesFor(ref string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failDeletes[ref] = true
}

func (g *faultGateway) deleteCalls() []deleteCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]deleteCall(nil), g.deletes...)
}

func (g *faultGateway) uploadCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.uploads)
}

// testClock ticks one second per call so creation order is deterministic.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	db         *sqlx.DB
	gateway    *faultGateway
	userRepo   repository.UserRepository
	fileRepo   repository.FileRepository
	folderRepo repository.FolderRepository
	files      *FileService
	folders    *FolderService
	users      *UserService
	auth       *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.Init("sqlite", filepath.Join(t.TempDir(), "test.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	userRepo := repository.NewUserRepository(database)
	fileRepo := repository.NewFileRepository(database)
	folderRepo := repository.NewFolderRepository(database)

	gateway := newFaultGateway()
	clock := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	files := NewFileService(fileRepo, folderRepo, gateway, time.Minute)
	files.now = clock.Now
	folders := NewFolderService(folderRepo, fileRepo, files)
	folders.now = clock.Now

	emails := NewEmailService("", "noreply@example.com", "http://localhost:5000", "MyCloudBox", true)

	return &testEnv{
		db:         database,
		gateway:    gateway,
		userRepo:   userRepo,
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		files:      files,
		folders:    folders,
		users:      NewUserService(userRepo, files, emails),
		auth:       NewAuthService(userRepo, emails, "test-secret", false, time.Hour),
	}
}

func (e *testEnv) createUser(t *testing.T, name string) string {
	t.Helper()

	user := &model.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     fmt.Sprintf("%s-%s@example.com", name, uuid.New().String()[:8]),
		CreatedAt: time.Now(),
	}
	require.NoError(t, e.userRepo.Create(context.Background(), user))
	return user.ID
}

func (e *testEnv) upload(t *testing.T, userID, name string, data []byte, folderID *string) *model.File {
	t.Helper()

	file, err := e.files.Upload(context.Background(), userID, data, name, folderID)
	require.NoError(t, err)
	return file
}

func fileIDs(files []*model.File) []string {
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.ID)
	}
	return ids
}

func strPtr(s string) *string { return &s }

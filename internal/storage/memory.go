package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/mycloudbox/mycloudbox/internal/model"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryGateway keeps objects in process memory. It backs
// STORAGE_DRIVER=memory for local development and serves the stored
// bytes itself.
type MemoryGateway struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]memoryObject
}

func NewMemoryGateway(baseURL string) *MemoryGateway {
	return &MemoryGateway{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]memoryObject),
	}
}

func (g *MemoryGateway) Upload(ctx context.Context, data []byte, filename string) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGateway, err)
	}

	format, contentType := detectFormat(data, filename)
	ref := newRef()
	key := objectKey(ref, model.Classify(format))

	g.mu.Lock()
	g.objects[key] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	g.mu.Unlock()

	return &Object{
		Ref:         ref,
		URL:         g.baseURL + "/" + key,
		Format:      format,
		ContentType: contentType,
		Size:        int64(len(data)),
	}, nil
}

// Delete fails when no object exists under the given ref and kind, which
// surfaces a misclassified delete instead of silently leaking the object.
func (g *MemoryGateway) Delete(ctx context.Context, ref string, kind model.ResourceKind) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrGateway, err)
	}

	key := objectKey(ref, kind)

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.objects[key]; !ok {
		return fmt.Errorf("%w: object %s not found", ErrGateway, key)
	}
	delete(g.objects, key)

	return nil
}

// Has reports whether an object is stored under ref and kind.
func (g *MemoryGateway) Has(ref string, kind model.ResourceKind) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.objects[objectKey(ref, kind)]
	return ok
}

func (g *MemoryGateway) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.objects)
}

// ServeHTTP serves stored objects by key, relative to the mount point.
func (g *MemoryGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.PathValue("key"), "/")

	g.mu.RLock()
	obj, ok := g.objects[key]
	g.mu.RUnlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", obj.contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Write(obj.data)
}

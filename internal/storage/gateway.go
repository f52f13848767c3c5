package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	cfg "github.com/mycloudbox/mycloudbox/internal/config"
	"github.com/mycloudbox/mycloudbox/internal/model"
)

// ErrGateway wraps every failure reported by a storage gateway.
var ErrGateway = errors.New("storage gateway error")

// refPrefix namespaces every object this application creates.
const refPrefix = "mycloudbox/"

// Gateway holds the actual file bytes. The application only keeps the
// references it hands back.
type Gateway interface {
	// Upload stores data and detects its content type automatically.
	Upload(ctx context.Context, data []byte, filename string) (*Object, error)

	// Delete removes the object identified by ref. The resource kind must
	// match the one the object was uploaded under.
	Delete(ctx context.Context, ref string, kind model.ResourceKind) error
}

// Presigner is implemented by gateways that can hand out short-lived
// private download links.
type Presigner interface {
	PresignedURL(ctx context.Context, ref string, kind model.ResourceKind, expiry time.Duration) (string, error)
}

// Object is the gateway's upload response.
type Object struct {
	Ref         string
	URL         string
	Format      string
	ContentType string
	Size        int64
}

// New creates the gateway selected by STORAGE_DRIVER.
func New(ctx context.Context, c *cfg.Config) (Gateway, error) {
	switch c.StorageDriver {
	case cfg.StorageDriverMemory:
		slog.Warn("using in-memory storage gateway, uploads are lost on restart")
		return NewMemoryGateway(strings.TrimSuffix(c.AppURL, "/") + "/storage"), nil
	case cfg.StorageDriverS3:
		slog.Info("initializing S3 storage gateway",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Gateway(ctx, S3Config{
			Region:        c.S3Region,
			Bucket:        c.S3Bucket,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			Endpoint:      c.S3Endpoint,
			PublicURL:     c.S3PublicURL,
			PathStyle:     c.S3PathStyle,
			UploadTimeout: c.StorageUploadTimeout,
			DeleteTimeout: c.StorageDeleteTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
}

func newRef() string {
	return refPrefix + uuid.New().String()
}

// objectKey lays objects out by resource kind, so a delete has to name the
// same kind the upload was classified as.
func objectKey(ref string, kind model.ResourceKind) string {
	return string(kind) + "/" + ref
}

// detectFormat sniffs the content type and derives a lowercase format tag.
// Unrecognised bytes and plain text take the filename extension instead,
// so a .md file stays md rather than txt.
func detectFormat(data []byte, filename string) (format, contentType string) {
	mt := mimetype.Detect(data)
	contentType = mt.String()

	format = strings.TrimPrefix(mt.Extension(), ".")
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext != "" && (format == "" || mt.Is("text/plain")) {
		format = ext
	}

	return strings.ToLower(format), contentType
}

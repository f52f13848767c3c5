package model

import (
	"strings"
	"time"
)

// File is the metadata of an object held by the storage gateway.
// StorageRef, URL, Format and Size are copied verbatim from the gateway's
// upload response and never change afterwards.
type File struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"userId"`
	StorageRef string    `db:"storage_ref" json:"storageRef"`
	URL        string    `db:"url" json:"url"`
	Name       *string   `db:"name" json:"name"`
	Format     string    `db:"format" json:"format"`
	Size       int64     `db:"size" json:"size"`
	FolderID   *string   `db:"folder_id" json:"folderId"` // nil = unfiled
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

func (f *File) OwnedBy(userID string) bool {
	return f.UserID == userID
}

// Public returns the projection served by the share link.
func (f *File) Public() *PublicFile {
	return &PublicFile{
		Name:      f.Name,
		Format:    f.Format,
		URL:       f.URL,
		CreatedAt: f.CreatedAt,
	}
}

// PublicFile is readable by anyone who knows the file id.
type PublicFile struct {
	Name      *string   `json:"name"`
	Format    string    `json:"format"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName returns the original filename or a fallback built from the format.
func (p *PublicFile) DisplayName() string {
	if p.Name != nil && *p.Name != "" {
		return *p.Name
	}
	if p.Format != "" {
		return "untitled." + p.Format
	}
	return "untitled"
}

// ResourceKind is the resource type the storage gateway needs on every call.
type ResourceKind string

const (
	ResourceImage ResourceKind = "image"
	ResourceVideo ResourceKind = "video"
	ResourceRaw   ResourceKind = "raw"
)

var (
	imageFormats = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true}
	videoFormats = map[string]bool{"mp4": true, "mov": true, "avi": true, "webm": true}
)

// Classify maps a file format tag to its resource kind. Unknown formats are raw.
func Classify(format string) ResourceKind {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	switch {
	case imageFormats[f]:
		return ResourceImage
	case videoFormats[f]:
		return ResourceVideo
	default:
		return ResourceRaw
	}
}

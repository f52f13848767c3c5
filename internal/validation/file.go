package validation

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// UploadConstraints defines validation rules for file uploads.
// Any content type is accepted; the storage gateway detects it.
type UploadConstraints struct {
	MaxSize           int64
	BlockedExtensions map[string]bool
}

// DefaultBlockedExtensions lists executables we refuse to host behind public links.
var DefaultBlockedExtensions = map[string]bool{
	".exe": true,
	".bat": true,
	".cmd": true,
	".com": true,
	".msi": true,
	".scr": true,
}

func NewUploadConstraints(maxSize int64) UploadConstraints {
	return UploadConstraints{
		MaxSize:           maxSize,
		BlockedExtensions: DefaultBlockedExtensions,
	}
}

// ValidateUpload checks the multipart header before the file is read.
func ValidateUpload(header *multipart.FileHeader, constraints UploadConstraints) error {
	if header == nil {
		return fmt.Errorf("file is required")
	}

	if header.Size <= 0 {
		return fmt.Errorf("file is empty")
	}

	if constraints.MaxSize > 0 && header.Size > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return fmt.Errorf("file too large: maximum size is %d MB", maxMB)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if constraints.BlockedExtensions[ext] {
		return fmt.Errorf("file type not allowed: %s", ext)
	}

	return nil
}

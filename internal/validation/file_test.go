package validation

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUpload(t *testing.T) {
	c := NewUploadConstraints(1 << 20)

	tests := []struct {
		name    string
		header  *multipart.FileHeader
		wantErr bool
	}{
		{"nil header", nil, true},
		{"empty file", &multipart.FileHeader{Filename: "a.txt", Size: 0}, true},
		{"too large", &multipart.FileHeader{Filename: "a.txt", Size: 2 << 20}, true},
		{"blocked extension", &multipart.FileHeader{Filename: "setup.EXE", Size: 10}, true},
		{"ok", &multipart.FileHeader{Filename: "photo.png", Size: 10}, false},
		{"no extension", &multipart.FileHeader{Filename: "README", Size: 10}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateUpload(tc.header, c)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUpload_NoLimit(t *testing.T) {
	err := ValidateUpload(&multipart.FileHeader{Filename: "big.bin", Size: 1 << 40}, UploadConstraints{})
	assert.NoError(t, err)
}

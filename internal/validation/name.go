package validation

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const maxFolderNameLength = 255

var ErrFolderNameRequired = errors.New("folder name is required")

// NormalizeName trims surrounding whitespace and converts the name to NFC so
// visually identical names compare equal.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// ValidateName validates a user's display name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if len(trimmed) > 100 {
		return errors.New("name is too long (max 100 characters)")
	}

	return nil
}

// ValidateFolderName expects an already normalized name.
func ValidateFolderName(name string) error {
	if name == "" {
		return ErrFolderNameRequired
	}

	if utf8.RuneCountInString(name) > maxFolderNameLength {
		return errors.New("folder name is too long (max 255 characters)")
	}

	return nil
}

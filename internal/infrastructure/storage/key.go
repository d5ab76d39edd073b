// Package storage holds helpers shared by the domain.ObjectStorage adapters.
package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxExtLen = 10

// NewKey builds a fresh object key from a random UUID and the extension of suggestedName.
// Only lowercase alphanumeric extensions are kept so keys stay path and URL safe.
func NewKey(suggestedName string) string {
	key := uuid.New().String()
	if ext := cleanExt(suggestedName); ext != "" {
		key += "." + ext
	}
	return key
}

// ValidateKey rejects keys that could escape the adapter's namespace.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage key cannot be empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

func cleanExt(name string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if ext == "" || len(ext) > maxExtLen {
		return ""
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrStorageFailure  = errors.New("storage failure")
	ErrPartialUpload   = errors.New("partial upload failure")
	ErrPartialCascade  = errors.New("partial cascade failure")
	ErrCategoryInUse   = errors.New("category is referenced by products")

	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrImageNotFound    = fmt.Errorf("image %w", ErrNotFound)
	ErrObjectNotFound   = fmt.Errorf("stored object %w", ErrNotFound)
)

// StorageError reports a failed object-store call.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorageFailure }

// ImageUploadFailure describes one upload that did not end up as an Image record.
// CompensationErr is set when the stored object could not be removed afterwards,
// in which case OrphanedKey names the object left behind.
type ImageUploadFailure struct {
	Index           int
	Filename        string
	Err             error
	OrphanedKey     string
	CompensationErr error
}

// PartialUploadError is returned when some uploads of a create/update call failed.
// Stored counts the images that were persisted.
type PartialUploadError struct {
	ProductID string
	Requested int
	Stored    int
	Failures  []ImageUploadFailure
}

func (e *PartialUploadError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msg := fmt.Sprintf("#%d %s: %v", f.Index, f.Filename, f.Err)
		if f.CompensationErr != nil {
			msg += fmt.Sprintf(" (orphaned object %s: %v)", f.OrphanedKey, f.CompensationErr)
		}
		parts = append(parts, msg)
	}
	return fmt.Sprintf("product %s: stored %d of %d images: %s",
		e.ProductID, e.Stored, e.Requested, strings.Join(parts, "; "))
}

func (e *PartialUploadError) Is(target error) bool { return target == ErrPartialUpload }

// ImageDeleteFailure describes one image that could not be removed during a cascade.
type ImageDeleteFailure struct {
	ImageID    string
	StorageKey string
	Err        error
}

// PartialCascadeError is returned by a product delete when some images could not be removed.
// The product record is kept so the caller can retry.
type PartialCascadeError struct {
	ProductID string
	Failures  []ImageDeleteFailure
}

func (e *PartialCascadeError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.ImageID, f.Err))
	}
	return fmt.Sprintf("product %s: %d images could not be removed: %s",
		e.ProductID, len(e.Failures), strings.Join(parts, "; "))
}

func (e *PartialCascadeError) Is(target error) bool { return target == ErrPartialCascade }

// FailedImageIDs lists the ids of the images still present after the cascade.
func (e *PartialCascadeError) FailedImageIDs() []string {
	ids := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		ids[i] = f.ImageID
	}
	return ids
}

package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyImage = fmt.Errorf("%w: image payload is empty", ErrInvalidArgument)

// Image is the metadata record of a product picture. The bytes live in ObjectStorage under StorageKey.
type Image struct {
	ID         string
	ProductID  string
	StorageKey string
	CreatedAt  time.Time
}

// NewImage creates the metadata record for an object already written to storage.
func NewImage(productID, storageKey string) *Image {
	return &Image{
		ID:         uuid.New().String(),
		ProductID:  productID,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}
}

// ImageUpload is one uploaded payload waiting to be stored.
type ImageUpload struct {
	Filename string
	Content  []byte
}

// ValidateUploads rejects empty payloads before anything is written.
func ValidateUploads(uploads []ImageUpload) error {
	for i, u := range uploads {
		if len(u.Content) == 0 {
			return fmt.Errorf("image #%d %q: %w", i, u.Filename, ErrEmptyImage)
		}
	}
	return nil
}

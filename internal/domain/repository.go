package domain

import (
	"context"
)

// CategoryRepository defines the contract for category storage
type CategoryRepository interface {
	Create(ctx context.Context, category *Category) error
	Exists(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (*Category, error)
	FindAll(ctx context.Context) ([]*Category, error)
	Delete(ctx context.Context, id string) error
}

// ProductRepository defines the contract for product storage.
// Returned products never carry images; the services assemble those.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	// Update applies the non-nil fields of patch and returns the stored result.
	Update(ctx context.Context, id string, patch ProductPatch) (*Product, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]*Product, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}

// ImageRepository defines the contract for image metadata storage
type ImageRepository interface {
	Create(ctx context.Context, image *Image) error
	FindByID(ctx context.Context, id string) (*Image, error)
	// FindByProductID returns the images of a product in creation order.
	FindByProductID(ctx context.Context, productID string) ([]*Image, error)
	Delete(ctx context.Context, id string) error
}

// ObjectStorage holds the binary payloads referenced by Image.StorageKey.
type ObjectStorage interface {
	// Save writes data and returns a fresh key. suggestedName only contributes its extension.
	Save(ctx context.Context, data []byte, suggestedName string) (string, error)
	// Delete removes the object. Deleting a missing key succeeds.
	Delete(ctx context.Context, key string) error
	// Read returns the object bytes or ErrObjectNotFound.
	Read(ctx context.Context, key string) ([]byte, error)
}

package dto

import (
	"time"

	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents the request to create a product.
// Transports decode their own wire format into it.
type CreateProductRequest struct {
	Name        string
	Value       decimal.Decimal
	Description string
	CategoryID  string
	Images      []domain.ImageUpload
}

// UpdateProductRequest represents a partial update. Nil fields are left unchanged.
type UpdateProductRequest struct {
	ID          string
	Name        *string
	Value       *decimal.Decimal
	Description *string
	CategoryID  *string
	Images      []domain.ImageUpload
}

// Patch extracts the scalar fields of the request
func (r *UpdateProductRequest) Patch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:        r.Name,
		Value:       r.Value,
		Description: r.Description,
		CategoryID:  r.CategoryID,
	}
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Value       decimal.Decimal  `json:"value"`
	Description string           `json:"description"`
	CategoryID  string           `json:"categoryId"`
	Images      []*ImageResponse `json:"images"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Value:       p.Value,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Images:      ToImageResponseList(p.Images),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}

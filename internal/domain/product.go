package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidProductName        = fmt.Errorf("%w: product name is required", ErrInvalidArgument)
	ErrInvalidProductDescription = fmt.Errorf("%w: product description is required", ErrInvalidArgument)
	ErrInvalidProductValue       = fmt.Errorf("%w: product value must not be negative", ErrInvalidArgument)
	ErrInvalidCategoryID         = fmt.Errorf("%w: category id is required", ErrInvalidArgument)
)

// Product represents the product entity
type Product struct {
	ID          string
	Name        string
	Value       decimal.Decimal
	Description string
	CategoryID  string
	Images      []*Image
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct creates a new product with validation
func NewProduct(name string, value decimal.Decimal, description, categoryID string) (*Product, error) {
	now := time.Now().UTC()
	product := &Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		Value:       value,
		Description: strings.TrimSpace(description),
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := product.Validate(); err != nil {
		return nil, err
	}

	return product, nil
}

// Validate performs business validation on the product
func (p *Product) Validate() error {
	if err := validateName(p.Name); err != nil {
		return err
	}
	if err := validateDescription(p.Description); err != nil {
		return err
	}
	if err := validateValue(p.Value); err != nil {
		return err
	}
	if p.CategoryID == "" {
		return ErrInvalidCategoryID
	}
	return nil
}

// ProductPatch carries the fields of a partial update. Nil fields are left unchanged.
type ProductPatch struct {
	Name        *string
	Value       *decimal.Decimal
	Description *string
	CategoryID  *string
}

// IsEmpty reports whether the patch changes no scalar field.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Value == nil && p.Description == nil && p.CategoryID == nil
}

// Validate checks every field present in the patch with the same rules as NewProduct.
func (p ProductPatch) Validate() error {
	if p.Name != nil {
		if err := validateName(*p.Name); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := validateDescription(*p.Description); err != nil {
			return err
		}
	}
	if p.Value != nil {
		if err := validateValue(*p.Value); err != nil {
			return err
		}
	}
	if p.CategoryID != nil && *p.CategoryID == "" {
		return ErrInvalidCategoryID
	}
	return nil
}

// Apply copies the present fields onto product and bumps UpdatedAt.
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = strings.TrimSpace(*p.Name)
	}
	if p.Value != nil {
		product.Value = *p.Value
	}
	if p.Description != nil {
		product.Description = strings.TrimSpace(*p.Description)
	}
	if p.CategoryID != nil {
		product.CategoryID = *p.CategoryID
	}
	product.UpdatedAt = time.Now().UTC()
}

// ProductFilter narrows a product listing. Zero value lists everything.
type ProductFilter struct {
	CategoryID string
}

// Matches reports whether product passes the filter.
func (f ProductFilter) Matches(p *Product) bool {
	return f.CategoryID == "" || p.CategoryID == f.CategoryID
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidProductName
	}
	return nil
}

func validateDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrInvalidProductDescription
	}
	return nil
}

func validateValue(value decimal.Decimal) error {
	if value.IsNegative() {
		return ErrInvalidProductValue
	}
	return nil
}

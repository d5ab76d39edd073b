package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidCategoryName = fmt.Errorf("%w: category name is required", ErrInvalidArgument)

// Category groups products. Products reference a category by id; the category never owns them.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// NewCategory creates a new category with validation
func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidCategoryName
	}

	return &Category{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}, nil
}

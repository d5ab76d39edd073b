package handler

import (
	"fmt"
	"net/http"

	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/shopspring/decimal"
)

// imageBody is an image sent inline in a JSON body. Content is base64 encoded on the wire.
type imageBody struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

type createProductBody struct {
	Name        string           `json:"name"`
	Value       *decimal.Decimal `json:"value"`
	Description string           `json:"description"`
	CategoryID  string           `json:"categoryId"`
	Images      []imageBody      `json:"images"`
}

type updateProductBody struct {
	Name        *string          `json:"name"`
	Value       *decimal.Decimal `json:"value"`
	Description *string          `json:"description"`
	CategoryID  *string          `json:"categoryId"`
	Images      []imageBody      `json:"images"`
}

func toUploads(images []imageBody) []domain.ImageUpload {
	uploads := make([]domain.ImageUpload, len(images))
	for i, img := range images {
		uploads[i] = domain.ImageUpload{Filename: img.Filename, Content: img.Content}
	}
	return uploads
}

func decodeCreateJSON(r *http.Request) (*dto.CreateProductRequest, error) {
	var body createProductBody
	if err := decodeJSON(r, &body); err != nil {
		return nil, err
	}
	if body.Value == nil {
		return nil, fmt.Errorf("%w: value is required", domain.ErrInvalidProductValue)
	}
	return &dto.CreateProductRequest{
		Name:        body.Name,
		Value:       *body.Value,
		Description: body.Description,
		CategoryID:  body.CategoryID,
		Images:      toUploads(body.Images),
	}, nil
}

func decodeUpdateJSON(r *http.Request) (*dto.UpdateProductRequest, error) {
	var body updateProductBody
	if err := decodeJSON(r, &body); err != nil {
		return nil, err
	}
	return &dto.UpdateProductRequest{
		Name:        body.Name,
		Value:       body.Value,
		Description: body.Description,
		CategoryID:  body.CategoryID,
		Images:      toUploads(body.Images),
	}, nil
}

package dto

import (
	"time"

	"github.com/mrops-br/catalog-api/internal/domain"
)

type ImageResponse struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	StorageKey string    `json:"storageKey"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ImageContent is an image record together with its stored bytes
type ImageContent struct {
	Image       *ImageResponse
	ContentType string
	Data        []byte
}

func ToImageResponse(img *domain.Image) *ImageResponse {
	return &ImageResponse{
		ID:         img.ID,
		ProductID:  img.ProductID,
		StorageKey: img.StorageKey,
		CreatedAt:  img.CreatedAt,
	}
}

// ToImageResponseList never returns nil so products without images encode as [].
func ToImageResponseList(images []*domain.Image) []*ImageResponse {
	responses := make([]*ImageResponse, len(images))
	for i, img := range images {
		responses[i] = ToImageResponse(img)
	}
	return responses
}

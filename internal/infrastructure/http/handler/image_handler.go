package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/catalog-api/internal/app/service"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/response"
)

// ImageHandler handles HTTP requests for single product images
type ImageHandler struct {
	service *service.ImageService
	logger  *slog.Logger
}

func NewImageHandler(service *service.ImageService, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		service: service,
		logger:  logger,
	}
}

// GetImage handles GET /product-images/{id} and streams the stored bytes
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.ReadImageContent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err, nil)
		return
	}

	w.Header().Set("Content-Type", content.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content.Data); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to write image body",
			slog.String("image_id", content.Image.ID),
			slog.String("error", err.Error()),
		)
	}
}

// GetImageMetadata handles GET /product-images/{id}/metadata
func (h *ImageHandler) GetImageMetadata(w http.ResponseWriter, r *http.Request) {
	image, err := h.service.GetImage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromError(w, err, nil)
		return
	}

	response.JSON(w, http.StatusOK, image)
}

// DeleteImage handles DELETE /product-images/{id}
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteImageByID(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromError(w, err, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

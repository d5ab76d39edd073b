package handler

import (
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/app/service"
	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/mrops-br/catalog-api/internal/infrastructure/http/response"
)

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service        *service.ProductService
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewProductHandler creates a new product handler. Request bodies above maxUploadBytes are rejected.
func NewProductHandler(service *service.ProductService, logger *slog.Logger, maxUploadBytes int64) *ProductHandler {
	return &ProductHandler{
		service:        service,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateProduct handles POST /products with a JSON or multipart/form-data body
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.limitBody(w, r); err != nil {
		h.rejectBody(w, r, err)
		return
	}

	var req *dto.CreateProductRequest
	var err error
	if isMultipart(r) {
		var form *multipart.Form
		if form, err = parseMultipart(r); err == nil {
			req, err = decodeCreateForm(form)
		}
	} else {
		req, err = decodeCreateJSON(r)
	}
	if err != nil {
		h.rejectBody(w, r, err)
		return
	}

	product, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		response.FromError(w, err, product)
		return
	}

	response.JSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /products/{id}. Only the fields present in the body change.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.limitBody(w, r); err != nil {
		h.rejectBody(w, r, err)
		return
	}

	var req *dto.UpdateProductRequest
	var err error
	if isMultipart(r) {
		var form *multipart.Form
		if form, err = parseMultipart(r); err == nil {
			req, err = decodeUpdateForm(form)
		}
	} else {
		req, err = decodeUpdateJSON(r)
	}
	if err != nil {
		h.rejectBody(w, r, err)
		return
	}
	req.ID = chi.URLParam(r, "id")

	product, err := h.service.UpdateProduct(r.Context(), req)
	if err != nil {
		response.FromError(w, err, product)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromError(w, err, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetProduct handles GET /products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.GetProductByID(r.Context(), id)
	if err != nil {
		response.FromError(w, err, nil)
		return
	}

	response.JSON(w, http.StatusOK, product)
}

// ListProducts handles GET /products, optionally filtered by ?categoryId=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domain.ProductFilter{CategoryID: r.URL.Query().Get("categoryId")}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		response.FromError(w, err, nil)
		return
	}

	response.JSON(w, http.StatusOK, products)
}

func (h *ProductHandler) rejectBody(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.WarnContext(r.Context(), "Failed to decode request body",
		slog.String("error", err.Error()),
	)
	response.FromError(w, err, nil)
}

// limitBody rejects declared oversized bodies up front and caps the rest while they are read
func (h *ProductHandler) limitBody(w http.ResponseWriter, r *http.Request) error {
	if r.ContentLength > h.maxUploadBytes {
		return &http.MaxBytesError{Limit: h.maxUploadBytes}
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	return nil
}

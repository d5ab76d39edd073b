package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const defaultCascadeConcurrency = 4

// ProductOption configures a ProductService
type ProductOption func(*ProductService)

// WithCascadeConcurrency bounds the number of image deletions running at once during DeleteProduct.
func WithCascadeConcurrency(n int) ProductOption {
	return func(s *ProductService) {
		if n > 0 {
			s.cascadeConcurrency = n
		}
	}
}

// ProductService keeps products, their category reference and their stored images consistent
type ProductService struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository
	images     domain.ImageRepository
	storage    domain.ObjectStorage

	tracer             trace.Tracer
	logger             *slog.Logger
	cascadeConcurrency int

	productOperations metric.Int64Counter
	imagesStored      metric.Int64Counter
	imagesDeleted     metric.Int64Counter
	compensations     metric.Int64Counter
}

// NewProductService creates a new product service
func NewProductService(
	categories domain.CategoryRepository,
	products domain.ProductRepository,
	images domain.ImageRepository,
	storage domain.ObjectStorage,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
	opts ...ProductOption,
) *ProductService {
	productOperations, _ := meter.Int64Counter(
		"catalog.operations",
		metric.WithDescription("Total number of catalog operations"),
	)

	imagesStored, _ := meter.Int64Counter(
		"catalog.images.stored",
		metric.WithDescription("Total number of product images stored"),
	)

	imagesDeleted, _ := meter.Int64Counter(
		"catalog.images.deleted",
		metric.WithDescription("Total number of product images removed"),
	)

	compensations, _ := meter.Int64Counter(
		"catalog.compensations",
		metric.WithDescription("Stored objects removed after their image record could not be written"),
	)

	s := &ProductService{
		categories:         categories,
		products:           products,
		images:             images,
		storage:            storage,
		tracer:             tracer,
		logger:             logger,
		cascadeConcurrency: defaultCascadeConcurrency,
		productOperations:  productOperations,
		imagesStored:       imagesStored,
		imagesDeleted:      imagesDeleted,
		compensations:      compensations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProduct validates the category and fields, persists the product and stores its images.
// When some uploads fail the assembled product is returned together with a *domain.PartialUploadError.
func (s *ProductService) CreateProduct(ctx context.Context, req *dto.CreateProductRequest) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.CreateProduct")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.name", req.Name),
		attribute.String("product.value", req.Value.String()),
		attribute.String("category.id", req.CategoryID),
		attribute.Int("image.requested", len(req.Images)),
	)

	s.logger.InfoContext(ctx, "Creating product",
		slog.String("name", req.Name),
		slog.String("category_id", req.CategoryID),
		slog.Int("images", len(req.Images)),
	)

	if err := s.requireCategory(ctx, req.CategoryID); err != nil {
		s.fail(ctx, span, "create", "Category validation failed", err)
		return nil, err
	}

	product, err := domain.NewProduct(req.Name, req.Value, req.Description, req.CategoryID)
	if err != nil {
		s.fail(ctx, span, "create", "Validation failed", err)
		return nil, err
	}
	if err := domain.ValidateUploads(req.Images); err != nil {
		s.fail(ctx, span, "create", "Validation failed", err)
		return nil, err
	}

	span.SetAttributes(attribute.String("product.id", product.ID))

	if err := s.products.Create(ctx, product); err != nil {
		err = fmt.Errorf("failed to store product: %w", err)
		s.fail(ctx, span, "create", "Failed to store product", err)
		return nil, err
	}

	stored, uploadErr := s.storeImages(ctx, product.ID, req.Images)
	product.Images = stored
	resp := dto.ToProductResponse(product)

	if uploadErr != nil {
		s.fail(ctx, span, "create", "Some images could not be stored", uploadErr)
		return resp, uploadErr
	}

	s.record(ctx, "create", "success")
	s.logger.InfoContext(ctx, "Product created successfully",
		slog.String("product_id", product.ID),
		slog.Int("images", len(stored)),
	)

	span.SetStatus(codes.Ok, "Product created successfully")
	return resp, nil
}

// UpdateProduct applies the present fields and appends new images. Existing images are kept.
func (s *ProductService) UpdateProduct(ctx context.Context, req *dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.UpdateProduct")
	defer span.End()

	span.SetAttributes(
		attribute.String("product.id", req.ID),
		attribute.Int("image.requested", len(req.Images)),
	)

	s.logger.InfoContext(ctx, "Updating product",
		slog.String("product_id", req.ID),
		slog.Int("images", len(req.Images)),
	)

	product, err := s.products.FindByID(ctx, req.ID)
	if err != nil {
		s.fail(ctx, span, "update", "Product lookup failed", err)
		return nil, err
	}

	patch := req.Patch()
	if patch.CategoryID != nil {
		if err := s.requireCategory(ctx, *patch.CategoryID); err != nil {
			s.fail(ctx, span, "update", "Category validation failed", err)
			return nil, err
		}
	}
	if err := patch.Validate(); err != nil {
		s.fail(ctx, span, "update", "Validation failed", err)
		return nil, err
	}
	if err := domain.ValidateUploads(req.Images); err != nil {
		s.fail(ctx, span, "update", "Validation failed", err)
		return nil, err
	}

	if !patch.IsEmpty() {
		product, err = s.products.Update(ctx, req.ID, patch)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				err = fmt.Errorf("failed to update product: %w", err)
			}
			s.fail(ctx, span, "update", "Failed to update product", err)
			return nil, err
		}
	}

	_, uploadErr := s.storeImages(ctx, product.ID, req.Images)

	images, err := s.images.FindByProductID(ctx, product.ID)
	if err != nil {
		err = fmt.Errorf("failed to load product images: %w", err)
		s.fail(ctx, span, "update", "Failed to load images", err)
		return nil, errors.Join(uploadErr, err)
	}
	product.Images = images
	resp := dto.ToProductResponse(product)

	if uploadErr != nil {
		s.fail(ctx, span, "update", "Some images could not be stored", uploadErr)
		return resp, uploadErr
	}

	s.record(ctx, "update", "success")
	s.logger.InfoContext(ctx, "Product updated successfully",
		slog.String("product_id", product.ID),
	)

	span.SetStatus(codes.Ok, "Product updated successfully")
	return resp, nil
}

// DeleteProduct removes every image (object first, then metadata) and only then the product.
// If any image survives, the product is kept and a *domain.PartialCascadeError is returned.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "ProductService.DeleteProduct")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	s.logger.InfoContext(ctx, "Deleting product",
		slog.String("product_id", id),
	)

	if _, err := s.products.FindByID(ctx, id); err != nil {
		s.fail(ctx, span, "delete", "Product lookup failed", err)
		return err
	}

	images, err := s.images.FindByProductID(ctx, id)
	if err != nil {
		err = fmt.Errorf("failed to list product images: %w", err)
		s.fail(ctx, span, "delete", "Failed to list images", err)
		return err
	}
	span.SetAttributes(attribute.Int("image.count", len(images)))

	if failures := s.cascadeImages(ctx, images); len(failures) > 0 {
		err := &domain.PartialCascadeError{ProductID: id, Failures: failures}
		s.fail(ctx, span, "delete", "Cascade incomplete, product kept", err)
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			err = fmt.Errorf("failed to delete product: %w", err)
		}
		s.fail(ctx, span, "delete", "Failed to delete product", err)
		return err
	}

	s.record(ctx, "delete", "success")
	s.logger.InfoContext(ctx, "Product deleted successfully",
		slog.String("product_id", id),
		slog.Int("images", len(images)),
	)

	span.SetStatus(codes.Ok, "Product deleted successfully")
	return nil
}

// GetProductByID retrieves a product with its images
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.GetProductByID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", id))

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		s.fail(ctx, span, "read", "Product lookup failed", err)
		return nil, err
	}

	product.Images, err = s.images.FindByProductID(ctx, id)
	if err != nil {
		err = fmt.Errorf("failed to load product images: %w", err)
		s.fail(ctx, span, "read", "Failed to load images", err)
		return nil, err
	}

	s.record(ctx, "read", "success")
	span.SetStatus(codes.Ok, "Product retrieved successfully")
	return dto.ToProductResponse(product), nil
}

// ListProducts retrieves the products matching filter with their images
func (s *ProductService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*dto.ProductResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.ListProducts")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", filter.CategoryID))

	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		s.fail(ctx, span, "list", "Failed to retrieve products", err)
		return nil, err
	}

	for _, p := range products {
		p.Images, err = s.images.FindByProductID(ctx, p.ID)
		if err != nil {
			err = fmt.Errorf("failed to load images of product %s: %w", p.ID, err)
			s.fail(ctx, span, "list", "Failed to load images", err)
			return nil, err
		}
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	s.record(ctx, "list", "success")

	s.logger.InfoContext(ctx, "Products listed successfully",
		slog.Int("count", len(products)),
	)

	span.SetStatus(codes.Ok, "Products listed successfully")
	return dto.ToProductResponseList(products), nil
}

func (s *ProductService) requireCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return domain.ErrCategoryNotFound
	}
	ok, err := s.categories.Exists(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !ok {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// storeImages stores every upload in order. A failed upload does not stop the remaining ones.
func (s *ProductService) storeImages(ctx context.Context, productID string, uploads []domain.ImageUpload) ([]*domain.Image, error) {
	if len(uploads) == 0 {
		return []*domain.Image{}, nil
	}

	stored := make([]*domain.Image, 0, len(uploads))
	var failures []domain.ImageUploadFailure

	for i, upload := range uploads {
		img, failure := s.storeImage(ctx, productID, i, upload)
		if failure != nil {
			failures = append(failures, *failure)
			continue
		}
		stored = append(stored, img)
	}

	s.imagesStored.Add(ctx, int64(len(stored)))

	if len(failures) > 0 {
		return stored, &domain.PartialUploadError{
			ProductID: productID,
			Requested: len(uploads),
			Stored:    len(stored),
			Failures:  failures,
		}
	}
	return stored, nil
}

// storeImage writes the object, records it, and removes the object again if recording fails
func (s *ProductService) storeImage(ctx context.Context, productID string, index int, upload domain.ImageUpload) (*domain.Image, *domain.ImageUploadFailure) {
	key, err := s.storage.Save(ctx, upload.Content, upload.Filename)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to store image object",
			slog.String("product_id", productID),
			slog.String("filename", upload.Filename),
			slog.String("error", err.Error()),
		)
		return nil, &domain.ImageUploadFailure{
			Index:    index,
			Filename: upload.Filename,
			Err:      &domain.StorageError{Op: "save", Err: err},
		}
	}

	img := domain.NewImage(productID, key)
	if err := s.images.Create(ctx, img); err != nil {
		failure := &domain.ImageUploadFailure{
			Index:    index,
			Filename: upload.Filename,
			Err:      fmt.Errorf("failed to record image: %w", err),
		}

		if cerr := s.storage.Delete(ctx, key); cerr != nil {
			failure.OrphanedKey = key
			failure.CompensationErr = &domain.StorageError{Op: "delete", Key: key, Err: cerr}
			s.compensations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failure")))
			s.logger.ErrorContext(ctx, "Compensation failed, stored object is orphaned",
				slog.String("product_id", productID),
				slog.String("storage_key", key),
				slog.String("error", cerr.Error()),
			)
		} else {
			s.compensations.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "success")))
			s.logger.WarnContext(ctx, "Image record failed, stored object removed",
				slog.String("product_id", productID),
				slog.String("storage_key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil, failure
	}

	return img, nil
}

// cascadeImages attempts every deletion and returns the failures in input order
func (s *ProductService) cascadeImages(ctx context.Context, images []*domain.Image) []domain.ImageDeleteFailure {
	type indexed struct {
		index   int
		failure domain.ImageDeleteFailure
	}

	var (
		mu       sync.Mutex
		failures []indexed
		removed  int64
	)

	g := new(errgroup.Group)
	g.SetLimit(s.cascadeConcurrency)

	for i, img := range images {
		g.Go(func() error {
			if err := removeImage(ctx, s.storage, s.images, img); err != nil {
				s.logger.ErrorContext(ctx, "Failed to remove image during cascade",
					slog.String("product_id", img.ProductID),
					slog.String("image_id", img.ID),
					slog.String("error", err.Error()),
				)
				mu.Lock()
				failures = append(failures, indexed{index: i, failure: domain.ImageDeleteFailure{
					ImageID:    img.ID,
					StorageKey: img.StorageKey,
					Err:        err,
				}})
				mu.Unlock()
				return nil
			}
			mu.Lock()
			removed++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	s.imagesDeleted.Add(ctx, removed)

	if len(failures) == 0 {
		return nil
	}
	sort.Slice(failures, func(a, b int) bool { return failures[a].index < failures[b].index })
	out := make([]domain.ImageDeleteFailure, len(failures))
	for i, f := range failures {
		out[i] = f.failure
	}
	return out
}

func (s *ProductService) record(ctx context.Context, operation, result string) {
	s.productOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

func (s *ProductService) fail(ctx context.Context, span trace.Span, operation, msg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.record(ctx, operation, resultOf(err))

	attrs := []any{
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	}
	if isClientError(err) {
		s.logger.WarnContext(ctx, msg, attrs...)
		return
	}
	s.logger.ErrorContext(ctx, msg, attrs...)
}

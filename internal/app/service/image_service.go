package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ImageService handles single product images
type ImageService struct {
	images  domain.ImageRepository
	storage domain.ObjectStorage

	tracer trace.Tracer
	logger *slog.Logger

	imageOperations metric.Int64Counter
	imagesDeleted   metric.Int64Counter
}

// NewImageService creates a new image service
func NewImageService(
	images domain.ImageRepository,
	storage domain.ObjectStorage,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *ImageService {
	imageOperations, _ := meter.Int64Counter(
		"catalog.operations",
		metric.WithDescription("Total number of catalog operations"),
	)

	imagesDeleted, _ := meter.Int64Counter(
		"catalog.images.deleted",
		metric.WithDescription("Total number of product images removed"),
	)

	return &ImageService{
		images:          images,
		storage:         storage,
		tracer:          tracer,
		logger:          logger,
		imageOperations: imageOperations,
		imagesDeleted:   imagesDeleted,
	}
}

// DeleteImageByID removes the stored object and then the metadata record of one image.
// The owning product and its other images are left untouched.
func (s *ImageService) DeleteImageByID(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "ImageService.DeleteImageByID")
	defer span.End()

	span.SetAttributes(attribute.String("image.id", id))

	s.logger.InfoContext(ctx, "Deleting image",
		slog.String("image_id", id),
	)

	img, err := s.images.FindByID(ctx, id)
	if err != nil {
		s.fail(ctx, span, "delete_image", "Image lookup failed", err)
		return err
	}
	span.SetAttributes(
		attribute.String("product.id", img.ProductID),
		attribute.String("image.storage_key", img.StorageKey),
	)

	if err := removeImage(ctx, s.storage, s.images, img); err != nil {
		s.fail(ctx, span, "delete_image", "Failed to delete image", err)
		return err
	}

	s.imagesDeleted.Add(ctx, 1)
	s.record(ctx, "delete_image", "success")
	s.logger.InfoContext(ctx, "Image deleted successfully",
		slog.String("image_id", id),
		slog.String("product_id", img.ProductID),
	)

	span.SetStatus(codes.Ok, "Image deleted successfully")
	return nil
}

// GetImage returns the metadata of one image
func (s *ImageService) GetImage(ctx context.Context, id string) (*dto.ImageResponse, error) {
	ctx, span := s.tracer.Start(ctx, "ImageService.GetImage")
	defer span.End()

	span.SetAttributes(attribute.String("image.id", id))

	img, err := s.images.FindByID(ctx, id)
	if err != nil {
		s.fail(ctx, span, "read_image", "Image lookup failed", err)
		return nil, err
	}

	s.record(ctx, "read_image", "success")
	span.SetStatus(codes.Ok, "Image retrieved successfully")
	return dto.ToImageResponse(img), nil
}

// ReadImageContent loads the stored bytes of an image and detects their content type
func (s *ImageService) ReadImageContent(ctx context.Context, id string) (*dto.ImageContent, error) {
	ctx, span := s.tracer.Start(ctx, "ImageService.ReadImageContent")
	defer span.End()

	span.SetAttributes(attribute.String("image.id", id))

	img, err := s.images.FindByID(ctx, id)
	if err != nil {
		s.fail(ctx, span, "read_image", "Image lookup failed", err)
		return nil, err
	}

	data, err := s.storage.Read(ctx, img.StorageKey)
	if err != nil {
		err = &domain.StorageError{Op: "read", Key: img.StorageKey, Err: err}
		s.fail(ctx, span, "read_image", "Failed to read stored object", err)
		return nil, err
	}

	contentType := mimetype.Detect(data).String()
	span.SetAttributes(
		attribute.String("image.content_type", contentType),
		attribute.Int("image.size", len(data)),
	)

	s.record(ctx, "read_image", "success")
	span.SetStatus(codes.Ok, "Image content retrieved successfully")
	return &dto.ImageContent{
		Image:       dto.ToImageResponse(img),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (s *ImageService) record(ctx context.Context, operation, result string) {
	s.imageOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

func (s *ImageService) fail(ctx context.Context, span trace.Span, operation, msg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.record(ctx, operation, resultOf(err))
	if isClientError(err) {
		s.logger.WarnContext(ctx, msg, slog.String("error", err.Error()))
		return
	}
	s.logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))
}

// removeImage deletes the stored object first and the metadata record second.
// A failed object delete keeps the record so the image stays reachable for a retry.
func removeImage(ctx context.Context, storage domain.ObjectStorage, images domain.ImageRepository, img *domain.Image) error {
	if err := storage.Delete(ctx, img.StorageKey); err != nil {
		return &domain.StorageError{Op: "delete", Key: img.StorageKey, Err: err}
	}
	if err := images.Delete(ctx, img.ID); err != nil && !errors.Is(err, domain.ErrImageNotFound) {
		return fmt.Errorf("failed to delete image record %s: %w", img.ID, err)
	}
	return nil
}

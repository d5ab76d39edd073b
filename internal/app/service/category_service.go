package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CategoryService manages the categories products are grouped under
type CategoryService struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository

	tracer trace.Tracer
	logger *slog.Logger

	categoryOperations metric.Int64Counter
}

// NewCategoryService creates a new category service
func NewCategoryService(
	categories domain.CategoryRepository,
	products domain.ProductRepository,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *CategoryService {
	categoryOperations, _ := meter.Int64Counter(
		"catalog.operations",
		metric.WithDescription("Total number of catalog operations"),
	)

	return &CategoryService{
		categories:         categories,
		products:           products,
		tracer:             tracer,
		logger:             logger,
		categoryOperations: categoryOperations,
	}
}

func (s *CategoryService) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CategoryService.CreateCategory")
	defer span.End()

	span.SetAttributes(attribute.String("category.name", req.Name))

	category, err := domain.NewCategory(req.Name)
	if err != nil {
		s.fail(ctx, span, "create_category", "Validation failed", err)
		return nil, err
	}

	if err := s.categories.Create(ctx, category); err != nil {
		err = fmt.Errorf("failed to store category: %w", err)
		s.fail(ctx, span, "create_category", "Failed to store category", err)
		return nil, err
	}

	s.record(ctx, "create_category", "success")
	s.logger.InfoContext(ctx, "Category created successfully",
		slog.String("category_id", category.ID),
		slog.String("name", category.Name),
	)

	span.SetStatus(codes.Ok, "Category created successfully")
	return dto.ToCategoryResponse(category), nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CategoryService.GetCategory")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", id))

	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		s.fail(ctx, span, "read_category", "Category lookup failed", err)
		return nil, err
	}

	s.record(ctx, "read_category", "success")
	span.SetStatus(codes.Ok, "Category retrieved successfully")
	return dto.ToCategoryResponse(category), nil
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]*dto.CategoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "CategoryService.ListCategories")
	defer span.End()

	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		s.fail(ctx, span, "list_categories", "Failed to retrieve categories", err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("category.count", len(categories)))
	s.record(ctx, "list_categories", "success")
	span.SetStatus(codes.Ok, "Categories listed successfully")
	return dto.ToCategoryResponseList(categories), nil
}

// DeleteCategory refuses to remove a category that products still reference
func (s *CategoryService) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "CategoryService.DeleteCategory")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", id))

	if _, err := s.categories.FindByID(ctx, id); err != nil {
		s.fail(ctx, span, "delete_category", "Category lookup failed", err)
		return err
	}

	count, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		err = fmt.Errorf("failed to count products: %w", err)
		s.fail(ctx, span, "delete_category", "Failed to count products", err)
		return err
	}
	if count > 0 {
		err := fmt.Errorf("%w: %d products in category %s", domain.ErrCategoryInUse, count, id)
		s.fail(ctx, span, "delete_category", "Category in use", err)
		return err
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		s.fail(ctx, span, "delete_category", "Failed to delete category", err)
		return err
	}

	s.record(ctx, "delete_category", "success")
	s.logger.InfoContext(ctx, "Category deleted successfully",
		slog.String("category_id", id),
	)

	span.SetStatus(codes.Ok, "Category deleted successfully")
	return nil
}

func (s *CategoryService) record(ctx context.Context, operation, result string) {
	s.categoryOperations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("result", result),
		),
	)
}

func (s *CategoryService) fail(ctx context.Context, span trace.Span, operation, msg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.record(ctx, operation, resultOf(err))
	if isClientError(err) {
		s.logger.WarnContext(ctx, msg, slog.String("error", err.Error()))
		return
	}
	s.logger.ErrorContext(ctx, msg, slog.String("error", err.Error()))
}

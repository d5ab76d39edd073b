package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ domain.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository is an in-memory implementation of domain.CategoryRepository
type CategoryRepository struct {
	mu         sync.RWMutex
	categories map[string]*domain.Category
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewCategoryRepository creates a new in-memory category repository
func NewCategoryRepository(tracer trace.Tracer, logger *slog.Logger) *CategoryRepository {
	return &CategoryRepository{
		categories: make(map[string]*domain.Category),
		tracer:     tracer,
		logger:     logger,
	}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", category.ID))

	r.mu.Lock()
	defer r.mu.Unlock()

	c := *category
	r.categories[category.ID] = &c

	r.logger.DebugContext(ctx, "Category created in repository",
		slog.String("category_id", category.ID),
		slog.String("category_name", category.Name),
	)

	span.SetStatus(codes.Ok, "Category created successfully")
	return nil
}

func (r *CategoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, span := r.tracer.Start(ctx, "CategoryRepository.Exists")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.categories[id]
	span.SetAttributes(attribute.Bool("category.exists", exists))
	return exists, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*domain.Category, error) {
	_, span := r.tracer.Start(ctx, "CategoryRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	category, exists := r.categories[id]
	if !exists {
		span.RecordError(domain.ErrCategoryNotFound)
		span.SetStatus(codes.Error, "Category not found")
		return nil, domain.ErrCategoryNotFound
	}

	c := *category
	return &c, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) ([]*domain.Category, error) {
	_, span := r.tracer.Start(ctx, "CategoryRepository.FindAll")
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	categories := make([]*domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		c := *category
		categories = append(categories, &c)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})

	span.SetAttributes(attribute.Int("category.count", len(categories)))
	return categories, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	_, span := r.tracer.Start(ctx, "CategoryRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("category.id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[id]; !exists {
		span.RecordError(domain.ErrCategoryNotFound)
		span.SetStatus(codes.Error, "Category not found")
		return domain.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

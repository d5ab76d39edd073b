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

var _ domain.ImageRepository = (*ImageRepository)(nil)

// ImageRepository is an in-memory implementation of domain.ImageRepository
type ImageRepository struct {
	mu     sync.RWMutex
	images map[string]*domain.Image
	seq    map[string]int
	next   int
	tracer trace.Tracer
	logger *slog.Logger
}

// NewImageRepository creates a new in-memory image repository
func NewImageRepository(tracer trace.Tracer, logger *slog.Logger) *ImageRepository {
	return &ImageRepository{
		images: make(map[string]*domain.Image),
		seq:    make(map[string]int),
		tracer: tracer,
		logger: logger,
	}
}

func (r *ImageRepository) Create(ctx context.Context, image *domain.Image) error {
	ctx, span := r.tracer.Start(ctx, "ImageRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("image.id", image.ID),
		attribute.String("product.id", image.ProductID),
	)

	r.mu.Lock()
	defer r.mu.Unlock()

	img := *image
	r.images[image.ID] = &img
	r.seq[image.ID] = r.next
	r.next++

	r.logger.DebugContext(ctx, "Image created in repository",
		slog.String("image_id", image.ID),
		slog.String("product_id", image.ProductID),
	)

	span.SetStatus(codes.Ok, "Image created successfully")
	return nil
}

func (r *ImageRepository) FindByID(ctx context.Context, id string) (*domain.Image, error) {
	_, span := r.tracer.Start(ctx, "ImageRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.String("image.id", id))

	r.mu.RLock()
	defer r.mu.RUnlock()

	image, exists := r.images[id]
	if !exists {
		span.RecordError(domain.ErrImageNotFound)
		span.SetStatus(codes.Error, "Image not found")
		return nil, domain.ErrImageNotFound
	}

	img := *image
	return &img, nil
}

func (r *ImageRepository) FindByProductID(ctx context.Context, productID string) ([]*domain.Image, error) {
	_, span := r.tracer.Start(ctx, "ImageRepository.FindByProductID")
	defer span.End()

	span.SetAttributes(attribute.String("product.id", productID))

	r.mu.RLock()
	defer r.mu.RUnlock()

	images := make([]*domain.Image, 0)
	for _, image := range r.images {
		if image.ProductID == productID {
			img := *image
			images = append(images, &img)
		}
	}
	sort.Slice(images, func(i, j int) bool {
		return r.seq[images[i].ID] < r.seq[images[j].ID]
	})

	span.SetAttributes(attribute.Int("image.count", len(images)))
	return images, nil
}

func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	ctx, span := r.tracer.Start(ctx, "ImageRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("image.id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.images[id]; !exists {
		span.RecordError(domain.ErrImageNotFound)
		span.SetStatus(codes.Error, "Image not found")
		return domain.ErrImageNotFound
	}
	delete(r.images, id)
	delete(r.seq, id)

	r.logger.DebugContext(ctx, "Image deleted from repository",
		slog.String("image_id", id),
	)

	span.SetStatus(codes.Ok, "Image deleted successfully")
	return nil
}

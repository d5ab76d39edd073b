package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ domain.ImageRepository = (*ImageRepository)(nil)

// ImageRepository implements domain.ImageRepository on the product_images table.
// It stores metadata only; the bytes belong to domain.ObjectStorage.
// position numbers the images of one product in insertion order.
type ImageRepository struct {
	db     *DB
	tracer trace.Tracer
	logger *slog.Logger
}

func NewImageRepository(db *DB, tracer trace.Tracer, logger *slog.Logger) *ImageRepository {
	return &ImageRepository{db: db, tracer: tracer, logger: logger}
}

const imageColumns = `id, product_id, storage_key, created_at`

func (r *ImageRepository) Create(ctx context.Context, img *domain.Image) (err error) {
	ctx, span := r.tracer.Start(ctx, "SQLImageRepository.Create")
	defer span.End()
	defer func() { finishSpan(span, err, "Image created successfully") }()

	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}
	if img.StorageKey == "" {
		return fmt.Errorf("image storage key cannot be empty")
	}
	span.SetAttributes(
		attribute.String("image.id", img.ID),
		attribute.String("product.id", img.ProductID),
	)

	var position int
	err = r.db.RunInTransaction(ctx, func(txCtx context.Context) error {
		ex := r.db.exec(txCtx)
		err := ex.QueryRowContext(txCtx,
			r.db.rebind(`SELECT COALESCE(MAX(position), 0) + 1 FROM product_images WHERE product_id = ?`),
			img.ProductID,
		).Scan(&position)
		if err != nil {
			return fmt.Errorf("failed to allocate image position: %w", err)
		}

		_, err = ex.ExecContext(txCtx,
			r.db.rebind(`INSERT INTO product_images (`+imageColumns+`, position) VALUES (?, ?, ?, ?, ?)`),
			img.ID, img.ProductID, img.StorageKey, img.CreatedAt, position,
		)
		if err != nil {
			return fmt.Errorf("failed to insert image record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	span.SetAttributes(attribute.Int("image.position", position))
	r.logger.DebugContext(ctx, "Image created in database",
		slog.String("image_id", img.ID),
		slog.String("product_id", img.ProductID),
		slog.Int("position", position),
	)
	return nil
}

func (r *ImageRepository) FindByID(ctx context.Context, id string) (_ *domain.Image, err error) {
	ctx, span := r.tracer.Start(ctx, "SQLImageRepository.FindByID")
	defer span.End()
	defer func() { finishSpan(span, err, "") }()

	span.SetAttributes(attribute.String("image.id", id))

	var img domain.Image
	err = r.db.exec(ctx).QueryRowContext(ctx,
		r.db.rebind(`SELECT `+imageColumns+` FROM product_images WHERE id = ?`), id,
	).Scan(&img.ID, &img.ProductID, &img.StorageKey, &img.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return &img, nil
}

func (r *ImageRepository) FindByProductID(ctx context.Context, productID string) (_ []*domain.Image, err error) {
	ctx, span := r.tracer.Start(ctx, "SQLImageRepository.FindByProductID")
	defer span.End()
	defer func() { finishSpan(span, err, "") }()

	span.SetAttributes(attribute.String("product.id", productID))

	rows, err := r.db.exec(ctx).QueryContext(ctx,
		r.db.rebind(`SELECT `+imageColumns+`
			FROM product_images WHERE product_id = ? ORDER BY position, created_at, id`), productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := make([]*domain.Image, 0)
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(&img.ID, &img.ProductID, &img.StorageKey, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, &img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate images: %w", err)
	}

	span.SetAttributes(attribute.Int("image.count", len(images)))
	return images, nil
}

func (r *ImageRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := r.tracer.Start(ctx, "SQLImageRepository.Delete")
	defer span.End()
	defer func() { finishSpan(span, err, "Image deleted successfully") }()

	span.SetAttributes(attribute.String("image.id", id))

	res, err := r.db.exec(ctx).ExecContext(ctx,
		r.db.rebind(`DELETE FROM product_images WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete image record: %w", err)
	}
	if err := requireAffected(res, domain.ErrImageNotFound); err != nil {
		return err
	}

	r.logger.DebugContext(ctx, "Image deleted from database",
		slog.String("image_id", id),
	)
	return nil
}

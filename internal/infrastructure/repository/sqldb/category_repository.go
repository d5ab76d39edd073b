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

var _ domain.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements domain.CategoryRepository on the categories table
type CategoryRepository struct {
	db     *DB
	tracer trace.Tracer
	logger *slog.Logger
}

func NewCategoryRepository(db *DB, tracer trace.Tracer, logger *slog.Logger) *CategoryRepository {
	return &CategoryRepository{db: db, tracer: tracer, logger: logger}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) (err error) {
	ctx, span := r.tracer.Start(ctx, "SQLCategoryRepository.Create")
	defer span.End()
	defer func() { finishSpan(span, err, "Category created successfully") }()

	span.SetAttributes(attribute.String("category.id", c.ID))

	_, err = r.db.exec(ctx).ExecContext(ctx,
		r.db.rebind(`INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)`),
		c.ID, c.Name, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	r.logger.DebugContext(ctx, "Category created in database",
		slog.String("category_id", c.ID),
	)
	return nil
}

func (r *CategoryRepository) Exists(ctx context.Context, id string) (ok bool, err error) {
	ctx, span := r.tracer.Start(ctx, "SQLCategoryRepository.Exists")
	defer span.End()
	defer func() { finishSpan(span, err, "") }()

	span.SetAttributes(attribute.String("category.id", id))

	var count int
	err = r.db.exec(ctx).QueryRowContext(ctx,
		r.db.rebind(`SELECT COUNT(*) FROM categories WHERE id = ?`), id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	span.SetAttributes(attribute.Bool("category.exists", count > 0))
	return count > 0, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (_ *domain.Category, err error) {
	ctx, span := r.tracer.Start(ctx, "SQLCategoryRepository.FindByID")
	defer span.End()
	defer func() { finishSpan(span, err, "") }()

	span.SetAttributes(attribute.String("category.id", id))

	var c domain.Category
	err = r.db.exec(ctx).QueryRowContext(ctx,
		r.db.rebind(`SELECT id, name, created_at FROM categories WHERE id = ?`), id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) FindAll(ctx context.Context) (_ []*domain.Category, err error) {
	ctx, span := r.tracer.Start(ctx, "SQLCategoryRepository.FindAll")
	defer span.End()
	defer func() { finishSpan(span, err, "") }()

	rows, err := r.db.exec(ctx).QueryContext(ctx,
		`SELECT id, name, created_at FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	span.SetAttributes(attribute.Int("category.count", len(categories)))
	return categories, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := r.tracer.Start(ctx, "SQLCategoryRepository.Delete")
	defer span.End()
	defer func() { finishSpan(span, err, "Category deleted successfully") }()

	span.SetAttributes(attribute.String("category.id", id))

	res, err := r.db.exec(ctx).ExecContext(ctx,
		r.db.rebind(`DELETE FROM categories WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if err := requireAffected(res, domain.ErrCategoryNotFound); err != nil {
		return err
	}

	r.logger.DebugContext(ctx, "Category deleted from database",
		slog.String("category_id", id),
	)
	return nil
}

// requireAffected maps "zero rows affected" to notFound
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

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

var _ domain.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements domain.ProductRepository on the products table
type ProductRepository struct {
	db     *DB
	tracer trace.Tracer
	logger *slog.Logger
}

func NewProductRepository(db *DB, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{db: db, tracer: tracer, logger: logger}
}

const productColumns = `id, name, value, description, category_id, created_at, updated_at`

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	ctx, span := r.tracer.Start(ctx, "SQLProductRepository.Create")
	defer span.End()
	defer func() { finishSpan(span, err, "Product created successfully") }()

	span.SetAttributes(
		attribute.String("product.id", p.ID),
		attribute.String("category.id", p.CategoryID),
	)

	_, err = r.db.exec(ctx).ExecContext(ctx,
		r.db.rebind(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.Name, p.Value, p.Description, p.CategoryID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}

	r.logger.DebugContext(ctx, "Product created in database",
		slog.String("product_id", p.ID),
		slog.String("name", p.Name),
	)
	return nil
}

// Update reads, patches and writes back the row inside one transaction
func (r *ProductRepository) Update(ctx context.Context, id string, patch domain.ProductPatch) (_ *domain.Product, err error) {
	ctx, span := r.tracer.Start(ctx, "SQLProductRepository.Update")
	defer span.End()
	defer func() { finishSpan(span, err, "Product updated successfully") }()

	span.SetAttributes(attribute.String("product.id", id))

	var updated *domain.Product
	err = r.db.RunInTransaction(ctx, func(txCtx context.Context) error {
		p, err := r.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		patch.Apply(p)

		_, err = r.db.exec(txCtx).ExecContext(txCtx,
			r.db.rebind(`UPDATE products
				SET name = ?, value = ?, description = ?, category_id = ?, updated_at = ?
				WHERE id = ?`),
			p.Name, p.Value, p.Description, p.CategoryID, p.UpdatedAt, p.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "Product updated in database",
		slog.String("product_id", id),
	)
	return updated, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := r.tracer.Start(ctx, "SQLProductRepository.Delete")
	defer span.End()
	defer func() { finishSpan(span, err, "Product deleted successfully") }()

	span.SetAttributes(attribute.String("product.id", id))

	res, err := r.db.exec(ctx).ExecContext(ctx,
		r.db.rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if err := requireAffected(res, domain.ErrProductNotFound); err != nil {
		return err
	}

	r.logger.DebugContext(ctx, "Product deleted from database",
		slog.String("product_id", id),
	)
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	ctx, span := r.tracer.Start(ctx, "SQLProductRepository.FindByID")
	defer span.End()
	defer func() { finishSpan(span, err, "") }()

	span.SetAttributes(attribute.String("product.id", id))

	row := r.db.exec(ctx).QueryRowContext(ctx,
		r.db.rebind(`SELECT `+productColumns+` FROM products WHERE id = ?`), id)

	p, err := scanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepository) FindAll(ctx context.Context, filter domain.ProductFilter) (_ []*domain.Product, err error) {
	ctx, span := r.tracer.Start(ctx, "SQLProductRepository.FindAll")
	defer span.End()
	defer func() { finishSpan(span, err, "") }()

	span.SetAttributes(attribute.String("category.id", filter.CategoryID))

	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if filter.CategoryID != "" {
		query += ` WHERE category_id = ?`
		args = append(args, filter.CategoryID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.exec(ctx).QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	return products, nil
}

func (r *ProductRepository) CountByCategory(ctx context.Context, categoryID string) (_ int, err error) {
	ctx, span := r.tracer.Start(ctx, "SQLProductRepository.CountByCategory")
	defer span.End()
	defer func() { finishSpan(span, err, "") }()

	span.SetAttributes(attribute.String("category.id", categoryID))

	var count int
	err = r.db.exec(ctx).QueryRowContext(ctx,
		r.db.rebind(`SELECT COUNT(*) FROM products WHERE category_id = ?`), categoryID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	span.SetAttributes(attribute.Int("product.count", count))
	return count, nil
}

func scanProduct(scan func(...any) error) (*domain.Product, error) {
	p := &domain.Product{}
	err := scan(&p.ID, &p.Name, &p.Value, &p.Description, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

package sqldb

import (
	"context"
	"fmt"
)

// migration represents a single database migration
type migration struct {
	version int
	name    string
	up      []string
}

// migrations is the ordered list of all database migrations.
// Statements must be valid on both SQLite and PostgreSQL.
var migrations = []migration{
	{
		version: 1,
		name:    "create_categories_table",
		up: []string{`
			CREATE TABLE IF NOT EXISTS categories (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
		},
	},
	{
		version: 2,
		name:    "create_products_table",
		up: []string{`
			CREATE TABLE IF NOT EXISTS products (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				value TEXT NOT NULL,
				description TEXT NOT NULL,
				category_id TEXT NOT NULL REFERENCES categories(id),
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_products_category_id ON products(category_id)`,
		},
	},
	{
		version: 3,
		name:    "create_product_images_table",
		up: []string{`
			CREATE TABLE IF NOT EXISTS product_images (
				id TEXT PRIMARY KEY,
				product_id TEXT NOT NULL REFERENCES products(id),
				storage_key TEXT NOT NULL UNIQUE,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_product_images_product_id ON product_images(product_id, created_at)`,
		},
	},
	{
		version: 4,
		name:    "add_product_images_position",
		up: []string{
			`ALTER TABLE product_images ADD COLUMN position INTEGER NOT NULL DEFAULT 0`,
			`CREATE INDEX IF NOT EXISTS idx_product_images_position ON product_images(product_id, position)`,
		},
	},
}

// migrate executes all pending migrations
func (d *DB) migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	currentVersion := 0
	err = d.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		err := d.RunInTransaction(ctx, func(txCtx context.Context) error {
			ex := d.exec(txCtx)
			for _, stmt := range m.up {
				if _, err := ex.ExecContext(txCtx, stmt); err != nil {
					return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
				}
			}
			_, err := ex.ExecContext(txCtx,
				d.rebind("INSERT INTO schema_migrations (version, name) VALUES (?, ?)"),
				m.version,
				m.name,
			)
			if err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

package sqldb

import (
	"context"
	"errors"
	"testing"
)

func TestRunInTransaction_CommitAndRollback(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := db.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, ok := GetTx(txCtx); !ok {
			t.Error("expected transaction in context")
		}
		_, err := db.exec(txCtx).ExecContext(txCtx,
			"INSERT INTO categories (id, name, created_at) VALUES ('c1', 'Shoes', CURRENT_TIMESTAMP)")
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction() error: %v", err)
	}

	errBoom := errors.New("boom")
	err = db.RunInTransaction(ctx, func(txCtx context.Context) error {
		if _, err := db.exec(txCtx).ExecContext(txCtx,
			"INSERT INTO categories (id, name, created_at) VALUES ('c2', 'Hats', CURRENT_TIMESTAMP)"); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("RunInTransaction() error = %v, want %v", err, errBoom)
	}

	var count int
	if err := db.SQL().QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("got %d categories, want 1 (second insert rolled back)", count)
	}
}

func TestRunInTransaction_Nested(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	err := db.RunInTransaction(ctx, func(outer context.Context) error {
		return db.RunInTransaction(outer, func(inner context.Context) error {
			outerTx, _ := GetTx(outer)
			innerTx, _ := GetTx(inner)
			if outerTx != innerTx {
				t.Error("expected nested call to reuse the outer transaction")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("RunInTransaction() error: %v", err)
	}
}

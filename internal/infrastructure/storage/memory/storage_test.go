package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/mrops-br/catalog-api/internal/domain"
)

func TestStorage(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	buf := []byte("abc")
	key, err := s.Save(ctx, buf, "a.gif")
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	buf[0] = 'z'

	got, err := s.Read(ctx, key)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("Read() = %q, want %q", got, "abc")
	}

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := s.Read(ctx, key); !errors.Is(err, context.Canceled) {
		t.Errorf("Read() with cancelled context error = %v", err)
	}
	if err := s.Delete(ctx, key); !errors.Is(err, context.Canceled) {
		t.Errorf("Delete() with cancelled context error = %v", err)
	}
	ctx = context.Background()

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
	if _, err := s.Read(ctx, key); !errors.Is(err, domain.ErrObjectNotFound) {
		t.Errorf("Read() error = %v, want ErrObjectNotFound", err)
	}
}

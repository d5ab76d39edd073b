package service

import (
	"errors"

	"github.com/mrops-br/catalog-api/internal/domain"
)

// resultOf is the value of the "result" attribute recorded on catalog.operations
func resultOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, domain.ErrCategoryInUse):
		return "conflict"
	case errors.Is(err, domain.ErrPartialUpload), errors.Is(err, domain.ErrPartialCascade):
		return "partial"
	default:
		return "error"
	}
}

func isClientError(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidArgument) ||
		errors.Is(err, domain.ErrCategoryInUse)
}

package sqldb

import (
	"errors"

	"github.com/mrops-br/catalog-api/internal/domain"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// finishSpan sets the span status from err. Not-found outcomes are recorded but kept distinct
// from database failures in the status message.
func finishSpan(span trace.Span, err error, okMsg string) {
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, okMsg)
	case errors.Is(err, domain.ErrNotFound):
		span.RecordError(err)
		span.SetStatus(codes.Error, "Record not found")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

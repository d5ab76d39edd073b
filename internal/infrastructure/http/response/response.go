package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mrops-br/catalog-api/internal/domain"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// UploadFailure is one rejected upload in a partial upload response
type UploadFailure struct {
	Index       int    `json:"index"`
	Filename    string `json:"filename"`
	Message     string `json:"message"`
	OrphanedKey string `json:"orphanedKey,omitempty"`
}

// PartialUploadResponse carries the saved product together with the uploads that failed
type PartialUploadResponse struct {
	Error    string          `json:"error"`
	Message  string          `json:"message"`
	Product  any             `json:"product"`
	Failures []UploadFailure `json:"failures"`
}

// PartialCascadeResponse lists the images that blocked a product delete
type PartialCascadeResponse struct {
	Error          string   `json:"error"`
	Message        string   `json:"message"`
	FailedImageIDs []string `json:"failedImageIds"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, err error) {
	errorType := "error"
	switch status {
	case http.StatusNotFound:
		errorType = "not_found"
	case http.StatusBadRequest:
		errorType = "bad_request"
	case http.StatusConflict:
		errorType = "conflict"
	case http.StatusRequestEntityTooLarge:
		errorType = "payload_too_large"
	case http.StatusBadGateway:
		errorType = "storage_failure"
	case http.StatusInternalServerError:
		errorType = "internal_server_error"
	}

	JSON(w, status, ErrorResponse{
		Error:   errorType,
		Message: err.Error(),
	})
}

// StatusOf maps a service error to its HTTP status
func StatusOf(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, domain.ErrPartialUpload):
		return http.StatusMultiStatus
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrCategoryInUse), errors.Is(err, domain.ErrPartialCascade):
		return http.StatusConflict
	case errors.Is(err, domain.ErrStorageFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes the response for a failed service call. data is the partial result
// returned alongside a partial upload error and is ignored otherwise.
func FromError(w http.ResponseWriter, err error, data any) {
	var partialUpload *domain.PartialUploadError
	if errors.As(err, &partialUpload) {
		failures := make([]UploadFailure, len(partialUpload.Failures))
		for i, f := range partialUpload.Failures {
			failures[i] = UploadFailure{
				Index:       f.Index,
				Filename:    f.Filename,
				Message:     f.Err.Error(),
				OrphanedKey: f.OrphanedKey,
			}
		}
		JSON(w, http.StatusMultiStatus, PartialUploadResponse{
			Error:    "partial_upload",
			Message:  err.Error(),
			Product:  data,
			Failures: failures,
		})
		return
	}

	var partialCascade *domain.PartialCascadeError
	if errors.As(err, &partialCascade) {
		JSON(w, http.StatusConflict, PartialCascadeResponse{
			Error:          "partial_cascade",
			Message:        err.Error(),
			FailedImageIDs: partialCascade.FailedImageIDs(),
		})
		return
	}

	Error(w, StatusOf(err), err)
}

package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind codes returned to clients so the frontend can distinguish
// ingestion-time from generation-time failures.
const (
	KindBadRequest       = "bad_request"
	KindNotFound         = "not_found"
	KindIngestionFailure = "ingestion_failure"
	KindGenerationShape  = "generation_shape_failure"
	KindRetrievalTimeout = "retrieval_timeout"
	KindInternal         = "internal_error"
)

type AppError struct {
	Kind       string
	StatusCode int
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewBadRequest(message string) *AppError {
	return &AppError{Kind: KindBadRequest, StatusCode: fiber.StatusBadRequest, Message: message}
}

func NewNotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, StatusCode: fiber.StatusNotFound, Message: resource + " not found"}
}

// NewIngestionFailure is per-document: other documents in the same batch
// are unaffected.
func NewIngestionFailure(filename string, err error) *AppError {
	return &AppError{
		Kind:       KindIngestionFailure,
		StatusCode: fiber.StatusUnprocessableEntity,
		Message:    fmt.Sprintf("failed to ingest document %q", filename),
		Err:        err,
	}
}

// NewGenerationShapeFailure is fatal for a generation request after the
// single re-prompt was exhausted.
func NewGenerationShapeFailure(unit string, err error) *AppError {
	return &AppError{
		Kind:       KindGenerationShape,
		StatusCode: fiber.StatusBadGateway,
		Message:    fmt.Sprintf("generator output for section %q does not match the required structure", unit),
		Err:        err,
	}
}

func NewRetrievalTimeout(unit string, err error) *AppError {
	return &AppError{
		Kind:       KindRetrievalTimeout,
		StatusCode: fiber.StatusGatewayTimeout,
		Message:    fmt.Sprintf("evidence retrieval for section %q timed out after retry", unit),
		Err:        err,
	}
}

func NewInternal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, StatusCode: fiber.StatusInternalServerError, Message: message, Err: err}
}

// AsAppError unwraps err to an *AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

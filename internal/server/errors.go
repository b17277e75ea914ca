package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-extractor/internal/pipeline"
)

// ErrStoreUnavailable is returned when a request needs persistence and no store is configured.
var ErrStoreUnavailable = errors.New("analysis store is not configured")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var tagErr *pipeline.TagError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrEmptyText), errors.As(err, &tagErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

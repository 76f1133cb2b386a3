package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/job-matcher/internal/matching"
)

// ErrJobPostingNotFound indicates the posting does not exist
type ErrJobPostingNotFound struct {
	ID uuid.UUID
}

func (e *ErrJobPostingNotFound) Error() string {
	return fmt.Sprintf("job posting not found: %s", e.ID)
}

// ErrForbidden indicates the caller does not own the resource
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: you can only %s your own job postings", e.Action)
}

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
	var (
		notFound  *ErrJobPostingNotFound
		forbidden *ErrForbidden
		invalid   *ErrValidation
		rankInput *matching.ValidationError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &invalid), errors.As(err, &rankInput):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

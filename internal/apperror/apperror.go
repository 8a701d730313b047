package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError reports malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing test, question set or entitlement.
type NotFoundError struct {
	Resource string
	ID       any
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

func NotFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// PermissionError reports a caller acting on a resource it does not own.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return e.Message }

func Permission(format string, args ...any) error {
	return &PermissionError{Message: fmt.Sprintf(format, args...)}
}

// CompositionViolation reports a broken question set composition rule
// together with the question sets that broke it.
type CompositionViolation struct {
	Rule           string
	Message        string
	QuestionSetIDs []uint
}

func (e *CompositionViolation) Error() string {
	return fmt.Sprintf("%s: %s (question sets %v)", e.Rule, e.Message, e.QuestionSetIDs)
}

// InsufficientContentError is returned by samplers whose shortfall policy is
// to fail.
type InsufficientContentError struct {
	Message   string
	Required  int
	Available int
}

func (e *InsufficientContentError) Error() string {
	if e.Required > 0 {
		return fmt.Sprintf("insufficient content: %s (required %d, available %d)", e.Message, e.Required, e.Available)
	}
	return "insufficient content: " + e.Message
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	var (
		validation   *ValidationError
		notFound     *NotFoundError
		permission   *PermissionError
		violation    *CompositionViolation
		insufficient *InsufficientContentError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &permission):
		return http.StatusForbidden
	case errors.As(err, &violation):
		return http.StatusBadRequest
	case errors.As(err, &insufficient):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

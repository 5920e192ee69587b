package neighbor

import (
	"errors"
	"fmt"
)

var (
	// ErrPostNotFound is returned when the referenced post id doesn't exist
	ErrPostNotFound = errors.New("neighbor post not found")

	// ErrNotPublisher is returned when the caller doesn't own the post
	ErrNotPublisher = errors.New("caller is not the publisher")

	// ErrLikeNotFound is returned when no like row exists for a (user, post) pair
	ErrLikeNotFound = errors.New("like not found")

	// ErrAlreadyLiked is returned by the repository when a duplicate like
	// insert hits the unique constraint
	ErrAlreadyLiked = errors.New("post already liked")
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if error is a validation error
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

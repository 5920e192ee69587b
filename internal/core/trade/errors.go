package trade

import (
	"errors"
	"fmt"
)

// Sentinel errors for trade operations
var (
	// ErrPostNotFound is returned when the referenced post id doesn't exist
	ErrPostNotFound = errors.New("trade post not found")

	// ErrNotPostOwner is returned when the caller isn't the post's seller
	ErrNotPostOwner = errors.New("caller is not the post owner")

	// ErrOwnPostLike is returned when a seller tries to like their own listing
	ErrOwnPostLike = errors.New("cannot like your own post")

	// ErrNoReservedBuyer is returned when confirming a post that has no
	// active reservation with a buyer
	ErrNoReservedBuyer = errors.New("no reserved buyer")

	// ErrNotReserved is returned when cancelling a post that isn't reserved
	ErrNotReserved = errors.New("post is not currently reserved")

	// ErrTradeCompleted is returned when a lifecycle transition is attempted
	// on a completed trade
	ErrTradeCompleted = errors.New("trade already completed")

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

// IsValidationError checks if error is a validation error, including the
// lifecycle and like preconditions that map to a 400 at the transport
func IsValidationError(err error) bool {
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return true
	}
	return errors.Is(err, ErrOwnPostLike) ||
		errors.Is(err, ErrNoReservedBuyer) ||
		errors.Is(err, ErrNotReserved) ||
		errors.Is(err, ErrTradeCompleted)
}

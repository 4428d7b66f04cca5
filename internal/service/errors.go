package service

import (
	"errors"
	"fmt"
)

// Business-rule failures are terminal, user-facing outcomes. Anything
// else coming out of the engine is a transient collaborator failure and
// is surfaced to the caller unwrapped in meaning: the engine never
// retries internally.
var (
	ErrItemNotFound     = errors.New("treasure item not found")
	ErrItemTypeNotFound = errors.New("item type not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrAlreadyCollected = errors.New("this item has already been collected")
	ErrSelfCollection   = errors.New("you cannot collect your own treasure items")
)

// ValidationError reports malformed or out-of-range input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// OutOfRangeError reports a collection attempt from beyond the item's
// discovery radius. It carries both measured distance and required
// radius so the client can render the specific reason.
type OutOfRangeError struct {
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("you are too far away. Distance: %.2fm, Required: %.0fm",
		e.DistanceMeters, e.RadiusMeters)
}

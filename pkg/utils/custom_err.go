package utils

import "errors"

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("entity not found")
	ErrConcurrency   = errors.New("concurrent modification")
	ErrGeneration    = errors.New("generation failed")
	ErrInvariant     = errors.New("itinerary invariant violated")
	ErrTransient     = errors.New("upstream temporarily unavailable")
	ErrInvalidPage   = errors.New("invalid page parameter")
	ErrDatabaseError = errors.New("database error")
)

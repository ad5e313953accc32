package reservation

import "errors"

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("reservation not found")
	ErrResourceNotFound  = errors.New("resource not found")
	ErrConflict          = errors.New("reservation window conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrReviewExists      = errors.New("review already attached")
)

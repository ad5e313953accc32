package pricing

import "errors"

var (
	ErrUnknownService = errors.New("unknown service type")
	ErrInvalidWindow  = errors.New("invalid pricing window")
)

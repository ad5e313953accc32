package catalog

import "errors"

var (
	ErrValidation = errors.New("invalid resource data")
	ErrNotFound   = errors.New("resource not found")
	ErrForbidden  = errors.New("not the resource owner")
)

package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidQuery      = errors.New("invalid query")
	ErrSourceUnavailable = errors.New("content source unavailable")
)

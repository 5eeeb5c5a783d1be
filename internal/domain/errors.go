package domain

import "errors"

var (
	// ErrInvalidOrder marks a record that cannot be written; the whole batch is rejected.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrInvalidFilter marks a caller error in the query parameters.
	ErrInvalidFilter = errors.New("invalid filter")
)

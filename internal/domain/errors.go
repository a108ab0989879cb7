package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuantity is returned for non-positive cart additions.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

package rental

import "errors"

var (
	ErrNotFound     = errors.New("rental: not found")
	ErrConflict     = errors.New("rental: conflict")
	ErrInvalidInput = errors.New("rental: invalid input")
)

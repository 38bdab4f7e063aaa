package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("uniqueness conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
)

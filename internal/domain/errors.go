package domain

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrDuplicateIdentifier = errors.New("identifier already registered")
	ErrStoreUnavailable    = errors.New("account store unavailable")
	ErrAccountNotFound     = errors.New("account not found")
)

package services

import "errors"

// Shared failure categories. Services wrap these with detail via fmt.Errorf("%w: ...")
// so handlers can map them to HTTP statuses with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

package interviews

import "errors"

var (
	// ErrNotFound indicates the interview does not exist.
	ErrNotFound = errors.New("interview not found")

	// ErrForbidden indicates the caller may not access the interview.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput indicates a validation failure.
	ErrInvalidInput = errors.New("invalid input")
)

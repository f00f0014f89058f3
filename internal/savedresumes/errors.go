package savedresumes

import "errors"

var (
	// ErrNotFound indicates the saved resume does not exist.
	ErrNotFound = errors.New("saved resume not found")

	// ErrForbidden indicates the caller does not own the saved resume.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput indicates a validation failure.
	ErrInvalidInput = errors.New("invalid input")
)

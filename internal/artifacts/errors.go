package artifacts

import "errors"

var (
	// ErrNotFound indicates no artifact matches the requested prefix or name.
	ErrNotFound = errors.New("artifact not found")

	// ErrUnavailable indicates the schedule directory could not be read or written.
	ErrUnavailable = errors.New("artifact store unavailable")

	// ErrInvalidName indicates a prefix or artifact name that cannot be used on disk.
	ErrInvalidName = errors.New("invalid artifact name")

	// ErrEmptyArtifact indicates an attempt to store zero bytes.
	ErrEmptyArtifact = errors.New("empty artifact")
)

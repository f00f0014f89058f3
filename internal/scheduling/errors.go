package scheduling

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by every lookup failure below.
	ErrNotFound = errors.New("not found")

	// ErrInterviewNotFound indicates the interview does not exist.
	ErrInterviewNotFound = fmt.Errorf("interview %w", ErrNotFound)

	// ErrResumeNotFound indicates the selected resume does not exist.
	ErrResumeNotFound = fmt.Errorf("selected resume %w", ErrNotFound)

	// ErrNoResumeSelected indicates the interview has no selected resume.
	ErrNoResumeSelected = fmt.Errorf("interview has no selected resume: %w", ErrNotFound)

	// ErrArtifactNotFound indicates no artifact exists for the interview.
	ErrArtifactNotFound = fmt.Errorf("resume artifact %w", ErrNotFound)

	// ErrReconcileInProgress is returned when a reconciliation is already running.
	ErrReconcileInProgress = errors.New("reconciliation already in progress")
)

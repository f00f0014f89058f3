package interviews

import "time"

// Resume link states reported to clients.
const (
	ResumeStatusLinked  = "linked"
	ResumeStatusPending = "pending"
	ResumeStatusNone    = "none"
)

// Interview is a scheduled meeting that may carry a selected resume.
type Interview struct {
	ID               string
	UserID           string
	MeetingTitle     string
	MeetingDate      time.Time
	Location         string
	Notes            string
	SelectedResumeID string
	// ResumeLink is the retrieval path of the linked artifact; empty while
	// no artifact has been produced.
	ResumeLink string
	// ResumeArtifact is the file name of the artifact last linked.
	ResumeArtifact string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasSelectedResume reports whether a resume is attached.
func (i Interview) HasSelectedResume() bool {
	return i.SelectedResumeID != ""
}

// ResumeStatus derives the link state from stored fields.
func (i Interview) ResumeStatus() string {
	switch {
	case !i.HasSelectedResume():
		return ResumeStatusNone
	case i.ResumeLink != "":
		return ResumeStatusLinked
	default:
		return ResumeStatusPending
	}
}

// View is an interview plus the outcome of the latest artifact attempt.
type View struct {
	Interview
	ResumeError string
}

// ResumeStatus reports pending while the latest link attempt failed, even
// if an older link is still stored.
func (v View) ResumeStatus() string {
	if v.ResumeError != "" && v.HasSelectedResume() {
		return ResumeStatusPending
	}
	return v.Interview.ResumeStatus()
}

package interviews

import (
	"fmt"
	"strings"
	"time"
)

// Response is the outward-facing representation of an interview.
type Response struct {
	ID               string    `json:"id"`
	MeetingTitle     string    `json:"meetingTitle"`
	MeetingDate      time.Time `json:"meetingDate"`
	Location         string    `json:"location,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	SelectedResumeID string    `json:"selectedResumeId,omitempty"`
	ResumeLink       string    `json:"resumeLink,omitempty"`
	ResumeStatus     string    `json:"resumeStatus"`
	ResumeError      string    `json:"resumeError,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type upsertRequest struct {
	MeetingTitle     *string `json:"meetingTitle"`
	MeetingDate      *string `json:"meetingDate"`
	Location         *string `json:"location"`
	Notes            *string `json:"notes"`
	SelectedResumeID *string `json:"selectedResumeId"`
}

func (r upsertRequest) input() (Input, error) {
	in := Input{
		MeetingTitle:     r.MeetingTitle,
		Location:         r.Location,
		Notes:            r.Notes,
		SelectedResumeID: r.SelectedResumeID,
	}
	if r.MeetingDate != nil {
		d, err := parseMeetingDate(*r.MeetingDate)
		if err != nil {
			return Input{}, err
		}
		in.MeetingDate = &d
	}
	return in, nil
}

// parseMeetingDate accepts a calendar date or an RFC 3339 timestamp.
func parseMeetingDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		return d, nil
	}
	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return d, nil
	}
	return time.Time{}, fmt.Errorf("%w: meetingDate must be YYYY-MM-DD or RFC 3339", ErrInvalidInput)
}

func toResponse(v View) Response {
	return Response{
		ID:               v.ID,
		MeetingTitle:     v.MeetingTitle,
		MeetingDate:      v.MeetingDate,
		Location:         v.Location,
		Notes:            v.Notes,
		SelectedResumeID: v.SelectedResumeID,
		ResumeLink:       v.ResumeLink,
		ResumeStatus:     v.ResumeStatus(),
		ResumeError:      v.ResumeError,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

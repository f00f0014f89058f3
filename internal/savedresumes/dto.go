package savedresumes

import (
	"encoding/json"
	"time"
)

// Response is the outward-facing representation of a saved resume.
type Response struct {
	ID               string          `json:"id"`
	Company          string          `json:"company"`
	JobTitle         string          `json:"jobTitle"`
	JobDescription   string          `json:"jobDescription"`
	OriginalResume   string          `json:"originalResume"`
	ModifiedResume   string          `json:"modifiedResume"`
	ResumeJSON       json.RawMessage `json:"resumeJson,omitempty"`
	HasOriginalPDF   bool            `json:"hasOriginalPdf"`
	OriginalFileName string          `json:"originalFileName,omitempty"`
	Source           string          `json:"source"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type upsertRequest struct {
	Company        *string         `json:"company"`
	JobTitle       *string         `json:"jobTitle"`
	JobDescription *string         `json:"jobDescription"`
	OriginalResume *string         `json:"originalResume"`
	ModifiedResume *string         `json:"modifiedResume"`
	ResumeJSON     json.RawMessage `json:"resumeJson"`
	InferCompany   bool            `json:"inferCompany"`
}

func (r upsertRequest) input() Input {
	return Input{
		Company:        r.Company,
		JobTitle:       r.JobTitle,
		JobDescription: r.JobDescription,
		OriginalResume: r.OriginalResume,
		ModifiedResume: r.ModifiedResume,
		ResumeJSON:     r.ResumeJSON,
		InferCompany:   r.InferCompany,
	}
}

func toResponse(r SavedResume) Response {
	return Response{
		ID:               r.ID,
		Company:          r.Company,
		JobTitle:         r.JobTitle,
		JobDescription:   r.JobDescription,
		OriginalResume:   r.OriginalResume,
		ModifiedResume:   r.ModifiedResume,
		ResumeJSON:       r.ResumeJSON,
		HasOriginalPDF:   r.OriginalPDFKey != "",
		OriginalFileName: r.OriginalFileName,
		Source:           sourceKind(r),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

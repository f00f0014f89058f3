package savedresumes

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"jobtracker-backend/internal/pdfgen"
)

// SavedResume is a resume tailored for one job application.
type SavedResume struct {
	ID               string
	UserID           string
	Company          string
	JobTitle         string
	JobDescription   string
	OriginalResume   string
	ModifiedResume   string
	ResumeJSON       json.RawMessage
	OriginalPDFKey   string
	OriginalFileName string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Source selects the content a PDF is produced from: an uploaded PDF first,
// then structured JSON, then the modified text, then the original text.
func (r SavedResume) Source() (pdfgen.Source, error) {
	switch {
	case strings.TrimSpace(r.OriginalPDFKey) != "":
		return pdfgen.UploadedPDF(r.OriginalPDFKey), nil
	case hasJSON(r.ResumeJSON):
		return pdfgen.StructuredJSON(r.ResumeJSON), nil
	case strings.TrimSpace(r.ModifiedResume) != "":
		return pdfgen.PlainText(r.ModifiedResume), nil
	case strings.TrimSpace(r.OriginalResume) != "":
		return pdfgen.PlainText(r.OriginalResume), nil
	default:
		return pdfgen.Source{}, pdfgen.ErrEmptySource
	}
}

// PDFMeta returns document properties for rendering this resume.
func (r SavedResume) PDFMeta(title string) pdfgen.Meta {
	return pdfgen.Meta{
		Title:     title,
		Author:    strings.TrimSpace(r.Company),
		CreatedAt: r.UpdatedAt,
	}
}

func hasJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

package savedresumes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobtracker-backend/internal/extract"
	"jobtracker-backend/internal/pdfgen"
	"jobtracker-backend/internal/shared/storage/object"
	"jobtracker-backend/internal/shared/telemetry"
	"jobtracker-backend/internal/shared/util"
)

const (
	maxCompanyLen  = 200
	maxJobTitleLen = 200
	// DefaultMaxUploadBytes caps uploaded resume PDFs.
	DefaultMaxUploadBytes = 10 << 20
)

// Input carries fields for create and update. Nil pointers leave a field
// unchanged on update; a JSON null clears ResumeJSON.
type Input struct {
	Company        *string
	JobTitle       *string
	JobDescription *string
	OriginalResume *string
	ModifiedResume *string
	ResumeJSON     json.RawMessage
	InferCompany   bool
}

// Service contains business logic for saved resumes.
type Service struct {
	Repo           Repo
	Store          object.ObjectStore
	MaxUploadBytes int64
	Now            func() time.Time
}

// Create validates and stores a new saved resume.
func (s *Service) Create(ctx context.Context, userID string, in Input) (SavedResume, error) {
	if strings.TrimSpace(userID) == "" {
		return SavedResume{}, ErrInvalidInput
	}
	now := s.now()
	r := SavedResume{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(&r, in); err != nil {
		return SavedResume{}, err
	}
	if strings.TrimSpace(r.Company) == "" {
		return SavedResume{}, fmt.Errorf("%w: company is required", ErrInvalidInput)
	}
	if err := s.Repo.Create(ctx, r); err != nil {
		return SavedResume{}, err
	}
	telemetry.Info("saved_resume.created", map[string]any{
		"saved_resume_id": r.ID,
		"user_id":         userID,
		"source":          sourceKind(r),
	})
	return r, nil
}

// Update applies in to an existing saved resume owned by userID.
func (s *Service) Update(ctx context.Context, userID, id string, isAdmin bool, in Input) (SavedResume, error) {
	r, err := s.Get(ctx, userID, id, isAdmin)
	if err != nil {
		return SavedResume{}, err
	}
	if err := s.apply(&r, in); err != nil {
		return SavedResume{}, err
	}
	if strings.TrimSpace(r.Company) == "" {
		return SavedResume{}, fmt.Errorf("%w: company is required", ErrInvalidInput)
	}
	r.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, r); err != nil {
		return SavedResume{}, err
	}
	return r, nil
}

// Upload stores a PDF resume and records it as the source of a new saved
// resume. Text is extracted from the PDF when no resume text was supplied.
func (s *Service) Upload(ctx context.Context, userID, fileName string, body io.Reader, in Input) (SavedResume, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(fileName) == "" {
		return SavedResume{}, ErrInvalidInput
	}
	if s.Store == nil {
		return SavedResume{}, fmt.Errorf("object store not configured")
	}

	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return SavedResume{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return SavedResume{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, limit)
	}
	if !extract.IsPDF(data) {
		return SavedResume{}, fmt.Errorf("%w: file must be a PDF", ErrInvalidInput)
	}

	now := s.now()
	r := SavedResume{
		ID:               uuid.NewString(),
		UserID:           userID,
		OriginalFileName: strings.TrimSpace(fileName),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.apply(&r, in); err != nil {
		return SavedResume{}, err
	}
	if strings.TrimSpace(r.Company) == "" {
		return SavedResume{}, fmt.Errorf("%w: company is required", ErrInvalidInput)
	}

	key, _, _, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if errors.Is(err, util.ErrInvalidFileName) {
		return SavedResume{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err != nil {
		return SavedResume{}, fmt.Errorf("store upload: %w", err)
	}
	r.OriginalPDFKey = key

	if strings.TrimSpace(r.OriginalResume) == "" {
		text, err := extract.ExtractTextFromBytes(ctx, data)
		if err != nil {
			telemetry.Warn("saved_resume.extract.failed", map[string]any{
				"user_id": userID,
				"key":     key,
				"error":   err.Error(),
			})
		} else {
			r.OriginalResume = text
		}
	}

	if err := s.Repo.Create(ctx, r); err != nil {
		if delErr := s.Store.Delete(ctx, key); delErr != nil {
			telemetry.Error("saved_resume.upload.orphaned", map[string]any{
				"user_id": userID,
				"key":     key,
				"error":   delErr.Error(),
			})
		}
		return SavedResume{}, err
	}
	telemetry.Info("saved_resume.uploaded", map[string]any{
		"saved_resume_id": r.ID,
		"user_id":         userID,
		"size_bytes":      len(data),
	})
	return r, nil
}

// Get returns a saved resume visible to userID.
func (s *Service) Get(ctx context.Context, userID, id string, isAdmin bool) (SavedResume, error) {
	if strings.TrimSpace(id) == "" {
		return SavedResume{}, ErrInvalidInput
	}
	r, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return SavedResume{}, err
	}
	if r.UserID != userID && !isAdmin {
		return SavedResume{}, ErrForbidden
	}
	return r, nil
}

// List returns the caller's saved resumes.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]SavedResume, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) apply(r *SavedResume, in Input) error {
	if in.Company != nil {
		r.Company = strings.TrimSpace(*in.Company)
	}
	if in.JobTitle != nil {
		r.JobTitle = strings.TrimSpace(*in.JobTitle)
	}
	if in.JobDescription != nil {
		r.JobDescription = *in.JobDescription
	}
	if in.OriginalResume != nil {
		r.OriginalResume = *in.OriginalResume
	}
	if in.ModifiedResume != nil {
		r.ModifiedResume = *in.ModifiedResume
	}
	if in.ResumeJSON != nil {
		if hasJSON(in.ResumeJSON) {
			if _, err := pdfgen.ParseDocument(in.ResumeJSON); err != nil {
				return fmt.Errorf("%w: resumeJson: %v", ErrInvalidInput, err)
			}
			r.ResumeJSON = append(json.RawMessage(nil), in.ResumeJSON...)
		} else {
			r.ResumeJSON = nil
		}
	}

	if in.InferCompany && (r.Company == "" || r.JobTitle == "") {
		company, title := InferJobDetails(r.JobDescription)
		if r.Company == "" {
			r.Company = company
		}
		if r.JobTitle == "" {
			r.JobTitle = title
		}
	}

	if len([]rune(r.Company)) > maxCompanyLen {
		return fmt.Errorf("%w: company is too long", ErrInvalidInput)
	}
	if len([]rune(r.JobTitle)) > maxJobTitleLen {
		return fmt.Errorf("%w: jobTitle is too long", ErrInvalidInput)
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func sourceKind(r SavedResume) string {
	src, err := r.Source()
	if err != nil {
		return pdfgen.SourceNone.String()
	}
	return src.Kind.String()
}

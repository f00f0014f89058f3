package scheduling

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"jobtracker-backend/internal/artifacts"
	"jobtracker-backend/internal/interviews"
	"jobtracker-backend/internal/pdfgen"
	"jobtracker-backend/internal/savedresumes"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/telemetry"
)

// DefaultLinkFormat renders the retrieval path stored on interviews.
const DefaultLinkFormat = "/api/interviews/%s/scheduled-resume-pdf"

// Status reports what EnsureArtifact did.
type Status string

const (
	StatusSkipped   Status = "skipped"
	StatusUnchanged Status = "unchanged"
	StatusWritten   Status = "written"
)

// InterviewRepo is the slice of the interview store used here.
type InterviewRepo interface {
	GetByID(ctx context.Context, id string) (interviews.Interview, error)
	ListWithSelectedResume(ctx context.Context) ([]interviews.Interview, error)
	SetArtifact(ctx context.Context, id, link, artifact string) error
}

// ResumeRepo is the slice of the saved resume store used here.
type ResumeRepo interface {
	GetByID(ctx context.Context, id string) (savedresumes.SavedResume, error)
}

// Generator produces PDF bytes from a resume source.
type Generator interface {
	Generate(ctx context.Context, src pdfgen.Source, meta pdfgen.Meta) ([]byte, error)
}

// Config configures a Service.
type Config struct {
	// LinkFormat is a fmt pattern taking the interview ID.
	LinkFormat string
}

// Result describes the outcome of EnsureArtifact or Regenerate.
type Result struct {
	InterviewID string
	Status      Status
	Prefix      string
	Artifact    artifacts.Artifact
	Link        string
}

// Resolved is the current artifact of an interview.
type Resolved struct {
	Interview interviews.Interview
	Resume    savedresumes.SavedResume
	Prefix    string
	Artifact  artifacts.Artifact
}

// Service keeps interview resume artifacts in sync with their sources.
type Service struct {
	interviews InterviewRepo
	resumes    ResumeRepo
	generator  Generator
	store      *artifacts.Store
	linkFormat string
}

// NewService constructs a Service.
func NewService(ivs InterviewRepo, resumes ResumeRepo, gen Generator, store *artifacts.Store, cfg Config) *Service {
	format := cfg.LinkFormat
	if format == "" {
		format = DefaultLinkFormat
	}
	return &Service{
		interviews: ivs,
		resumes:    resumes,
		generator:  gen,
		store:      store,
		linkFormat: format,
	}
}

// Store exposes the artifact store for streaming.
func (s *Service) Store() *artifacts.Store {
	return s.store
}

// Link returns the retrieval path for an interview.
func (s *Service) Link(interviewID string) string {
	return fmt.Sprintf(s.linkFormat, interviewID)
}

// EnsureArtifact makes sure the interview's selected resume has a current
// artifact and that the interview links to it. Identical content is reused
// rather than rewritten.
func (s *Service) EnsureArtifact(ctx context.Context, interviewID string) (Result, error) {
	return s.ensure(ctx, interviewID, false)
}

// Regenerate always writes a fresh artifact for the interview.
func (s *Service) Regenerate(ctx context.Context, interviewID string) (Result, error) {
	return s.ensure(ctx, interviewID, true)
}

// LinkArtifact adapts EnsureArtifact for interview create and update.
func (s *Service) LinkArtifact(ctx context.Context, interviewID string) error {
	_, err := s.EnsureArtifact(ctx, interviewID)
	return err
}

// Interview loads an interview by ID.
func (s *Service) Interview(ctx context.Context, interviewID string) (interviews.Interview, error) {
	iv, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, interviews.ErrNotFound) {
			return interviews.Interview{}, ErrInterviewNotFound
		}
		return interviews.Interview{}, fmt.Errorf("load interview %s: %w", interviewID, err)
	}
	return iv, nil
}

// Resolve finds the current artifact of iv. The stored artifact name is used
// when it still carries the interview's prefix and exists; otherwise the
// latest artifact for the prefix is located.
func (s *Service) Resolve(ctx context.Context, iv interviews.Interview) (Resolved, error) {
	if !iv.HasSelectedResume() {
		return Resolved{}, ErrNoResumeSelected
	}
	resume, err := s.resume(ctx, iv.SelectedResumeID)
	if err != nil {
		return Resolved{}, err
	}
	prefix := artifacts.BuildPrefix(iv.MeetingDate, iv.MeetingTitle, resume.Company)
	art, err := s.current(ctx, iv, prefix)
	if err != nil {
		if errors.Is(err, artifacts.ErrNotFound) {
			return Resolved{}, ErrArtifactNotFound
		}
		return Resolved{}, err
	}
	return Resolved{Interview: iv, Resume: resume, Prefix: prefix, Artifact: art}, nil
}

func (s *Service) ensure(ctx context.Context, interviewID string, force bool) (Result, error) {
	iv, err := s.Interview(ctx, interviewID)
	if err != nil {
		return Result{}, err
	}
	res := Result{InterviewID: iv.ID}
	if !iv.HasSelectedResume() {
		res.Status = StatusSkipped
		metrics.IncEnsure(string(res.Status))
		return res, nil
	}

	resume, err := s.resume(ctx, iv.SelectedResumeID)
	if err != nil {
		metrics.IncEnsure("error")
		return res, err
	}
	res.Prefix = artifacts.BuildPrefix(iv.MeetingDate, iv.MeetingTitle, resume.Company)

	src, err := resume.Source()
	if err != nil {
		metrics.IncEnsure("error")
		return res, fmt.Errorf("resume %s: %w", resume.ID, err)
	}
	data, err := s.generator.Generate(ctx, src, resume.PDFMeta(iv.MeetingTitle))
	if err != nil {
		metrics.IncEnsure("error")
		return res, fmt.Errorf("generate artifact for interview %s: %w", iv.ID, err)
	}

	if !force {
		if art, ok, err := s.unchanged(ctx, iv, res.Prefix, data); err != nil {
			metrics.IncEnsure("error")
			return res, err
		} else if ok {
			res.Status = StatusUnchanged
			res.Artifact = art
			return s.finish(ctx, iv, res)
		}
	}

	art, err := s.store.Write(ctx, res.Prefix, data)
	if err != nil {
		metrics.IncEnsure("error")
		return res, fmt.Errorf("write artifact for interview %s: %w", iv.ID, err)
	}
	res.Status = StatusWritten
	res.Artifact = art
	res, err = s.finish(ctx, iv, res)
	if err != nil {
		// An unlinked artifact would shadow the stored one for readers that
		// fall back to Locate, so it goes before the error is reported.
		if rmErr := s.store.Remove(ctx, art.Name); rmErr != nil {
			telemetry.Warn("interview.artifact.rollback_failed", map[string]any{
				"interview_id": iv.ID,
				"artifact":     art.Name,
				"error":        rmErr.Error(),
			})
		}
		return res, err
	}
	return res, nil
}

// unchanged reports whether the current artifact already holds data.
func (s *Service) unchanged(ctx context.Context, iv interviews.Interview, prefix string, data []byte) (artifacts.Artifact, bool, error) {
	cur, err := s.current(ctx, iv, prefix)
	if errors.Is(err, artifacts.ErrNotFound) {
		return artifacts.Artifact{}, false, nil
	}
	if err != nil {
		return artifacts.Artifact{}, false, err
	}
	if cur.Size != int64(len(data)) {
		return artifacts.Artifact{}, false, nil
	}
	sum, err := s.store.Checksum(ctx, cur.Name)
	if err != nil {
		if errors.Is(err, artifacts.ErrNotFound) {
			return artifacts.Artifact{}, false, nil
		}
		return artifacts.Artifact{}, false, err
	}
	digest := sha256.Sum256(data)
	if sum != hex.EncodeToString(digest[:]) {
		return artifacts.Artifact{}, false, nil
	}
	cur.SHA256 = sum
	return cur, true, nil
}

func (s *Service) finish(ctx context.Context, iv interviews.Interview, res Result) (Result, error) {
	res.Link = s.Link(iv.ID)
	if iv.ResumeLink != res.Link || iv.ResumeArtifact != res.Artifact.Name {
		if err := s.interviews.SetArtifact(ctx, iv.ID, res.Link, res.Artifact.Name); err != nil {
			metrics.IncEnsure("error")
			return res, fmt.Errorf("link artifact to interview %s: %w", iv.ID, err)
		}
	}
	metrics.IncEnsure(string(res.Status))
	telemetry.Info("interview.artifact.linked", map[string]any{
		"interview_id": iv.ID,
		"status":       string(res.Status),
		"artifact":     res.Artifact.Name,
	})
	return res, nil
}

func (s *Service) current(ctx context.Context, iv interviews.Interview, prefix string) (artifacts.Artifact, error) {
	if name := strings.TrimSpace(iv.ResumeArtifact); name != "" {
		if _, ok := artifacts.MatchName(name, prefix); ok {
			art, err := s.store.Stat(ctx, name)
			if err == nil {
				return art, nil
			}
			if !errors.Is(err, artifacts.ErrNotFound) {
				return artifacts.Artifact{}, err
			}
		}
	}
	return s.store.Locate(ctx, prefix)
}

func (s *Service) resume(ctx context.Context, id string) (savedresumes.SavedResume, error) {
	resume, err := s.resumes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, savedresumes.ErrNotFound) {
			return savedresumes.SavedResume{}, ErrResumeNotFound
		}
		return savedresumes.SavedResume{}, fmt.Errorf("load resume %s: %w", id, err)
	}
	return resume, nil
}

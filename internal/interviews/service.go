package interviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobtracker-backend/internal/savedresumes"
	"jobtracker-backend/internal/shared/telemetry"
)

const (
	maxTitleLen = 200
	// DefaultArtifactTimeout bounds artifact generation during create/update.
	DefaultArtifactTimeout = 20 * time.Second
)

// ArtifactLinker produces and links the resume artifact of an interview.
type ArtifactLinker interface {
	LinkArtifact(ctx context.Context, interviewID string) error
}

// ResumeLookup resolves saved resumes visible to a user.
type ResumeLookup interface {
	Get(ctx context.Context, userID, id string, isAdmin bool) (savedresumes.SavedResume, error)
}

// Input carries interview fields. Nil pointers leave fields unchanged on
// update; an empty SelectedResumeID clears the selection.
type Input struct {
	MeetingTitle     *string
	MeetingDate      *time.Time
	Location         *string
	Notes            *string
	SelectedResumeID *string
}

// Service contains business logic for interviews.
type Service struct {
	Repo            Repo
	Resumes         ResumeLookup
	Linker          ArtifactLinker
	ArtifactTimeout time.Duration
	Now             func() time.Time
}

// Create stores a new interview and links its resume artifact best-effort.
func (s *Service) Create(ctx context.Context, userID string, in Input) (View, error) {
	if strings.TrimSpace(userID) == "" {
		return View{}, ErrInvalidInput
	}
	if in.MeetingTitle == nil || strings.TrimSpace(*in.MeetingTitle) == "" {
		return View{}, fmt.Errorf("%w: meetingTitle is required", ErrInvalidInput)
	}
	if in.MeetingDate == nil || in.MeetingDate.IsZero() {
		return View{}, fmt.Errorf("%w: meetingDate is required", ErrInvalidInput)
	}

	now := s.now()
	i := Interview{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(ctx, &i, userID, in); err != nil {
		return View{}, err
	}
	if err := s.Repo.Create(ctx, i); err != nil {
		return View{}, err
	}
	telemetry.Info("interview.created", map[string]any{
		"interview_id":    i.ID,
		"user_id":         userID,
		"selected_resume": i.SelectedResumeID,
	})
	return s.link(ctx, i), nil
}

// Update edits an interview. Whenever a resume is selected the artifact is
// ensured again, so a missing file is repaired and unchanged content is
// reused.
func (s *Service) Update(ctx context.Context, userID, id string, isAdmin bool, in Input) (View, error) {
	i, err := s.get(ctx, userID, id, isAdmin)
	if err != nil {
		return View{}, err
	}
	before := i
	if err := s.apply(ctx, &i, userID, in); err != nil {
		return View{}, err
	}

	keyChanged := i.MeetingTitle != before.MeetingTitle ||
		!i.MeetingDate.Equal(before.MeetingDate) ||
		i.SelectedResumeID != before.SelectedResumeID
	if keyChanged {
		i.ResumeLink = ""
		i.ResumeArtifact = ""
	}
	i.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, i); err != nil {
		return View{}, err
	}
	return s.link(ctx, i), nil
}

// Get returns an interview visible to userID.
func (s *Service) Get(ctx context.Context, userID, id string, isAdmin bool) (View, error) {
	i, err := s.get(ctx, userID, id, isAdmin)
	if err != nil {
		return View{}, err
	}
	return View{Interview: i}, nil
}

// List returns the caller's interviews; admins may list everyone's.
func (s *Service) List(ctx context.Context, userID string, isAdmin, all bool, limit, offset int) ([]Interview, error) {
	if all {
		if !isAdmin {
			return nil, ErrForbidden
		}
		return s.Repo.ListAll(ctx, limit, offset)
	}
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) get(ctx context.Context, userID, id string, isAdmin bool) (Interview, error) {
	if strings.TrimSpace(id) == "" {
		return Interview{}, ErrInvalidInput
	}
	i, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Interview{}, err
	}
	if i.UserID != userID && !isAdmin {
		return Interview{}, ErrForbidden
	}
	return i, nil
}

func (s *Service) apply(ctx context.Context, i *Interview, userID string, in Input) error {
	if in.MeetingTitle != nil {
		title := strings.TrimSpace(*in.MeetingTitle)
		if title == "" {
			return fmt.Errorf("%w: meetingTitle is required", ErrInvalidInput)
		}
		if len([]rune(title)) > maxTitleLen {
			return fmt.Errorf("%w: meetingTitle is too long", ErrInvalidInput)
		}
		i.MeetingTitle = title
	}
	if in.MeetingDate != nil {
		if in.MeetingDate.IsZero() {
			return fmt.Errorf("%w: meetingDate is required", ErrInvalidInput)
		}
		i.MeetingDate = in.MeetingDate.UTC()
	}
	if in.Location != nil {
		i.Location = strings.TrimSpace(*in.Location)
	}
	if in.Notes != nil {
		i.Notes = *in.Notes
	}
	if in.SelectedResumeID != nil {
		selected := strings.TrimSpace(*in.SelectedResumeID)
		if selected != "" && s.Resumes != nil {
			// The resume must belong to the interview owner.
			owner := i.UserID
			if owner == "" {
				owner = userID
			}
			if _, err := s.Resumes.Get(ctx, owner, selected, false); err != nil {
				switch {
				case errors.Is(err, savedresumes.ErrNotFound), errors.Is(err, savedresumes.ErrForbidden):
					return fmt.Errorf("%w: selectedResumeId not found", ErrInvalidInput)
				default:
					return err
				}
			}
		}
		i.SelectedResumeID = selected
	}
	return nil
}

// link runs the artifact linker under a bounded timeout. Failures are logged
// and reported on the view; they never fail the parent operation.
func (s *Service) link(ctx context.Context, i Interview) View {
	view := View{Interview: i}
	if !i.HasSelectedResume() || s.Linker == nil {
		return view
	}

	timeout := s.ArtifactTimeout
	if timeout <= 0 {
		timeout = DefaultArtifactTimeout
	}
	linkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.Linker.LinkArtifact(linkCtx, i.ID); err != nil {
		telemetry.Error("interview.artifact.failed", map[string]any{
			"interview_id": i.ID,
			"user_id":      i.UserID,
			"resume_id":    i.SelectedResumeID,
			"error":        err.Error(),
		})
		view.ResumeError = err.Error()
		return view
	}

	fresh, err := s.Repo.GetByID(ctx, i.ID)
	if err != nil {
		telemetry.Warn("interview.reload.failed", map[string]any{
			"interview_id": i.ID,
			"error":        err.Error(),
		})
		return view
	}
	view.Interview = fresh
	return view
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

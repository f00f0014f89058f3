package interviews

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Interview
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Interview)}
}

// Create stores a new interview.
func (m *MemoryRepo) Create(ctx context.Context, i Interview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[i.ID] = i
	return nil
}

// Update replaces an existing interview.
func (m *MemoryRepo) Update(ctx context.Context, i Interview) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[i.ID]; !ok {
		return ErrNotFound
	}
	m.data[i.ID] = i
	return nil
}

// GetByID returns an interview by ID.
func (m *MemoryRepo) GetByID(ctx context.Context, id string) (Interview, error) {
	if err := ctx.Err(); err != nil {
		return Interview{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.data[id]
	if !ok {
		return Interview{}, ErrNotFound
	}
	return i, nil
}

// ListByUser returns a user's interviews ordered by meeting date.
func (m *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Interview, error) {
	return m.list(ctx, func(i Interview) bool { return i.UserID == userID }, limit, offset, byMeetingDate)
}

// ListAll returns every interview ordered by meeting date.
func (m *MemoryRepo) ListAll(ctx context.Context, limit, offset int) ([]Interview, error) {
	return m.list(ctx, func(Interview) bool { return true }, limit, offset, byMeetingDate)
}

// ListWithSelectedResume returns interviews with a selected resume.
func (m *MemoryRepo) ListWithSelectedResume(ctx context.Context) ([]Interview, error) {
	return m.list(ctx, Interview.HasSelectedResume, 0, 0, byCreatedAt)
}

// SetArtifact records the artifact link for an interview.
func (m *MemoryRepo) SetArtifact(ctx context.Context, id, link, artifact string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.data[id]
	if !ok {
		return ErrNotFound
	}
	i.ResumeLink = link
	i.ResumeArtifact = artifact
	m.data[id] = i
	return nil
}

func (m *MemoryRepo) list(ctx context.Context, keep func(Interview) bool, limit, offset int, less func(a, b Interview) bool) ([]Interview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := []Interview{}
	for _, i := range m.data {
		if keep(i) {
			out = append(out, i)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool { return less(out[a], out[b]) })
	if offset > 0 {
		if offset >= len(out) {
			return []Interview{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func byMeetingDate(a, b Interview) bool {
	if a.MeetingDate.Equal(b.MeetingDate) {
		return a.ID < b.ID
	}
	return a.MeetingDate.Before(b.MeetingDate)
}

func byCreatedAt(a, b Interview) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

var _ Repo = (*MemoryRepo)(nil)

package savedresumes

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]SavedResume
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]SavedResume)}
}

// Create stores a new saved resume.
func (m *MemoryRepo) Create(ctx context.Context, r SavedResume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[r.ID] = clone(r)
	return nil
}

// Update replaces an existing saved resume.
func (m *MemoryRepo) Update(ctx context.Context, r SavedResume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[r.ID]; !ok {
		return ErrNotFound
	}
	m.data[r.ID] = clone(r)
	return nil
}

// GetByID returns a saved resume by ID.
func (m *MemoryRepo) GetByID(ctx context.Context, id string) (SavedResume, error) {
	if err := ctx.Err(); err != nil {
		return SavedResume{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.data[id]
	if !ok {
		return SavedResume{}, ErrNotFound
	}
	return clone(r), nil
}

// ListByUser returns a user's saved resumes, newest first.
func (m *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]SavedResume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	var out []SavedResume
	for _, r := range m.data {
		if r.UserID == userID {
			out = append(out, clone(r))
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []SavedResume{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func clone(r SavedResume) SavedResume {
	if r.ResumeJSON != nil {
		r.ResumeJSON = append([]byte(nil), r.ResumeJSON...)
	}
	return r
}

var _ Repo = (*MemoryRepo)(nil)

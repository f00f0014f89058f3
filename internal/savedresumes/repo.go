package savedresumes

import "context"

// Repo defines persistence operations for saved resumes.
type Repo interface {
	Create(ctx context.Context, r SavedResume) error
	Update(ctx context.Context, r SavedResume) error
	GetByID(ctx context.Context, id string) (SavedResume, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]SavedResume, error)
}

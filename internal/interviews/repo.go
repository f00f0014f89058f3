package interviews

import "context"

// Repo defines persistence operations for interviews.
type Repo interface {
	Create(ctx context.Context, i Interview) error
	Update(ctx context.Context, i Interview) error
	GetByID(ctx context.Context, id string) (Interview, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Interview, error)
	ListAll(ctx context.Context, limit, offset int) ([]Interview, error)
	// ListWithSelectedResume returns every interview that has a resume
	// selected, oldest first.
	ListWithSelectedResume(ctx context.Context) ([]Interview, error)
	// SetArtifact records the artifact link without touching other fields.
	SetArtifact(ctx context.Context, id, link, artifact string) error
}

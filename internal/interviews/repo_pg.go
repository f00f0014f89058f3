package interviews

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, meeting_title, meeting_date, location, notes, selected_resume_id, resume_link, resume_artifact, created_at, updated_at`

// Create inserts a new interview.
func (r *PGRepo) Create(ctx context.Context, i Interview) error {
	const query = `
INSERT INTO interviews (
    id,
    user_id,
    meeting_title,
    meeting_date,
    location,
    notes,
    selected_resume_id,
    resume_link,
    resume_artifact,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.DB.ExecContext(ctx, query,
		i.ID,
		i.UserID,
		i.MeetingTitle,
		i.MeetingDate,
		i.Location,
		i.Notes,
		nullString(i.SelectedResumeID),
		nullString(i.ResumeLink),
		nullString(i.ResumeArtifact),
		i.CreatedAt,
		i.UpdatedAt,
	)
	return err
}

// Update writes the user-editable fields and the artifact link.
func (r *PGRepo) Update(ctx context.Context, i Interview) error {
	const query = `
UPDATE interviews
SET meeting_title = $1,
    meeting_date = $2,
    location = $3,
    notes = $4,
    selected_resume_id = $5,
    resume_link = $6,
    resume_artifact = $7,
    updated_at = $8
WHERE id = $9`

	res, err := r.DB.ExecContext(ctx, query,
		i.MeetingTitle,
		i.MeetingDate,
		i.Location,
		i.Notes,
		nullString(i.SelectedResumeID),
		nullString(i.ResumeLink),
		nullString(i.ResumeArtifact),
		i.UpdatedAt,
		i.ID,
	)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// GetByID fetches an interview by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Interview, error) {
	query := `SELECT ` + selectColumns + ` FROM interviews WHERE id = $1 LIMIT 1`
	i, err := scanInterview(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Interview{}, ErrNotFound
		}
		return Interview{}, err
	}
	return i, nil
}

// ListByUser lists a user's interviews ordered by meeting date.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Interview, error) {
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + selectColumns + `
FROM interviews
WHERE user_id = $1
ORDER BY meeting_date ASC, id ASC
LIMIT $2 OFFSET $3`
	return r.query(ctx, query, userID, limit, offset)
}

// ListAll lists every interview ordered by meeting date.
func (r *PGRepo) ListAll(ctx context.Context, limit, offset int) ([]Interview, error) {
	limit, offset = clampPage(limit, offset)
	query := `SELECT ` + selectColumns + `
FROM interviews
ORDER BY meeting_date ASC, id ASC
LIMIT $1 OFFSET $2`
	return r.query(ctx, query, limit, offset)
}

// ListWithSelectedResume returns interviews with a selected resume, oldest first.
func (r *PGRepo) ListWithSelectedResume(ctx context.Context) ([]Interview, error) {
	query := `SELECT ` + selectColumns + `
FROM interviews
WHERE selected_resume_id IS NOT NULL
ORDER BY created_at ASC, id ASC`
	return r.query(ctx, query)
}

// SetArtifact records the artifact link for an interview.
func (r *PGRepo) SetArtifact(ctx context.Context, id, link, artifact string) error {
	const query = `
UPDATE interviews
SET resume_link = $1, resume_artifact = $2
WHERE id = $3`
	res, err := r.DB.ExecContext(ctx, query, nullString(link), nullString(artifact), id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Interview, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Interview{}
	for rows.Next() {
		i, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterview(row rowScanner) (Interview, error) {
	var i Interview
	var selected sql.NullString
	var link sql.NullString
	var artifact sql.NullString
	if err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.MeetingTitle,
		&i.MeetingDate,
		&i.Location,
		&i.Notes,
		&selected,
		&link,
		&artifact,
		&i.CreatedAt,
		&i.UpdatedAt,
	); err != nil {
		return Interview{}, err
	}
	if selected.Valid {
		i.SelectedResumeID = selected.String
	}
	if link.Valid {
		i.ResumeLink = link.String
	}
	if artifact.Valid {
		i.ResumeArtifact = artifact.String
	}
	return i, nil
}

func expectRow(res sql.Result) error {
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

var _ Repo = (*PGRepo)(nil)

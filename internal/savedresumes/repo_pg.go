package savedresumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, company, job_title, job_description, original_resume, modified_resume, resume_json, original_pdf_key, original_file_name, created_at, updated_at`

// Create inserts a new saved resume.
func (r *PGRepo) Create(ctx context.Context, s SavedResume) error {
	const query = `
INSERT INTO saved_resumes (
    id,
    user_id,
    company,
    job_title,
    job_description,
    original_resume,
    modified_resume,
    resume_json,
    original_pdf_key,
    original_file_name,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.DB.ExecContext(ctx, query,
		s.ID,
		s.UserID,
		s.Company,
		s.JobTitle,
		s.JobDescription,
		s.OriginalResume,
		s.ModifiedResume,
		nullJSON(s.ResumeJSON),
		nullString(s.OriginalPDFKey),
		nullString(s.OriginalFileName),
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

// Update writes all mutable fields of a saved resume.
func (r *PGRepo) Update(ctx context.Context, s SavedResume) error {
	const query = `
UPDATE saved_resumes
SET company = $1,
    job_title = $2,
    job_description = $3,
    original_resume = $4,
    modified_resume = $5,
    resume_json = $6,
    original_pdf_key = $7,
    original_file_name = $8,
    updated_at = $9
WHERE id = $10`

	res, err := r.DB.ExecContext(ctx, query,
		s.Company,
		s.JobTitle,
		s.JobDescription,
		s.OriginalResume,
		s.ModifiedResume,
		nullJSON(s.ResumeJSON),
		nullString(s.OriginalPDFKey),
		nullString(s.OriginalFileName),
		s.UpdatedAt,
		s.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches a saved resume by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (SavedResume, error) {
	query := `SELECT ` + selectColumns + ` FROM saved_resumes WHERE id = $1 LIMIT 1`
	s, err := scanResume(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SavedResume{}, ErrNotFound
		}
		return SavedResume{}, err
	}
	return s, nil
}

// ListByUser lists a user's saved resumes ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]SavedResume, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + selectColumns + `
FROM saved_resumes
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SavedResume{}
	for rows.Next() {
		s, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (SavedResume, error) {
	var s SavedResume
	var resumeJSON []byte
	var pdfKey sql.NullString
	var fileName sql.NullString
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Company,
		&s.JobTitle,
		&s.JobDescription,
		&s.OriginalResume,
		&s.ModifiedResume,
		&resumeJSON,
		&pdfKey,
		&fileName,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return SavedResume{}, err
	}
	if len(resumeJSON) > 0 {
		s.ResumeJSON = json.RawMessage(resumeJSON)
	}
	if pdfKey.Valid {
		s.OriginalPDFKey = pdfKey.String
	}
	if fileName.Valid {
		s.OriginalFileName = fileName.String
	}
	return s, nil
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func nullJSON(raw json.RawMessage) any {
	if !hasJSON(raw) {
		return nil
	}
	return []byte(raw)
}

var _ Repo = (*PGRepo)(nil)

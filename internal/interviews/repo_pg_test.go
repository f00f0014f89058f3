package interviews

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoSetArtifact(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE interviews").
		WithArgs("/api/interviews/i-1/scheduled-resume-pdf", "schedule_2025-08-21_Phone_Screen_Acme_1.pdf", "i-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	if err := repo.SetArtifact(context.Background(), "i-1", "/api/interviews/i-1/scheduled-resume-pdf", "schedule_2025-08-21_Phone_Screen_Acme_1.pdf"); err != nil {
		t.Fatalf("SetArtifact: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSetArtifactMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE interviews").WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	if err := repo.SetArtifact(context.Background(), "missing", "", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListWithSelectedResume(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "meeting_title", "meeting_date", "location", "notes",
		"selected_resume_id", "resume_link", "resume_artifact", "created_at", "updated_at",
	}).
		AddRow("i-1", "user-1", "Phone Screen", now, "", "", "resume-1", nil, nil, now, now).
		AddRow("i-2", "user-2", "Onsite", now, "HQ", "", "resume-9", "/api/interviews/i-2/scheduled-resume-pdf", "schedule_a_1.pdf", now, now)
	mock.ExpectQuery("SELECT (.+) FROM interviews WHERE selected_resume_id IS NOT NULL").WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	items, err := repo.ListWithSelectedResume(context.Background())
	if err != nil {
		t.Fatalf("ListWithSelectedResume: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(items))
	}
	if items[0].ResumeLink != "" || items[1].ResumeArtifact != "schedule_a_1.pdf" {
		t.Fatalf("unexpected nullable mapping %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

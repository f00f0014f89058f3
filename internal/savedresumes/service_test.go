package savedresumes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
)

type memObjects struct {
	mu   sync.Mutex
	data map[string][]byte
	seq  int
}

func newMemObjects() *memObjects {
	return &memObjects{data: make(map[string][]byte)}
}

func (m *memObjects) Save(ctx context.Context, userID, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	key := fmt.Sprintf("%s/%d_%s", userID, m.seq, fileName)
	m.data[key] = data
	return key, int64(len(data)), "application/pdf", nil
}

func (m *memObjects) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, errors.New("missing")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memObjects) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func newTestService() (*Service, *memObjects) {
	objects := newMemObjects()
	fixed := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	return &Service{
		Repo:  NewMemoryRepo(),
		Store: objects,
		Now:   func() time.Time { return fixed },
	}, objects
}

func strPtr(s string) *string { return &s }

func resumePDF(t *testing.T, text string) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	doc.Cell(60, 10, text)
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	return buf.Bytes()
}

func TestCreateRequiresCompany(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), "user-1", Input{ModifiedResume: strPtr("Jane")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateInfersCompanyWhenAsked(t *testing.T) {
	svc, _ := newTestService()
	r, err := svc.Create(context.Background(), "user-1", Input{
		JobDescription: strPtr("Company: Phoenix Support Services\nRole: Support Engineer"),
		ModifiedResume: strPtr("Jane"),
		InferCompany:   true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Company != "Phoenix Support Services" || r.JobTitle != "Support Engineer" {
		t.Fatalf("unexpected inferred details %q %q", r.Company, r.JobTitle)
	}
}

func TestCreateExplicitCompanyNotOverridden(t *testing.T) {
	svc, _ := newTestService()
	r, err := svc.Create(context.Background(), "user-1", Input{
		Company:        strPtr("Acme"),
		JobDescription: strPtr("Company: Someone Else"),
		InferCompany:   true,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.Company != "Acme" {
		t.Fatalf("explicit company replaced: %q", r.Company)
	}
}

func TestCreateRejectsInvalidResumeJSON(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), "user-1", Input{
		Company:    strPtr("Acme"),
		ResumeJSON: json.RawMessage(`{"header":{"name":"Jane"},"unknown":true}`),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateOwnershipAndClearJSON(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	r, err := svc.Create(ctx, "owner", Input{
		Company:    strPtr("Acme"),
		ResumeJSON: json.RawMessage(`{"header":{"name":"Jane"}}`),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Update(ctx, "intruder", r.ID, false, Input{Company: strPtr("X")}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	updated, err := svc.Update(ctx, "admin-user", r.ID, true, Input{ResumeJSON: json.RawMessage("null"), ModifiedResume: strPtr("Jane Doe")})
	if err != nil {
		t.Fatalf("admin Update: %v", err)
	}
	if updated.ResumeJSON != nil || updated.Company != "Acme" {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if _, err := svc.Update(ctx, "owner", r.ID, false, Input{Company: strPtr("  ")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank company, got %v", err)
	}
}

func TestUploadStoresPDFAndExtractsText(t *testing.T) {
	svc, objects := newTestService()
	data := resumePDF(t, "Jane Candidate")
	r, err := svc.Upload(context.Background(), "user-1", "resume.pdf", bytes.NewReader(data), Input{Company: strPtr("Phoenix Support Services")})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if r.OriginalPDFKey == "" || r.OriginalFileName != "resume.pdf" {
		t.Fatalf("unexpected upload record %+v", r)
	}
	if !bytes.Equal(objects.data[r.OriginalPDFKey], data) {
		t.Fatalf("stored bytes differ from upload")
	}
	if !strings.Contains(strings.ReplaceAll(r.OriginalResume, " ", ""), "JaneCandidate") {
		t.Fatalf("expected extracted text, got %q", r.OriginalResume)
	}
	stored, err := svc.Get(context.Background(), "user-1", r.ID, false)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.OriginalPDFKey != r.OriginalPDFKey {
		t.Fatalf("stored key mismatch")
	}
}

func TestUploadRejectsNonPDF(t *testing.T) {
	svc, objects := newTestService()
	_, err := svc.Upload(context.Background(), "user-1", "resume.docx", strings.NewReader("PK\x03\x04"), Input{Company: strPtr("Acme")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(objects.data) != 0 {
		t.Fatalf("nothing should be stored for rejected uploads")
	}
}

type failingCreate struct {
	*MemoryRepo
}

func (failingCreate) Create(ctx context.Context, r SavedResume) error {
	return errors.New("insert failed")
}

func TestUploadRemovesObjectWhenRecordFails(t *testing.T) {
	svc, objects := newTestService()
	svc.Repo = failingCreate{MemoryRepo: NewMemoryRepo()}
	data := resumePDF(t, "Jane Candidate")
	if _, err := svc.Upload(context.Background(), "user-1", "resume.pdf", bytes.NewReader(data), Input{Company: strPtr("Acme")}); err == nil {
		t.Fatalf("expected upload to fail")
	}
	if len(objects.data) != 0 {
		t.Fatalf("expected stored object to be removed, have %d", len(objects.data))
	}
}

func TestUploadRejectsOversize(t *testing.T) {
	svc, _ := newTestService()
	svc.MaxUploadBytes = 32
	body := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 64)...)
	_, err := svc.Upload(context.Background(), "user-1", "big.pdf", bytes.NewReader(body), Input{Company: strPtr("Acme")})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListScopedToUser(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	for _, user := range []string{"a", "a", "b"} {
		if _, err := svc.Create(ctx, user, Input{Company: strPtr("Acme")}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	items, err := svc.List(ctx, "a", 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

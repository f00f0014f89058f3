package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/artifacts"
	"jobtracker-backend/internal/interviews"
	"jobtracker-backend/internal/pdfgen"
	"jobtracker-backend/internal/savedresumes"
	"jobtracker-backend/internal/scheduling"
	"jobtracker-backend/internal/shared/auth"
)

const testSecret = "retrieval-test-secret"

var uploadedPDF = []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\n% phoenix resume\n%%EOF\n")

type memObjects map[string][]byte

func (m memObjects) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m[key]
	if !ok {
		return nil, errors.New("missing object")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type env struct {
	router     *gin.Engine
	sched      *scheduling.Service
	interviews *interviews.Service
	ivRepo     *interviews.MemoryRepo
	resumes    *savedresumes.MemoryRepo
	dir        string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := filepath.Join(t.TempDir(), "schedule", "resumes")
	ivRepo := interviews.NewMemoryRepo()
	resumes := savedresumes.NewMemoryRepo()
	store := artifacts.NewStore(artifacts.Config{Dir: dir})
	gen := pdfgen.NewGenerator(memObjects{"user-1/phoenix.pdf": uploadedPDF}, nil, pdfgen.Config{})
	sched := scheduling.NewService(ivRepo, resumes, gen, store, scheduling.Config{})

	verifier, err := auth.NewVerifier(auth.Options{Secret: testSecret})
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}

	router := gin.New()
	NewHandler(verifier, sched, store).RegisterRoutes(router.Group("/api"))

	return &env{
		router: router,
		sched:  sched,
		interviews: &interviews.Service{
			Repo:    ivRepo,
			Resumes: &savedresumes.Service{Repo: resumes},
			Linker:  sched,
		},
		ivRepo:  ivRepo,
		resumes: resumes,
		dir:     dir,
	}
}

func (e *env) addResume(t *testing.T, r savedresumes.SavedResume) {
	t.Helper()
	r.CreatedAt = time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	r.UpdatedAt = r.CreatedAt
	if err := e.resumes.Create(context.Background(), r); err != nil {
		t.Fatalf("create resume: %v", err)
	}
}

func (e *env) schedule(t *testing.T, userID, title, resumeID string) interviews.View {
	t.Helper()
	date := time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC)
	view, err := e.interviews.Create(context.Background(), userID, interviews.Input{
		MeetingTitle:     &title,
		MeetingDate:      &date,
		SelectedResumeID: &resumeID,
	})
	if err != nil {
		t.Fatalf("create interview: %v", err)
	}
	return view
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := auth.SignToken(testSecret, auth.Claims{Sub: sub, Role: role})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func (e *env) get(path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", resp.Body.String(), err)
	}
	if body["error"] == "" {
		t.Fatalf("expected error message in %v", body)
	}
	return body
}

func TestEndToEndPhoneScreenPhoenix(t *testing.T) {
	e := newEnv(t)
	e.addResume(t, savedresumes.SavedResume{
		ID:             "resume-1",
		UserID:         "user-1",
		Company:        "Phoenix Support Services",
		OriginalPDFKey: "user-1/phoenix.pdf",
	})
	view := e.schedule(t, "user-1", "Phone Screen", "resume-1")

	if view.ResumeStatus() != interviews.ResumeStatusLinked {
		t.Fatalf("expected linked interview, got %+v", view)
	}
	if want := "/api/interviews/" + view.ID + "/scheduled-resume-pdf"; view.ResumeLink != want {
		t.Fatalf("expected link %s, got %s", want, view.ResumeLink)
	}
	if !strings.HasPrefix(view.ResumeArtifact, "schedule_2025-08-21_Phone_Screen_Phoenix_Support_Serv_") {
		t.Fatalf("unexpected artifact name %s", view.ResumeArtifact)
	}

	resp := e.get(view.ResumeLink+"?token="+token(t, "user-1", ""), "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !bytes.Equal(resp.Body.Bytes(), uploadedPDF) {
		t.Fatalf("downloaded bytes differ from uploaded pdf")
	}
	h := resp.Header()
	if h.Get("Content-Type") != "application/pdf" {
		t.Fatalf("unexpected content type %q", h.Get("Content-Type"))
	}
	if h.Get("Content-Length") != strconv.Itoa(len(uploadedPDF)) {
		t.Fatalf("unexpected content length %q", h.Get("Content-Length"))
	}
	if got := h.Get("Content-Disposition"); got != `inline; filename="resume_Phoenix_Support_Services_2025-08-21.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if !strings.Contains(h.Get("Cache-Control"), "no-store") {
		t.Fatalf("expected no-store, got %q", h.Get("Cache-Control"))
	}
	if h.Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected nosniff")
	}
}

func TestDownloadWithoutTokenIsUnauthorized(t *testing.T) {
	e := newEnv(t)
	resp := e.get("/api/interviews/any/scheduled-resume-pdf", "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if body := decodeError(t, resp); body["code"] != "unauthorized" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestDownloadWithInvalidTokenIsUnauthorized(t *testing.T) {
	e := newEnv(t)
	forged, _ := auth.SignToken("other-secret", auth.Claims{Sub: "user-1"})

	if resp := e.get("/api/interviews/any/scheduled-resume-pdf", forged); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for header token, got %d", resp.Code)
	}
	if resp := e.get("/api/interviews/any/scheduled-resume-pdf?token="+forged, ""); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for query token, got %d", resp.Code)
	}
}

func TestDownloadForOtherUserIsForbidden(t *testing.T) {
	e := newEnv(t)
	e.addResume(t, savedresumes.SavedResume{ID: "resume-1", UserID: "user-1", Company: "Acme", OriginalPDFKey: "user-1/phoenix.pdf"})
	view := e.schedule(t, "user-1", "Onsite", "resume-1")

	resp := e.get(view.ResumeLink, token(t, "user-2", ""))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
	decodeError(t, resp)
}

func TestDownloadAsAdmin(t *testing.T) {
	e := newEnv(t)
	e.addResume(t, savedresumes.SavedResume{ID: "resume-1", UserID: "user-1", Company: "Acme", OriginalPDFKey: "user-1/phoenix.pdf"})
	view := e.schedule(t, "user-1", "Onsite", "resume-1")

	resp := e.get(view.ResumeLink, token(t, "admin-1", auth.RoleAdmin))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Body.Len() != len(uploadedPDF) {
		t.Fatalf("expected %d bytes, got %d", len(uploadedPDF), resp.Body.Len())
	}
}

func TestDownloadMissingArtifactIsNotFound(t *testing.T) {
	e := newEnv(t)
	e.addResume(t, savedresumes.SavedResume{ID: "resume-1", UserID: "user-1", Company: "Acme", OriginalPDFKey: "user-1/phoenix.pdf"})
	view := e.schedule(t, "user-1", "Onsite", "resume-1")

	if err := os.RemoveAll(e.dir); err != nil {
		t.Fatalf("remove schedule dir: %v", err)
	}
	resp := e.get(view.ResumeLink, token(t, "user-1", ""))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if body := decodeError(t, resp); body["code"] != "not_found" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestDownloadUnknownInterviewIsNotFound(t *testing.T) {
	e := newEnv(t)
	resp := e.get("/api/interviews/missing/scheduled-resume-pdf", token(t, "user-1", ""))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestDownloadWithoutSelectedResumeIsNotFound(t *testing.T) {
	e := newEnv(t)
	title := "Coffee chat"
	date := time.Date(2025, 8, 21, 0, 0, 0, 0, time.UTC)
	view, err := e.interviews.Create(context.Background(), "user-1", interviews.Input{MeetingTitle: &title, MeetingDate: &date})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	resp := e.get("/api/interviews/"+view.ID+"/scheduled-resume-pdf", token(t, "user-1", ""))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestDownloadServesLatestAfterRegenerate(t *testing.T) {
	e := newEnv(t)
	e.addResume(t, savedresumes.SavedResume{ID: "resume-1", UserID: "user-1", Company: "Acme", ModifiedResume: "Jane Candidate\nSupport engineer"})
	view := e.schedule(t, "user-1", "Onsite", "resume-1")

	res, err := e.sched.Regenerate(context.Background(), view.ID)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	want, err := os.ReadFile(filepath.Join(e.dir, res.Artifact.Name))
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	resp := e.get(view.ResumeLink, token(t, "user-1", ""))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !bytes.Equal(resp.Body.Bytes(), want) {
		t.Fatalf("expected latest artifact bytes")
	}
}

func TestFilenameFallsBackWithoutCompany(t *testing.T) {
	res := scheduling.Resolved{
		Interview: interviews.Interview{MeetingDate: time.Date(2025, 1, 2, 23, 0, 0, 0, time.UTC)},
	}
	if got := Filename(res); got != "resume_resume_2025-01-02.pdf" {
		t.Fatalf("unexpected filename %s", got)
	}
}

func TestContextReaderStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := contextReader{ctx: ctx, r: bytes.NewReader(uploadedPDF)}.Read(make([]byte, 8))
	if n != 0 || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled read, got %d %v", n, err)
	}
}

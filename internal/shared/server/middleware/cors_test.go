package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSRouter(origins ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(origins))
	router.PUT("/api/interviews/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/api/interviews/:id/scheduled-resume-pdf", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestCORSOptionsPreflight(t *testing.T) {
	router := newCORSRouter("http://localhost:5173")

	req := httptest.NewRequest(http.MethodOptions, "/api/interviews/123", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected Allow-Origin http://localhost:5173, got %q", got)
	}
	if got := resp.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "PUT") {
		t.Fatalf("expected PUT in Allow-Methods, got %q", got)
	}
	if got := resp.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Range") {
		t.Fatalf("expected Range in Allow-Headers, got %q", got)
	}
	if got := resp.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Fatalf("expected Max-Age 600, got %q", got)
	}
}

func TestCORSHeadersOnPut(t *testing.T) {
	router := newCORSRouter("http://localhost:5173/")

	req := httptest.NewRequest(http.MethodPut, "/api/interviews/123", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected Allow-Origin http://localhost:5173, got %q", got)
	}
	if got := resp.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(got, "Content-Disposition") {
		t.Fatalf("expected Content-Disposition exposed, got %q", got)
	}
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	router := newCORSRouter("http://localhost:5173")

	req := httptest.NewRequest(http.MethodGet, "/api/interviews/123/scheduled-resume-pdf", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no Allow-Origin, got %q", got)
	}
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestCORSWildcardSubdomain(t *testing.T) {
	router := newCORSRouter("https://*.jobtracker.app")
	cases := map[string]bool{
		"https://web.jobtracker.app":  true,
		"https://evil.example":        false,
		"http://web.jobtracker.app":   false,
		"https://evil-jobtracker.app": false,
	}
	for origin, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/interviews/123/scheduled-resume-pdf", nil)
		req.Header.Set("Origin", origin)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if got := resp.Header().Get("Access-Control-Allow-Origin") == origin; got != want {
			t.Errorf("origin %q allowed = %v, want %v", origin, got, want)
		}
	}
}

func TestCORSWithoutOriginsPassesNonBrowserCalls(t *testing.T) {
	router := newCORSRouter()

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/interviews/123/scheduled-resume-pdf", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 without Origin header, got %d", resp.Code)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"SCHEDULE_DIR", "MAX_UPLOAD_BYTES", "PDF_RENDERER", "ARTIFACT_GENERATE_TIMEOUT", "ENV"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ScheduleDir != "uploads/schedule/resumes" {
		t.Fatalf("unexpected schedule dir: %s", cfg.ScheduleDir)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("unexpected max upload bytes: %d", cfg.MaxUploadBytes)
	}
	if cfg.PDFRenderer != "fpdf" {
		t.Fatalf("unexpected renderer: %s", cfg.PDFRenderer)
	}
	if cfg.ArtifactGenerateTimeout != 20*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.ArtifactGenerateTimeout)
	}
	if cfg.Env != "dev" {
		t.Fatalf("unexpected env: %s", cfg.Env)
	}
}

func TestLoadOverridesAndInvalidValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SCHEDULE_DIR", "/srv/artifacts")
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")
	t.Setenv("PDF_RENDERER", "Chrome")
	t.Setenv("JWT_LEEWAY", "5s")
	t.Setenv("ENV", "prod")
	t.Setenv("S3_ENDPOINT", "http://minio:9000")
	t.Setenv("S3_PATH_STYLE", "true")

	cfg := Load()
	if cfg.S3Endpoint != "http://minio:9000" || !cfg.S3PathStyle {
		t.Fatalf("unexpected s3 settings: %q %t", cfg.S3Endpoint, cfg.S3PathStyle)
	}
	if cfg.ScheduleDir != "/srv/artifacts" {
		t.Fatalf("unexpected schedule dir: %s", cfg.ScheduleDir)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected fallback for invalid int, got %d", cfg.MaxUploadBytes)
	}
	if cfg.PDFRenderer != "chromedp" {
		t.Fatalf("unexpected renderer: %s", cfg.PDFRenderer)
	}
	if cfg.JWTLeeway != 5*time.Second {
		t.Fatalf("unexpected leeway: %s", cfg.JWTLeeway)
	}
	if cfg.Env != "production" {
		t.Fatalf("unexpected env: %s", cfg.Env)
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	content := "SCHEDULE_DIR=from-file\nCHROME_PATH=/opt/chrome\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("SCHEDULE_DIR", "from-env")
	t.Setenv("CHROME_PATH", "")
	os.Unsetenv("CHROME_PATH")

	cfg := Load()
	if cfg.ScheduleDir != "from-env" {
		t.Fatalf("expected env to win, got %s", cfg.ScheduleDir)
	}
	if cfg.ChromePath != "/opt/chrome" {
		t.Fatalf("expected value from .env, got %q", cfg.ChromePath)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}

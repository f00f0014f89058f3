package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"jobtracker-backend/internal/bootstrap"
	"jobtracker-backend/internal/scheduling"
	"jobtracker-backend/internal/shared/config"
)

func run(t *testing.T, build appBuilder, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(build)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func noApp(t *testing.T) appBuilder {
	return func(context.Context) (*bootstrap.App, error) {
		t.Fatalf("command should not open storage")
		return nil, nil
	}
}

func memoryApp(t *testing.T) appBuilder {
	dir := t.TempDir()
	cfg := config.Config{
		Env:            "test",
		LocalStoreDir:  filepath.Join(dir, "uploads"),
		ScheduleDir:    filepath.Join(dir, "schedule"),
		MaxUploadBytes: 1 << 20,
		PDFRenderer:    "fpdf",
	}
	return func(ctx context.Context) (*bootstrap.App, error) {
		return bootstrap.BuildServices(ctx, cfg)
	}
}

func TestPrefixCommand(t *testing.T) {
	out, err := run(t, noApp(t), "prefix", "--date", "2025-08-21", "--title", "Phone Screen", "--company", "Phoenix Support Services")
	if err != nil {
		t.Fatalf("prefix: %v", err)
	}
	if got := strings.TrimSpace(out); got != "schedule_2025-08-21_Phone_Screen_Phoenix_Support_Serv" {
		t.Fatalf("unexpected prefix %q", got)
	}
}

func TestPrefixCommandRejectsBadDate(t *testing.T) {
	if _, err := run(t, noApp(t), "prefix", "--date", "21/08/2025", "--title", "x"); err == nil {
		t.Fatalf("expected error for bad date")
	}
}

func TestResolveRequiresInterview(t *testing.T) {
	if _, err := run(t, noApp(t), "resolve"); err == nil {
		t.Fatalf("expected missing flag error")
	}
}

func TestResolveUnknownInterview(t *testing.T) {
	if _, err := run(t, memoryApp(t), "resolve", "--interview", "missing"); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestReconcileEmptyDryRun(t *testing.T) {
	out, err := run(t, memoryApp(t), "reconcile", "--dry-run")
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	var report scheduling.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if !report.DryRun || report.Total != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

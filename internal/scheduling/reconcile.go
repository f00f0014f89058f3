package scheduling

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"jobtracker-backend/internal/interviews"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/telemetry"
)

// Item statuses reported by the reconciler in addition to Status values.
const (
	ItemPresent = "present"
	ItemMissing = "missing"
	ItemFailed  = "failed"
)

// Options controls a reconciliation run.
type Options struct {
	// DryRun only reports interviews without a resolvable artifact.
	DryRun bool
	// Force regenerates every artifact even when content is unchanged.
	Force bool
	// InterviewID restricts the run to one interview.
	InterviewID string
}

// ItemResult is the outcome for one interview.
type ItemResult struct {
	InterviewID string `json:"interviewId"`
	Status      string `json:"status"`
	Prefix      string `json:"prefix,omitempty"`
	Artifact    string `json:"artifact,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Report summarizes a reconciliation run.
type Report struct {
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	DryRun     bool         `json:"dryRun"`
	Total      int          `json:"total"`
	Written    int          `json:"written"`
	Unchanged  int          `json:"unchanged"`
	Present    int          `json:"present"`
	Missing    int          `json:"missing"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failed"`
	Items      []ItemResult `json:"items"`
}

// Reconciler walks interviews with a selected resume and repairs their
// artifacts one at a time. A failing interview never aborts the batch.
type Reconciler struct {
	svc     *Service
	now     func() time.Time
	running atomic.Bool
}

// NewReconciler constructs a Reconciler.
func NewReconciler(svc *Service) *Reconciler {
	return &Reconciler{svc: svc, now: time.Now}
}

// Run performs one reconciliation pass. Only one pass runs at a time per
// process; a concurrent caller gets ErrReconcileInProgress.
func (r *Reconciler) Run(ctx context.Context, opts Options) (Report, error) {
	if !r.running.CompareAndSwap(false, true) {
		return Report{}, ErrReconcileInProgress
	}
	defer r.running.Store(false)

	start := r.now()
	report := Report{StartedAt: start.UTC(), DryRun: opts.DryRun, Items: []ItemResult{}}
	telemetry.Info("reconcile.start", map[string]any{
		"dry_run":      opts.DryRun,
		"force":        opts.Force,
		"interview_id": opts.InterviewID,
	})

	targets, err := r.targets(ctx, opts)
	if err != nil {
		metrics.IncReconcileRun("error")
		return report, err
	}

	var runErr error
	for _, iv := range targets {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		item := r.reconcileOne(ctx, iv, opts)
		report.add(item)
		metrics.IncReconcileItem(item.Status)
	}

	report.FinishedAt = r.now().UTC()
	metrics.ObserveReconcile(report.FinishedAt.Sub(report.StartedAt))
	result := "ok"
	switch {
	case runErr != nil:
		result = "canceled"
	case report.Failed > 0:
		result = "partial"
	}
	metrics.IncReconcileRun(result)
	telemetry.Info("reconcile.finish", map[string]any{
		"result":    result,
		"total":     report.Total,
		"written":   report.Written,
		"unchanged": report.Unchanged,
		"present":   report.Present,
		"missing":   report.Missing,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
	})
	return report, runErr
}

func (r *Reconciler) targets(ctx context.Context, opts Options) ([]interviews.Interview, error) {
	if opts.InterviewID != "" {
		iv, err := r.svc.Interview(ctx, opts.InterviewID)
		if err != nil {
			return nil, err
		}
		return []interviews.Interview{iv}, nil
	}
	return r.svc.interviews.ListWithSelectedResume(ctx)
}

func (r *Reconciler) reconcileOne(ctx context.Context, iv interviews.Interview, opts Options) ItemResult {
	item := ItemResult{InterviewID: iv.ID}

	if opts.DryRun {
		resolved, err := r.svc.Resolve(ctx, iv)
		switch {
		case err == nil:
			item.Status = ItemPresent
			item.Prefix = resolved.Prefix
			item.Artifact = resolved.Artifact.Name
		case errors.Is(err, ErrNotFound):
			item.Status = ItemMissing
			item.Error = err.Error()
		default:
			item.Status = ItemFailed
			item.Error = err.Error()
		}
		return item
	}

	var (
		res Result
		err error
	)
	if opts.Force {
		res, err = r.svc.Regenerate(ctx, iv.ID)
	} else {
		res, err = r.svc.EnsureArtifact(ctx, iv.ID)
	}
	item.Prefix = res.Prefix
	if err != nil {
		item.Status = ItemFailed
		if errors.Is(err, ErrNotFound) {
			item.Status = ItemMissing
		}
		item.Error = err.Error()
		telemetry.Warn("reconcile.item.failed", map[string]any{
			"interview_id": iv.ID,
			"status":       item.Status,
			"error":        err.Error(),
		})
		return item
	}
	item.Status = string(res.Status)
	item.Artifact = res.Artifact.Name
	telemetry.Info("reconcile.item", map[string]any{
		"interview_id": iv.ID,
		"status":       item.Status,
		"artifact":     item.Artifact,
	})
	return item
}

func (rep *Report) add(item ItemResult) {
	rep.Total++
	switch item.Status {
	case string(StatusWritten):
		rep.Written++
	case string(StatusUnchanged):
		rep.Unchanged++
	case string(StatusSkipped):
		rep.Skipped++
	case ItemPresent:
		rep.Present++
	case ItemMissing:
		rep.Missing++
	default:
		rep.Failed++
	}
	rep.Items = append(rep.Items, item)
}

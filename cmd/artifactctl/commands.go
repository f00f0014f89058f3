package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"jobtracker-backend/internal/artifacts"
	"jobtracker-backend/internal/scheduling"
)

const dateLayout = "2006-01-02"

func newReconcileCmd(build appBuilder) *cobra.Command {
	var opts scheduling.Options
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Generate missing or stale artifacts for scheduled interviews",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := build(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Reconciler.Run(ctx, opts)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d interviews failed", report.Failed, report.Total)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Only report interviews without a resolvable artifact")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Write a new artifact even when content is unchanged")
	cmd.Flags().StringVar(&opts.InterviewID, "interview", "", "Restrict the run to one interview id")
	return cmd
}

func newPrefixCmd() *cobra.Command {
	var date, title, company string
	cmd := &cobra.Command{
		Use:   "prefix",
		Short: "Print the artifact prefix for a meeting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			meetingDate, err := time.Parse(dateLayout, strings.TrimSpace(date))
			if err != nil {
				return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), artifacts.BuildPrefix(meetingDate, title, company))
			return err
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Meeting date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&title, "title", "", "Meeting title")
	cmd.Flags().StringVar(&company, "company", "", "Company of the selected resume")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

type resolveOutput struct {
	InterviewID string    `json:"interviewId"`
	ResumeID    string    `json:"resumeId"`
	Prefix      string    `json:"prefix"`
	Artifact    string    `json:"artifact"`
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"modTime"`
}

func newResolveCmd(build appBuilder) *cobra.Command {
	var interviewID string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show which artifact an interview link serves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := build(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			iv, err := app.Scheduling.Interview(ctx, interviewID)
			if err != nil {
				return err
			}
			res, err := app.Scheduling.Resolve(ctx, iv)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resolveOutput{
				InterviewID: iv.ID,
				ResumeID:    res.Resume.ID,
				Prefix:      res.Prefix,
				Artifact:    res.Artifact.Name,
				Path:        filepath.Join(app.Artifacts.Dir(), res.Artifact.Name),
				Size:        res.Artifact.Size,
				ModTime:     res.Artifact.ModTime,
			})
		},
	}
	cmd.Flags().StringVar(&interviewID, "interview", "", "Interview id")
	_ = cmd.MarkFlagRequired("interview")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

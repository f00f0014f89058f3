// Command artifactctl inspects and repairs scheduled resume artifacts.
//
//	go run ./cmd/artifactctl reconcile --dry-run
//	go run ./cmd/artifactctl prefix --date 2025-08-21 --title "Phone Screen" --company Acme
//	go run ./cmd/artifactctl resolve --interview <id>
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jobtracker-backend/internal/bootstrap"
	"jobtracker-backend/internal/shared/config"
	"jobtracker-backend/internal/shared/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(buildApp).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "artifactctl: %v\n", err)
		os.Exit(1)
	}
}

// appBuilder opens storage and services. Commands that only compute names
// never call it.
type appBuilder func(ctx context.Context) (*bootstrap.App, error)

func buildApp(ctx context.Context) (*bootstrap.App, error) {
	cfg := config.Load()
	telemetry.SetLevel(cfg.LogLevel)
	return bootstrap.BuildServices(ctx, cfg)
}

func newRootCommand(build appBuilder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifactctl",
		Short: "Scheduled resume artifact tooling",
		Long: `artifactctl works on the schedule directory that backs interview resume links:
it reconciles artifacts against their interviews, prints artifact prefixes and
resolves which file a link currently serves.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newReconcileCmd(build),
		newPrefixCmd(),
		newResolveCmd(build),
	)
	return cmd
}

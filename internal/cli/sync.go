package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/diagnosis/visitor-hosts/internal/hostsync"
	"github.com/diagnosis/visitor-hosts/pkg/config"
	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command: one pass, then print the summary.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a single host sync pass and print its summary",
		Long: `Run one reconciliation pass against the membership platform: create hosts
for new companies, provision their logins and refresh phones of known hosts.
Exits 1 when the pass is aborted (token exchange or companies listing failed).`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if workers > 0 {
				cfg.Sync.Workers = workers
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to start", err)
			}
			defer a.Close()

			return runOnce(ctx, a.coordinator, rootOpts, cmd)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "companies processed concurrently (overrides SYNC_WORKERS)")
	return cmd
}

type passRunner interface {
	TryRun(ctx context.Context) (*hostsync.Summary, error)
}

func runOnce(ctx context.Context, r passRunner, opts *RootOptions, cmd *cobra.Command) error {
	summary, runErr := r.TryRun(ctx)
	if summary != nil {
		if err := writeSummary(cmd.OutOrStdout(), opts.Format, summary); err != nil {
			return err
		}
	}
	if runErr != nil {
		return WrapExitError(ExitFailure, "host sync aborted", runErr)
	}
	return nil
}

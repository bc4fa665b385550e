package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/diagnosis/visitor-hosts/internal/http/handlers"
	"github.com/diagnosis/visitor-hosts/pkg/config"
	"github.com/diagnosis/visitor-hosts/pkg/logger"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command: scheduler plus ops API.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the hourly host sync and the ops API",
		Long: `Run the host sync on a fixed schedule (SYNC_INTERVAL, default 1h) and serve
the ops API: GET /healthz, GET /v1/sync/status, GET /v1/sync/history and
POST /v1/sync/run (admin bearer token).`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port != "" {
				cfg.Server.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "ops API port (overrides PORT)")
	return cmd
}

func runServe(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start", err)
	}
	defer a.Close()

	h := handlers.NewSyncHandler(a.coordinator, a.summaries)
	srv := &http.Server{
		Addr: ":" + cfg.Server.Port,
		Handler: handlers.NewRouter(h, handlers.RouterConfig{
			JWTSecret:      cfg.Auth.JWTSecret,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Ready:          a.ready,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		a.coordinator.Start(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting hostsync ops API", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("Ops API error", "error", err)
			stop()
		}
	}

	logger.Info("Shutting down hostsync...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ops API shutdown error", "error", err)
	}
	<-schedulerDone
	a.coordinator.Wait()
	return nil
}

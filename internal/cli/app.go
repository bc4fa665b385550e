package cli

import (
	"context"
	"fmt"

	"github.com/diagnosis/visitor-hosts/internal/hostsync"
	"github.com/diagnosis/visitor-hosts/internal/officernd"
	"github.com/diagnosis/visitor-hosts/internal/platform/mailer"
	"github.com/diagnosis/visitor-hosts/internal/repo/postgres"
	"github.com/diagnosis/visitor-hosts/internal/runstate"
	"github.com/diagnosis/visitor-hosts/pkg/config"
	"github.com/diagnosis/visitor-hosts/pkg/database"
	"github.com/diagnosis/visitor-hosts/pkg/events"
	"github.com/diagnosis/visitor-hosts/pkg/logger"
)

// app is the wired service: stores, collaborators and the run coordinator.
type app struct {
	cfg         *config.Config
	coordinator *hostsync.Coordinator
	summaries   runstate.Store
	ready       func(context.Context) error
	closers     []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	a.ready = pool.Ping

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		a.Close()
		return nil, err
	}

	var bus events.Publisher = events.NopPublisher{}
	if cfg.NATS.Enabled {
		nb, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			a.Close()
			return nil, err
		}
		bus = nb
		a.closers = append(a.closers, func() { _ = nb.Close() })
	}

	a.summaries = runstate.NewMemoryStore()
	if cfg.Redis.URL != "" {
		rs, err := runstate.NewRedisStore(cfg.Redis)
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := rs.Ping(ctx); err != nil {
			logger.Warn("Redis unavailable, keeping sync summaries in memory", "error", err)
			_ = rs.Close()
		} else {
			a.summaries = rs
			a.closers = append(a.closers, func() { _ = rs.Close() })
		}
	}

	engine := hostsync.NewEngine(hostsync.Deps{
		Connector: hostsync.NewPlatformConnector(officernd.NewClient(cfg.Sync)),
		Hosts:     postgres.NewHostRepo(pool),
		Users:     postgres.NewUsersRepo(pool),
		Resets:    postgres.NewResetRepo(pool),
		Notifier:  mailer.New(cfg.Email),
		Events:    bus,
	}, hostsync.Options{
		AdminBaseURL:  cfg.Sync.AdminBaseURL,
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
		Workers:       cfg.Sync.Workers,
	})

	a.coordinator = hostsync.NewCoordinator(engine, a.summaries, bus, hostsync.CoordinatorOptions{
		Interval:   cfg.Sync.Interval,
		RunOnStart: cfg.Sync.RunOnStart,
	})
	return a, nil
}

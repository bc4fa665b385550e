// Package hostsync reconciles the local host directory with the companies
// listed on the workspace membership platform: new companies become hosts
// with a provisioned login, known ones get their phone refreshed.
package hostsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diagnosis/visitor-hosts/internal/domain"
	"github.com/diagnosis/visitor-hosts/internal/officernd"
	"github.com/diagnosis/visitor-hosts/pkg/events"
	"github.com/diagnosis/visitor-hosts/pkg/logger"
	"golang.org/x/sync/errgroup"
)

type Deps struct {
	Connector Connector
	Hosts     HostStore
	Users     UserStore
	Resets    ResetTokenStore
	Notifier  Notifier
	Events    events.Publisher // optional
}

type Options struct {
	AdminBaseURL  string
	ResetTokenTTL time.Duration
	// Workers bounds how many companies are processed at once; 1 keeps the
	// pass strictly sequential.
	Workers int
}

// Engine runs one reconciliation pass at a time. It holds no run state of its
// own; the Coordinator guarantees a single active pass.
type Engine struct {
	connector Connector
	hosts     HostStore
	users     UserStore
	resets    ResetTokenStore
	notifier  Notifier
	events    events.Publisher
	opts      Options

	now        func() time.Time
	newSecret  func() (string, error)
	hashSecret func(string) (string, error)
}

func NewEngine(deps Deps, opts Options) *Engine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = 72 * time.Hour
	}
	pub := deps.Events
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Engine{
		connector:  deps.Connector,
		hosts:      deps.Hosts,
		users:      deps.Users,
		resets:     deps.Resets,
		notifier:   deps.Notifier,
		events:     pub,
		opts:       opts,
		now:        time.Now,
		newSecret:  randomSecret,
		hashSecret: hashSecret,
	}
}

// Run performs one full pass. A non-nil error means the pass was aborted
// (ErrAuth, ErrListing or a failed batch lookup); the returned summary is
// always non-nil and carries whatever was counted.
func (e *Engine) Run(ctx context.Context, runID string) (*Summary, error) {
	s := &Summary{RunID: runID, StartedAt: e.now()}
	err := e.run(ctx, s)
	s.FinishedAt = e.now()
	if err != nil {
		s.Err = err.Error()
	}
	return s, err
}

func (e *Engine) run(ctx context.Context, s *Summary) error {
	dir, err := e.connector.Connect(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}

	locations := e.locationNames(ctx, dir)

	companies, err := dir.Companies(ctx)
	if err != nil {
		return fmt.Errorf("%w: companies: %v", ErrListing, err)
	}
	s.Fetched = len(companies)
	logger.InfoContext(ctx, "fetched companies", "count", len(companies))

	existing, fresh, unusable, err := Partition(ctx, e.hosts, companies)
	if err != nil {
		return err
	}
	s.Existing = len(existing)

	t := &tally{s: s}
	for _, c := range unusable {
		t.reject(c.ID, c.Name, fmt.Errorf("%w: missing external id", ErrValidation))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for _, m := range existing {
		m := m
		g.Go(func() error {
			e.isolate(gctx, m.Company, t, func() error { return e.refresh(gctx, dir, m, t) })
			return nil
		})
	}
	for _, c := range fresh {
		c := c
		g.Go(func() error {
			e.isolate(gctx, c, t, func() error { return e.create(gctx, dir, c, locations, t) })
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	e.purgeResetTokens(ctx)
	return nil
}

// purgeResetTokens drops long-dead reset tokens; failures only warn.
func (e *Engine) purgeResetTokens(ctx context.Context) {
	n, err := e.resets.DeleteExpiredTokens(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to purge expired reset tokens", "error", err)
		return
	}
	if n > 0 {
		logger.InfoContext(ctx, "purged expired reset tokens", "count", n)
	}
}

// locationNames maps location ids to names. The listing is best-effort: on
// failure raw company location values are matched instead.
func (e *Engine) locationNames(ctx context.Context, dir Directory) map[string]string {
	locs, err := dir.Locations(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to list locations, continuing without names", "error", err)
		return map[string]string{}
	}
	names := make(map[string]string, len(locs))
	for _, l := range locs {
		names[l.ID] = l.Name
	}
	return names
}

// isolate confines one company's failure (or panic) to a rejection.
func (e *Engine) isolate(ctx context.Context, c officernd.Company, t *tally, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: panic: %v", ErrPersistence, r)
			logger.ErrorContext(ctx, "company processing panicked", "company_id", c.ID, "error", err)
			t.reject(c.ID, c.Name, err)
		}
	}()
	if err := fn(); err != nil {
		level := logger.WarnContext
		if errors.Is(err, ErrPersistence) {
			level = logger.ErrorContext
		}
		level(ctx, "company rejected", "company_id", c.ID, "name", c.Name, "error", err)
		t.reject(c.ID, c.Name, err)
	}
}

// refresh patches the stored phone when the platform now resolves a
// different, non-empty one. An empty result never clears a stored phone.
func (e *Engine) refresh(ctx context.Context, dir Directory, m matched, t *tally) error {
	phone := newCompanyView(dir, m.Company).resolvePhone(ctx)
	if phone == "" || phone == m.Host.PhoneValue() {
		return nil
	}
	if err := e.hosts.UpdatePhone(ctx, m.Host.ID, &phone); err != nil {
		return fmt.Errorf("%w: failed to update phone: %v", ErrPersistence, err)
	}
	t.phoneUpdated()
	logger.DebugContext(ctx, "host phone updated", "host_id", m.Host.ID, "company_id", m.Company.ID)
	return nil
}

func (e *Engine) create(ctx context.Context, dir Directory, c officernd.Company, locations map[string]string, t *tally) error {
	view := newCompanyView(dir, c)
	who, err := view.resolveContact(ctx)
	if err != nil {
		return err
	}

	req := &domain.CreateHostRequest{
		ExternalID: c.ID,
		Name:       who.Name,
		Company:    c.Name,
		Phone:      PhoneOrNil(view.resolvePhone(ctx)),
		Location:   view.resolveLocation(locations),
		Status:     domain.HostActive,
	}
	if who.Email != "" {
		email := who.Email
		req.Email = &email
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	host, err := e.hosts.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: failed to create host: %v", ErrPersistence, err)
	}
	t.inserted()
	logger.InfoContext(ctx, "host created", "host_id", host.ID, "company_id", c.ID)

	ev := events.HostCreatedEvent{HostID: host.ID, ExternalID: c.ID, Name: host.Name, CreatedAt: e.now()}
	if host.Location != nil {
		ev.Location = string(*host.Location)
	}
	e.publish(ctx, events.HostCreated, ev)

	user, err := e.provisionUser(ctx, host, who)
	if err != nil {
		logger.ErrorContext(ctx, "host created without user", "host_id", host.ID, "error", err)
		return nil
	}
	if user == nil {
		return nil
	}
	t.userCreated()
	e.userProvisioned(ctx, user, host.ID, e.onboard(ctx, user))
	return nil
}

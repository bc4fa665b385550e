package hostsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/diagnosis/visitor-hosts/pkg/events"
	"github.com/diagnosis/visitor-hosts/pkg/logger"
	"github.com/google/uuid"
)

// Runner executes one pass; *Engine is the production implementation.
type Runner interface {
	Run(ctx context.Context, runID string) (*Summary, error)
}

type CoordinatorOptions struct {
	Interval   time.Duration
	RunOnStart bool
}

// Coordinator guarantees at most one pass is active in this process and
// drives passes from a fixed-interval schedule or manual triggers.
type Coordinator struct {
	runner  Runner
	store   SummaryStore
	events  events.Publisher
	opts    CoordinatorOptions
	running atomic.Bool
	wg      sync.WaitGroup

	newRunID func() string
}

func NewCoordinator(runner Runner, store SummaryStore, pub events.Publisher, opts CoordinatorOptions) *Coordinator {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Coordinator{
		runner:   runner,
		store:    store,
		events:   pub,
		opts:     opts,
		newRunID: uuid.NewString,
	}
}

// Running reports whether a pass is active.
func (c *Coordinator) Running() bool {
	return c.running.Load()
}

// TryRun runs a pass synchronously. It returns ErrAlreadyRunning, without
// touching any collaborator, when another pass is active.
func (c *Coordinator) TryRun(ctx context.Context) (*Summary, error) {
	if !c.running.CompareAndSwap(false, true) {
		logger.InfoContext(ctx, "host sync already running, skipping")
		return nil, ErrAlreadyRunning
	}
	defer c.running.Store(false)
	return c.execute(ctx)
}

// Trigger starts a pass in the background and reports whether it started.
// The pass outlives ctx's cancellation but keeps its values.
func (c *Coordinator) Trigger(ctx context.Context) bool {
	if !c.running.CompareAndSwap(false, true) {
		logger.InfoContext(ctx, "host sync already running, trigger ignored")
		return false
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.running.Store(false)
		_, _ = c.execute(context.WithoutCancel(ctx))
	}()
	return true
}

// Start blocks running a pass every interval until ctx is done. Pass
// failures are logged and never stop the schedule.
func (c *Coordinator) Start(ctx context.Context) {
	logger.InfoContext(ctx, "host sync scheduler started", "interval", c.opts.Interval.String())
	if c.opts.RunOnStart {
		c.tick(ctx)
	}

	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "host sync scheduler stopped")
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// Wait blocks until triggered passes have finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) tick(ctx context.Context) {
	if _, err := c.TryRun(ctx); err != nil && !errors.Is(err, ErrAlreadyRunning) {
		logger.DebugContext(ctx, "scheduled host sync ended with error", "error", err)
	}
}

func (c *Coordinator) execute(ctx context.Context) (*Summary, error) {
	runID := c.newRunID()
	ctx = logger.WithRunID(ctx, runID)
	logger.InfoContext(ctx, "host sync started")

	summary, err := c.safeRun(ctx, runID)
	if err != nil {
		logger.ErrorContext(ctx, "host sync aborted", "error", err)
	} else {
		logger.InfoContext(ctx, "host sync completed", summary.LogAttrs()...)
	}
	c.record(ctx, summary)
	return summary, err
}

func (c *Coordinator) safeRun(ctx context.Context, runID string) (summary *Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("host sync panicked: %v", r)
			summary = &Summary{RunID: runID, Err: err.Error(), FinishedAt: time.Now()}
		}
	}()
	summary, err = c.runner.Run(ctx, runID)
	if summary == nil {
		summary = &Summary{RunID: runID, FinishedAt: time.Now()}
		if err != nil {
			summary.Err = err.Error()
		}
	}
	return summary, err
}

func (c *Coordinator) record(ctx context.Context, s *Summary) {
	if c.store != nil {
		if err := c.store.Save(ctx, s); err != nil {
			logger.WarnContext(ctx, "failed to save sync summary", "error", err)
		}
	}
	if err := c.events.Publish(ctx, events.SyncCompleted, events.SyncCompletedEvent{
		RunID:         s.RunID,
		Fetched:       s.Fetched,
		Inserted:      s.Inserted,
		UsersCreated:  s.UsersCreated,
		Rejected:      s.Rejected,
		PhonesUpdated: s.PhonesUpdated,
		Error:         s.Err,
		FinishedAt:    s.FinishedAt,
	}); err != nil {
		logger.WarnContext(ctx, "failed to publish sync completion", "error", err)
	}
}

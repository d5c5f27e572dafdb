package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/tartampluch/go-last-sunday/internal/config"
)

// Refresher runs a job on a cron schedule in a fixed location.
// The counter changes at local midnight, so the default spec is config.RefreshSpec.
type Refresher struct {
	cronEngine *cron.Cron
	spec       string
	job        func()

	mu      sync.Mutex
	entry   cron.EntryID
	started bool
}

// NewRefresher builds a stopped Refresher. A nil loc means time.Local.
func NewRefresher(spec string, loc *time.Location, job func()) *Refresher {
	if loc == nil {
		loc = time.Local
	}
	logger := cron.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))
	return &Refresher{
		cronEngine: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		spec: spec,
		job:  job,
	}
}

// Start registers the job and starts the cron loop. Calling it twice is a no-op.
func (r *Refresher) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}

	id, err := r.cronEngine.AddFunc(r.spec, func() {
		slog.Info(config.MsgSchedRun,
			config.LogKeyComponent, config.CompScheduler,
			config.LogKeySpec, r.spec,
		)
		r.job()
	})
	if err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrSchedulerSpec, r.spec, err)
	}

	r.entry = id
	r.started = true
	r.cronEngine.Start()

	slog.Info(config.MsgSchedStart,
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeySpec, r.spec,
	)
	return nil
}

// Next returns the next planned run, or the zero time when not started.
func (r *Refresher) Next() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return time.Time{}
	}
	return r.cronEngine.Entry(r.entry).Next
}

// Stop halts the schedule and waits for a running job to return.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.started = false
	r.cronEngine.Remove(r.entry)
	r.mu.Unlock()

	ctx := r.cronEngine.Stop()
	<-ctx.Done()

	slog.Info(config.MsgSchedStop, config.LogKeyComponent, config.CompScheduler)
}

// Run starts the schedule and blocks until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	r.Stop()
	return nil
}

// Package scheduler fires the weekly RP rollover.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultSpec is Monday 00:00 UTC.
const DefaultSpec = "0 0 * * 1"

// jobTimeout bounds one rollover run.
const jobTimeout = 2 * time.Minute

// Weekly runs job at every instant matched by a standard cron expression,
// evaluated in UTC. At most one run is in flight at a time.
type Weekly struct {
	spec     string
	schedule cron.Schedule
	cron     *cron.Cron
	job      func(ctx context.Context) error

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func NewWeekly(spec string, job func(ctx context.Context) error) (*Weekly, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("scheduler: parse %q: %w", spec, err)
	}
	logger := cronLogger{}
	return &Weekly{
		spec:     spec,
		schedule: schedule,
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		job: job,
	}, nil
}

// NextReset returns the first reset instant strictly after now, in UTC.
func (w *Weekly) NextReset(now time.Time) time.Time {
	return w.schedule.Next(now.UTC())
}

// Start schedules the job. Runs use a context derived from ctx, so cancelling
// ctx aborts an in-flight rollover.
func (w *Weekly) Start(ctx context.Context) error {
	w.mu.Lock()
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	if _, err := w.cron.AddFunc(w.spec, func() { w.Run(w.runContext()) }); err != nil {
		return fmt.Errorf("scheduler: add job: %w", err)
	}
	w.cron.Start()

	next := w.NextReset(time.Now())
	log.Info().
		Str("schedule", w.spec).
		Time("next_reset", next).
		Dur("in", time.Until(next).Round(time.Second)).
		Msg("⏰ Weekly RP reset scheduled")
	return nil
}

// Stop prevents further runs and waits for a running one to finish.
func (w *Weekly) Stop() {
	<-w.cron.Stop().Done()
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Unlock()
}

// Run executes the job once with a bounded timeout and logs the outcome.
func (w *Weekly) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	if err := w.job(ctx); err != nil {
		log.Error().Err(err).Msg("❌ Weekly RP reset failed")
		return
	}
	log.Info().
		Dur("took", time.Since(start)).
		Time("next_reset", w.NextReset(time.Now())).
		Msg("✅ Weekly RP reset run finished")
}

func (w *Weekly) runContext() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx == nil {
		return context.Background()
	}
	return w.ctx
}

// cronLogger routes robfig/cron's logging to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}

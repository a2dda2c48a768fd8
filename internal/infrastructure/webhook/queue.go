package webhook

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"rpbot/internal/domain/entities"
	"rpbot/internal/ports/output"
)

var (
	ErrQueueFull   = errors.New("activity queue is full")
	ErrQueueClosed = errors.New("activity queue is closed")
)

// deliveryTimeout bounds one webhook post, rate-limit waits included.
const deliveryTimeout = 30 * time.Second

var _ output.ActivityLog = (*Queue)(nil)

// Queue hands activity entries to a background goroutine so callers never
// wait on the webhook. Entries are dropped with ErrQueueFull when the buffer
// is full.
type Queue struct {
	next output.ActivityLog
	jobs chan func(ctx context.Context) error
	quit chan struct{}
	done chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewQueue(next output.ActivityLog, size int) *Queue {
	if size < 1 {
		size = 1
	}
	return &Queue{
		next: next,
		jobs: make(chan func(ctx context.Context) error, size),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// LogMutation enqueues m. The caller's context is not used for delivery,
// which outlives the command that produced the entry.
func (q *Queue) LogMutation(_ context.Context, m entities.Mutation) error {
	return q.enqueue(func(ctx context.Context) error {
		return q.next.LogMutation(ctx, m)
	})
}

func (q *Queue) LogRollover(_ context.Context, trigger string, rollovers []entities.Rollover) error {
	return q.enqueue(func(ctx context.Context) error {
		return q.next.LogRollover(ctx, trigger, rollovers)
	})
}

func (q *Queue) enqueue(job func(ctx context.Context) error) error {
	select {
	case <-q.quit:
		return ErrQueueClosed
	default:
	}
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the delivery goroutine.
func (q *Queue) Start() {
	q.startOnce.Do(func() { go q.run() })
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		select {
		case job := <-q.jobs:
			q.deliver(job)
		case <-q.quit:
			// Flush what was accepted before the stop.
			for {
				select {
				case job := <-q.jobs:
					q.deliver(job)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) deliver(job func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()
	if err := job(ctx); err != nil {
		log.Warn().Err(err).Msg("⚠️ Activity log entry not delivered")
	}
}

// Stop refuses new entries, then waits for the backlog to be delivered or
// for ctx to expire.
func (q *Queue) Stop(ctx context.Context) error {
	q.stopOnce.Do(func() { close(q.quit) })
	// Never started: nothing else would close done.
	q.startOnce.Do(func() { close(q.done) })

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		log.Warn().Int("pending", len(q.jobs)).Msg("⚠️ Activity queue shutdown timed out")
		return ctx.Err()
	}
}

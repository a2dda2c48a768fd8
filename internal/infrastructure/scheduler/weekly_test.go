package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context) error { return nil }

func TestNextReset(t *testing.T) {
	w, err := NewWeekly(DefaultSpec, noop)
	require.NoError(t, err)

	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"sunday evening", time.Date(2026, 10, 18, 21, 30, 0, 0, time.UTC), monday},
		{"wednesday", time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC), monday},
		{"exactly monday midnight", monday, monday.AddDate(0, 0, 7)},
		{"just after monday midnight", monday.Add(time.Millisecond), monday.AddDate(0, 0, 7)},
		{"monday noon", monday.Add(12 * time.Hour), monday.AddDate(0, 0, 7)},
		{"other timezone", time.Date(2026, 10, 19, 1, 0, 0, 0, time.FixedZone("CEST", 2*3600)), monday},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.NextReset(tt.now)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNextResetCustomSpec(t *testing.T) {
	w, err := NewWeekly("30 12 * * 0", noop)
	require.NoError(t, err)

	got := w.NextReset(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 10, 18, 12, 30, 0, 0, time.UTC), got)
}

func TestNewWeeklyRejectsBadSpec(t *testing.T) {
	_, err := NewWeekly("every monday", noop)
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Run("passes a deadline", func(t *testing.T) {
		var hasDeadline atomic.Bool
		w, err := NewWeekly(DefaultSpec, func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			hasDeadline.Store(ok)
			return nil
		})
		require.NoError(t, err)
		w.Run(context.Background())
		assert.True(t, hasDeadline.Load())
	})

	t.Run("job error is contained", func(t *testing.T) {
		var calls atomic.Int32
		w, err := NewWeekly(DefaultSpec, func(context.Context) error {
			calls.Add(1)
			return errors.New("db down")
		})
		require.NoError(t, err)
		assert.NotPanics(t, func() { w.Run(context.Background()) })
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestStartStop(t *testing.T) {
	w, err := NewWeekly(DefaultSpec, noop)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	entries := w.cron.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, time.Monday, entries[0].Next.Weekday())
	assert.Equal(t, 0, entries[0].Next.Hour())

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}

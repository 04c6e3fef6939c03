package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) error {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("no deadline")
	}
	return c.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	r := &countingRefresher{err: errors.New("provider down")}
	s := New(r, 20*time.Millisecond, time.Second, discard())
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestSchedulerReschedule(t *testing.T) {
	r := &countingRefresher{}
	s := New(r, time.Hour, time.Second, discard())
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Reschedule(time.Hour))
	assert.Len(t, s.scheduler.Jobs(), 1)

	require.NoError(t, s.Reschedule(20*time.Millisecond))
	assert.Equal(t, 20*time.Millisecond, s.Interval())
	assert.Len(t, s.scheduler.Jobs(), 1)
	assert.Eventually(t, func() bool { return r.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestSchedulerDefaults(t *testing.T) {
	s := New(&countingRefresher{}, 0, 0, nil)
	assert.Equal(t, DefaultInterval, s.Interval())
	assert.Equal(t, 30*time.Second, s.timeout)

	require.NoError(t, s.Reschedule(-time.Second))
	assert.Equal(t, DefaultInterval, s.Interval())
	s.Stop()
}

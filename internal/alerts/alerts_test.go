package alerts

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/environmental-risk-aggregation/internal/logger"
)

func TestFeed(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	f := NewFeed(3, clock)

	for i, msg := range []string{"a", "b", "c", "d"} {
		a := f.Raise(ctx, SeverityInfo, msg, "cycle-"+string(rune('0'+i%2)))
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, clock.Now(), a.CreatedAt)
	}

	list := f.List(0)
	require.Len(t, list, 3)
	assert.Equal(t, "d", list[0].Message)
	assert.Equal(t, "b", list[2].Message)

	assert.Len(t, f.List(1), 1)

	odd := f.ForCycle("cycle-1")
	require.Len(t, odd, 2)
	assert.Equal(t, "b", odd[0].Message)
	assert.Equal(t, "d", odd[1].Message)
}

type recordingWriter struct {
	msgs []kafkago.Message
	err  error
}

func (r *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msgs...)
	return nil
}

func (r *recordingWriter) Close() error { return nil }

func TestKafkaNotifier(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	n := Notification{CycleID: "c-1", Title: "Climate alert", Level: "high", Score: 7, CreatedAt: now}

	w := &recordingWriter{}
	k := &KafkaNotifier{writer: w, logger: logger.NewLogger(slog.LevelDebug, bytes.NewBuffer(nil))}
	require.NoError(t, k.Notify(context.Background(), n))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, []byte("c-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"level":"high"`)
	assert.Equal(t, "risk_level", msg.Headers[0].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	w.err = errors.New("broker down")
	assert.ErrorContains(t, k.Notify(context.Background(), n), "broker down")
}

type countingNotifier struct {
	calls int
	err   error
}

func (c *countingNotifier) Notify(context.Context, Notification) error {
	c.calls++
	return c.err
}

func TestMulti(t *testing.T) {
	ok := &countingNotifier{}
	bad := &countingNotifier{err: errors.New("nope")}
	buf := bytes.NewBuffer(nil)

	m := Multi{NewLogNotifier(logger.NewLogger(slog.LevelInfo, buf)), nil, ok, bad}
	err := m.Notify(context.Background(), Notification{Title: "Climate alert", Level: "medium"})

	assert.ErrorContains(t, err, "nope")
	assert.Equal(t, 1, ok.calls)
	assert.Equal(t, 1, bad.calls)
	assert.Contains(t, buf.String(), "Climate alert")
}

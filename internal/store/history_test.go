package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/environmental-risk-aggregation/internal/firerisk"
	"github.com/i474232898/environmental-risk-aggregation/internal/logger"
)

type failingBackend struct {
	*MemoryStore
	getErr, putErr error
}

func (f failingBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f failingBackend) Put(ctx context.Context, key string, value []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.MemoryStore.Put(ctx, key, value)
}

func newTestHistory(t *testing.T, b Backend) (*HistoryStore, *clockwork.FakeClock, *bytes.Buffer) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC))
	buf := bytes.NewBuffer(nil)
	return NewHistoryStore(b, clock, logger.NewLogger(slog.LevelDebug, buf)), clock, buf
}

func TestHistorySameDayReplaces(t *testing.T) {
	ctx := context.Background()
	h, _, _ := newTestHistory(t, NewMemoryStore())

	_, err := h.Record(ctx, Entry{Temp: 20, FireLevel: firerisk.LevelLow})
	require.NoError(t, err)
	got, err := h.Record(ctx, Entry{Temp: 25, FireLevel: firerisk.LevelHigh, Date: "1999-01-01"})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "2024-06-01", got[0].Date)
	assert.Equal(t, 25.0, got[0].Temp)
	assert.Equal(t, got, h.Load(ctx))
}

func TestHistoryKeepsSevenNewestFirst(t *testing.T) {
	ctx := context.Background()
	h, clock, _ := newTestHistory(t, NewMemoryStore())

	for i := 0; i < 10; i++ {
		_, err := h.Record(ctx, Entry{AQI: i})
		require.NoError(t, err)
		clock.Advance(24 * time.Hour)
	}

	got := h.Load(ctx)
	require.Len(t, got, HistoryLimit)
	assert.Equal(t, "2024-06-10", got[0].Date)
	assert.Equal(t, 9, got[0].AQI)
	assert.Equal(t, "2024-06-04", got[6].Date)
	for i := 1; i < len(got); i++ {
		assert.Greater(t, got[i-1].Date, got[i].Date)
	}
}

func TestHistoryUsesUTCDay(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 22, 0, 0, 0, time.FixedZone("", -5*3600)))
	h := NewHistoryStore(NewMemoryStore(), clock, nil)
	assert.Equal(t, "2024-06-02", h.Today())
}

func TestHistoryCorruptIsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Put(ctx, HistoryKey, []byte(`{"not":"a list"}`)))

	h, _, buf := newTestHistory(t, mem)
	assert.Empty(t, h.Load(ctx))
	assert.Contains(t, buf.String(), "history corrupt")

	got, err := h.Record(ctx, Entry{Temp: 1})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestHistoryNullIsEmptyList(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	require.NoError(t, mem.Put(ctx, HistoryKey, []byte(`null`)))

	h, _, _ := newTestHistory(t, mem)
	got := h.Load(ctx)
	require.NotNil(t, got)
	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestHistoryBackendFailures(t *testing.T) {
	ctx := context.Background()

	h, _, _ := newTestHistory(t, failingBackend{MemoryStore: NewMemoryStore(), getErr: errors.New("disk gone")})
	assert.Empty(t, h.Load(ctx))

	h, _, _ = newTestHistory(t, failingBackend{MemoryStore: NewMemoryStore(), putErr: errors.New("read only")})
	got, err := h.Record(ctx, Entry{Temp: 3})
	require.Error(t, err)
	assert.Len(t, got, 1)
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/environmental-risk-aggregation/internal/firerisk"
	"github.com/i474232898/environmental-risk-aggregation/internal/logger"
)

// HistoryLimit is the number of days kept.
const HistoryLimit = 7

const dayLayout = "2006-01-02"

// Entry is one day of derived readings.
type Entry struct {
	Date       string         `json:"date"` // YYYY-MM-DD, UTC
	Temp       float64        `json:"temp"`
	Humidity   float64        `json:"humidity"`
	WindKmh    int            `json:"windKmh"`
	AQI        int            `json:"aqi"`
	Rain       bool           `json:"rain"`
	FireChance int            `json:"fireChance"`
	FireLevel  firerisk.Level `json:"fireLevel"`
}

// HistoryStore keeps at most one Entry per UTC day, the HistoryLimit most recent days,
// newest first. Writes are read-modify-write without cross-process locking.
type HistoryStore struct {
	backend Backend
	clock   clockwork.Clock
	logger  *slog.Logger
}

// NewHistoryStore creates a HistoryStore. A nil clock uses the real clock.
func NewHistoryStore(backend Backend, clock clockwork.Clock, logger *slog.Logger) *HistoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStore{backend: backend, clock: clock, logger: logger}
}

// Today returns the current day key.
func (h *HistoryStore) Today() string {
	return h.clock.Now().UTC().Format(dayLayout)
}

// Load returns the stored history. Missing or unreadable data yields an empty list.
func (h *HistoryStore) Load(ctx context.Context) []Entry {
	raw, err := h.backend.Get(ctx, HistoryKey)
	if errors.Is(err, ErrNotFound) {
		return []Entry{}
	}
	if err != nil {
		h.logger.Warn("history unavailable, treating as empty", logger.Err(err))
		return []Entry{}
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		h.logger.Warn("history corrupt, treating as empty", logger.Err(err))
		return []Entry{}
	}
	if entries == nil {
		return []Entry{}
	}
	return normalize(entries)
}

// Record stores e as today's entry, replacing any entry already recorded today. The
// resulting list is returned even when persisting it fails.
func (h *HistoryStore) Record(ctx context.Context, e Entry) ([]Entry, error) {
	e.Date = h.Today()

	current := h.Load(ctx)
	next := make([]Entry, 0, len(current)+1)
	for _, old := range current {
		if old.Date != e.Date {
			next = append(next, old)
		}
	}
	next = normalize(append(next, e))

	raw, err := json.Marshal(next)
	if err != nil {
		return next, fmt.Errorf("encode history: %w", err)
	}
	if err := h.backend.Put(ctx, HistoryKey, raw); err != nil {
		return next, fmt.Errorf("persist history: %w", err)
	}
	return next, nil
}

// normalize sorts newest first and drops entries beyond HistoryLimit.
func normalize(entries []Entry) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})
	if len(entries) > HistoryLimit {
		entries = entries[:HistoryLimit]
	}
	return entries
}

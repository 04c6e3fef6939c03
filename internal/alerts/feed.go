// Package alerts holds user-facing alert banners and dispatches risk notifications.
package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Severity of a user-facing alert.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert is a banner shown to the user.
type Alert struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	CycleID   string    `json:"cycleId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// DefaultFeedSize is the number of alerts kept by NewFeed when size <= 0.
const DefaultFeedSize = 50

// Feed keeps the most recent alerts in memory, newest last.
type Feed struct {
	mu     sync.RWMutex
	alerts []Alert
	size   int
	clock  clockwork.Clock
}

// NewFeed creates a Feed holding at most size alerts.
func NewFeed(size int, clock clockwork.Clock) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Feed{size: size, clock: clock}
}

// Raise records an alert.
func (f *Feed) Raise(_ context.Context, severity Severity, message, cycleID string) Alert {
	a := Alert{
		ID:        uuid.NewString(),
		Severity:  severity,
		Message:   message,
		CycleID:   cycleID,
		CreatedAt: f.clock.Now().UTC(),
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.alerts = append(f.alerts, a)
	if over := len(f.alerts) - f.size; over > 0 {
		f.alerts = append([]Alert(nil), f.alerts[over:]...)
	}
	return a
}

// List returns alerts newest first, at most limit of them (0 = all).
func (f *Feed) List(limit int) []Alert {
	f.mu.RLock()
	defer f.mu.RUnlock()

	n := len(f.alerts)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Alert, 0, n)
	for i := len(f.alerts) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, f.alerts[i])
	}
	return out
}

// ForCycle returns the alerts raised by one refresh cycle, oldest first.
func (f *Feed) ForCycle(cycleID string) []Alert {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []Alert
	for _, a := range f.alerts {
		if a.CycleID == cycleID {
			out = append(out, a)
		}
	}
	return out
}

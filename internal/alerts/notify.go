package alerts

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Notification is dispatched when a risk assessment warrants attention.
type Notification struct {
	CycleID   string    `json:"cycleId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Level     string    `json:"level"`
	Score     int       `json:"score"`
	Factors   []string  `json:"factors"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier delivers notifications to some channel.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	l.logger.Warn(n.Title,
		"body", n.Body,
		"level", n.Level,
		"score", n.Score,
		"factors", n.Factors,
		"cycle_id", n.CycleID,
	)
	return nil
}

// Multi fans a notification out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

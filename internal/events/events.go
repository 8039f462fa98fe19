package events

import (
	"context"
	"log/slog"
)

const (
	// KindAuth marks authentication lifecycle events (register, login,
	// credential resolution).
	KindAuth = "auth"
	// KindTask marks task lifecycle events (create, update, delete, toggle).
	KindTask = "task"
)

// Event describes a security-relevant occurrence. Reason carries the specific
// internal failure detail that external responses deliberately omit.
type Event struct {
	Kind       string
	Action     string
	UserID     string
	ResourceID string
	Success    bool
	Reason     string
}

// Recorder receives application events for audit purposes.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// LoggerRecorder writes events to the structured logger.
type LoggerRecorder struct {
	logger *slog.Logger
}

// NewLoggerRecorder constructs a logging event recorder.
func NewLoggerRecorder(logger *slog.Logger) *LoggerRecorder {
	return &LoggerRecorder{logger: logger}
}

// Record writes the event to the structured logger.
func (r *LoggerRecorder) Record(_ context.Context, event Event) {
	if r == nil || r.logger == nil {
		return
	}
	attrs := []any{
		slog.String("kind", event.Kind),
		slog.String("action", event.Action),
		slog.Bool("success", event.Success),
	}
	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.ResourceID != "" {
		attrs = append(attrs, slog.String("resource_id", event.ResourceID))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("reason", event.Reason))
	}
	if event.Success {
		r.logger.Info("event", attrs...)
	} else {
		r.logger.Warn("event", attrs...)
	}
}

// Nop returns a recorder that drops all events. Useful for tests.
func Nop() Recorder { return nopRecorder{} }

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Event) {}

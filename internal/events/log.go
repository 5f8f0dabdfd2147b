package events

import (
	"context"
	"log/slog"
)

// Logger writes every event to a slog.Logger.
type Logger struct {
	logger *slog.Logger
}

// NewLogger returns a Logger; a nil logger means slog.Default().
func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

// Emit logs evt at info level.
func (l *Logger) Emit(ctx context.Context, evt Event) {
	attrs := []slog.Attr{
		slog.String("event_id", evt.ID),
		slog.Uint64("group_id", evt.GroupID),
		slog.String("actor", evt.Actor),
	}
	if evt.Subject != "" {
		attrs = append(attrs, slog.String("subject", evt.Subject))
	}
	if evt.Amount != 0 {
		attrs = append(attrs, slog.Int64("amount", evt.Amount))
		attrs = append(attrs, slog.Any("cycle", evt.Cycle))
	}
	l.logger.LogAttrs(ctx, slog.LevelInfo, "Event "+string(evt.Name), attrs...)
}

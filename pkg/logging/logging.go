package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	eh "github.com/looplab/eventhorizon"
)

// New returns a JSON logger writing to w at the named level. Unknown levels
// fall back to info.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// EventLogger is an event handler logging all events it sees.
type EventLogger struct {
	Logger *slog.Logger
}

// HandlerType implements the HandlerType method of the eventhorizon.EventHandler interface.
func (l *EventLogger) HandlerType() eh.EventHandlerType {
	return "logger"
}

// HandleEvent implements the HandleEvent method of the EventHandler interface.
func (l *EventLogger) HandleEvent(ctx context.Context, event eh.Event) error {
	l.Logger.InfoContext(ctx, "event",
		slog.String("type", string(event.EventType())),
		slog.String("aggregate_id", event.AggregateID().String()),
		slog.Int("version", event.Version()),
		slog.Any("data", event.Data()),
	)
	return nil
}

// CommandLogger returns a command handler middleware logging every command
// and its failure, if any.
func CommandLogger(logger *slog.Logger) eh.CommandHandlerMiddleware {
	return func(h eh.CommandHandler) eh.CommandHandler {
		return eh.CommandHandlerFunc(func(ctx context.Context, cmd eh.Command) error {
			attrs := []any{
				slog.String("type", string(cmd.CommandType())),
				slog.String("aggregate_id", cmd.AggregateID().String()),
			}
			logger.InfoContext(ctx, "command", attrs...)
			if err := h.HandleCommand(ctx, cmd); err != nil {
				logger.ErrorContext(ctx, "command failed", append(attrs, slog.Any("error", err))...)
				return err
			}
			return nil
		})
	}
}

package extensions

import (
	"context"
	"log/slog"
	"time"

	injection "github.com/soon-app/go-injection"
)

// LoggingExtension logs every recipe build with its outcome and duration.
type LoggingExtension struct {
	injection.BaseExtension
	logger *slog.Logger
}

// NewLoggingExtension creates a new logging extension writing through the
// given handler.
func NewLoggingExtension(handler slog.Handler) *LoggingExtension {
	return &LoggingExtension{
		BaseExtension: injection.NewBaseExtension("logging"),
		logger:        slog.New(handler),
	}
}

func (e *LoggingExtension) Wrap(ctx context.Context, next func() (any, error), op *injection.Operation) (any, error) {
	start := time.Now()
	result, err := next()

	duration := time.Since(start)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelError, "build failed",
			slog.String("key", op.Key.String()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
	} else {
		e.logger.LogAttrs(ctx, slog.LevelDebug, "build completed",
			slog.String("key", op.Key.String()),
			slog.Duration("duration", duration),
		)
	}

	return result, err
}

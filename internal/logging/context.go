package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

// loggerContextKey keys the command-scoped logger in a context.Context.
type loggerContextKey struct{}

// WithLogger attaches logger to ctx. The entry point attaches the
// process logger once and commands carry it down through cmd.Context().
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerContextKey{}, logger)
}

// FromContext returns the logger attached by WithLogger, or the
// package default when the context carries none.
func FromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerContextKey{}).(*log.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Context keys for logging.
type contextKey string

// runIDKey is the context key for the run correlation ID.
const runIDKey contextKey = "run_id"

// ContextWithNewRunID returns a context carrying a new run ID: the first 8
// characters of a UUID.
//
//	ctx = logging.ContextWithNewRunID(ctx)
func ContextWithNewRunID(ctx context.Context) context.Context {
	return context.WithValue(ctx, runIDKey, uuid.New().String()[:8])
}

// RunIDFromContext retrieves the run ID from context.
// Returns empty string if not present.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger with the run ID from ctx attached, if any.
//
//	logging.Ctx(ctx).Info().Int("rows", n).Msg("loaded")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	if id := RunIDFromContext(ctx); id != "" {
		l = l.With().Str("run_id", id).Logger()
	}
	return &l
}

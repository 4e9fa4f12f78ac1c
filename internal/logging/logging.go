// If you are AI: This file wraps log/slog to stamp the C1 context id on
// every line, the structured-logging analogue of the teacher's bare
// log.Printf calls. See DESIGN.md for why slog over a third-party logger:
// the teacher's own go.mod carries no logging dependency, so adding a new
// third-party logger has a higher bar than reaching for stdlib's
// structured logging package.

package logging

import (
	"context"
	"log/slog"
	"os"

	"nonchalant/internal/task"
)

// cidKey is the attribute name stamped on every log line.
const cidKey = "cid"

// New builds a slog.Logger writing JSON lines to os.Stderr.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

// ForTask returns a logger with the task's current context id bound as an
// attribute. Call this at the start of a cycle function, after the task's
// context id has been assigned, so every subsequent log line in that
// cycle carries it without the caller re-threading it by hand.
func ForTask(base *slog.Logger, tk *task.Task) *slog.Logger {
	return base.With(slog.Int64(cidKey, int64(tk.Cid())))
}

// WithCid binds an explicit context id, for call sites (e.g. a connection
// handler) that have a cid but not a *task.Task handle.
func WithCid(base *slog.Logger, cid int32) *slog.Logger {
	return base.With(slog.Int64(cidKey, int64(cid)))
}

type ctxKey struct{}

// IntoContext stores logger in ctx for retrieval by FromContext.
func IntoContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext retrieves a logger previously stored by IntoContext, falling
// back to slog.Default() if none was stored.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// Package debug carries the per-invocation debug switch on the context,
// so the transport can decide whether to trace requests, and installs
// the process-wide slog handler.
package debug

import (
	"context"
	"log/slog"
	"os"
	"strconv"
)

type ctxKey struct{}

// WithDebug marks ctx with the debug switch.
func WithDebug(ctx context.Context, on bool) context.Context {
	return context.WithValue(ctx, ctxKey{}, on)
}

// IsEnabled reports whether debug logging was requested on this context.
func IsEnabled(ctx context.Context) bool {
	on, _ := ctx.Value(ctxKey{}).(bool)
	return on
}

// FromEnv reports whether CHARGIFY_DEBUG requests debug logging, for
// runs where passing --debug is awkward (CI, shell aliases).
func FromEnv() bool {
	on, err := strconv.ParseBool(os.Getenv("CHARGIFY_DEBUG"))
	return err == nil && on
}

// SetupLogger installs the default slog handler on stderr. Warnings
// always print; debug traces only when requested.
func SetupLogger(on bool) {
	level := slog.LevelWarn
	if on {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// Package outfmt carries the requested output mode through context and
// renders command results as text, JSON, or newline-delimited JSON.
package outfmt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Mode selects how command results are rendered.
type Mode int

const (
	// Text renders human-readable tables and messages.
	Text Mode = iota
	// JSON renders structured JSON.
	JSON
	// JSONL renders one JSON object per line, for streaming and piping.
	JSONL
)

var modeNames = map[string]Mode{
	"":       Text,
	"text":   Text,
	"json":   JSON,
	"jsonl":  JSONL,
	"ndjson": JSONL,
}

// Parse maps a --output flag value to its Mode.
func Parse(s string) (Mode, error) {
	mode, ok := modeNames[s]
	if !ok {
		return Text, fmt.Errorf("invalid output format: %q (use 'text', 'json', 'jsonl', or 'ndjson')", s)
	}
	return mode, nil
}

func (m Mode) String() string {
	switch m {
	case JSON:
		return "json"
	case JSONL:
		return "jsonl"
	default:
		return "text"
	}
}

type (
	modeKey    struct{}
	compactKey struct{}
)

// WithMode stores the output mode on the context.
func WithMode(ctx context.Context, mode Mode) context.Context {
	return context.WithValue(ctx, modeKey{}, mode)
}

// ModeFromContext returns the stored output mode, defaulting to Text.
func ModeFromContext(ctx context.Context) Mode {
	mode, _ := ctx.Value(modeKey{}).(Mode)
	return mode
}

// IsJSON reports whether the context asks for any machine-readable mode.
func IsJSON(ctx context.Context) bool {
	return ModeFromContext(ctx) != Text
}

// IsJSONL reports whether the context asks for newline-delimited JSON.
func IsJSONL(ctx context.Context) bool {
	return ModeFromContext(ctx) == JSONL
}

// WithCompact stores the compact-JSON flag on the context.
func WithCompact(ctx context.Context, compact bool) context.Context {
	return context.WithValue(ctx, compactKey{}, compact)
}

// IsCompact reports whether single-line JSON was requested.
func IsCompact(ctx context.Context) bool {
	compact, _ := ctx.Value(compactKey{}).(bool)
	return compact
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	return WriteJSONMaybeCompact(w, v, false)
}

// WriteJSONMaybeCompact writes v as JSON, single-line when compact.
func WriteJSONMaybeCompact(w io.Writer, v any, compact bool) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

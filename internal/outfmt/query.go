package outfmt

import (
	"context"
	"encoding/json"
	"io"

	"github.com/chargify/chargify-cli/internal/filter"
)

type queryKey struct{}

// WithQuery stores a jq query on the context.
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, queryKey{}, query)
}

// GetQuery returns the stored jq query, or "".
func GetQuery(ctx context.Context) string {
	query, _ := ctx.Value(queryKey{}).(string)
	return query
}

// WriteJSONFiltered writes v as JSON after applying an optional jq
// query. Indented by default, single-line when compact.
func WriteJSONFiltered(w io.Writer, v any, query string, compact bool) error {
	if query == "" {
		return WriteJSONMaybeCompact(w, v, compact)
	}
	filtered, err := ApplyQuery(v, query)
	if err != nil {
		return err
	}
	return WriteJSONMaybeCompact(w, filtered, compact)
}

// WriteJSONL writes v as newline-delimited JSON after applying an
// optional jq query: one compact line per element when the filtered
// value is a list, a single line otherwise.
func WriteJSONL(w io.Writer, v any, query string) error {
	filtered, err := ApplyQuery(v, query)
	if err != nil {
		return err
	}
	items, ok := filtered.([]any)
	if !ok {
		items = []any{filtered}
	}
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

// ApplyQuery runs a jq query over structured data and returns the
// filtered value. An empty query returns v unchanged.
func ApplyQuery(v any, query string) (any, error) {
	if query == "" {
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return filter.ApplyFromJSON(data, query)
}

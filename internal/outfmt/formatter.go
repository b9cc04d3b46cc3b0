package outfmt

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Formatter renders command output in the mode carried by its context:
// aligned tables in text mode, filtered JSON otherwise.
type Formatter struct {
	ctx    context.Context
	out    io.Writer
	errOut io.Writer
	table  *tabwriter.Writer
}

// NewFormatter builds a formatter writing results to out and
// empty-result notices to errOut.
func NewFormatter(ctx context.Context, out, errOut io.Writer) *Formatter {
	return &Formatter{ctx: ctx, out: out, errOut: errOut}
}

// Output writes data as JSON, applying any jq query on the context. In
// text mode it is a no-op; the caller renders a table instead.
func (f *Formatter) Output(data any) error {
	if !IsJSON(f.ctx) {
		return nil
	}
	if IsJSONL(f.ctx) {
		return WriteJSONL(f.out, data, GetQuery(f.ctx))
	}
	return WriteJSONFiltered(f.out, data, GetQuery(f.ctx), IsCompact(f.ctx))
}

// StartTable begins a table with the given headers and reports whether
// the caller should emit rows. In JSON mode it reports false.
func (f *Formatter) StartTable(headers []string) bool {
	if IsJSON(f.ctx) {
		return false
	}
	f.table = tabwriter.NewWriter(f.out, 0, 4, 2, ' ', 0)
	f.Row(headers...)
	return true
}

// Row appends one tab-separated row to the pending table.
func (f *Formatter) Row(columns ...string) {
	if f.table == nil {
		return
	}
	_, _ = fmt.Fprintln(f.table, strings.Join(columns, "\t"))
}

// EndTable aligns and flushes the pending table.
func (f *Formatter) EndTable() error {
	if f.table == nil {
		return nil
	}
	err := f.table.Flush()
	f.table = nil
	return err
}

// Empty notes an empty result set on stderr, keeping stdout clean for
// piping.
func (f *Formatter) Empty(message string) {
	_, _ = fmt.Fprintln(f.errOut, message)
}

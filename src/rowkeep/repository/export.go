package repository

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// Export writes the rows matching f to w as SQL INSERT statements, one per
// line, with every value inlined and escaped. It returns the number of rows
// written.
func (r *Repository[T]) Export(ctx context.Context, w io.Writer, f Filter) (int, error) {
	recs, err := r.Where(ctx, f)
	if err != nil {
		return 0, err
	}

	bw := bufio.NewWriter(w)
	for i, rec := range recs {
		stmt, err := r.DumpStatement(rec)
		if err != nil {
			return i, err
		}
		if _, err := fmt.Fprintf(bw, "%s;\n", stmt.Literal()); err != nil {
			return i, fmt.Errorf("failed to write export of %s: %w", r.schema.Table, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return 0, fmt.Errorf("failed to write export of %s: %w", r.schema.Table, err)
	}
	return len(recs), nil
}

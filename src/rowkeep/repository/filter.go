package repository

import (
	"regexp"
	"strings"

	"github.com/bitswalk/rowkeep/src/common/errors"
	"github.com/bitswalk/rowkeep/src/rowkeep/schema"
)

var columnPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Filter is a WHERE predicate. The zero value matches every row.
type Filter struct {
	conds []cond
	err   error
}

type cond struct {
	sql    string
	args   []any
	column string
}

// Where builds a parameterized predicate. Data values must be passed as args
// and referenced with '?' placeholders in expr.
func Where(expr string, args ...any) Filter {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}
	}
	if n := countPlaceholders(expr); n != len(args) {
		return Filter{err: errors.ErrInvalidFilter.WithMessagef("predicate has %d placeholders but %d arguments", n, len(args))}
	}
	return Filter{conds: []cond{{sql: expr, args: args}}}
}

// Eq matches rows whose column equals value. The column must exist in the
// table schema and value is converted to the column type.
func Eq(column string, value any) Filter {
	if !columnPattern.MatchString(column) {
		return Filter{err: errors.ErrInvalidFilter.WithMessagef("invalid column name %q", column)}
	}
	return Filter{conds: []cond{{sql: column + " = ?", args: []any{value}, column: column}}}
}

// Trusted wraps a raw predicate that is appended to WHERE verbatim.
//
// The predicate is not escaped or parameterized. It is only safe for text
// written by the program itself; never pass request or user data through it.
func Trusted(predicate string) Filter {
	predicate = strings.TrimSpace(predicate)
	if predicate == "" {
		return Filter{}
	}
	return Filter{conds: []cond{{sql: predicate}}}
}

// And combines filters; every condition must hold
func And(filters ...Filter) Filter {
	var out Filter
	for _, f := range filters {
		if f.err != nil && out.err == nil {
			out.err = f.err
		}
		out.conds = append(out.conds, f.conds...)
	}
	return out
}

// IsEmpty reports whether the filter has no conditions
func (f Filter) IsEmpty() bool {
	return len(f.conds) == 0
}

// Err returns the construction error, if any
func (f Filter) Err() error {
	return f.err
}

// resolve checks column references against s and renders the predicate
func (f Filter) resolve(s schema.Schema) (string, []any, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	if len(f.conds) == 0 {
		return "", nil, nil
	}

	clauses := make([]string, 0, len(f.conds))
	var args []any

	for _, c := range f.conds {
		if c.column != "" {
			col, ok := s.Column(c.column)
			if !ok {
				return "", nil, errors.ErrInvalidFilter.WithMessagef("table %s has no column %q", s.Table, c.column)
			}
			v, err := col.Type.Normalize(c.args[0])
			if err != nil {
				return "", nil, errors.ErrInvalidFilter.WithMessagef("column %s: %v", c.column, err)
			}
			clauses = append(clauses, c.sql)
			args = append(args, v)
			continue
		}

		if len(f.conds) > 1 {
			// The newline keeps a trailing -- comment from swallowing the paren
			clauses = append(clauses, "("+c.sql+"\n)")
		} else {
			clauses = append(clauses, c.sql)
		}
		args = append(args, c.args...)
	}

	return strings.Join(clauses, " AND "), args, nil
}

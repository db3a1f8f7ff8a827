package repository

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Statement is a parameterized SQL statement using '?' placeholders
type Statement struct {
	SQL  string
	Args []any
}

// EscapeString escapes s for use inside a single-quoted SQL string literal.
// NUL bytes cannot appear in quoted text; use quoteString for values.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// quoteString renders s as a SQL string literal. Text holding NUL bytes is
// written as a hex blob cast back to text so the value survives unchanged.
func quoteString(s string) string {
	if strings.IndexByte(s, 0) >= 0 {
		return "CAST(X'" + hex.EncodeToString([]byte(s)) + "' AS TEXT)"
	}
	return "'" + EscapeString(s) + "'"
}

// Literal renders the statement as plain SQL text with every argument inlined.
// Strings are quoted and escaped, integers are written as numbers. The result
// is meant for logs and SQL exports, never for execution with untrusted data.
func (s Statement) Literal() string {
	parts := splitPlaceholders(s.SQL)
	if len(parts) == 1 {
		return s.SQL
	}

	var b strings.Builder
	for i, part := range parts {
		b.WriteString(part)
		if i == len(parts)-1 {
			break
		}
		if i < len(s.Args) {
			b.WriteString(literal(s.Args[i]))
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// String implements fmt.Stringer using the literal form
func (s Statement) String() string {
	return s.Literal()
}

func literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return quoteString(x)
	case []byte:
		return "X'" + hex.EncodeToString(x) + "'"
	case bool:
		if x {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case time.Time:
		return "'" + x.UTC().Format(time.RFC3339Nano) + "'"
	default:
		return quoteString(fmt.Sprint(x))
	}
}

// splitPlaceholders cuts sql at every '?' that is outside quoted text.
// The result always has one more element than there are placeholders.
func splitPlaceholders(sql string) []string {
	var parts []string
	var inSingle, inDouble bool
	start := 0

	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '?':
			if !inSingle && !inDouble {
				parts = append(parts, sql[start:i])
				start = i + 1
			}
		}
	}

	return append(parts, sql[start:])
}

// countPlaceholders returns the number of bindable '?' in sql
func countPlaceholders(sql string) int {
	return len(splitPlaceholders(sql)) - 1
}

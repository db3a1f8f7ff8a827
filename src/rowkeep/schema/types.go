package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ColumnType is the storage type of a column
type ColumnType string

const (
	// TypeInt is a 64-bit signed integer column
	TypeInt ColumnType = "int"
	// TypeSmallInt is an 8-bit signed integer, used for flags
	TypeSmallInt ColumnType = "smallint"
	// TypeString is a text column. Only string values need escaping in SQL text.
	TypeString ColumnType = "string"
)

// Valid reports whether t is a known column type
func (t ColumnType) Valid() bool {
	switch t {
	case TypeInt, TypeSmallInt, TypeString:
		return true
	}
	return false
}

// IsInteger reports whether values of t are integers
func (t ColumnType) IsInteger() bool {
	return t == TypeInt || t == TypeSmallInt
}

// NeedsEscaping reports whether values of t must be escaped when embedded in SQL text
func (t ColumnType) NeedsEscaping() bool {
	return t == TypeString
}

// Zero returns the canonical zero value: int64(0) for integer types, "" for strings
func (t ColumnType) Zero() any {
	if t == TypeString {
		return ""
	}
	return int64(0)
}

// Normalize converts v to the canonical Go representation of t
// (int64 for integer types, string for text). It accepts the shapes produced
// by database drivers and by encoding/json.
func (t ColumnType) Normalize(v any) (any, error) {
	if v == nil {
		return t.Zero(), nil
	}

	if t == TypeString {
		switch x := v.(type) {
		case string:
			return x, nil
		case []byte:
			return string(x), nil
		default:
			return nil, fmt.Errorf("expected text, got %T", v)
		}
	}

	n, err := toInt64(v)
	if err != nil {
		return nil, err
	}
	if t == TypeSmallInt && (n < math.MinInt8 || n > math.MaxInt8) {
		return nil, fmt.Errorf("value %d out of smallint range", n)
	}
	return n, nil
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("expected integer, got %v", x)
		}
		return int64(x), nil
	case json.Number:
		return x.Int64()
	case string:
		return strconv.ParseInt(x, 10, 64)
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

package repository

import (
	"database/sql"
	"fmt"
	"reflect"

	"github.com/bitswalk/rowkeep/src/common/errors"
	"github.com/bitswalk/rowkeep/src/rowkeep/schema"
)

// Codec converts between records of type T and column values in schema order
type Codec[T any] interface {
	// Empty returns the sentinel record with every field at its zero value
	Empty() T

	// Scan reads one result row. scan has the signature of (*sql.Rows).Scan.
	Scan(scan func(dest ...any) error) (T, error)

	// Values returns the record's column values in schema order, normalized
	// to int64 or string
	Values(rec T) ([]any, error)

	// Key returns the primary key value of rec
	Key(rec T) (int64, error)

	// WithKey returns rec with its primary key set to id
	WithKey(rec T, id int64) T
}

// Record is implemented by typed table records. Fields returns pointers to
// the record fields in column order.
type Record interface {
	Fields() []any
}

// scanTargets returns nullable holders matching the schema column types
func scanTargets(s schema.Schema) []any {
	dest := make([]any, len(s.Columns))
	for i, c := range s.Columns {
		if c.Type.IsInteger() {
			dest[i] = new(sql.NullInt64)
		} else {
			dest[i] = new(sql.NullString)
		}
	}
	return dest
}

// scannedValue unwraps a holder filled by scanTargets; NULL becomes the zero value
func scannedValue(c schema.Column, holder any) any {
	switch h := holder.(type) {
	case *sql.NullInt64:
		if !h.Valid {
			return c.Type.Zero()
		}
		return h.Int64
	case *sql.NullString:
		if !h.Valid {
			return c.Type.Zero()
		}
		return h.String
	}
	return c.Type.Zero()
}

// ============================================================================
// StructCodec
// ============================================================================

// StructCodec maps a struct type implementing Record onto a schema.
// P is the pointer type of T, which is what implements Record.
type StructCodec[T any, P interface {
	*T
	Record
}] struct {
	schema schema.Schema
	keyIdx int
}

// NewStructCodec checks that T exposes one settable field per column with a
// kind compatible with the column type
func NewStructCodec[T any, P interface {
	*T
	Record
}](s schema.Schema) (*StructCodec[T, P], error) {
	var sample T
	fields := P(&sample).Fields()
	if len(fields) != len(s.Columns) {
		return nil, errors.ErrInvalidRecord.WithMessagef("%T exposes %d fields, table %s has %d columns",
			sample, len(fields), s.Table, len(s.Columns))
	}

	for i, c := range s.Columns {
		v := reflect.ValueOf(fields[i])
		if v.Kind() != reflect.Pointer || v.IsNil() {
			return nil, errors.ErrInvalidRecord.WithMessagef("%T field %d for column %s is not a pointer", sample, i, c.Name)
		}
		if !kindFits(c.Type, v.Elem().Kind()) {
			return nil, errors.ErrInvalidRecord.WithMessagef("%T field %d has kind %s, column %s is %s",
				sample, i, v.Elem().Kind(), c.Name, c.Type)
		}
	}

	return &StructCodec[T, P]{schema: s, keyIdx: s.KeyIndex()}, nil
}

func kindFits(t schema.ColumnType, k reflect.Kind) bool {
	switch k {
	case reflect.String:
		return t == schema.TypeString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Bool:
		return t.IsInteger()
	}
	return false
}

// Empty implements Codec
func (c *StructCodec[T, P]) Empty() T {
	var rec T
	return rec
}

// Scan implements Codec
func (c *StructCodec[T, P]) Scan(scan func(dest ...any) error) (T, error) {
	var rec T
	dest := scanTargets(c.schema)
	if err := scan(dest...); err != nil {
		return rec, err
	}

	fields := P(&rec).Fields()
	for i, col := range c.schema.Columns {
		if err := setField(fields[i], scannedValue(col, dest[i])); err != nil {
			return c.Empty(), fmt.Errorf("column %s: %w", col.Name, err)
		}
	}
	return rec, nil
}

// Values implements Codec
func (c *StructCodec[T, P]) Values(rec T) ([]any, error) {
	fields := P(&rec).Fields()
	values := make([]any, len(fields))

	for i, col := range c.schema.Columns {
		raw := fieldValue(fields[i])
		v, err := col.Type.Normalize(raw)
		if err != nil {
			return nil, errors.ErrInvalidRecord.WithMessagef("column %s: %v", col.Name, err)
		}
		values[i] = v
	}
	return values, nil
}

// Key implements Codec
func (c *StructCodec[T, P]) Key(rec T) (int64, error) {
	fields := P(&rec).Fields()
	v := reflect.ValueOf(fields[c.keyIdx]).Elem()
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return int64(v.Uint()), nil
	}
	return 0, errors.ErrInvalidRecord.WithMessagef("primary key %s is not an integer field", c.schema.PrimaryKey)
}

// WithKey implements Codec
func (c *StructCodec[T, P]) WithKey(rec T, id int64) T {
	fields := P(&rec).Fields()
	_ = setField(fields[c.keyIdx], id)
	return rec
}

// fieldValue dereferences a field pointer into an int64, string or bool
func fieldValue(ptr any) any {
	v := reflect.ValueOf(ptr).Elem()
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return int64(v.Uint())
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	}
	return v.Interface()
}

// setField stores an int64 or string into the field ptr points at
func setField(ptr any, value any) error {
	v := reflect.ValueOf(ptr).Elem()

	switch x := value.(type) {
	case int64:
		switch v.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if v.OverflowInt(x) {
				return fmt.Errorf("value %d overflows %s", x, v.Type())
			}
			v.SetInt(x)
		case reflect.Uint8, reflect.Uint16, reflect.Uint32:
			if x < 0 || v.OverflowUint(uint64(x)) {
				return fmt.Errorf("value %d overflows %s", x, v.Type())
			}
			v.SetUint(uint64(x))
		case reflect.Bool:
			v.SetBool(x != 0)
		default:
			return fmt.Errorf("cannot store integer in %s", v.Type())
		}
	case string:
		if v.Kind() != reflect.String {
			return fmt.Errorf("cannot store text in %s", v.Type())
		}
		v.SetString(x)
	default:
		return fmt.Errorf("unsupported value %T", value)
	}
	return nil
}

// ============================================================================
// RowCodec
// ============================================================================

// Row is a dynamic record keyed by column name. Values are int64 or string.
type Row map[string]any

// RowCodec maps Rows onto a schema without any compile-time record type
type RowCodec struct {
	schema schema.Schema
}

// NewRowCodec creates a codec for dynamic rows of s
func NewRowCodec(s schema.Schema) *RowCodec {
	return &RowCodec{schema: s}
}

// Empty implements Codec
func (c *RowCodec) Empty() Row {
	row := make(Row, len(c.schema.Columns))
	for _, col := range c.schema.Columns {
		row[col.Name] = col.Type.Zero()
	}
	return row
}

// Scan implements Codec
func (c *RowCodec) Scan(scan func(dest ...any) error) (Row, error) {
	dest := scanTargets(c.schema)
	if err := scan(dest...); err != nil {
		return nil, err
	}

	row := make(Row, len(c.schema.Columns))
	for i, col := range c.schema.Columns {
		row[col.Name] = scannedValue(col, dest[i])
	}
	return row, nil
}

// Values implements Codec. Columns missing from rec take their zero value;
// keys that are not columns are rejected.
func (c *RowCodec) Values(rec Row) ([]any, error) {
	for name := range rec {
		if !c.schema.HasColumn(name) {
			return nil, errors.ErrInvalidRecord.WithMessagef("table %s has no column %q", c.schema.Table, name)
		}
	}

	values := make([]any, len(c.schema.Columns))
	for i, col := range c.schema.Columns {
		v, err := col.Type.Normalize(rec[col.Name])
		if err != nil {
			return nil, errors.ErrInvalidRecord.WithMessagef("column %s: %v", col.Name, err)
		}
		values[i] = v
	}
	return values, nil
}

// Key implements Codec
func (c *RowCodec) Key(rec Row) (int64, error) {
	v, err := c.schema.PrimaryKeyColumn().Type.Normalize(rec[c.schema.PrimaryKey])
	if err != nil {
		return 0, errors.ErrInvalidRecord.WithMessagef("primary key %s: %v", c.schema.PrimaryKey, err)
	}
	id, _ := v.(int64)
	return id, nil
}

// WithKey implements Codec. The input row is not modified.
func (c *RowCodec) WithKey(rec Row, id int64) Row {
	out := make(Row, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	out[c.schema.PrimaryKey] = id
	return out
}

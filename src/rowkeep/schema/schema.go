// Package schema describes table shapes for the generic repository: an ordered
// column list, a primary key column and per-column typing rules. Schemas are
// plain values; a Registry collects them by table name.
package schema

import (
	"regexp"

	"github.com/bitswalk/rowkeep/src/common/errors"
	"github.com/samber/lo"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Column describes one table column
type Column struct {
	// Name is the column name as it appears in SQL
	Name string `json:"name" yaml:"name"`

	// Type controls zero values, conversion and escaping
	Type ColumnType `json:"type" yaml:"type"`

	// Immutable columns are written on INSERT but never on UPDATE
	Immutable bool `json:"immutable,omitempty" yaml:"immutable,omitempty"`
}

// Schema is the declarative description of a table
type Schema struct {
	// Table is the SQL table name
	Table string `json:"table" yaml:"table"`

	// Columns lists the columns in record field order
	Columns []Column `json:"columns" yaml:"columns"`

	// PrimaryKey names the storage-assigned key column
	PrimaryKey string `json:"primary_key" yaml:"primary_key"`
}

// ColumnNames returns the column names in declaration order
func (s Schema) ColumnNames() []string {
	return lo.Map(s.Columns, func(c Column, _ int) string { return c.Name })
}

// PrimaryKeyColumn returns the key column. The schema must be valid.
func (s Schema) PrimaryKeyColumn() Column {
	return s.Columns[s.KeyIndex()]
}

// KeyIndex returns the position of the primary key column, or -1
func (s Schema) KeyIndex() int {
	return s.Index(s.PrimaryKey)
}

// Index returns the position of the named column, or -1
func (s Schema) Index(name string) int {
	_, idx, ok := lo.FindIndexOf(s.Columns, func(c Column) bool { return c.Name == name })
	if !ok {
		return -1
	}
	return idx
}

// HasColumn reports whether the schema declares the named column
func (s Schema) HasColumn(name string) bool {
	return s.Index(name) >= 0
}

// Column returns the named column
func (s Schema) Column(name string) (Column, bool) {
	return lo.Find(s.Columns, func(c Column) bool { return c.Name == name })
}

// InsertColumns returns every column except the primary key
func (s Schema) InsertColumns() []Column {
	return lo.Filter(s.Columns, func(c Column, _ int) bool { return c.Name != s.PrimaryKey })
}

// UpdateColumns returns every column except the primary key and immutable columns
func (s Schema) UpdateColumns() []Column {
	return lo.Filter(s.Columns, func(c Column, _ int) bool {
		return c.Name != s.PrimaryKey && !c.Immutable
	})
}

// Validate checks table and column identifiers, column uniqueness and the key column
func (s Schema) Validate() error {
	if !identifierPattern.MatchString(s.Table) {
		return errors.ErrInvalidSchema.WithMessagef("invalid table name %q", s.Table)
	}
	if len(s.Columns) == 0 {
		return errors.ErrInvalidSchema.WithMessagef("table %s declares no columns", s.Table)
	}

	seen := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		if !identifierPattern.MatchString(c.Name) {
			return errors.ErrInvalidSchema.WithMessagef("table %s: invalid column name %q", s.Table, c.Name)
		}
		if !c.Type.Valid() {
			return errors.ErrInvalidSchema.WithMessagef("table %s: column %s has unknown type %q", s.Table, c.Name, c.Type)
		}
		if _, dup := seen[c.Name]; dup {
			return errors.ErrInvalidSchema.WithMessagef("table %s: duplicate column %s", s.Table, c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	key, ok := s.Column(s.PrimaryKey)
	if !ok {
		return errors.ErrInvalidSchema.WithMessagef("table %s: primary key %q is not a declared column", s.Table, s.PrimaryKey)
	}
	if !key.Type.IsInteger() {
		return errors.ErrInvalidSchema.WithMessagef("table %s: primary key %s must be an integer column", s.Table, key.Name)
	}
	if len(s.InsertColumns()) == 0 {
		return errors.ErrInvalidSchema.WithMessagef("table %s: no columns besides the primary key", s.Table)
	}

	return nil
}

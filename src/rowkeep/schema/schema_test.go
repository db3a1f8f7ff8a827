package schema

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bitswalk/rowkeep/src/common/errors"
)

func spawnConditionValues() Schema {
	return Schema{
		Table:      "spawn_condition_values",
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "id", Type: TypeInt},
			{Name: "value", Type: TypeSmallInt},
			{Name: "zone", Type: TypeString},
			{Name: "instance_id", Type: TypeInt, Immutable: true},
		},
	}
}

func TestSchema_ColumnSets(t *testing.T) {
	s := spawnConditionValues()

	if got := s.ColumnNames(); !reflect.DeepEqual(got, []string{"id", "value", "zone", "instance_id"}) {
		t.Fatalf("unexpected column order: %v", got)
	}

	insert := s.InsertColumns()
	if len(insert) != 3 || insert[0].Name != "value" || insert[2].Name != "instance_id" {
		t.Fatalf("insert columns should omit only the key: %v", insert)
	}

	update := s.UpdateColumns()
	if len(update) != 2 || update[0].Name != "value" || update[1].Name != "zone" {
		t.Fatalf("update columns should omit key and immutable columns: %v", update)
	}

	if s.KeyIndex() != 0 || s.PrimaryKeyColumn().Name != "id" {
		t.Fatal("unexpected key column")
	}
	if s.Index("zone") != 2 || s.Index("missing") != -1 {
		t.Fatal("unexpected column index")
	}
}

func TestSchema_KeyNotFirstNorNamedID(t *testing.T) {
	s := Schema{
		Table:      "character_tributes",
		PrimaryKey: "char_tribute",
		Columns: []Column{
			{Name: "name", Type: TypeString},
			{Name: "char_tribute", Type: TypeInt},
			{Name: "level", Type: TypeSmallInt},
		},
	}

	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid schema, got %v", err)
	}
	if s.KeyIndex() != 1 {
		t.Fatalf("expected key at index 1, got %d", s.KeyIndex())
	}
	if names := len(s.InsertColumns()); names != 2 {
		t.Fatalf("expected 2 insert columns, got %d", names)
	}
}

func TestSchema_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Schema)
	}{
		{"bad table name", func(s *Schema) { s.Table = "spawn; DROP" }},
		{"no columns", func(s *Schema) { s.Columns = nil }},
		{"bad column name", func(s *Schema) { s.Columns[2].Name = "zone name" }},
		{"unknown type", func(s *Schema) { s.Columns[1].Type = "float" }},
		{"duplicate column", func(s *Schema) { s.Columns[2].Name = "value" }},
		{"missing key", func(s *Schema) { s.PrimaryKey = "uid" }},
		{"string key", func(s *Schema) { s.PrimaryKey = "zone" }},
		{"key only", func(s *Schema) { s.Columns = s.Columns[:1] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := spawnConditionValues()
			tt.mutate(&s)

			err := s.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !stderrors.Is(err, errors.ErrInvalidSchema) {
				t.Fatalf("expected ErrInvalidSchema, got %v", err)
			}
		})
	}
}

func TestColumnType_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		typ     ColumnType
		in      any
		want    any
		wantErr bool
	}{
		{"nil int", TypeInt, nil, int64(0), false},
		{"nil string", TypeString, nil, "", false},
		{"json float", TypeInt, float64(42), int64(42), false},
		{"fractional float", TypeInt, 1.5, nil, true},
		{"numeric string", TypeInt, "17", int64(17), false},
		{"bytes text", TypeString, []byte("qeynos"), "qeynos", false},
		{"int into string", TypeString, 5, nil, true},
		{"smallint in range", TypeSmallInt, int64(-128), int64(-128), false},
		{"smallint overflow", TypeSmallInt, 200, nil, true},
		{"bool flag", TypeSmallInt, true, int64(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.typ.Normalize(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	s := spawnConditionValues()

	if err := r.Register(s); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := r.Register(s); !stderrors.Is(err, errors.ErrTableAlreadyRegistered) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	// Mutating the caller's copy must not affect the registry
	s.Columns[2].Name = "changed"
	got, ok := r.Get("spawn_condition_values")
	if !ok || got.Columns[2].Name != "zone" {
		t.Fatal("registry should hold its own copy of the columns")
	}

	if _, err := r.Lookup("tributes"); !stderrors.Is(err, errors.ErrTableNotFound) {
		t.Fatalf("expected table not found, got %v", err)
	}

	r.MustRegister(Schema{
		Table:      "tributes",
		PrimaryKey: "id",
		Columns:    []Column{{Name: "id", Type: TypeInt}, {Name: "name", Type: TypeString}},
	})
	if !reflect.DeepEqual(r.Tables(), []string{"spawn_condition_values", "tributes"}) {
		t.Fatalf("unexpected table order: %v", r.Tables())
	}
	if r.Len() != 2 || len(r.Schemas()) != 2 {
		t.Fatal("expected two schemas")
	}
}

func TestRegistry_MustRegisterPanicsOnInvalid(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewRegistry().MustRegister(Schema{Table: "broken"})
}

const yamlRegistry = `
tables:
  - table: spawn_condition_values
    primary_key: id
    columns:
      - {name: id, type: int}
      - {name: value, type: smallint}
      - {name: zone, type: string}
      - {name: instance_id, type: int}
`

const tomlRegistry = `
[[tables]]
table = "tributes"
primary_key = "id"

  [[tables.columns]]
  name = "id"
  type = "int"

  [[tables.columns]]
  name = "name"
  type = "string"

  [[tables.columns]]
  name = "isguild"
  type = "smallint"
  immutable = true
`

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "eq.yaml")
	tomlPath := filepath.Join(dir, "eq.toml")
	if err := os.WriteFile(yamlPath, []byte(yamlRegistry), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tomlPath, []byte(tomlRegistry), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := LoadFile(r, yamlPath); err != nil {
		t.Fatalf("yaml load failed: %v", err)
	}
	if err := LoadFile(r, tomlPath); err != nil {
		t.Fatalf("toml load failed: %v", err)
	}

	scv, _ := r.Get("spawn_condition_values")
	if scv.Columns[1].Type != TypeSmallInt {
		t.Fatalf("unexpected yaml column type: %v", scv.Columns[1])
	}
	tr, _ := r.Get("tributes")
	if !tr.Columns[2].Immutable {
		t.Fatal("expected immutable flag from toml")
	}
}

func TestParseFile_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
	}{
		{"unknown format", yamlRegistry, "json"},
		{"bad type", "tables:\n  - table: t\n    primary_key: id\n    columns:\n      - {name: id, type: int}\n      - {name: x, type: blob}\n", "yaml"},
		{"empty", "tables: []\n", "yaml"},
		{"missing key", "tables:\n  - table: t\n    columns:\n      - {name: id, type: int}\n      - {name: x, type: int}\n", "yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFile([]byte(tt.data), tt.format); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a declarative table registry
type File struct {
	Tables []TableDefinition `yaml:"tables" toml:"tables" validate:"required,min=1,dive"`
}

// TableDefinition declares one table in a registry file
type TableDefinition struct {
	Table      string             `yaml:"table" toml:"table" validate:"required"`
	PrimaryKey string             `yaml:"primary_key" toml:"primary_key" validate:"required"`
	Columns    []ColumnDefinition `yaml:"columns" toml:"columns" validate:"required,min=2,dive"`
}

// ColumnDefinition declares one column in a registry file
type ColumnDefinition struct {
	Name      string `yaml:"name" toml:"name" validate:"required"`
	Type      string `yaml:"type" toml:"type" validate:"required,oneof=int smallint string"`
	Immutable bool   `yaml:"immutable" toml:"immutable"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Schema converts the definition into a Schema
func (d TableDefinition) Schema() Schema {
	cols := make([]Column, 0, len(d.Columns))
	for _, c := range d.Columns {
		cols = append(cols, Column{Name: c.Name, Type: ColumnType(c.Type), Immutable: c.Immutable})
	}
	return Schema{Table: d.Table, Columns: cols, PrimaryKey: d.PrimaryKey}
}

// ParseFile decodes registry definitions. Format is "yaml" or "toml".
func ParseFile(data []byte, format string) (*File, error) {
	var f File

	switch format {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse yaml schema file: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse toml schema file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported schema file format %q", format)
	}

	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid schema file: %w", err)
	}

	return &f, nil
}

// LoadFile reads a YAML or TOML registry file, chosen by extension, and
// registers every table it declares
func LoadFile(r *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	f, err := ParseFile(data, format)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for _, def := range f.Tables {
		if err := r.Register(def.Schema()); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	return nil
}

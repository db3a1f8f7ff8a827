// Package records defines the built-in tables served by rowkeep: their
// schemas, their typed records and repository constructors.
package records

import (
	"github.com/bitswalk/rowkeep/src/rowkeep/schema"
)

// Built-in table names
const (
	TableSpawnConditionValues = "spawn_condition_values"
	TableTributes             = "tributes"
)

// SpawnConditionValuesSchema describes spawn_condition_values.
// zone and instance_id identify the condition slot and are never updated.
func SpawnConditionValuesSchema() schema.Schema {
	return schema.Schema{
		Table:      TableSpawnConditionValues,
		PrimaryKey: "id",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeInt},
			{Name: "value", Type: schema.TypeSmallInt},
			{Name: "zone", Type: schema.TypeString, Immutable: true},
			{Name: "instance_id", Type: schema.TypeInt, Immutable: true},
		},
	}
}

// TributesSchema describes tributes. isguild is set on insert only.
func TributesSchema() schema.Schema {
	return schema.Schema{
		Table:      TableTributes,
		PrimaryKey: "id",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeInt},
			{Name: "unknown", Type: schema.TypeInt},
			{Name: "name", Type: schema.TypeString},
			{Name: "descr", Type: schema.TypeString},
			{Name: "isguild", Type: schema.TypeSmallInt, Immutable: true},
		},
	}
}

// Schemas returns every built-in schema
func Schemas() []schema.Schema {
	return []schema.Schema{
		SpawnConditionValuesSchema(),
		TributesSchema(),
	}
}

// Register adds the built-in schemas to r
func Register(r *schema.Registry) error {
	for _, s := range Schemas() {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}

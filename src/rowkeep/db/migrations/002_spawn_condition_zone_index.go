package migrations

import (
	"database/sql"

	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
)

// migration002SpawnConditionZoneIndex indexes spawn condition values by zone and instance
func migration002SpawnConditionZoneIndex() Migration {
	return Migration{
		Version:     2,
		Description: "Index spawn_condition_values by zone and instance",
		Up:          migration002Up,
	}
}

func migration002Up(tx *sql.Tx, _ repository.Dialect) error {
	_, err := tx.Exec(`
		CREATE INDEX IF NOT EXISTS idx_spawn_condition_values_zone
		ON spawn_condition_values(zone, instance_id)
	`)
	return err
}

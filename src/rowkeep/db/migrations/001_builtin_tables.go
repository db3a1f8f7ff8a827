package migrations

import (
	"database/sql"

	"github.com/bitswalk/rowkeep/src/rowkeep/records"
	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
)

// migration001BuiltinTables creates the built-in record tables
func migration001BuiltinTables() Migration {
	return Migration{
		Version:     1,
		Description: "Create spawn_condition_values and tributes tables",
		Up:          migration001Up,
	}
}

func migration001Up(tx *sql.Tx, d repository.Dialect) error {
	for _, s := range records.Schemas() {
		if _, err := tx.Exec(CreateTableSQL(s, d)); err != nil {
			return err
		}
	}
	return nil
}

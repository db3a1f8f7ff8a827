package migrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
	"github.com/bitswalk/rowkeep/src/rowkeep/schema"
)

// CreateTableSQL renders a CREATE TABLE IF NOT EXISTS statement for s.
// The key column is auto-assigned by the engine; every other column is
// NOT NULL with its type's zero value as default.
func CreateTableSQL(s schema.Schema, d repository.Dialect) string {
	defs := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		defs = append(defs, "\t"+columnDefinition(c, c.Name == s.PrimaryKey, d))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n)", s.Table, strings.Join(defs, ",\n"))
}

func columnDefinition(c schema.Column, key bool, d repository.Dialect) string {
	if key {
		if d.Name == repository.Postgres.Name {
			return c.Name + " BIGSERIAL PRIMARY KEY"
		}
		return c.Name + " INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	switch c.Type {
	case schema.TypeString:
		return c.Name + " TEXT NOT NULL DEFAULT ''"
	case schema.TypeSmallInt:
		return c.Name + " SMALLINT NOT NULL DEFAULT 0"
	default:
		if d.Name == repository.Postgres.Name {
			return c.Name + " BIGINT NOT NULL DEFAULT 0"
		}
		return c.Name + " INTEGER NOT NULL DEFAULT 0"
	}
}

// EnsureTables creates every table of the registry that does not exist yet.
// Existing tables are left untouched.
func EnsureTables(ctx context.Context, exec repository.Executor, r *schema.Registry, d repository.Dialect) error {
	for _, s := range r.Schemas() {
		if _, err := exec.ExecContext(ctx, CreateTableSQL(s, d)); err != nil {
			return fmt.Errorf("failed to create table %s: %w", s.Table, err)
		}
		if log != nil {
			log.Debug("Ensured table", "table", s.Table)
		}
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/bitswalk/rowkeep/src/common/errors"
)

// Executor is the database execution handle a repository runs statements on.
// *sql.DB, *sql.Tx and *sql.Conn all satisfy it; the handle owns pooling and
// thread safety.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Dialect captures the SQL differences between supported engines
type Dialect struct {
	// Name identifies the dialect ("sqlite", "postgres")
	Name string

	// Numbered placeholders ($1, $2, ...) instead of '?'
	Numbered bool

	// Returning fetches the new key with INSERT ... RETURNING instead of LastInsertId
	Returning bool
}

var (
	// SQLite is the dialect for mattn/go-sqlite3 and modernc.org/sqlite
	SQLite = Dialect{Name: "sqlite"}

	// Postgres is the dialect for the pgx stdlib driver
	Postgres = Dialect{Name: "postgres", Numbered: true, Returning: true}
)

// DialectFor returns the dialect matching a database/sql driver name
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3", "sqlite", "":
		return SQLite, nil
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	default:
		return Dialect{}, errors.ErrUnsupportedDriver.WithMessagef("no SQL dialect for driver %q", driver)
	}
}

// Rebind rewrites '?' placeholders into the dialect's native form
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}

	parts := splitPlaceholders(query)
	if len(parts) == 1 {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + len(parts)*2)
	for i, part := range parts {
		b.WriteString(part)
		if i < len(parts)-1 {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(i + 1))
		}
	}
	return b.String()
}

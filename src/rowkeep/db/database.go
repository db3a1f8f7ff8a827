// Package db provides the database handle rowkeep repositories run on.
// SQLite databases default to in-memory with persistence to disk on shutdown;
// PostgreSQL is reached through the pgx database/sql driver.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bitswalk/rowkeep/src/common/errors"
	"github.com/bitswalk/rowkeep/src/common/logs"
	"github.com/bitswalk/rowkeep/src/common/paths"
	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/mattn/go-sqlite3"    // registers "sqlite3"
	_ "modernc.org/sqlite"             // registers "sqlite", pure Go
)

// Supported database/sql driver names
const (
	DriverSQLite3  = "sqlite3"
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

const memoryDSN = ":memory:"

// package-level logger, can be set via SetLogger
var log *logs.Logger

// SetLogger sets the logger for the db package
func SetLogger(l *logs.Logger) {
	log = l
}

// Database wraps the SQL connection with persistence capabilities
type Database struct {
	db           *sql.DB
	driver       string
	dialect      repository.Dialect
	memory       bool
	persistPath  string
	mu           sync.RWMutex
	shutdownOnce sync.Once
}

// Config holds the database configuration
type Config struct {
	// Driver is sqlite3 (default), sqlite or pgx
	Driver string
	// DSN is the data source name. Empty means in-memory for SQLite drivers.
	DSN string
	// PersistPath is the file an in-memory SQLite database is saved to on shutdown
	PersistPath string
	// LoadOnStart determines whether to load existing data from PersistPath on startup
	LoadOnStart bool
}

// DefaultConfig returns a default database configuration
func DefaultConfig() Config {
	return Config{
		Driver:      DriverSQLite3,
		PersistPath: "~/.rowkeep/rowkeep.db",
		LoadOnStart: true,
	}
}

// New opens the database described by cfg
func New(cfg Config) (*Database, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite3
	}

	dialect, err := repository.DialectFor(driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	isSQLite := dialect.Name == repository.SQLite.Name
	if dsn == "" {
		if !isSQLite {
			return nil, errors.ErrDatabaseConnection.WithMessagef("driver %s requires a DSN", driver)
		}
		dsn = memoryDSN
	}
	memory := isSQLite && dsn == memoryDSN

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.ErrDatabaseConnection.WithMessagef("failed to open %s database", driver).WithCause(err)
	}

	if isSQLite {
		// Each pooled connection to :memory: would be a separate database,
		// and SQLite only supports one writer at a time anyway
		db.SetMaxOpenConns(1)

		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	database := &Database{
		db:      db,
		driver:  driver,
		dialect: dialect,
		memory:  memory,
	}
	if memory {
		database.persistPath = paths.Expand(cfg.PersistPath)
	}

	if memory && cfg.LoadOnStart && database.persistPath != "" {
		if paths.Exists(database.persistPath) {
			if err := database.LoadFromDisk(); err != nil {
				// Start fresh rather than refusing to start
				if log != nil {
					log.Warn("Failed to load database from disk", "path", database.persistPath, "error", err)
				}
			}
		}
	}

	return database, nil
}

// DB returns the underlying sql.DB. It satisfies repository.Executor.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Driver returns the database/sql driver name
func (d *Database) Driver() string {
	return d.driver
}

// Dialect returns the SQL dialect matching the driver
func (d *Database) Dialect() repository.Dialect {
	return d.dialect
}

// InMemory reports whether the database lives in memory
func (d *Database) InMemory() bool {
	return d.memory
}

// PersistPath returns the file an in-memory database is saved to, if any
func (d *Database) PersistPath() string {
	return d.persistPath
}

// Ping verifies the connection is alive
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return errors.ErrDatabaseConnection.WithCause(err)
	}
	return nil
}

// Shutdown persists the database to disk and closes the connection
func (d *Database) Shutdown() error {
	var shutdownErr error

	d.shutdownOnce.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		if d.persistPath != "" {
			if err := d.persistToDisk(); err != nil {
				shutdownErr = fmt.Errorf("failed to persist database: %w", err)
			}
		}

		if err := d.db.Close(); err != nil {
			if shutdownErr != nil {
				shutdownErr = fmt.Errorf("%v; also failed to close database: %w", shutdownErr, err)
			} else {
				shutdownErr = fmt.Errorf("failed to close database: %w", err)
			}
		}
	})

	return shutdownErr
}

// SaveToDisk writes the in-memory database to its persist path now
func (d *Database) SaveToDisk() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.persistToDisk()
}

// Snapshot writes a consistent copy of a SQLite database to path.
// The file must not already exist.
func (d *Database) Snapshot(ctx context.Context, path string) error {
	if d.dialect.Name != repository.SQLite.Name {
		return errors.ErrBackupUnsupported.WithMessagef("snapshots are not supported for driver %s", d.driver)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := paths.EnsureDir(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if _, err := d.db.ExecContext(ctx, "VACUUM INTO '"+repository.EscapeString(path)+"'"); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return nil
}

// persistToDisk saves the in-memory database to the configured file path.
// It writes to a temp file first, then renames it over the target.
func (d *Database) persistToDisk() error {
	if d.persistPath == "" {
		return nil
	}

	if err := paths.EnsureDir(d.persistPath); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", d.persistPath, err)
	}

	tempPath := d.persistPath + ".tmp"
	os.Remove(tempPath)

	if _, err := d.db.Exec("VACUUM INTO '" + repository.EscapeString(tempPath) + "'"); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to vacuum database to disk: %w", err)
	}

	if err := os.Rename(tempPath, d.persistPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename database file: %w", err)
	}

	if log != nil {
		log.Debug("Database persisted", "path", d.persistPath)
	}
	return nil
}

// LoadFromDisk copies every table of the persisted database file into memory.
// Tables missing in memory are created from their stored definition; rows
// with an existing key are replaced.
func (d *Database) LoadFromDisk() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.persistPath == "" {
		return nil
	}

	if _, err := d.db.Exec("ATTACH DATABASE '" + repository.EscapeString(d.persistPath) + "' AS disk_db"); err != nil {
		return fmt.Errorf("failed to attach disk database: %w", err)
	}
	defer d.db.Exec("DETACH DATABASE disk_db")

	tables, err := d.diskTables()
	if err != nil {
		return err
	}

	for name, ddl := range tables {
		if !d.tableExists(name) {
			if _, err := d.db.Exec(ddl); err != nil {
				return fmt.Errorf("failed to create table %s: %w", name, err)
			}
		}
		if _, err := d.db.Exec("INSERT OR REPLACE INTO main." + name + " SELECT * FROM disk_db." + name); err != nil {
			return fmt.Errorf("failed to load table %s: %w", name, err)
		}
	}

	if log != nil {
		log.Debug("Database loaded from disk", "path", d.persistPath, "tables", len(tables))
	}
	return nil
}

// diskTables returns the user tables of the attached disk_db with their CREATE statements
func (d *Database) diskTables() (map[string]string, error) {
	rows, err := d.db.Query(`
		SELECT name, sql FROM disk_db.sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list disk tables: %w", err)
	}
	defer rows.Close()

	tables := make(map[string]string)
	for rows.Next() {
		var name, ddl string
		if err := rows.Scan(&name, &ddl); err != nil {
			return nil, fmt.Errorf("failed to scan disk table: %w", err)
		}
		if strings.ContainsAny(name, "\"'` ;") {
			continue
		}
		tables[name] = ddl
	}
	return tables, rows.Err()
}

// tableExists checks if a table exists in the main database
func (d *Database) tableExists(name string) bool {
	var count int
	err := d.db.QueryRow(`
		SELECT COUNT(*) FROM main.sqlite_master
		WHERE type = 'table' AND name = ?
	`, name).Scan(&count)
	return err == nil && count > 0
}

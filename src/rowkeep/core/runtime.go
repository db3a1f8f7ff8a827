package core

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/bitswalk/rowkeep/src/common/cli"
	"github.com/bitswalk/rowkeep/src/rowkeep/api"
	"github.com/bitswalk/rowkeep/src/rowkeep/auth"
	"github.com/bitswalk/rowkeep/src/rowkeep/backup"
	"github.com/bitswalk/rowkeep/src/rowkeep/db"
	"github.com/bitswalk/rowkeep/src/rowkeep/db/migrations"
	"github.com/bitswalk/rowkeep/src/rowkeep/records"
	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
	"github.com/bitswalk/rowkeep/src/rowkeep/schema"
	"github.com/bitswalk/rowkeep/src/rowkeep/storage"
)

// runtime bundles the database and the table registry every command needs
type runtime struct {
	database *db.Database
	registry *schema.Registry
}

// databaseConfig builds the database configuration from viper
func databaseConfig() db.Config {
	return db.Config{
		Driver:      viper.GetString("database.driver"),
		DSN:         viper.GetString("database.dsn"),
		PersistPath: cli.GetExpandedString("database.path"),
		LoadOnStart: viper.GetBool("database.load_on_start"),
	}
}

// loadRegistry registers the built-in tables and every configured schema file
func loadRegistry() (*schema.Registry, error) {
	reg := schema.NewRegistry()
	if err := records.Register(reg); err != nil {
		return nil, err
	}

	for _, path := range viper.GetStringSlice("schema.files") {
		if err := schema.LoadFile(reg, path); err != nil {
			return nil, fmt.Errorf("failed to load schema file %s: %w", path, err)
		}
		log.Debug("Loaded schema file", "path", path)
	}

	return reg, nil
}

// openRuntime opens the database, applies migrations and creates any
// registered table that does not exist yet
func openRuntime(ctx context.Context) (*runtime, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	db.SetLogger(log)
	migrations.SetLogger(log)

	cfg := databaseConfig()
	database, err := db.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := migrations.NewRunner(database.DB(), database.Dialect()).Run(ctx); err != nil {
		database.Shutdown()
		return nil, err
	}
	if err := migrations.EnsureTables(ctx, database.DB(), reg, database.Dialect()); err != nil {
		database.Shutdown()
		return nil, err
	}

	return &runtime{database: database, registry: reg}, nil
}

// Close persists and closes the database
func (rt *runtime) Close() error {
	return rt.database.Shutdown()
}

// rows returns a dynamic-row repository for table
func (rt *runtime) rows(table string) (*repository.Repository[repository.Row], error) {
	s, err := rt.registry.Lookup(table)
	if err != nil {
		return nil, err
	}
	return repository.NewRows(rt.database.DB(), s,
		repository.WithDialect(rt.database.Dialect()),
		repository.WithLogger(log),
	)
}

// newStorage creates the backup storage backend from viper
func newStorage() (storage.Backend, error) {
	storageType := viper.GetString("storage.type")

	// If S3 endpoint is specified, use S3 regardless of storage.type
	if viper.GetString("storage.s3.endpoint") != "" {
		storageType = storage.TypeS3
	}

	return storage.New(storage.Config{
		Type: storageType,
		Local: storage.LocalConfig{
			BasePath: cli.GetExpandedString("storage.local.path"),
		},
		S3: storage.S3Config{
			Endpoint:        viper.GetString("storage.s3.endpoint"),
			Region:          viper.GetString("storage.s3.region"),
			Bucket:          viper.GetString("storage.s3.bucket"),
			Prefix:          viper.GetString("storage.s3.prefix"),
			AccessKeyID:     viper.GetString("storage.s3.access_key"),
			SecretAccessKey: viper.GetString("storage.s3.secret_key"),
			UsePathStyle:    viper.GetBool("storage.s3.path_style"),
		},
	})
}

// newBackupManager creates a backup manager snapshotting source. A nil source
// can list, restore and prune but not create.
func newBackupManager(source backup.Snapshotter) (*backup.Manager, error) {
	store, err := newStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return backup.NewManager(source, store, backup.Config{Prefix: viper.GetString("backup.prefix")}, log), nil
}

// newTokenService creates the token service from viper. Without a secret the
// service is disabled and the API write routes are open.
func newTokenService() *auth.TokenService {
	return auth.NewTokenService(auth.TokenConfig{
		Secret:        viper.GetString("auth.secret"),
		Issuer:        viper.GetString("auth.issuer"),
		TokenDuration: viper.GetDuration("auth.token_duration"),
	})
}

// rateLimitConfig builds the API rate limit configuration from viper
func rateLimitConfig() api.RateLimitConfig {
	return api.RateLimitConfig{
		Enabled:             viper.GetBool("security.rate_limit.enabled"),
		RequestsPerMin:      viper.GetInt("security.rate_limit.per_min"),
		WriteRequestsPerMin: viper.GetInt("security.rate_limit.write_per_min"),
	}
}

// backupSchedule returns the periodic backup interval and retention
func backupSchedule() (time.Duration, int) {
	return viper.GetDuration("backup.interval"), viper.GetInt("backup.keep")
}

// persistInterval returns how often an in-memory database is saved to disk
// while the server runs
func persistInterval() time.Duration {
	return viper.GetDuration("database.persist_interval")
}

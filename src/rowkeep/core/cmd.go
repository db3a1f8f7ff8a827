// Package core provides the rowkeep commands and the HTTP server.
package core

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bitswalk/rowkeep/src/common/cli"
	"github.com/bitswalk/rowkeep/src/common/logs"
	"github.com/bitswalk/rowkeep/src/common/version"
)

var (
	// VersionInfo holds version information - set at build time via ldflags
	VersionInfo = version.New()

	// Global logger instance
	log = logs.Discard()

	// Configuration file path
	cfgFile string

	// Output format (auto, table, json, yaml)
	outputFormat string
)

// Linker variables - these are set via ldflags at build time. Empty values
// keep what VersionInfo read from the binary.
var (
	Version        string
	ReleaseVersion string
	BuildDate      string
	GitCommit      string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rowkeep",
	Short: "Schema-driven table repositories",
	Long: `rowkeep serves SQL tables described by declarative schemas.

Without a subcommand it runs the HTTP API. The subcommands work on the
configured database directly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

// Execute runs the root command
func Execute() {
	for dst, v := range map[*string]string{
		&VersionInfo.Version:        Version,
		&VersionInfo.ReleaseVersion: ReleaseVersion,
		&VersionInfo.BuildDate:      BuildDate,
		&VersionInfo.GitCommit:      GitCommit,
	} {
		if v != "" {
			*dst = v
		}
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cli.RegisterConfigFlag(rootCmd, &cfgFile, "/etc/rowkeep/rowkeep.yaml")
	cli.RegisterLogFlags(rootCmd)

	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatAuto, "Output format: auto, table, json, yaml")

	// Database flags
	rootCmd.PersistentFlags().String("db-driver", "sqlite3", "Database driver: sqlite3, sqlite (pure Go) or pgx")
	rootCmd.PersistentFlags().String("db-dsn", "", "Database DSN (empty: in-memory SQLite persisted to --db-path)")
	rootCmd.PersistentFlags().String("db-path", "~/.rowkeep/rowkeep.db", "Path to persist the in-memory database on shutdown")
	rootCmd.PersistentFlags().StringSlice("schema", nil, "Schema definition files (YAML or TOML) to register")

	// Server flags
	rootCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	rootCmd.Flags().StringP("bind", "b", "0.0.0.0", "Address to bind to")

	// Storage flags
	rootCmd.PersistentFlags().String("storage-type", "local", "Backup storage backend type: 'local' or 's3'")
	rootCmd.PersistentFlags().String("storage-path", "~/.rowkeep/backups", "Local storage path (for local backend)")
	rootCmd.PersistentFlags().String("s3-endpoint", "", "S3-compatible storage endpoint URL")
	rootCmd.PersistentFlags().String("s3-bucket", "rowkeep-backups", "S3 bucket for backups")

	_ = viper.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	_ = viper.BindPFlag("database.dsn", rootCmd.PersistentFlags().Lookup("db-dsn"))
	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db-path"))
	_ = viper.BindPFlag("schema.files", rootCmd.PersistentFlags().Lookup("schema"))
	_ = viper.BindPFlag("server.port", rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.bind", rootCmd.Flags().Lookup("bind"))
	_ = viper.BindPFlag("storage.type", rootCmd.PersistentFlags().Lookup("storage-type"))
	_ = viper.BindPFlag("storage.local.path", rootCmd.PersistentFlags().Lookup("storage-path"))
	_ = viper.BindPFlag("storage.s3.endpoint", rootCmd.PersistentFlags().Lookup("s3-endpoint"))
	_ = viper.BindPFlag("storage.s3.bucket", rootCmd.PersistentFlags().Lookup("s3-bucket"))

	// Set defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.bind", "0.0.0.0")
	viper.SetDefault("database.driver", "sqlite3")
	viper.SetDefault("database.path", "~/.rowkeep/rowkeep.db")
	viper.SetDefault("database.load_on_start", true)
	viper.SetDefault("database.persist_interval", "0s")
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local.path", "~/.rowkeep/backups")
	viper.SetDefault("storage.s3.region", "us-east-1")
	viper.SetDefault("storage.s3.bucket", "rowkeep-backups")
	viper.SetDefault("storage.s3.path_style", true)
	viper.SetDefault("backup.prefix", "snapshots")
	viper.SetDefault("backup.interval", "0s")
	viper.SetDefault("backup.keep", 0)

	// Security defaults
	viper.SetDefault("auth.secret", "")
	viper.SetDefault("auth.issuer", "rowkeep")
	viper.SetDefault("auth.token_duration", "24h")
	viper.SetDefault("security.rate_limit.enabled", true)
	viper.SetDefault("security.rate_limit.per_min", 120)
	viper.SetDefault("security.rate_limit.write_per_min", 60)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(rowsCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(tokenCmd)
}

// initConfig reads in config file and ENV variables if set
func initConfig() error {
	opts := cli.DefaultConfigOptions("rowkeep", "ROWKEEP")
	opts.ConfigFile = cfgFile

	if err := cli.InitConfig(opts); err != nil {
		return err
	}

	log = cli.InitLogger("rowkeep")
	return nil
}

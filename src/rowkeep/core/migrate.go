package core

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bitswalk/rowkeep/src/rowkeep/db/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations and create registered tables",
	Long: `Applies every pending schema migration, then creates the tables of
every registered schema that does not exist yet.`,
	RunE: runMigrate,
}

// migrateStatus is the result of the migrate command
type migrateStatus struct {
	Version int      `json:"version" yaml:"version"`
	Pending int      `json:"pending" yaml:"pending"`
	Tables  []string `json:"tables" yaml:"tables"`
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	runner := migrations.NewRunner(rt.database.DB(), rt.database.Dialect())
	current, err := runner.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	pending, err := runner.PendingCount(ctx)
	if err != nil {
		return err
	}

	status := migrateStatus{Version: current, Pending: pending, Tables: rt.registry.Tables()}
	return render(cmd, status, func() ([]string, [][]string) {
		return []string{"VERSION", "PENDING", "TABLES"}, [][]string{{
			strconv.Itoa(status.Version),
			strconv.Itoa(status.Pending),
			strconv.Itoa(len(status.Tables)),
		}}
	})
}

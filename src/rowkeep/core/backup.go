package core

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bitswalk/rowkeep/src/common/cli"
	"github.com/bitswalk/rowkeep/src/rowkeep/backup"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage database snapshots",
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Snapshot the database to backup storage",
	RunE:  runBackupCreate,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	RunE:  runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <key>",
	Short: "Download and verify a snapshot into a database file",
	Long: `Downloads a snapshot, verifies its digest and writes the database file
to --dest, which defaults to the database persist path. The restored file is
loaded the next time rowkeep starts.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupRestore,
}

var backupPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest snapshots",
	RunE:  runBackupPrune,
}

func init() {
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupPruneCmd)

	backupRestoreCmd.Flags().String("dest", "", "Destination database file (default: database.path)")
	backupPruneCmd.Flags().Int("keep", 7, "Number of snapshots to keep")
}

func renderBackups(cmd *cobra.Command, data any, backups []backup.Backup) error {
	return render(cmd, data, func() ([]string, [][]string) {
		rows := make([][]string, 0, len(backups))
		for _, b := range backups {
			rows = append(rows, []string{
				b.Key,
				strconv.FormatInt(b.Size, 10),
				b.CreatedAt.UTC().Format(time.RFC3339),
				b.Digest,
			})
		}
		return []string{"KEY", "SIZE", "CREATED", "DIGEST"}, rows
	})
}

// openBackups opens a backup manager without opening the database
func openBackups() (*backup.Manager, error) {
	return newBackupManager(nil)
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	m, err := newBackupManager(rt.database)
	if err != nil {
		return err
	}
	checkStorage(m.Store())

	b, err := m.Create(ctx)
	if err != nil {
		return err
	}
	return renderBackups(cmd, b, []backup.Backup{*b})
}

func runBackupList(cmd *cobra.Command, args []string) error {
	m, err := openBackups()
	if err != nil {
		return err
	}

	backups, err := m.List(cmd.Context())
	if err != nil {
		return err
	}
	if backups == nil {
		backups = []backup.Backup{}
	}
	return renderBackups(cmd, backups, backups)
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	dest, _ := cmd.Flags().GetString("dest")
	if dest == "" {
		dest = cli.GetExpandedString("database.path")
	}

	m, err := openBackups()
	if err != nil {
		return err
	}

	b, err := m.Restore(cmd.Context(), args[0], dest)
	if err != nil {
		return err
	}
	log.Info("Snapshot restored", "key", b.Key, "dest", dest)
	return renderBackups(cmd, b, []backup.Backup{*b})
}

func runBackupPrune(cmd *cobra.Command, args []string) error {
	keep, _ := cmd.Flags().GetInt("keep")

	m, err := openBackups()
	if err != nil {
		return err
	}

	deleted, err := m.Prune(cmd.Context(), keep)
	if err != nil {
		return err
	}
	return renderAffected(cmd, int64(len(deleted)))
}

package core

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bitswalk/rowkeep/src/common/errors"
	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Read and write table rows",
}

var rowsListCmd = &cobra.Command{
	Use:   "list <table>",
	Short: "List rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runRowsList,
}

var rowsGetCmd = &cobra.Command{
	Use:   "get <table> <id>",
	Short: "Get a row by key",
	Args:  cobra.ExactArgs(2),
	RunE:  runRowsGet,
}

var rowsInsertCmd = &cobra.Command{
	Use:   "insert <table> <json|->",
	Short: "Insert a row object or an array of rows",
	Long: `Inserts a single JSON row object and prints it with its assigned key,
or inserts a JSON array of rows in one statement and prints the count.
Pass - to read the JSON from stdin.`,
	Args: cobra.ExactArgs(2),
	RunE: runRowsInsert,
}

var rowsUpdateCmd = &cobra.Command{
	Use:   "update <table> <id> <json|->",
	Short: "Rewrite the mutable columns of a row",
	Args:  cobra.ExactArgs(3),
	RunE:  runRowsUpdate,
}

var rowsDeleteCmd = &cobra.Command{
	Use:   "delete <table> [id]",
	Short: "Delete a row by key, or every row matching --where",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runRowsDelete,
}

var rowsExportCmd = &cobra.Command{
	Use:   "export <table>",
	Short: "Print rows as SQL INSERT statements",
	Args:  cobra.ExactArgs(1),
	RunE:  runRowsExport,
}

func init() {
	rowsCmd.AddCommand(rowsListCmd)
	rowsCmd.AddCommand(rowsGetCmd)
	rowsCmd.AddCommand(rowsInsertCmd)
	rowsCmd.AddCommand(rowsUpdateCmd)
	rowsCmd.AddCommand(rowsDeleteCmd)
	rowsCmd.AddCommand(rowsExportCmd)

	for _, c := range []*cobra.Command{rowsListCmd, rowsDeleteCmd, rowsExportCmd} {
		c.Flags().StringArray("where", nil, "Column equality filter as column=value (repeatable)")
		c.Flags().String("predicate", "", "Raw SQL predicate appended to WHERE verbatim")
	}
}

// rowsFilter builds the filter from the --where and --predicate flags
func rowsFilter(cmd *cobra.Command) (repository.Filter, error) {
	wheres, _ := cmd.Flags().GetStringArray("where")
	predicate, _ := cmd.Flags().GetString("predicate")

	filters := make([]repository.Filter, 0, len(wheres)+1)
	for _, w := range wheres {
		column, value, ok := strings.Cut(w, "=")
		if !ok {
			return repository.Filter{}, errors.ErrInvalidFilter.WithMessagef("expected column=value, got %q", w)
		}
		filters = append(filters, repository.Eq(strings.TrimSpace(column), value))
	}
	filters = append(filters, repository.Trusted(predicate))

	return repository.And(filters...), nil
}

func parseRowID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, errors.ErrValidationFailed.WithMessagef("invalid row id %q", arg)
	}
	return id, nil
}

// readRows decodes the JSON argument, or stdin when it is "-"
func readRows(cmd *cobra.Command, arg string) ([]repository.Row, bool, error) {
	var r io.Reader = strings.NewReader(arg)
	if arg == "-" {
		r = cmd.InOrStdin()
	}
	return repository.DecodeRows(r)
}

// renderRows prints rows with the schema column order in table mode
func renderRows(cmd *cobra.Command, repo *repository.Repository[repository.Row], data any, rows []repository.Row) error {
	return render(cmd, data, func() ([]string, [][]string) {
		columns := repo.Columns()
		headers := make([]string, len(columns))
		for i, c := range columns {
			headers[i] = strings.ToUpper(c)
		}

		out := make([][]string, 0, len(rows))
		for _, row := range rows {
			line := make([]string, len(columns))
			for i, c := range columns {
				line[i] = fmt.Sprint(row[c])
			}
			out = append(out, line)
		}
		return headers, out
	})
}

// affected is printed by commands that report a row count
type affected struct {
	Affected int64 `json:"affected" yaml:"affected"`
}

func renderAffected(cmd *cobra.Command, n int64) error {
	return render(cmd, affected{Affected: n}, func() ([]string, [][]string) {
		return []string{"AFFECTED"}, [][]string{{strconv.FormatInt(n, 10)}}
	})
}

func runRowsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := rowsFilter(cmd)
	if err != nil {
		return err
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	repo, err := rt.rows(args[0])
	if err != nil {
		return err
	}

	rows, err := repo.Where(ctx, f)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []repository.Row{}
	}

	return renderRows(cmd, repo, rows, rows)
}

func runRowsGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseRowID(args[1])
	if err != nil {
		return err
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	repo, err := rt.rows(args[0])
	if err != nil {
		return err
	}

	row, err := repo.Find(ctx, id)
	if err != nil {
		return err
	}

	return renderRows(cmd, repo, row, []repository.Row{row})
}

func runRowsInsert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rows, batch, err := readRows(cmd, args[1])
	if err != nil {
		return err
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	repo, err := rt.rows(args[0])
	if err != nil {
		return err
	}

	if batch {
		n, err := repo.InsertMany(ctx, rows)
		if err != nil {
			return err
		}
		return renderAffected(cmd, n)
	}

	row, err := repo.Insert(ctx, rows[0])
	if err != nil {
		return err
	}
	return renderRows(cmd, repo, row, []repository.Row{row})
}

func runRowsUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseRowID(args[1])
	if err != nil {
		return err
	}
	rows, batch, err := readRows(cmd, args[2])
	if err != nil {
		return err
	}
	if batch {
		return errors.ErrInvalidJSON.WithMessage("expected a single row object")
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	repo, err := rt.rows(args[0])
	if err != nil {
		return err
	}

	row := rows[0]
	row[repo.PrimaryKey()] = id

	n, err := repo.Update(ctx, row)
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrRecordNotFound.WithMessagef("no %s row with %s %d", repo.Table(), repo.PrimaryKey(), id)
	}
	return renderAffected(cmd, n)
}

func runRowsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var id int64
	if len(args) == 2 {
		var err error
		if id, err = parseRowID(args[1]); err != nil {
			return err
		}
	}
	f, err := rowsFilter(cmd)
	if err != nil {
		return err
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	repo, err := rt.rows(args[0])
	if err != nil {
		return err
	}

	var n int64
	if len(args) == 2 {
		n, err = repo.Delete(ctx, id)
	} else {
		n, err = repo.DeleteWhere(ctx, f)
	}
	if err != nil {
		return err
	}
	return renderAffected(cmd, n)
}

func runRowsExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := rowsFilter(cmd)
	if err != nil {
		return err
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	repo, err := rt.rows(args[0])
	if err != nil {
		return err
	}

	n, err := repo.Export(ctx, cmd.OutOrStdout(), f)
	if err != nil {
		return err
	}
	log.Debug("Exported rows", "table", repo.Table(), "rows", n)
	return nil
}

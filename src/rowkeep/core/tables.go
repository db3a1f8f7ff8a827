package core

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bitswalk/rowkeep/src/rowkeep/repository"
	"github.com/bitswalk/rowkeep/src/rowkeep/schema"
)

var tablesCmd = &cobra.Command{
	Use:   "tables [name]",
	Short: "List registered tables or describe one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runTables,
}

// tableSummary is one line of the tables listing
type tableSummary struct {
	Table      string `json:"table" yaml:"table"`
	PrimaryKey string `json:"primary_key" yaml:"primary_key"`
	Columns    int    `json:"columns" yaml:"columns"`
	Rows       int64  `json:"rows" yaml:"rows"`
}

func runTables(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if len(args) == 1 {
		s, err := rt.registry.Lookup(args[0])
		if err != nil {
			return err
		}
		return describeTable(cmd, s)
	}

	summaries := make([]tableSummary, 0, rt.registry.Len())
	for _, s := range rt.registry.Schemas() {
		repo, err := rt.rows(s.Table)
		if err != nil {
			return err
		}
		n, err := repo.Count(ctx, repository.Filter{})
		if err != nil {
			return err
		}
		summaries = append(summaries, tableSummary{
			Table:      s.Table,
			PrimaryKey: s.PrimaryKey,
			Columns:    len(s.Columns),
			Rows:       n,
		})
	}

	return render(cmd, summaries, func() ([]string, [][]string) {
		rows := make([][]string, 0, len(summaries))
		for _, t := range summaries {
			rows = append(rows, []string{t.Table, t.PrimaryKey, strconv.Itoa(t.Columns), strconv.FormatInt(t.Rows, 10)})
		}
		return []string{"TABLE", "KEY", "COLUMNS", "ROWS"}, rows
	})
}

func describeTable(cmd *cobra.Command, s schema.Schema) error {
	return render(cmd, s, func() ([]string, [][]string) {
		rows := make([][]string, 0, len(s.Columns))
		for _, c := range s.Columns {
			flags := ""
			switch {
			case c.Name == s.PrimaryKey:
				flags = "key"
			case c.Immutable:
				flags = "immutable"
			}
			rows = append(rows, []string{c.Name, string(c.Type), flags})
		}
		return []string{"COLUMN", "TYPE", "FLAGS"}, rows
	})
}

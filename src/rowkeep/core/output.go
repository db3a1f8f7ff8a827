package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	formatAuto  = "auto"
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// resolveFormat returns the effective output format for w. Auto prints tables
// to terminals and JSON everywhere else.
func resolveFormat(w io.Writer) (string, error) {
	switch outputFormat {
	case formatTable, formatJSON, formatYAML:
		return outputFormat, nil
	case formatAuto, "":
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return formatTable, nil
		}
		return formatJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q", outputFormat)
}

// printJSON writes data as indented JSON
func printJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printYAML writes data as YAML
func printYAML(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return err
	}
	return enc.Close()
}

// printTable writes tabular data
func printTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)

	for _, row := range rows {
		for i, col := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, col)
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}

// render prints data in the selected format. table builds the tabular view
// lazily, only when it is needed.
func render(cmd *cobra.Command, data any, table func() ([]string, [][]string)) error {
	w := cmd.OutOrStdout()
	format, err := resolveFormat(w)
	if err != nil {
		return err
	}

	switch format {
	case formatJSON:
		return printJSON(w, data)
	case formatYAML:
		return printYAML(w, data)
	}

	headers, rows := table()
	return printTable(w, headers, rows)
}

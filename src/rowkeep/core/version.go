package core

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	return render(cmd, VersionInfo.Map(), func() ([]string, [][]string) {
		info := VersionInfo.Map()
		rows := make([][]string, 0, len(info))
		for _, key := range []string{"version", "release_version", "build_date", "git_commit", "go_version"} {
			if v, ok := info[key]; ok {
				rows = append(rows, []string{key, v})
			}
		}
		return []string{"FIELD", "VALUE"}, rows
	})
}

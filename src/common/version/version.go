// Package version holds build information for rowkeep binaries.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Info describes the running build. Release builds set the fields through
// ldflags; other builds fall back to the VCS stamp in the binary.
type Info struct {
	// Version is the full version string, e.g. "v1.2.0-4f9f297"
	Version string

	// ReleaseVersion is the semantic version, e.g. "1.2.0"
	ReleaseVersion string

	// BuildDate is the RFC 3339 build or commit timestamp
	BuildDate string

	// GitCommit is the short commit hash
	GitCommit string
}

const unknown = "unknown"

// New returns an Info populated from the embedded build information
func New() *Info {
	i := &Info{
		Version:        "dev",
		ReleaseVersion: "0.0.0",
		BuildDate:      unknown,
		GitCommit:      unknown,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return i
	}
	i.fromBuildSettings(bi.Settings)
	return i
}

func (i *Info) fromBuildSettings(settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) > 7 {
				i.GitCommit = s.Value[:7]
			} else if s.Value != "" {
				i.GitCommit = s.Value
			}
		case "vcs.time":
			if s.Value != "" {
				i.BuildDate = s.Value
			}
		}
	}
}

// GoVersion returns the Go runtime version
func GoVersion() string {
	return runtime.Version()
}

func (i *Info) String() string {
	return i.Version
}

// Short returns release version and commit
func (i *Info) Short() string {
	return fmt.Sprintf("v%s-%s", i.ReleaseVersion, i.GitCommit)
}

// Full returns a multi-line description for the version command
func (i *Info) Full() string {
	return fmt.Sprintf("%s\n  Release:    v%s\n  Commit:     %s\n  Built:      %s\n  Go:         %s",
		i.Version, i.ReleaseVersion, i.GitCommit, i.BuildDate, GoVersion())
}

// Map returns the fields keyed the way the API reports them
func (i *Info) Map() map[string]string {
	return map[string]string{
		"version":         i.Version,
		"release_version": i.ReleaseVersion,
		"build_date":      i.BuildDate,
		"git_commit":      i.GitCommit,
		"go_version":      GoVersion(),
	}
}

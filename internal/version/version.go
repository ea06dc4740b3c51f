// Package version carries the build identity stamped in via ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the long form used for -version output.
func Info() string {
	return fmt.Sprintf("netglance %s (commit: %s, built: %s, go: %s)",
		Version, GitCommit, BuildDate, runtime.Version())
}

// Short returns just the version string (e.g. "0.1.0" or "dev").
func Short() string {
	return Version
}

// Map returns the fields the health endpoint reports.
func Map() map[string]string {
	return map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"go_version": runtime.Version(),
	}
}

// FILE: src/internal/version/version.go
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is set at compile time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info is the build metadata reported by the viewer's status endpoint
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// String returns a formatted version string
func String() string {
	return fmt.Sprintf("devconsole %s (commit: %s, built: %s)", Version, GitCommit, BuildTime)
}

// Short returns just the version tag
func Short() string {
	return Version
}

// Get returns the build metadata
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// Package version exposes the build information stamped into the simstream
// binary, surfaced via the --version flag and the startup log line.
package version

import "runtime"

// Injected via -ldflags at build time; "dev" builds keep the zero values.
var (
	// Version is the release tag
	Version = "dev"
	// Commit is the git commit SHA
	Commit = "unknown"
	// BuildTime is the ISO 8601 build timestamp
	BuildTime = "unknown"
)

// Info holds the build identity of this launcher binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the current build information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

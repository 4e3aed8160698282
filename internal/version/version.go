// Package version provides version information for the adaptergen CLI.
//
// Overview:
//   - Responsibility: CLI version metadata (version, commit, build time)
//   - Key Types: Version variables and formatting functions
//   - Concurrency Model: Values are set at link time and never change, safe for concurrent use
//   - Error Semantics: No errors
//   - Performance Notes: Plain string formatting
//
// Usage:
//
//	go build -ldflags "-X github.com/basuapi/adaptergen/internal/version.Version=v1.2.0" ./cmd/adaptergen
//	version.GetVersionString()
package version

import (
	"fmt"
	"runtime"
)

// Version is the CLI version. Release builds set it with -ldflags.
var Version = "v0.1.0-dev"

// Commit is the git commit hash. Release builds set it with -ldflags.
var Commit = "unknown"

// BuildTime is the build timestamp in RFC3339 format. Release builds set it with -ldflags.
var BuildTime = "unknown"

// GetVersionString returns the one-line version string:
// adaptergen version v0.1.0 (commit 4a9b2c1, built 2026-01-02T12:10:00Z)
func GetVersionString() string {
	return fmt.Sprintf("adaptergen version %s (commit %s, built %s)", Version, Commit, BuildTime)
}

// GetFullVersionInfo returns the version string followed by the Go runtime.
//
// Returns:
//   - string: Multi-line version information
func GetFullVersionInfo() string {
	return fmt.Sprintf("%s\ngo version %s (%s/%s)",
		GetVersionString(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

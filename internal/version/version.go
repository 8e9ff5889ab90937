// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the version with its commit, as logged at startup and
// reported on the status endpoint.
func String() string {
	return Version + " (" + Commit + ")"
}

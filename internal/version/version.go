// Package version carries build identity, injected via -ldflags.
package version

var (
	// Version is the release version, e.g. "1.2.0".
	Version = "dev"
	// Commit is the short git commit hash.
	Commit = ""
)

// String returns the full version string.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}

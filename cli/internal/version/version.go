// Package version holds the CLI version string. Default is "dev"; release
// builds set it via: go build -ldflags "-X smartsquash/cli/internal/version.Version=v1.0.0"
// Commit is the short git commit hash for dev builds; set by the Makefile.
package version

// Version is the smartsquash CLI version. Set at build time for releases.
var Version = "dev"

// Commit is the short git commit hash (e.g. 7 chars). Set at build time via ldflags.
var Commit = ""

// String returns the version string for display (e.g. --version).
// For dev builds with Commit set, returns "dev (abc1234)"; otherwise Version.
func String() string {
	if Version != "dev" || Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}

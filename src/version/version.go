// Package version carries the build identity of the hbdeploy binary.
package version

import "fmt"

// Set with -ldflags "-X github.com/sofmeright/hbdeploy/src/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String is the long form printed by the version command.
func String() string {
	return fmt.Sprintf("hbdeploy %s (%s, %s)", Version, Commit, BuildDate)
}

// UserAgent identifies hbdeploy to the Honeybadger API.
func UserAgent() string {
	return "hbdeploy/" + Version
}

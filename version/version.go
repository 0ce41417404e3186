package version

import "github.com/blang/semver/v4"

// Version is the current version of the tool, overridden at build time via
// -ldflags "-X github.com/bitrise-io/bitrise-plugins-ai-work-report/version.Version=x.y.z"
var Version = "1.0.0"

// Semver returns Version parsed as a semantic version.
func Semver() (semver.Version, error) {
	return semver.ParseTolerant(Version)
}

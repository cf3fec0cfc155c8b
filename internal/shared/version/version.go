// Package version reports build information stamped at link time.
package version

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Set with -ldflags "-X github.com/formcraft-io/formcraft/internal/shared/version.Version=v1.2.3".
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

type Info struct {
	Version    string `json:"version"`
	Commit     string `json:"commit,omitempty"`
	BuildTime  string `json:"build_time,omitempty"`
	Prerelease bool   `json:"prerelease"`
}

// Get returns the build information. Non-semver versions such as "dev"
// count as prerelease.
func Get() Info {
	v := Normalize(Version)
	return Info{
		Version:    Version,
		Commit:     Commit,
		BuildTime:  BuildTime,
		Prerelease: !semver.IsValid(v) || semver.Prerelease(v) != "",
	}
}

// Normalize ensures the version has the "v" prefix semver expects.
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

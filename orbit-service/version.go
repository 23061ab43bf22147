package orbit_service

import "strings"

var (
	Version   = "v0.0.0"
	GitCommit = ""
	GitDate   = ""
	Meta      = "dev"
)

func DefaultFormatVersion() string {
	return FormatVersion(Version, GitCommit, GitDate, Meta)
}

func FormatVersion(version string, gitCommit string, gitDate string, meta string) string {
	v := version
	if gitCommit != "" {
		if len(gitCommit) >= 8 {
			v += "-" + gitCommit[:8]
		} else {
			v += "-" + gitCommit
		}
	}
	if gitDate != "" {
		v += "-" + gitDate
	}
	if meta != "" {
		v += "-" + meta
	}
	return v
}

// PrefixEnvVar returns the env var names for a flag, prefixed with the service prefix.
// Any additional names are accepted verbatim, so flags can keep honoring unprefixed
// variables that operators already have in their shell.
func PrefixEnvVar(prefix, suffix string, aliases ...string) []string {
	out := []string{prefix + "_" + strings.ToUpper(suffix)}
	return append(out, aliases...)
}

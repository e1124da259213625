// Package version carries build metadata for the sdkpcm CLI.
// The variables can be overridden at build time via -ldflags.
package version

import "github.com/fatih/color"

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Pretty returns Version with its major, minor and patch parts colorized.
// Colors are dropped automatically when color output is disabled.
func Pretty() string {
	major, minor, rest := split(Version)
	return color.New(color.FgYellow, color.Bold).Sprint(major) + "." +
		color.New(color.FgGreen, color.Bold).Sprint(minor) + "." +
		color.New(color.FgBlue, color.Bold).Sprint(rest)
}

func split(v string) (major, minor, rest string) {
	parts := [3]string{}
	idx := 0
	for i := 0; i < len(v); i++ {
		if v[i] == '.' && idx < 2 {
			idx++
			continue
		}
		parts[idx] += string(v[i])
	}
	return parts[0], parts[1], parts[2]
}

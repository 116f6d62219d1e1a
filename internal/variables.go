package internal

import (
	"fmt"
	"runtime"
	"strings"
)

// String reported for builds made outside the release pipeline.
const defaultLocalBuild = "(local)"

var (
	version   = "" // Version number (e.g., "1.2.3")
	stage     = "" // Development stage or git branch (e.g., "staging", "main")
	gitCommit = "" // Git commit hash (e.g., "a1b2c3d4")

	rawQuiet   = "false" // Whether to enable quiet mode
	rawDebug   = "false" // Whether to enable debug mode
	rawVerbose = "false" // Whether to enable verbose logging
)

// Returns the version string reported by the CLI and the status endpoint.
//
// Release builds set version, stage, and gitCommit via linker flags and
// report "<version> (<stage>, <commit>) <os>/<arch>", with any "v" prefix
// stripped from the version. A build missing any of the three is a local
// build and reports "(local)".
func VersionString() string {
	v := strings.TrimSpace(version)
	s := strings.TrimSpace(stage)
	c := strings.TrimSpace(gitCommit)

	if v == "" || s == "" || c == "" {
		return defaultLocalBuild
	}

	v = strings.TrimPrefix(strings.ToLower(v), "v")

	return fmt.Sprintf("%s (%s, %s) %s/%s",
		v, strings.ToLower(s), c, runtime.GOOS, runtime.GOARCH)
}

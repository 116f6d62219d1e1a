package internal

import (
	"strconv"
	"sync/atomic"
)

// Name used for the binary, the default containerd namespace, and
// path segments under the XDG base directories.
const Name = "kilnd"

var (
	quietMode   atomic.Bool // Indicates whether quiet mode is enabled.
	debugMode   atomic.Bool // Indicates whether debug logging is enabled.
	verboseMode atomic.Bool // Indicates whether verbose logging is enabled.
)

// Seeds the mode flags from linker-flag defaults.
//
// rawQuiet, rawDebug, and rawVerbose may be set via ldflags at build time
// and act as defaults until the CLI flags are parsed. Unset or malformed
// values leave the modes disabled.
func init() {
	seedMode(&quietMode, rawQuiet)
	seedMode(&debugMode, rawDebug)
	seedMode(&verboseMode, rawVerbose)
}

// Stores a linker-flag boolean into a mode flag, ignoring malformed values.
func seedMode(mode *atomic.Bool, raw string) {
	if v, err := strconv.ParseBool(raw); err == nil {
		mode.Store(v)
	}
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) {
	quietMode.Store(enabled)
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return quietMode.Load()
}

// Enables or disables debug mode.
func SetDebug(enabled bool) {
	debugMode.Store(enabled)
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return debugMode.Load()
}

// Enables or disables verbose logging.
func SetVerbose(enabled bool) {
	verboseMode.Store(enabled)
}

// Returns true if verbose logging is enabled.
func IsVerbose() bool {
	return verboseMode.Load()
}

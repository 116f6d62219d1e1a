package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	daemonName = "kilnd"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files (PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/kilnd or /run/user/<uid>/kilnd
//	macOS:   ~/Library/Caches/kilnd/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, daemonName)
	}
	return filepath.Join(xdg.CacheHome, daemonName, "run")
}

// Default path to the PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/kilnd/kilnd.pid
//	macOS:   ~/Library/Caches/kilnd/run/kilnd.pid
func PIDFile() string {
	return filepath.Join(Runtime(), daemonName+".pid")
}

// Default directory for staged archive uploads.
//
// Uploads are transient: each archive is staged for the duration of one
// build call and removed afterwards, so they live under the cache base
// rather than the data base.
//
//	Linux:   ~/.cache/kilnd/uploads
//	macOS:   ~/Library/Caches/kilnd/uploads
func Uploads() string {
	return filepath.Join(xdg.CacheHome, daemonName, "uploads")
}

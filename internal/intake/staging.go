package intake

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"

	"github.com/kilnworks/kilnd/internal/paths"
)

// Stages uploaded archives on local disk for the duration of one build.
type Staging struct {
	baseDir string // Absolute directory all staged files live under.
}

// Creates a staging area rooted at baseDir, creating the directory if it
// does not exist. An empty baseDir falls back to the default uploads
// directory.
func NewStaging(baseDir string) (*Staging, error) {
	if baseDir == "" {
		baseDir = paths.Uploads()
	}

	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve staging directory: %w", err)
	}

	if err := os.MkdirAll(abs, paths.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}

	return &Staging{baseDir: abs}, nil
}

// Returns the absolute directory staged files live under.
func (s *Staging) Dir() string {
	return s.baseDir
}

// Stages one uploaded archive and returns the staged path.
//
// Nothing of the upload's name survives except the requirement that it
// ends in ".zip"; the staged file gets a generated name, so request data
// never reaches the filesystem layout. The destination must resolve
// inside the staging directory. Empty uploads are rejected and leave no
// file behind. Content is digested as it streams to disk.
func (s *Staging) Stage(r io.Reader, filename string) (string, error) {
	if err := checkName(filename); err != nil {
		return "", err
	}

	dest := filepath.Join(s.baseDir, uuid.NewString()+".zip")
	if err := ensureWithin(s.baseDir, dest); err != nil {
		return "", err
	}

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, paths.DefaultFileMode)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}

	digester := digest.SHA256.Digester()
	size, err := io.Copy(io.MultiWriter(f, digester.Hash()), r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("write staged file: %w", err)
	}

	if size == 0 {
		os.Remove(dest)
		return "", ErrEmptyArchive
	}

	slog.Info("archive staged",
		"path", dest,
		"size", size,
		"digest", digester.Digest(),
	)

	return dest, nil
}

// Removes a staged file.
//
// Failures are logged rather than returned: removal runs after the build
// outcome is already decided and must not change it.
func (s *Staging) Remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove staged archive", "path", path, "error", err)
	}
}

// Validates the uploaded file name.
func checkName(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return ErrMissingName
	}
	if !strings.EqualFold(filepath.Ext(filename), ".zip") {
		return fmt.Errorf("%w: %q", ErrNotZip, filename)
	}
	return nil
}

// Verifies that path resolves inside base.
//
// Staged names are generated today; the check pins the containment
// invariant independently of how the name is produced.
func ensureWithin(base, path string) error {
	resolved := filepath.Clean(path)
	if !strings.HasPrefix(resolved, base+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrEscapesBase, path)
	}
	return nil
}

package runtime

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
)

// Creates a directory inside the container, including parents.
func (c *Container) MkdirAll(ctx context.Context, path string) error {
	return c.mustExec(ctx, "mkdir", nil, "mkdir", "-p", path)
}

// Copies a tar stream into the container's filesystem.
//
// The contents of r are extracted into destDir by piping them to "tar xf - -C
// destDir" inside the container.
func (c *Container) CopyTo(ctx context.Context, r io.Reader, destDir string) error {
	return c.mustExec(ctx, "tar extract", r, "tar", "xf", "-", "-C", destDir)
}

// Copies a single file from the host into the container.
//
// The file is wrapped in a tar stream on the fly and extracted into dest's
// parent directory, which is created if missing. The archive entry carries
// dest's base name, so the host file name never appears inside the
// container.
func (c *Container) CopyFile(ctx context.Context, src, dest string) error {
	if _, err := os.Stat(src); err != nil {
		return wrap("stat source file", err)
	}

	destDir := filepath.Dir(dest)
	if err := c.MkdirAll(ctx, destDir); err != nil {
		return err
	}

	pr, pw := io.Pipe()

	go func() {
		tw := tar.NewWriter(pw)
		err := writeFileTar(tw, src, filepath.Base(dest))
		tw.Close()
		pw.CloseWithError(err)
	}()

	// Closing the read end unblocks the tar writer if the extraction exec
	// failed before draining the stream.
	defer pr.Close()

	return c.CopyTo(ctx, pr, destDir)
}

// Writes a single file to a tar writer under the given archive name.
func writeFileTar(tw *tar.Writer, hostPath, name string) error {
	info, err := os.Stat(hostPath)
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	f, err := os.Open(hostPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}

// Runs a filesystem plumbing command inside the container, treating any
// non-zero exit as an error described by desc.
//
// Only stderr is captured; plumbing commands are run for their filesystem
// effect, and their stderr is the useful part when they fail.
func (c *Container) mustExec(ctx context.Context, desc string, stdin io.Reader, args ...string) error {
	pspec, err := c.processSpec(ctx, args, nil, "")
	if err != nil {
		return wrap("build process spec", err)
	}

	var stderr bytes.Buffer
	exitCode, err := c.runProcess(ctx, pspec, stdin, nil, &stderr)
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return wrapf("%s failed with exit code %d (%s)", desc, exitCode, stderr.String())
	}
	return nil
}

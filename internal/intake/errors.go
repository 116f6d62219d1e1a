package intake

import "errors"

var (
	ErrMissingName  = errors.New("missing archive file name")
	ErrNotZip       = errors.New("archive must be a .zip file")
	ErrEmptyArchive = errors.New("empty archive upload")
	ErrEscapesBase  = errors.New("path escapes staging directory")
)

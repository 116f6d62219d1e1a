package build

import "errors"

var ErrUnsupportedType = errors.New("unsupported project type")

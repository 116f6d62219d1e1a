package runtime

import (
	"errors"
	"fmt"
)

var ErrRuntime = errors.New("container runtime")

// Wraps err under [ErrRuntime] with operation context.
//
// Both the sentinel and the cause remain matchable via [errors.Is].
func wrap(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrRuntime, op, err)
}

// Formats a new error under [ErrRuntime].
func wrapf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrRuntime}, args...)...)
}

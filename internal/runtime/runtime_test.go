package runtime

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultPlatform(t *testing.T) {
	p := defaultPlatform()
	if !strings.HasPrefix(p, "linux/") {
		t.Fatalf("defaultPlatform = %q, want linux/<arch>", p)
	}
	parts := strings.Split(p, "/")
	if len(parts) != 2 || parts[1] == "" {
		t.Fatalf("defaultPlatform = %q, want linux/<arch>", p)
	}
}

func TestWrapPreservesSentinelAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := wrap("pull image", cause)

	if !errors.Is(err, ErrRuntime) {
		t.Fatalf("wrapped error does not match ErrRuntime: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("wrapped error does not match cause: %v", err)
	}
	if !strings.Contains(err.Error(), "pull image") {
		t.Fatalf("wrapped error missing operation context: %v", err)
	}
}

func TestWrapfMatchesSentinel(t *testing.T) {
	err := wrapf("tar extract failed with exit code %d (%s)", 2, "short read")

	if !errors.Is(err, ErrRuntime) {
		t.Fatalf("formatted error does not match ErrRuntime: %v", err)
	}
	if !strings.Contains(err.Error(), "exit code 2") {
		t.Fatalf("formatted error missing detail: %v", err)
	}
}

package build

import (
	"fmt"
	"strings"

	"github.com/kilnworks/kilnd/internal/runtime"
)

const (
	statusSuccess = "--- BUILD STATUS: SUCCESS ---"
	statusFailed  = "--- BUILD STATUS: FAILED ---"
)

// Accumulates the textual outcome of one build invocation.
//
// The text mirrors execution order: the header first, then either the
// captured logs with a final status marker or the error that stopped the
// build partway.
type outcomeBuilder struct {
	sb strings.Builder
}

// Appends the selected image and the command line about to run.
func (o *outcomeBuilder) header(p Profile) {
	fmt.Fprintf(&o.sb, "Using build image: %s\n", p.Image)
	fmt.Fprintf(&o.sb, "Attempting to run commands:\n%s\n\n", p.Script())
}

// Appends the captured execution result and the final status marker.
//
// A non-zero exit code is a completed build that failed, not an engine
// error; the logs are reported either way.
func (o *outcomeBuilder) result(res *runtime.ExecResult) {
	fmt.Fprintf(&o.sb, "--- BUILD LOGS ---\nExit Code: %d\n\n", res.ExitCode)
	fmt.Fprintf(&o.sb, "--- STDOUT ---\n%s\n\n", res.Stdout)
	fmt.Fprintf(&o.sb, "--- STDERR ---\n%s\n", res.Stderr)

	if res.ExitCode == 0 {
		o.sb.WriteString("\n" + statusSuccess)
	} else {
		o.sb.WriteString("\n" + statusFailed)
	}
}

// Appends the error that prevented the build from completing.
func (o *outcomeBuilder) execError(err error) {
	fmt.Fprintf(&o.sb, "\nExecution Error: %v", err)
}

// Returns the accumulated outcome text.
func (o *outcomeBuilder) String() string {
	return o.sb.String()
}

// Renders the outcome for a project type outside the allow-list.
//
// No environment is created for such requests; the message is the entire
// outcome.
func unsupportedTypeOutcome(projectType string) string {
	return fmt.Sprintf("Error: Unsupported project type: %s. Allowed types: %s",
		projectType, strings.Join(Types(), ", "))
}

package build

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kilnworks/kilnd/internal/runtime"
)

// Shell used to run profile command sequences inside the environment.
const buildShell = "/bin/sh"

// Starts isolated build environments.
//
// Implemented by the containerd-backed provisioner; tests substitute
// doubles. A Provision error must leave no environment behind.
type Provisioner interface {
	Provision(ctx context.Context, image, id string) (Environment, error)
}

// An isolated environment one build runs in.
//
// Destroy releases everything the environment holds. It must tolerate
// being called with a context whose parent was cancelled and must not
// panic; the engine calls it exactly once per provisioned environment.
type Environment interface {
	CopyFile(ctx context.Context, src, dest string) error
	Exec(ctx context.Context, shell, command string, env []string, workdir string) (*runtime.ExecResult, error)
	Destroy(ctx context.Context)
}

// Runs synchronous builds in ephemeral environments.
type Engine struct {
	provisioner Provisioner
}

// Creates an engine that provisions environments with p.
func NewEngine(p Provisioner) *Engine {
	return &Engine{provisioner: p}
}

// Builds the staged archive according to the declared project type and
// returns the textual outcome.
//
// The outcome always tells the whole story: the selected image and command
// line, then either the captured logs with a SUCCESS or FAILED status, or
// the error that stopped the build. Errors never escape this boundary, and
// the provisioned environment is destroyed on every path. Each call gets
// its own environment; concurrent calls do not interfere.
func (e *Engine) ExecuteBuild(ctx context.Context, archive, projectType string) (outcome string) {
	profile, err := SelectProfile(projectType)
	if err != nil {
		slog.Info("build rejected", "type", projectType, "error", err)
		return unsupportedTypeOutcome(projectType)
	}

	var out outcomeBuilder
	out.header(profile)

	// A panic below must still yield an outcome. Deferred destruction in
	// run fires during the unwind, before this recover.
	defer func() {
		if r := recover(); r != nil {
			slog.Error("build panicked", "type", profile.Type, "panic", r)
			out.execError(fmt.Errorf("panic: %v", r))
			outcome = out.String()
		}
	}()

	e.run(ctx, profile, archive, &out)

	return out.String()
}

// Provisions the environment, transfers the archive, and executes the
// profile's command sequence, recording each stage in out.
func (e *Engine) run(ctx context.Context, profile Profile, archive string, out *outcomeBuilder) {
	id := containerID()

	slog.Info("starting build",
		"type", profile.Type,
		"image", profile.Image,
		"container", id,
		"archive", archive,
	)

	env, err := e.provisioner.Provision(ctx, profile.Image, id)
	if err != nil {
		out.execError(err)
		return
	}

	// The environment must not outlive the call even when the request
	// context is already cancelled.
	defer env.Destroy(context.WithoutCancel(ctx))

	if err := env.CopyFile(ctx, archive, archivePath); err != nil {
		out.execError(err)
		return
	}

	result, err := env.Exec(ctx, buildShell, profile.Script(), profile.Env, "")
	if err != nil {
		out.execError(err)
		return
	}

	slog.Info("build finished",
		"type", profile.Type,
		"container", id,
		"exit", result.ExitCode,
	)

	out.result(result)
}

// Returns a unique container ID for one build invocation.
func containerID() string {
	return "kiln-" + uuid.NewString()
}

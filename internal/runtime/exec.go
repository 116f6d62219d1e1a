package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/pkg/cio"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// Output of a command execution inside a container.
type ExecResult struct {
	ExitCode int    // Exit code of the process.
	Stdout   string // Captured standard output.
	Stderr   string // Captured standard error.
}

// Runs a build command inside the container.
//
// The command is handed to the shell as one argument ("shell -c command"),
// so a whole command sequence joined with && executes as a single process.
// env entries override the image environment for this execution only, and
// a non-empty workdir overrides the working directory. Both output streams
// are captured in full. A non-zero exit code is a valid result, not an
// error.
func (c *Container) Exec(ctx context.Context, shell, command string, env []string, workdir string) (*ExecResult, error) {
	pspec, err := c.processSpec(ctx, []string{shell, "-c", command}, env, workdir)
	if err != nil {
		return nil, wrap("build process spec", err)
	}

	var stdout, stderr bytes.Buffer
	exitCode, err := c.runProcess(ctx, pspec, nil, &stdout, &stderr)
	if err != nil {
		return nil, err
	}

	return &ExecResult{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// Derives the OCI process spec for one exec from the container's own spec.
//
// The container spec carries the image's environment, user, and working
// directory; starting from a copy keeps exec processes consistent with
// what the image would run natively. args replaces the process arguments,
// env entries are merged over the image environment, and workdir replaces
// Cwd when set.
func (c *Container) processSpec(ctx context.Context, args, env []string, workdir string) (*specs.Process, error) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return nil, err
	}

	spec, err := ctr.Spec(ctx)
	if err != nil {
		return nil, err
	}

	pspec := *spec.Process
	pspec.Terminal = false
	pspec.Args = args

	if len(env) > 0 {
		pspec.Env = mergeEnv(pspec.Env, env)
	}
	if workdir != "" {
		pspec.Cwd = workdir
	}

	return &pspec, nil
}

// Merges override entries over a base environment.
//
// Later entries win on duplicate keys and entries without '=' are dropped.
// The result is sorted by key so the process environment is identical from
// build to build.
func mergeEnv(base, overrides []string) []string {
	merged := make(map[string]string, len(base)+len(overrides))
	for _, entry := range base {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}
	for _, entry := range overrides {
		if k, v, ok := strings.Cut(entry, "="); ok {
			merged[k] = v
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(keys))
	for _, k := range keys {
		result = append(result, k+"="+merged[k])
	}
	return result
}

// Runs one process to completion inside the container's task and returns
// its exit code.
//
// The process attaches to the running task as an additional exec while the
// task itself keeps idling. Wait is established before Start so a fast
// exit cannot be missed, and the process is deleted before the exit status
// is read. A nil stdout or stderr discards that stream.
//
// When stdin is non-nil, the shim's end of the stdin pipe is closed once
// the reader is exhausted. The shim holds both ends of the stdin FIFO open
// on its own, so without the explicit close the process would never see
// EOF and a stream-consuming command like tar would block forever.
func (c *Container) runProcess(ctx context.Context, pspec *specs.Process, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if err != nil {
		return 0, wrap("load container", err)
	}

	task, err := ctr.Task(ctx, nil)
	if err != nil {
		return 0, wrap("load task", err)
	}

	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	var stdinEOF <-chan struct{}
	if stdin != nil {
		sr := &eofSignalReader{r: stdin, eof: make(chan struct{})}
		stdin = sr
		stdinEOF = sr.eof
	}

	process, err := task.Exec(ctx, nextExecID(), pspec, cio.NewCreator(
		cio.WithStreams(stdin, stdout, stderr),
	))
	if err != nil {
		return 0, wrap("exec process", err)
	}

	statusC, err := process.Wait(ctx)
	if err != nil {
		process.Delete(ctx)
		return 0, wrap("wait for process", err)
	}

	if err := process.Start(ctx); err != nil {
		process.Delete(ctx)
		return 0, wrap("start process", err)
	}

	if stdinEOF != nil {
		go func() {
			<-stdinEOF
			process.CloseIO(ctx, containerd.WithStdinCloser)
		}()
	}

	exitStatus := <-statusC
	process.Delete(ctx)

	code, _, err := exitStatus.Result()
	if err != nil {
		return 0, wrap("read exit status", err)
	}

	return int(code), nil
}

// Sequence counter for naming exec processes within the task.
var execSeq uint64

// Returns a unique exec process identifier.
func nextExecID() string {
	return fmt.Sprintf("exec-%d", atomic.AddUint64(&execSeq, 1))
}

// Wraps a stdin stream and signals when it has been fully consumed.
//
// The eof channel is closed exactly once on the first [io.EOF], so the
// goroutine closing the process's stdin can wait on it safely. Non-EOF
// errors pass through without closing the channel.
type eofSignalReader struct {
	r    io.Reader
	once sync.Once
	eof  chan struct{}
}

func (s *eofSignalReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err == io.EOF {
		s.once.Do(func() { close(s.eof) })
	}
	return n, err
}

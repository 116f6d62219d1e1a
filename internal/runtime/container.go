package runtime

import (
	"context"
	"log/slog"
	"syscall"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/containerd/v2/pkg/cio"
	"github.com/containerd/containerd/v2/pkg/oci"
	"github.com/containerd/errdefs"
	specs "github.com/opencontainers/runtime-spec/specs-go"
)

// A running build container backed by containerd.
type Container struct {
	client   *containerd.Client // Containerd client for managing the container.
	id       string             // Unique identifier for the container, used as the containerd container ID.
	platform string             // OCI platform (e.g., "linux/amd64").
}

// Creates the containerd container and starts its idle task.
//
// The init process is "sleep infinity"; build commands attach to the task
// as additional execs. The host network namespace and resolv.conf are
// shared so package managers inside the container can reach their
// registries without any network setup. A failed start cleans up after
// itself: the container and its snapshot are deleted before the error is
// returned.
func (c *Container) start(ctx context.Context, image containerd.Image) error {
	ctr, err := c.client.NewContainer(ctx, c.id,
		containerd.WithImage(image),
		containerd.WithSnapshotter(snapshotter),
		containerd.WithNewSnapshot(c.id, image),
		containerd.WithRuntime(ociRuntime, nil),
		containerd.WithNewSpec(
			oci.WithDefaultSpecForPlatform(c.platform),
			oci.WithImageConfig(image),
			oci.WithHostNamespace(specs.NetworkNamespace),
			oci.WithHostResolvconf,
			oci.WithProcessArgs("sleep", "infinity"),
		),
	)
	if err != nil {
		return wrap("create container", err)
	}

	task, err := ctr.NewTask(ctx, cio.NullIO)
	if err != nil {
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return wrap("create task", err)
	}

	if err := task.Start(ctx); err != nil {
		task.Delete(ctx)
		ctr.Delete(ctx, containerd.WithSnapshotCleanup)
		return wrap("start task", err)
	}

	return nil
}

// Removes the container and its resources.
//
// The task is killed and the container is deleted from containerd along
// with its snapshot. Teardown runs on every exit path of a build and must
// never mask the build's own outcome, so failures are logged rather than
// returned. Destroying an already-removed container is a no-op. After
// destruction the handle is invalid.
func (c *Container) Destroy(ctx context.Context) {
	ctr, err := c.client.LoadContainer(ctx, c.id)
	if errdefs.IsNotFound(err) {
		return
	}
	if err != nil {
		slog.Warn("failed to load container for destruction", "id", c.id, "error", err)
		return
	}

	if task, err := ctr.Task(ctx, nil); err == nil {
		task.Kill(ctx, syscall.SIGKILL)
		if _, err := task.Delete(ctx, containerd.WithProcessKill); err != nil && !errdefs.IsNotFound(err) {
			slog.Warn("failed to delete task during destruction", "id", c.id, "error", err)
		}
	}

	if err := ctr.Delete(ctx, containerd.WithSnapshotCleanup); err != nil && !errdefs.IsNotFound(err) {
		slog.Warn("failed to delete container during destruction", "id", c.id, "error", err)
	}

	slog.Debug("container destroyed", "id", c.id)
}

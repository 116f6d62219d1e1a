package runtime

import (
	"context"
	"log/slog"
	goruntime "runtime"

	containerd "github.com/containerd/containerd/v2/client"
	"github.com/containerd/platforms"
)

const (

	// Snapshotter used for image unpacking and container filesystems.
	// fuse-overlayfs provides overlay semantics without requiring root
	// privileges (no mount(2)), allowing kilnd to run as a regular user.
	snapshotter = "fuse-overlayfs"

	// OCI runtime shim for running containers.
	ociRuntime = "io.containerd.runc.v2"
)

// Manages the containerd client and provides image and container operations.
type Runtime struct {
	client *containerd.Client // Containerd client for managing containers and images.
}

// Creates a runtime connected to the containerd socket at the given address.
//
// The namespace scopes all containerd operations to a single tenant. The
// runtime must be closed when no longer needed.
func New(address, namespace string) (*Runtime, error) {
	client, err := containerd.New(address, containerd.WithDefaultNamespace(namespace))
	if err != nil {
		return nil, wrap("connect to containerd", err)
	}
	return &Runtime{client: client}, nil
}

// Closes the containerd client connection.
func (rt *Runtime) Close() error {
	return rt.client.Close()
}

// Pulls an image from its registry and unpacks it for the host platform.
//
// The reference must be fully qualified, including the registry host (e.g.
// "docker.io/library/maven:3.8-openjdk-17"). Pulling is idempotent: content
// already present in the store is not fetched again. The layers are unpacked
// into the snapshotter so containers can be created without a separate
// unpack step.
func (rt *Runtime) PullImage(ctx context.Context, ref string) (containerd.Image, error) {
	p, err := platforms.Parse(defaultPlatform())
	if err != nil {
		return nil, wrap("resolve platform", err)
	}

	image, err := rt.client.Pull(ctx, ref,
		containerd.WithPlatformMatcher(platforms.Only(p)),
		containerd.WithPullUnpack,
		containerd.WithPullSnapshotter(snapshotter),
	)
	if err != nil {
		return nil, wrap("pull image", err)
	}

	slog.Debug("image pulled", "ref", ref, "digest", image.Target().Digest)

	return image, nil
}

// Pulls an image and starts a container from it.
//
// The container is created with a fresh snapshot and left idling so that
// subsequent Exec calls have a running task to attach to. The id must be
// unique among live containers in the namespace; callers generate a fresh
// one per build. A failed start leaves no partial state behind.
func (rt *Runtime) StartContainer(ctx context.Context, ref, id string) (*Container, error) {
	image, err := rt.PullImage(ctx, ref)
	if err != nil {
		return nil, err
	}

	c := &Container{
		client:   rt.client,
		id:       id,
		platform: defaultPlatform(),
	}
	if err := c.start(ctx, image); err != nil {
		return nil, err
	}

	slog.Debug("container started", "id", id, "image", ref)

	return c, nil
}

// Returns the default OCI platform for the host architecture.
func defaultPlatform() string {
	return "linux/" + goruntime.GOARCH
}

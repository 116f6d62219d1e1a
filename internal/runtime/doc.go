// Package runtime manages containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides image pulling
// and container creation. Images are pulled from their registry for the
// host platform and unpacked into the snapshotter, and containers are
// created from them with fresh overlay snapshots.
//
// Each [Container] wraps a running containerd task that idles on "sleep
// infinity". Commands are executed against the task as additional exec
// processes with full stdout, stderr, and exit code capture, and files
// are copied in as tar streams extracted by the container's own tar.
// When the container is no longer needed it must be destroyed to release
// its snapshot and task resources; destruction never fails the caller.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "kilnd")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	ctr, err := rt.StartContainer(ctx, "docker.io/library/maven:3.8-openjdk-17", "kiln-build-1")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	if err := ctr.CopyFile(ctx, "/tmp/upload.zip", "/app/code.zip"); err != nil {
//	    return err
//	}
//
//	result, err := ctr.Exec(ctx, "/bin/sh", "cd /app && unzip code.zip", nil, "")
//	if err != nil {
//	    return err
//	}
package runtime

package build

import (
	"context"

	"github.com/kilnworks/kilnd/internal/runtime"
)

// Adapts the containerd runtime to the [Provisioner] interface.
type containerdProvisioner struct {
	rt *runtime.Runtime
}

// Creates a provisioner that starts containers on rt.
func NewContainerdProvisioner(rt *runtime.Runtime) Provisioner {
	return containerdProvisioner{rt: rt}
}

// Starts a container from the image and returns it as a build environment.
//
// StartContainer cleans up after itself on failure, so a non-nil error
// means no container was left behind.
func (p containerdProvisioner) Provision(ctx context.Context, image, id string) (Environment, error) {
	ctr, err := p.rt.StartContainer(ctx, image, id)
	if err != nil {
		return nil, err
	}
	return ctr, nil
}

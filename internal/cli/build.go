package cli

import (
	"context"
	"fmt"

	"github.com/kilnworks/kilnd/internal/build"
	"github.com/kilnworks/kilnd/internal/runtime"
	"github.com/kilnworks/kilnd/internal/server"
)

// Represents the 'kilnd build' command.
type BuildCmd struct {
	Type                string `short:"t" required:"" help:"Project type (MAVEN, NPM, or PIP)."`
	ContainerdAddress   string `help:"Containerd socket address." placeholder:"PATH"`
	ContainerdNamespace string `help:"Containerd namespace for images and containers." placeholder:"NS"`
	Archive             string `arg:"" type:"existingfile" help:"Path to the project .zip archive."`
}

// Executes the build command.
//
// Runs a single build against the local containerd and prints the outcome,
// without going through the daemon. The outcome text is the same as the
// daemon's build response, including for unsupported project types.
func (c *BuildCmd) Run(ctx context.Context) error {
	address := c.ContainerdAddress
	if address == "" {
		address = server.DefaultContainerdAddress
	}

	namespace := c.ContainerdNamespace
	if namespace == "" {
		namespace = server.DefaultContainerdNamespace
	}

	rt, err := runtime.New(address, namespace)
	if err != nil {
		return err
	}
	defer rt.Close()

	engine := build.NewEngine(build.NewContainerdProvisioner(rt))
	fmt.Println(engine.ExecuteBuild(ctx, c.Archive, c.Type))

	return nil
}

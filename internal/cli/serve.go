package cli

import (
	"context"
	"log/slog"

	"github.com/kilnworks/kilnd/internal/server"
)

// Represents the 'kilnd serve' command.
type ServeCmd struct {
	Listen              string `short:"l" help:"Listen address for the HTTP API." placeholder:"ADDR"`
	ContainerdAddress   string `help:"Containerd socket address." placeholder:"PATH"`
	ContainerdNamespace string `help:"Containerd namespace for images and containers." placeholder:"NS"`
	UploadDir           string `help:"Directory for staged archive uploads." placeholder:"DIR"`
	MaxUploadBytes      int64  `help:"Cap on the size of one upload request." placeholder:"BYTES"`
}

// Executes the serve command.
//
// Starts the HTTP server and blocks until the context is cancelled (e.g. via
// SIGINT or SIGTERM). Unset flags fall back to the server package defaults.
func (c *ServeCmd) Run(ctx context.Context) error {
	srv, err := server.New(server.Config{
		Listen:              c.Listen,
		ContainerdAddress:   c.ContainerdAddress,
		ContainerdNamespace: c.ContainerdNamespace,
		UploadDir:           c.UploadDir,
		MaxUploadBytes:      c.MaxUploadBytes,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("kilnd is running")

	<-ctx.Done()

	slog.Info("shutting down")
	return srv.Stop()
}

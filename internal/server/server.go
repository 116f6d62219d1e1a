package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/kilnworks/kilnd/internal/build"
	"github.com/kilnworks/kilnd/internal/intake"
	"github.com/kilnworks/kilnd/internal/paths"
	"github.com/kilnworks/kilnd/internal/runtime"
)

const (

	// Default listen address for the HTTP API.
	DefaultListen = ":8344"

	// Default containerd socket address.
	DefaultContainerdAddress = "/run/containerd/containerd.sock"

	// Default containerd namespace for images and containers.
	DefaultContainerdNamespace = "kilnd"

	// Default cap on the size of one upload request.
	DefaultMaxUploadBytes = 256 << 20

	// How long Stop waits for in-flight builds to finish. Builds still
	// running after this are abandoned along with their responses.
	shutdownTimeout = 2 * time.Minute
)

// Runs builds for the handlers. Satisfied by [build.Engine].
type buildRunner interface {
	ExecuteBuild(ctx context.Context, archive, projectType string) string
}

// Holds server configuration. Empty fields use the package defaults.
type Config struct {
	Listen              string // Listen address for the HTTP API.
	ContainerdAddress   string // Containerd socket address.
	ContainerdNamespace string // Containerd namespace for images and containers.
	UploadDir           string // Directory for staged archive uploads.
	MaxUploadBytes      int64  // Cap on the size of one upload request.
}

// Serves the synchronous build API over HTTP.
type Server struct {
	listen    string           // Listen address.
	runtime   *runtime.Runtime // Containerd-backed container runtime.
	engine    buildRunner      // Build engine invoked by the build handler.
	staging   *intake.Staging  // Staging area for uploaded archives.
	maxUpload int64            // Request body size cap.

	httpServer *http.Server // HTTP server, created by Start.
	pidFile    string       // PID file written by Start, removed by Stop.
	startedAt  time.Time    // Timestamp when the server started.
	builds     int          // Total number of build requests processed.
	done       chan struct{} // Channel to signal server shutdown.
	mu         sync.Mutex    // Mutex to protect shared state.
}

// Creates a new server instance.
//
// The containerd connection is established immediately; the listener is
// not opened until [Server.Start] is called.
func New(cfg Config) (*Server, error) {
	listen := cfg.Listen
	if listen == "" {
		listen = DefaultListen
	}

	containerdAddress := cfg.ContainerdAddress
	if containerdAddress == "" {
		containerdAddress = DefaultContainerdAddress
	}

	containerdNamespace := cfg.ContainerdNamespace
	if containerdNamespace == "" {
		containerdNamespace = DefaultContainerdNamespace
	}

	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	rt, err := runtime.New(containerdAddress, containerdNamespace)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServer, err)
	}

	staging, err := intake.NewStaging(cfg.UploadDir)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("%w: %w", ErrServer, err)
	}

	return &Server{
		listen:    listen,
		runtime:   rt,
		engine:    build.NewEngine(build.NewContainerdProvisioner(rt)),
		staging:   staging,
		maxUpload: maxUpload,
		done:      make(chan struct{}),
	}, nil
}

// Opens the listener and begins serving requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("%w: listen on %s: %w", ErrServer, s.listen, err)
	}

	// No read or write timeouts: build responses are held open for the
	// full duration of a synchronous build.
	s.httpServer = &http.Server{
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.startedAt = time.Now()

	if err := writePID(); err != nil {
		slog.Warn("failed to write PID file", "error", err)
	} else {
		s.pidFile = paths.PIDFile()
	}

	slog.Info("server listening", "addr", listener.Addr().String())

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			slog.Error("serve error", "error", err)
		}
	}()

	return nil
}

// Shuts down the server and cleans up resources.
//
// In-flight builds get shutdownTimeout to finish before their connections
// are dropped.
func (s *Server) Stop() error {
	close(s.done)

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			slog.Warn("shutdown incomplete, dropping remaining connections", "error", err)
			s.httpServer.Close()
		}
	}

	if s.runtime != nil {
		s.runtime.Close()
	}

	if s.pidFile != "" {
		os.Remove(s.pidFile)
	}

	return nil
}

// Blocks until the server stops.
func (s *Server) Wait() {
	<-s.done
}

// Builds the route table.
func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/build", s.handleBuild)
	mux.HandleFunc("GET /v1/status", s.handleStatus)
	return mux
}

// Writes the daemon PID to the PID file so service tooling can detect
// whether the daemon is already running and send it signals.
func writePID() error {
	if err := os.MkdirAll(paths.Runtime(), paths.DefaultDirMode); err != nil {
		return err
	}
	return os.WriteFile(paths.PIDFile(), []byte(fmt.Sprintf("%d", os.Getpid())), paths.DefaultFileMode)
}

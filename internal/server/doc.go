// Package server implements the kilnd daemon's HTTP API.
//
// The daemon exposes two endpoints. POST /v1/build accepts a multipart
// form with a project archive and a declared project type, runs the build
// synchronously in an ephemeral container, and returns the textual
// outcome; the connection stays open for the duration of the build.
// GET /v1/status reports daemon health, version, and the number of
// builds processed.
//
// Uploads are staged through the intake package and removed when their
// build finishes. Builds are delegated to the build package, which in
// turn uses the runtime package for container operations against
// containerd.
//
// Example usage:
//
//	srv, err := server.New(server.Config{
//	    Listen:              ":8344",
//	    ContainerdAddress:   "/run/containerd/containerd.sock",
//	    ContainerdNamespace: "kilnd",
//	})
//	if err != nil {
//	    return err
//	}
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kilnworks/kilnd/internal"
	"github.com/kilnworks/kilnd/internal/build"
	"github.com/kilnworks/kilnd/internal/intake"
)

// Memory ceiling for parsed multipart forms; larger uploads spill to
// temporary files managed by net/http.
const multipartMemory = 32 << 20

// Handles a synchronous build request.
//
// Expects a multipart form with a "file" part carrying the project archive
// and a "projectType" field naming one of the allowed types. Requests that
// fail validation are rejected before any build resources are touched.
// The response is always text/plain: the build outcome with status 200
// whether the build succeeded or failed, because a completed build that
// failed is still a completed request.
func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Error: upload exceeds the %d byte limit.", maxBytesErr.Limit))
			return
		}
		respondError(w, http.StatusBadRequest, "Error: request is not a valid multipart form.")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Error: build archive file is required.")
		return
	}
	defer file.Close()

	if header.Size == 0 {
		respondError(w, http.StatusBadRequest, "Error: build archive is empty.")
		return
	}

	projectType := r.FormValue("projectType")
	if strings.TrimSpace(projectType) == "" {
		respondError(w, http.StatusBadRequest, "Error: projectType is required.")
		return
	}
	if !build.Supported(projectType) {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("Error: Unsupported project type: %s. Allowed types: %s",
				projectType, strings.Join(build.Types(), ", ")))
		return
	}

	staged, err := s.staging.Stage(file, header.Filename)
	if err != nil {
		if errors.Is(err, intake.ErrNotZip) || errors.Is(err, intake.ErrMissingName) || errors.Is(err, intake.ErrEmptyArchive) {
			respondError(w, http.StatusBadRequest, "Error: "+err.Error())
			return
		}
		slog.Error("staging failed", "filename", header.Filename, "error", err)
		respondError(w, http.StatusInternalServerError, "Error: could not stage the uploaded archive.")
		return
	}
	defer s.staging.Remove(staged)

	slog.Info("build request received",
		"type", projectType,
		"filename", header.Filename,
		"size", header.Size,
	)

	outcome := s.engine.ExecuteBuild(r.Context(), staged, projectType)

	s.mu.Lock()
	s.builds++
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, outcome)
}

// Reported by the status endpoint.
type statusResponse struct {
	Running bool   `json:"running"`
	Version string `json:"version"`
	Pid     int    `json:"pid"`
	Uptime  string `json:"uptime"`
	Builds  int    `json:"builds"`
}

// Handles a status request.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	builds := s.builds
	s.mu.Unlock()

	uptime := time.Since(s.startedAt).Truncate(time.Second)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statusResponse{
		Running: true,
		Version: internal.VersionString(),
		Pid:     os.Getpid(),
		Uptime:  uptime.String(),
		Builds:  builds,
	})
}

// Writes a plain-text error response.
func respondError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, msg)
}

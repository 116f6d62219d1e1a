package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kilnworks/kilnd/internal/intake"
)

// Records build invocations and returns a canned outcome.
type stubRunner struct {
	outcome  string
	archives []string
	types    []string
}

func (s *stubRunner) ExecuteBuild(ctx context.Context, archive, projectType string) string {
	s.archives = append(s.archives, archive)
	s.types = append(s.types, projectType)
	return s.outcome
}

func newTestServer(t *testing.T, runner *stubRunner) *Server {
	t.Helper()

	staging, err := intake.NewStaging(t.TempDir())
	if err != nil {
		t.Fatalf("NewStaging() error: %v", err)
	}

	return &Server{
		listen:    DefaultListen,
		engine:    runner,
		staging:   staging,
		maxUpload: DefaultMaxUploadBytes,
		startedAt: time.Now(),
		done:      make(chan struct{}),
	}
}

// Builds a multipart build request. An empty filename omits the file
// part, an empty projectType omits the field.
func buildRequest(t *testing.T, filename, content, projectType string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile() error: %v", err)
		}
		if _, err := io.WriteString(part, content); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}
	if projectType != "" {
		if err := mw.WriteField("projectType", projectType); err != nil {
			t.Fatalf("WriteField() error: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/build", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleBuildSuccess(t *testing.T) {
	runner := &stubRunner{outcome: "--- BUILD STATUS: SUCCESS ---"}
	s := newTestServer(t, runner)

	rec := httptest.NewRecorder()
	s.handler().ServeHTTP(rec, buildRequest(t, "app.zip", "archive bytes", "MAVEN"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("Content-Type = %q, want text/plain", ct)
	}
	if rec.Body.String() != runner.outcome {
		t.Fatalf("body = %q, want %q", rec.Body.String(), runner.outcome)
	}

	if len(runner.archives) != 1 {
		t.Fatalf("runner called %d times, want 1", len(runner.archives))
	}
	if runner.types[0] != "MAVEN" {
		t.Fatalf("projectType = %q, want MAVEN", runner.types[0])
	}

	staged := runner.archives[0]
	if !strings.HasPrefix(staged, s.staging.Dir()+string(filepath.Separator)) {
		t.Fatalf("staged path %q not under staging dir %q", staged, s.staging.Dir())
	}
	if filepath.Ext(staged) != ".zip" {
		t.Fatalf("staged path %q does not end in .zip", staged)
	}
}

func TestHandleBuildRemovesStagedArchive(t *testing.T) {
	runner := &stubRunner{outcome: "done"}
	s := newTestServer(t, runner)

	rec := httptest.NewRecorder()
	s.handler().ServeHTTP(rec, buildRequest(t, "app.zip", "archive bytes", "NPM"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	entries, err := os.ReadDir(s.staging.Dir())
	if err != nil {
		t.Fatalf("ReadDir() error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("staging dir has %d leftover entries, want 0", len(entries))
	}
}

func TestHandleBuildValidation(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		projType string
		wantBody string
	}{
		{
			name:     "missing file part",
			projType: "MAVEN",
			wantBody: "Error: build archive file is required.",
		},
		{
			name:     "empty file",
			filename: "app.zip",
			projType: "MAVEN",
			wantBody: "Error: build archive is empty.",
		},
		{
			name:     "missing project type",
			filename: "app.zip",
			content:  "archive bytes",
			wantBody: "Error: projectType is required.",
		},
		{
			name:     "unsupported project type",
			filename: "app.zip",
			content:  "archive bytes",
			projType: "GRADLE",
			wantBody: "Error: Unsupported project type: GRADLE. Allowed types: MAVEN, NPM, PIP",
		},
		{
			name:     "non-zip filename",
			filename: "app.tar.gz",
			content:  "archive bytes",
			projType: "PIP",
			wantBody: `Error: archive must be a .zip file: "app.tar.gz"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{outcome: "should not run"}
			s := newTestServer(t, runner)

			rec := httptest.NewRecorder()
			s.handler().ServeHTTP(rec, buildRequest(t, tt.filename, tt.content, tt.projType))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if rec.Body.String() != tt.wantBody {
				t.Fatalf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if len(runner.archives) != 0 {
				t.Fatalf("runner called %d times, want 0", len(runner.archives))
			}
		})
	}
}

func TestHandleBuildNotMultipart(t *testing.T) {
	s := newTestServer(t, &stubRunner{})

	req := httptest.NewRequest(http.MethodPost, "/v1/build", strings.NewReader("not a form"))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if rec.Body.String() != "Error: request is not a valid multipart form." {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestHandleBuildTooLarge(t *testing.T) {
	runner := &stubRunner{}
	s := newTestServer(t, runner)
	s.maxUpload = 64

	rec := httptest.NewRecorder()
	s.handler().ServeHTTP(rec, buildRequest(t, "app.zip", strings.Repeat("x", 4096), "MAVEN"))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusRequestEntityTooLarge)
	}
	if !strings.Contains(rec.Body.String(), "byte limit") {
		t.Fatalf("body = %q, want mention of the byte limit", rec.Body.String())
	}
	if len(runner.archives) != 0 {
		t.Fatalf("runner called %d times, want 0", len(runner.archives))
	}
}

func TestHandleStatus(t *testing.T) {
	runner := &stubRunner{outcome: "done"}
	s := newTestServer(t, runner)

	rec := httptest.NewRecorder()
	s.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", ct)
	}

	var got statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding status response: %v", err)
	}
	if !got.Running {
		t.Fatal("running = false, want true")
	}
	if got.Pid != os.Getpid() {
		t.Fatalf("pid = %d, want %d", got.Pid, os.Getpid())
	}
	if got.Version == "" {
		t.Fatal("version is empty")
	}
	if got.Builds != 0 {
		t.Fatalf("builds = %d, want 0", got.Builds)
	}

	// The counter tracks completed build requests.
	s.handler().ServeHTTP(httptest.NewRecorder(), buildRequest(t, "app.zip", "archive bytes", "MAVEN"))

	rec = httptest.NewRecorder()
	s.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding status response: %v", err)
	}
	if got.Builds != 1 {
		t.Fatalf("builds = %d, want 1", got.Builds)
	}
}

func TestStopUnblocksWait(t *testing.T) {
	s := newTestServer(t, &stubRunner{})

	waited := make(chan struct{})
	go func() {
		s.Wait()
		close(waited)
	}()

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}

	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Stop")
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &stubRunner{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/build"},
		{http.MethodPost, "/v1/status"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
			}
		})
	}
}

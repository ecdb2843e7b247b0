package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/roach88/bucketbook/internal/ingest"
)

const (
	maxSubmissionBytes = 64 << 20
	maxUploadMemory    = 32 << 20
)

// SubmissionRequest is the body of POST /gerar-excel/.
type SubmissionRequest struct {
	Rows [][]any `json:"dados"`
}

// Response is the JSON body of every endpoint.
type Response struct {
	Status       ingest.Status    `json:"status"`
	Message      string           `json:"message"`
	SubmissionID string           `json:"submission_id,omitempty"`
	Files        []string         `json:"files,omitempty"`
	Failures     []ingest.Failure `json:"failures,omitempty"`
}

// Processor runs one submission.
type Processor interface {
	Process(ctx context.Context, rows [][]any) (*ingest.Result, error)
}

// Options configures a Server.
type Options struct {
	UploadDir string
	Metrics   *Metrics
	Logger    *slog.Logger
}

// Server routes HTTP requests to the merge engine.
type Server struct {
	proc      Processor
	uploadDir string
	metrics   *Metrics
	log       *slog.Logger
}

// New returns a Server. Nil Metrics or Logger select defaults.
func New(proc Processor, opts Options) *Server {
	s := &Server{
		proc:      proc,
		uploadDir: opts.UploadDir,
		metrics:   opts.Metrics,
		log:       opts.Logger,
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Handler returns the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /gerar-excel/", s.handleSubmission)
	mux.HandleFunc("POST /gerar-excel", s.handleSubmission)
	mux.HandleFunc("POST /upload/", s.handleUpload)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	return cors.AllowAll().Handler(mux)
}

func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req SubmissionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmissionBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Status:  ingest.StatusError,
			Message: fmt.Sprintf("malformed payload: %v", err),
		})
		return
	}

	res, err := s.proc.Process(r.Context(), req.Rows)
	status := ingest.Classify(res, err)
	s.metrics.observe(status, res, time.Since(start).Seconds())

	resp := Response{Status: status, Message: message(status, res, err)}
	if res != nil {
		resp.SubmissionID = res.SubmissionID
		resp.Files = res.Files
		resp.Failures = res.Failures
	}
	writeJSON(w, httpStatus(status), resp)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Status: ingest.StatusError, Message: fmt.Sprintf("malformed upload: %v", err)})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Status: ingest.StatusError, Message: fmt.Sprintf("missing file field: %v", err)})
		return
	}
	defer file.Close()

	name, err := uploadName(header.Filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Status: ingest.StatusError, Message: err.Error()})
		return
	}

	if err := s.saveUpload(name, file); err != nil {
		s.log.Error("upload failed", "file", name, "error", err)
		writeJSON(w, http.StatusInternalServerError, Response{Status: ingest.StatusError, Message: err.Error()})
		return
	}
	s.metrics.uploads.Inc()
	s.log.Info("upload stored", "file", name)
	writeJSON(w, http.StatusOK, Response{
		Status:  ingest.StatusOK,
		Message: fmt.Sprintf("file %s saved", name),
		Files:   []string{name},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Response{Status: ingest.StatusOK, Message: "healthy"})
}

func (s *Server) saveUpload(name string, src io.Reader) error {
	dst, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("save upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	return nil
}

// uploadName keeps only the base name of a client-supplied file name.
func uploadName(filename string) (string, error) {
	name := filepath.Base(filepath.Clean("/" + filepath.ToSlash(filename)))
	if name == "/" || name == "." || name == ".." || name == "" {
		return "", fmt.Errorf("invalid file name %q", filename)
	}
	return name, nil
}

func message(status ingest.Status, res *ingest.Result, err error) string {
	switch status {
	case ingest.StatusOK:
		return fmt.Sprintf("Success! %d files processed.", len(res.Files))
	case ingest.StatusEmpty:
		return "empty payload: no rows submitted"
	case ingest.StatusPartial:
		return fmt.Sprintf("%d of %d buckets stored: %v", len(res.Files), res.Buckets, err)
	default:
		return err.Error()
	}
}

func httpStatus(status ingest.Status) int {
	switch status {
	case ingest.StatusOK:
		return http.StatusOK
	case ingest.StatusEmpty:
		return http.StatusBadRequest
	case ingest.StatusPartial:
		return http.StatusMultiStatus
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response", "error", err)
	}
}

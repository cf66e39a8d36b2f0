// Package devserver is a local stand-in for the segmentation service. It
// serves the same wire contract so the CLI can be exercised offline; header
// discovery is real, analysis returns a fixed placeholder segmentation.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"time"

	"github.com/KaramelBytes/custinsights-cli/internal/logging"
	"github.com/KaramelBytes/custinsights-cli/internal/segment"
	"github.com/KaramelBytes/custinsights-cli/internal/sheet"
	"github.com/hashicorp/go-hclog"
)

const maxUploadBytes = 32 << 20

// Error texts returned in the "error" field.
const (
	MsgNoFilePart    = "No file part"
	MsgNoSelected    = "No selected file"
	MsgUnsupported   = "Unsupported file type"
	MsgInvalidConfig = "Invalid analysis config"
)

// PlaceholderPersona is the single persona returned by /analyze.
var PlaceholderPersona = segment.PersonaSummary{
	ClusterID:   0,
	Persona:     "Test Persona",
	Description: "This is a test to check the connection.",
}

// Config contains configuration options for the dev server.
type Config struct {
	Address string
	Logger  hclog.Logger
}

// Server serves the segmentation wire contract on a local address.
type Server struct {
	address string
	log     hclog.Logger
	server  *http.Server
}

func New(cfg Config) *Server {
	s := &Server{address: cfg.Address, log: logging.OrNull(cfg.Logger).Named("devserver")}
	s.server = &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler; exposed for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/get-headers", s.handleHeaders)
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/", s.handleRoot)
	return s.withCORS(mux)
}

// Start listens on the configured address and serves until ctx is cancelled.
// ready, if non-nil, receives the bound address once listening.
func (s *Server) Start(ctx context.Context, ready chan<- string) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.address, err)
	}
	s.log.Info("listening", "addr", ln.Addr().String())
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("shutdown error", "error", err)
		if err := s.server.Close(); err != nil {
			s.log.Warn("force close error", "error", err)
		}
	}
	return nil
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		if rid := r.Header.Get("X-Request-Id"); rid != "" {
			w.Header().Set("X-Request-Id", rid)
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request", "method", r.Method, "path", r.URL.Path, "request_id", r.Header.Get("X-Request-Id"), "took", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleRoot accepts both payload shapes on one URL: a form carrying a
// "config" field is an analysis, anything else is header discovery.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, MsgNoFilePart)
		return
	}
	if _, ok := r.MultipartForm.Value["config"]; ok {
		s.analyze(w, r)
		return
	}
	s.headers(w, r)
}

func (s *Server) handleHeaders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, MsgNoFilePart)
		return
	}
	s.headers(w, r)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, MsgInvalidConfig)
		return
	}
	s.analyze(w, r)
}

func (s *Server) headers(w http.ResponseWriter, r *http.Request) {
	name, data, status, msg := readUpload(r)
	if msg != "" {
		s.writeJSONError(w, status, msg)
		return
	}
	if !sheet.Supported(name) {
		s.writeJSONError(w, http.StatusBadRequest, MsgUnsupported)
		return
	}
	headers, err := sheet.Headers(name, data)
	if err != nil {
		s.log.Info("header read failed", "file", name, "error", err)
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"headers": headers})
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var cfg segment.AnalysisConfig
	if err := json.Unmarshal([]byte(r.FormValue("config")), &cfg); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, MsgInvalidConfig)
		return
	}
	if err := cfg.Validate(); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !cfg.UseDefault {
		name, data, status, msg := readUpload(r)
		if msg != "" {
			s.writeJSONError(w, status, msg)
			return
		}
		if !sheet.Supported(name) {
			s.writeJSONError(w, http.StatusBadRequest, MsgUnsupported)
			return
		}
		headers, err := sheet.Headers(name, data)
		if err != nil {
			s.writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if missing := missingColumn(cfg.Mappings, headers); missing != "" {
			s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Column '%s' not found in file", missing))
			return
		}
	}
	s.log.Info("returning placeholder segmentation", "use_default", cfg.UseDefault, "clusters", cfg.ClusterCount)
	s.writeJSON(w, http.StatusOK, segment.Result{
		PlotData:    segment.PlotData{Data: []segment.SegmentedPoint{}},
		PersonaData: []segment.PersonaSummary{PlaceholderPersona},
	})
}

// readUpload returns the "file" part. On failure msg is the error text and
// status the HTTP status to send.
func readUpload(r *http.Request) (name string, data []byte, status int, msg string) {
	if r.MultipartForm == nil || len(r.MultipartForm.File["file"]) == 0 {
		return "", nil, http.StatusBadRequest, MsgNoFilePart
	}
	fh := r.MultipartForm.File["file"][0]
	if fh.Filename == "" {
		return "", nil, http.StatusBadRequest, MsgNoSelected
	}
	data, err := readPart(fh)
	if err != nil {
		return "", nil, http.StatusInternalServerError, err.Error()
	}
	return fh.Filename, data, 0, ""
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func missingColumn(m segment.FieldMapping, headers []string) string {
	have := make(map[string]bool, len(headers))
	for _, h := range headers {
		have[h] = true
	}
	for _, f := range segment.RequiredFields {
		if col := m[f.Key]; !have[col] {
			return col
		}
	}
	return ""
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write response", "error", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/dwml-forecast/internal/domain"
	"github.com/couchcryptid/dwml-forecast/internal/pipeline"
	"github.com/couchcryptid/dwml-forecast/internal/report"
)

// MaxDocumentBytes is the largest DWML body POST /reports accepts.
const MaxDocumentBytes = 8 << 20

// Server exposes the report endpoint plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	generator  pipeline.Generator
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /reports, /healthz, /readyz, and /metrics routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, generator pipeline.Generator, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		generator: generator,
		logger:    logger,
	}

	mux.HandleFunc("POST /reports", s.handleReport)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleReport renders the DWML request body. Query parameters format and
// legend override the service defaults.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := pipeline.Request{}

	if v := q.Get("format"); v != "" {
		f, err := report.ParseFormat(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err, "invalid_parameter")
			return
		}
		req.Format = f
	}
	if v := q.Get("legend"); v != "" {
		l, err := report.ParseLegendPosition(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err, "invalid_parameter")
			return
		}
		req.Legend = l
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err, "document_too_large")
			return
		}
		writeError(w, http.StatusBadRequest, err, "unreadable_body")
		return
	}
	req.Document = body

	res, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		kind := domain.ErrorKind(err)
		if domain.IsStructural(err) {
			s.logger.Info("rejected dwml document", "kind", kind, "error", err)
			writeError(w, http.StatusBadRequest, err, kind)
			return
		}
		s.logger.Error("report generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err, kind)
		return
	}

	w.Header().Set("Content-Type", res.Format.ContentType())
	w.Header().Set("X-Base-Time", res.BaseTime.UTC().Format(time.RFC3339))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, res.Body) //nolint:errcheck // client went away
}

func writeError(w http.ResponseWriter, status int, err error, kind string) {
	sharedobs.WriteJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  kind,
	})
}

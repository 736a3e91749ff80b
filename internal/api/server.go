// Package api exposes the document ingestion and question-answering
// pipelines as a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/docuchat/docuchat/internal/qa"
)

const defaultMaxUploadBytes = 32 << 20

// DocumentService is the pipeline surface the API serves.
type DocumentService interface {
	IngestURL(ctx context.Context, rawURL string) (qa.Session, error)
	IngestURLs(ctx context.Context, rawURLs []string) ([]qa.Session, error)
	IngestPDF(ctx context.Context, name string, r io.Reader) (qa.Session, error)
	Answer(ctx context.Context, id, question string) (qa.Answer, error)
	Stats() qa.Stats
}

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger     *slog.Logger
	Service    DocumentService // Required
	RateBurst  int             // Rate limiter burst size per IP (0 = default 60)
	TrustProxy bool            // Trust X-Real-IP/X-Forwarded-For headers
	MaxUpload  int64           // Max PDF upload size in bytes (0 = 32 MiB)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Service == nil {
		return nil, errors.New("document service is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxUpload := cfg.MaxUpload
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}

	dh := &documentsHandler{service: cfg.Service, maxUpload: maxUpload, logger: logger}
	ch := &chatHandler{service: cfg.Service, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/documents/url", dh.ingestURL)
	mux.HandleFunc("POST /api/v1/documents/urls", dh.ingestURLs)
	mux.HandleFunc("POST /api/v1/documents/pdf", dh.ingestPDF)
	mux.HandleFunc("POST /api/v1/chat", ch.send)

	// Rate limiter: per-IP token bucket (1 token/sec refill).
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack (outermost first):
	//   Recovery -> RequestID -> Logging -> RateLimit -> Routes
	// RequestID sits before Logging so request_id is available in
	// log attributes.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes bypass the middleware stack so rate limiting and
	// logging never interfere with orchestrator checks.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health(logger))
	topMux.Handle("GET /ready", readiness(cfg.Service, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

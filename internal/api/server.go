// Package api exposes the ETL, generation and document routes over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/edu-forge/itemforge/internal/corpus"
	"github.com/edu-forge/itemforge/internal/generation"
	"github.com/edu-forge/itemforge/internal/knowledge"
)

const (
	uploadTimeout          = 2 * time.Minute
	defaultGenerateTimeout = 90 * time.Second
	storeTimeout           = 10 * time.Second
)

// ReadyCheck verifies one external dependency for the readiness probe.
type ReadyCheck func(ctx context.Context) error

// Option configures the server.
type Option func(*Server)

// WithReadyChecks registers dependency probes for /readyz.
func WithReadyChecks(checks ...ReadyCheck) Option {
	return func(s *Server) {
		s.ready = append(s.ready, checks...)
	}
}

// WithGenerateTimeout overrides the per-request deadline on the generation
// routes. Non-positive values keep the default.
func WithGenerateTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.generateTimeout = d
		}
	}
}

// Server holds the handlers' dependencies.
type Server struct {
	store           knowledge.Store
	aggregator      *corpus.Aggregator
	generator       *generation.Generator
	ready           []ReadyCheck
	generateTimeout time.Duration
}

// NewServer creates the API server.
func NewServer(store knowledge.Store, aggregator *corpus.Aggregator, generator *generation.Generator, opts ...Option) *Server {
	s := &Server{
		store:           store,
		aggregator:      aggregator,
		generator:       generator,
		generateTimeout: defaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes builds the HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /etl/upload", s.handleUpload)

	mux.HandleFunc("POST /generation/generate", s.handleGenerate)
	mux.HandleFunc("POST /generation/validate", s.handleValidate)
	mux.HandleFunc("POST /generation/similarity-check", s.handleSimilarityCheck)
	mux.HandleFunc("GET /generation/ws", s.handleGenerateWS)

	mux.HandleFunc("GET /documents", s.handleListDocuments)
	mux.HandleFunc("GET /documents/{id}", s.handleGetDocument)
	mux.HandleFunc("GET /documents/duplicates/check", s.handleDuplicatesCheck)
	mux.HandleFunc("DELETE /documents/duplicates/clean", s.handleCleanDuplicates)

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	for _, check := range s.ready {
		if err := check(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

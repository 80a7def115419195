// Package server exposes the HTTP API: paper lifecycle endpoints, health,
// and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/scribe/internal/core/domain"
	"github.com/vietddude/scribe/internal/generation"
	"github.com/vietddude/scribe/internal/infra/genai"
)

// KeyStatus reports the credential pool state. Satisfied by genai.Client.
type KeyStatus interface {
	Status(ctx context.Context) genai.PoolStatus
}

// Server provides the HTTP API.
type Server struct {
	svc    *generation.Service
	keys   KeyStatus
	server *http.Server
}

// New creates an API server.
func New(svc *generation.Service, keys KeyStatus, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		svc:  svc,
		keys: keys,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/papers", s.handleGenerate)
	mux.HandleFunc("GET /v1/papers", s.handleList)
	mux.HandleFunc("GET /v1/papers/{id}", s.handleGet)
	mux.HandleFunc("POST /v1/papers/{id}/compile", s.handleCompile)
	mux.HandleFunc("POST /v1/papers/{id}/publish", s.handlePublish)
	mux.HandleFunc("GET /v1/keys/status", s.handleKeyStatus)

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleKeyStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.keys.Status(r.Context()))
}

type generateRequest struct {
	Topic string `json:"topic"`
	Tier  string `json:"tier"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	draft, err := s.svc.GeneratePaper(r.Context(), req.Topic, domain.ModelTier(req.Tier))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.svc.ListDrafts(r.Context(), 50)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drafts)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	draft, err := s.svc.GetDraft(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	pdf, err := s.svc.Compile(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	record, err := s.svc.Publish(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDraftNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrNoCredentials):
		// Actionable for the operator: configuration, not an outage.
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	slog.Error("Request failed", "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

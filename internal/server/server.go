// Package server exposes the HTTP API: health and stats probes, latest
// articles, newsletter generation, capability dispatch, and subscriptions.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/sota-ai/sotanews/internal/cache"
	"github.com/sota-ai/sotanews/internal/capability"
	"github.com/sota-ai/sotanews/internal/newsletter"
	"github.com/sota-ai/sotanews/internal/store"
)

type Server struct {
	generator    *newsletter.Generator
	capabilities *capability.Server
	articles     *store.Store
	seen         *cache.Cache
	logger       *zap.Logger
	httpServer   *http.Server
}

func New(port string, generator *newsletter.Generator, capabilities *capability.Server,
	articles *store.Store, seen *cache.Cache, logger *zap.Logger) *Server {

	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		generator:    generator,
		capabilities: capabilities,
		articles:     articles,
		seen:         seen,
		logger:       logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /api/articles/latest", s.handleLatestArticles)
	mux.HandleFunc("GET /api/newsletter/today", s.handleTodaysNewsletter)
	mux.HandleFunc("POST /api/newsletter/generate", s.handleGenerateNewsletter)
	mux.HandleFunc("GET /api/mcp/status", s.handleMCPStatus)
	mux.HandleFunc("POST /api/mcp/process", s.handleMCPProcess)
	mux.HandleFunc("POST /api/subscribers", s.handleSubscribe)

	s.httpServer = &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return s
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"services": map[string]string{
			"capability_server": s.capabilities.GetStatus().Status,
			"news_collector":    "active",
		},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{}
	if s.seen != nil {
		payload["cache"] = s.seen.Stats()
	}
	if s.articles != nil {
		counts, err := s.articles.Stats(r.Context())
		if err != nil {
			s.logger.Error("reading store stats", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "stats unavailable")
			return
		}
		payload["store"] = counts
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleLatestArticles(w http.ResponseWriter, r *http.Request) {
	if s.articles == nil {
		writeError(w, http.StatusServiceUnavailable, "article store not configured")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	importance := r.URL.Query().Get("importance")

	articles, err := s.articles.LatestArticles(r.Context(), limit, importance)
	if err != nil {
		s.logger.Error("listing articles", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list articles")
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleTodaysNewsletter(w http.ResponseWriter, r *http.Request) {
	date := time.Now().Format(newsletter.DateFormat)

	if digest, ok := s.generator.GetIfReady(date); ok {
		writeJSON(w, http.StatusOK, digest)
		return
	}

	digest, err := s.generator.Generate(r.Context(), date, false)
	if err != nil {
		s.logger.Error("generating today's newsletter", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "newsletter generation failed")
		return
	}
	writeJSON(w, http.StatusOK, digest)
}

func (s *Server) handleGenerateNewsletter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date  string `json:"date"`
		Force bool   `json:"force_regenerate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	digest, err := s.generator.Generate(r.Context(), req.Date, req.Force)
	if err != nil {
		s.logger.Error("generating newsletter",
			zap.String("date", req.Date), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "newsletter generation failed")
		return
	}
	writeJSON(w, http.StatusOK, digest)
}

func (s *Server) handleMCPStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.capabilities.GetStatus())
}

func (s *Server) handleMCPProcess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
		Tool    string `json:"tool"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Tool == "" {
		req.Tool = string(capability.CapAnalyze)
	}

	result := s.capabilities.Process(r.Context(), capability.Capability(req.Tool), req.Content)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if s.articles == nil {
		writeError(w, http.StatusServiceUnavailable, "subscriber store not configured")
		return
	}

	var req struct {
		Email     string   `json:"email"`
		Frequency string   `json:"frequency"`
		Topics    []string `json:"topics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	sub, err := s.articles.AddSubscriber(r.Context(), req.Email, req.Frequency, req.Topics)
	if errors.Is(err, store.ErrDuplicateSubscriber) {
		writeError(w, http.StatusConflict, "already subscribed")
		return
	}
	if err != nil {
		s.logger.Error("adding subscriber", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "subscription failed")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

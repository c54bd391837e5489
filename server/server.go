// Package server exposes the feedback rating API: submit article
// ratings, inspect the accumulated analysis and fetch filter-update
// recommendations.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/intelscope/intelscope/pkg/domain"
	"github.com/intelscope/intelscope/pkg/feedback"
)

// FeedbackStore persists rating entries
type FeedbackStore interface {
	Load() ([]domain.FeedbackEntry, error)
	Append(entry domain.FeedbackEntry) error
}

// Config holds server settings
type Config struct {
	Listen  string
	Timeout time.Duration
	Version string
	Debug   bool
}

// Server represents HTTP server instance
type Server struct {
	store    FeedbackStore
	analyzer *feedback.Analyzer
	cfg      Config

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// New initializes a new server instance
func New(store FeedbackStore, analyzer *feedback.Analyzer, cfg Config) *Server {
	s := &Server{
		store:    store,
		analyzer: analyzer,
		cfg:      cfg,
		router:   routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	lgr.Printf("[INFO] starting server on %s", s.cfg.Listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         s.cfg.Listen,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Timeout,
		WriteTimeout: s.cfg.Timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		lgr.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			lgr.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("intelscope", "intelscope", s.cfg.Version))
	s.router.Use(rest.Ping)

	if s.cfg.Debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("POST /feedback", s.submitFeedbackHandler)
		r.HandleFunc("GET /feedback/analysis", s.analysisHandler)
		r.HandleFunc("GET /feedback/recommendations", s.recommendationsHandler)
	})
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.cfg.Version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// submitFeedbackHandler records one article rating
func (s *Server) submitFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var entry domain.FeedbackEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}

	if entry.ArticleURL == "" {
		renderError(w, r, fmt.Errorf("article_url is required"), http.StatusBadRequest)
		return
	}
	if !entry.Rating.Valid() {
		renderError(w, r, fmt.Errorf("rating must be between 1 and 5"), http.StatusBadRequest)
		return
	}

	if err := s.store.Append(entry); err != nil {
		lgr.Printf("[ERROR] failed to store feedback: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	renderJSON(w, r, http.StatusCreated, map[string]string{"status": "recorded"})
}

// analysisHandler runs the pattern analysis over the full history
func (s *Server) analysisHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.Load()
	if err != nil {
		lgr.Printf("[ERROR] failed to load feedback: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	renderJSON(w, r, http.StatusOK, s.analyzer.Analyze(entries))
}

// recommendationsHandler returns actionable filter updates; below the
// rating floor the list is empty and sufficiency explains why
func (s *Server) recommendationsHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.Load()
	if err != nil {
		lgr.Printf("[ERROR] failed to load feedback: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	analysis := s.analyzer.Analyze(entries)
	recs := feedback.Recommendations(analysis)
	if recs == nil {
		recs = []feedback.Recommendation{}
	}

	renderJSON(w, r, http.StatusOK, map[string]interface{}{
		"sufficiency":     analysis.Sufficiency,
		"total_ratings":   analysis.TotalRatings,
		"recommendations": recs,
	})
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}

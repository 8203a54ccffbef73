package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/lumen/internal/logger"
)

// Server is the HTTP API server.
type Server struct {
	ports  *Ports
	router *mux.Router
}

// NewServer creates a server with all routes registered.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	s := &Server{
		ports:  ports,
		router: mux.NewRouter(),
	}
	s.routes()
	return s, nil
}

// routes registers every path on the root router. A PathPrefix subrouter
// would answer a method mismatch under /api with 404 instead of 405.
func (s *Server) routes() {
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusNotFound, Response{Error: "no such endpoint"})
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, http.StatusMethodNotAllowed, Response{Error: "method not allowed"})
	})

	s.handleAPI("/search", s.handleSearch, http.MethodPost)
	s.handleAPI("/limits", s.handleLimits, http.MethodGet)
	s.handleAPI("/categories", s.handleCategories, http.MethodGet)
	s.handleAPI("/synonyms", s.handleSynonyms, http.MethodGet)
	s.handleAPI("/daily", s.handleDaily, http.MethodGet)
	s.handleAPI("/favorites", s.handleListFavorites, http.MethodGet)
	s.handleAPI("/favorites/{quoteId}", s.handleAddFavorite, http.MethodPost)
	s.handleAPI("/favorites/{quoteId}", s.handleRemoveFavorite, http.MethodDelete)

	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}

// handleAPI registers an authenticated route under /api.
func (s *Server) handleAPI(path string, h http.HandlerFunc, method string) {
	s.router.Handle("/api"+path, s.authenticate(h)).Methods(method)
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

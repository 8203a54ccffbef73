package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

var errNotConfigured = errors.New("service not configured")

// SearchBody is the POST /api/search request.
type SearchBody struct {
	Query    string `json:"query"`
	Language string `json:"language"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body SearchBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		sendError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	lang, err := domain.ParseLanguage(body.Language)
	if err != nil {
		sendError(w, err)
		return
	}

	result, err := s.ports.Search.SmartSearch(r.Context(), domain.SearchRequest{
		Query:    body.Query,
		Language: lang,
		Session:  sessionFrom(r.Context()),
	})
	if err != nil {
		sendError(w, err)
		return
	}
	if result.Source == domain.SourceRateLimited {
		writeEnvelope(w, http.StatusTooManyRequests, Response{Data: result, Error: result.Error})
		return
	}
	sendJSON(w, http.StatusOK, result)
}

func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	session, ok := requireUser(w, r)
	if !ok {
		return
	}
	status, err := s.ports.Search.CheckRateLimit(r.Context(), session.UserID)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, status)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if s.ports.Taxonomy == nil {
		sendError(w, errNotConfigured)
		return
	}
	cats, err := s.ports.Taxonomy.ListCategories(r.Context())
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, cats)
}

func (s *Server) handleSynonyms(w http.ResponseWriter, r *http.Request) {
	if s.ports.Taxonomy == nil {
		sendError(w, errNotConfigured)
		return
	}
	q := r.URL.Query()
	lang, err := domain.ParseLanguage(q.Get("language"))
	if err != nil {
		sendError(w, err)
		return
	}
	var terms []string
	for _, t := range strings.Split(q.Get("terms"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		sendError(w, fmt.Errorf("%w: terms is required", domain.ErrInvalidInput))
		return
	}
	expanded, err := s.ports.Taxonomy.FindSynonyms(r.Context(), terms, lang)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, expanded)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	if s.ports.Quotes == nil {
		sendError(w, errNotConfigured)
		return
	}
	lang, err := domain.ParseLanguage(r.URL.Query().Get("language"))
	if err != nil {
		sendError(w, err)
		return
	}
	quote, err := s.ports.Quotes.DailyQuote(r.Context(), sessionFrom(r.Context()), lang)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, quote)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	session, ok := s.favoritesCaller(w, r)
	if !ok {
		return
	}
	quotes, err := s.ports.Quotes.ListFavorites(r.Context(), session.UserID)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, quotes)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	session, ok := s.favoritesCaller(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["quoteId"]
	if err := s.ports.Quotes.AddFavorite(r.Context(), session.UserID, id); err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, map[string]string{"quoteId": id})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	session, ok := s.favoritesCaller(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["quoteId"]
	if err := s.ports.Quotes.RemoveFavorite(r.Context(), session.UserID, id); err != nil {
		sendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) favoritesCaller(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	if s.ports.Quotes == nil {
		sendError(w, errNotConfigured)
		return domain.Session{}, false
	}
	return requireUser(w, r)
}

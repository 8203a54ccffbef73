package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

type sessionKey struct{}

// authenticate resolves the bearer token into a session. A request
// without a token proceeds anonymously; a bad token is rejected.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		session, err := s.ports.Sessions.Resolve(r.Context(), token)
		if err != nil {
			sendError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, session)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		// Malformed headers resolve as an unknown token.
		return h, true
	}
	return strings.TrimSpace(token), true
}

func sessionFrom(ctx context.Context) domain.Session {
	s, _ := ctx.Value(sessionKey{}).(domain.Session)
	return s
}

// requireUser returns the session or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	s := sessionFrom(r.Context())
	if s.Anonymous() {
		sendError(w, domain.ErrUnauthenticated)
		return s, false
	}
	return s, true
}

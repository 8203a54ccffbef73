// Package auth resolves bearer tokens to caller sessions.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// ConfigKey is the config entry holding the session table.
const ConfigKey = "auth.sessions"

// Ensure StaticResolver implements the interface.
var _ driven.SessionResolver = (*StaticResolver)(nil)

// StaticResolver serves sessions from a fixed token table.
//
// Entries have the form "token=user[:premium[:expiry]]". premium is
// "premium" or "free"; expiry is a date (2006-01-02) or an RFC 3339 time.
type StaticResolver struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewStaticResolver parses entries into a resolver.
func NewStaticResolver(entries []string) (*StaticResolver, error) {
	r := &StaticResolver{}
	if err := r.Replace(entries); err != nil {
		return nil, err
	}
	return r, nil
}

// FromConfig builds a resolver from the auth.sessions config entry.
func FromConfig(cfg driven.ConfigStore) (*StaticResolver, error) {
	return NewStaticResolver(cfg.GetStringSlice(ConfigKey))
}

// Replace swaps the token table. On a parse error the old table is kept.
func (r *StaticResolver) Replace(entries []string) error {
	sessions := make(map[string]domain.Session, len(entries))
	for i, entry := range entries {
		token, session, err := parseEntry(entry)
		if err != nil {
			return fmt.Errorf("session entry %d: %w", i, err)
		}
		if _, dup := sessions[token]; dup {
			return fmt.Errorf("%w: session entry %d repeats a token", domain.ErrInvalidInput, i)
		}
		sessions[token] = session
	}

	r.mu.Lock()
	r.sessions = sessions
	r.mu.Unlock()
	return nil
}

// Len returns the number of known tokens.
func (r *StaticResolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Resolve returns the session for token.
func (r *StaticResolver) Resolve(_ context.Context, token string) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	if !ok || token == "" {
		return domain.Session{}, domain.ErrUnauthenticated
	}
	return s, nil
}

func parseEntry(entry string) (string, domain.Session, error) {
	token, rest, ok := strings.Cut(strings.TrimSpace(entry), "=")
	token = strings.TrimSpace(token)
	if !ok || token == "" || strings.TrimSpace(rest) == "" {
		return "", domain.Session{}, fmt.Errorf("%w: want token=user[:premium[:expiry]]", domain.ErrInvalidInput)
	}

	parts := strings.SplitN(rest, ":", 3)
	s := domain.Session{UserID: strings.TrimSpace(parts[0])}
	if s.UserID == "" {
		return "", domain.Session{}, fmt.Errorf("%w: empty user id", domain.ErrInvalidInput)
	}
	if len(parts) > 1 {
		switch strings.ToLower(strings.TrimSpace(parts[1])) {
		case "premium":
			s.IsPremium = true
		case "free", "":
		default:
			return "", domain.Session{}, fmt.Errorf("%w: unknown tier %q", domain.ErrInvalidInput, parts[1])
		}
	}
	if len(parts) > 2 {
		exp, err := parseExpiry(strings.TrimSpace(parts[2]))
		if err != nil {
			return "", domain.Session{}, err
		}
		s.PremiumExpiresAt = exp
	}
	return token, s, nil
}

func parseExpiry(v string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad expiry %q", domain.ErrInvalidInput, v)
	}
	return t.UTC(), nil
}

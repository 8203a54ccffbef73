package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// Ensure the user stores implement their interfaces.
var (
	_ driven.LimitStore    = (*LimitStore)(nil)
	_ driven.HistoryStore  = (*HistoryStore)(nil)
	_ driven.FavoriteStore = (*FavoriteStore)(nil)
)

type dayKey struct {
	userID string
	date   string
}

// LimitStore is an in-memory implementation of driven.LimitStore.
type LimitStore struct {
	mu     sync.Mutex
	limits map[dayKey]domain.UserSearchLimits
}

// NewLimitStore creates a new in-memory limit store.
func NewLimitStore() *LimitStore {
	return &LimitStore{
		limits: make(map[dayKey]domain.UserSearchLimits),
	}
}

// Get returns the counters for (userID, date).
func (s *LimitStore) Get(_ context.Context, userID, date string) (*domain.UserSearchLimits, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.limits[dayKey{userID, date}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

// Increment adds one to a counter under the store lock.
func (s *LimitStore) Increment(
	_ context.Context,
	userID, date string,
	counter driven.LimitCounter,
) (*domain.UserSearchLimits, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey{userID, date}
	l, ok := s.limits[key]
	if !ok {
		l = domain.UserSearchLimits{UserID: userID, Date: date}
	}
	switch counter {
	case driven.CounterSearch:
		l.SearchCount++
	case driven.CounterAI:
		l.AISearchCount++
	default:
		return nil, domain.ErrInvalidInput
	}
	l.UpdatedAt = time.Now().UTC()
	s.limits[key] = l
	return &l, nil
}

func (s *LimitStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits = make(map[dayKey]domain.UserSearchLimits)
}

type shownKey struct {
	userID  string
	quoteID string
	date    string
}

// HistoryStore is an in-memory implementation of driven.HistoryStore.
type HistoryStore struct {
	mu       sync.RWMutex
	shown    map[shownKey]domain.UserQuoteHistory
	searches map[string]domain.UserSearch
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		shown:    make(map[shownKey]domain.UserQuoteHistory),
		searches: make(map[string]domain.UserSearch),
	}
}

// RecordShown stores an exposure; a repeat on the same day is ignored.
func (s *HistoryStore) RecordShown(_ context.Context, h domain.UserQuoteHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := shownKey{h.UserID, h.QuoteID, h.ShownDate}
	if _, ok := s.shown[key]; !ok {
		s.shown[key] = h
	}
	return nil
}

// ShownSince returns quote IDs shown on or after sinceDate.
func (s *HistoryStore) ShownSince(_ context.Context, userID, sinceDate string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for key := range s.shown {
		if key.userID != userID || key.date < sinceDate {
			continue
		}
		if _, dup := seen[key.quoteID]; !dup {
			seen[key.quoteID] = struct{}{}
			ids = append(ids, key.quoteID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ShownOn returns exposures of one kind on a single date.
func (s *HistoryStore) ShownOn(
	_ context.Context,
	userID, date string,
	kind domain.HistoryKind,
) ([]domain.UserQuoteHistory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.UserQuoteHistory, 0)
	for key, h := range s.shown {
		if key.userID == userID && key.date == date && h.Kind == kind {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ShownAt.Before(result[j].ShownAt)
	})
	return result, nil
}

// LastSearch returns the latest search of a context by a user.
func (s *HistoryStore) LastSearch(_ context.Context, userID, contextID string) (*domain.UserSearch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var last *domain.UserSearch
	for _, us := range s.searches {
		if us.UserID != userID || us.ContextID != contextID {
			continue
		}
		if last == nil || us.SearchedAt.After(last.SearchedAt) {
			found := us
			last = &found
		}
	}
	if last == nil {
		return nil, domain.ErrNotFound
	}
	return last, nil
}

// SaveSearch inserts or updates a search by ID.
func (s *HistoryStore) SaveSearch(_ context.Context, us domain.UserSearch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches[us.ID] = us
	return nil
}

// SearchCount returns the number of stored search rows.
func (s *HistoryStore) SearchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.searches)
}

func (s *HistoryStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shown = make(map[shownKey]domain.UserQuoteHistory)
	s.searches = make(map[string]domain.UserSearch)
}

type favoriteKey struct {
	userID  string
	quoteID string
}

// FavoriteStore is an in-memory implementation of driven.FavoriteStore.
type FavoriteStore struct {
	mu        sync.RWMutex
	favorites map[favoriteKey]domain.UserFavorite
}

// NewFavoriteStore creates a new in-memory favourite store.
func NewFavoriteStore() *FavoriteStore {
	return &FavoriteStore{
		favorites: make(map[favoriteKey]domain.UserFavorite),
	}
}

// Add saves a favourite; an existing one is left untouched.
func (s *FavoriteStore) Add(_ context.Context, fav domain.UserFavorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := favoriteKey{fav.UserID, fav.QuoteID}
	if _, ok := s.favorites[key]; !ok {
		fav.CreatedAt = nowIfZero(fav.CreatedAt)
		s.favorites[key] = fav
	}
	return nil
}

// Remove deletes a favourite.
func (s *FavoriteStore) Remove(_ context.Context, userID, quoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.favorites, favoriteKey{userID, quoteID})
	return nil
}

// List returns a user's favourites, newest first.
func (s *FavoriteStore) List(_ context.Context, userID string) ([]domain.UserFavorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.UserFavorite, 0)
	for _, f := range s.favorites {
		if f.UserID == userID {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].QuoteID < result[j].QuoteID
	})
	return result, nil
}

func (s *FavoriteStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.favorites = make(map[favoriteKey]domain.UserFavorite)
}

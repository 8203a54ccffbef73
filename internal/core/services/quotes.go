package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
	"github.com/custodia-labs/lumen/internal/core/ports/driving"
	"github.com/custodia-labs/lumen/internal/logger"
)

// Ensure QuoteService implements the interface.
var _ driving.QuoteService = (*QuoteService)(nil)

// dailyScan bounds how many quotes are considered for the daily pick.
const dailyScan = 500

// QuoteService manages daily quotes, favourites and quote maintenance.
type QuoteService struct {
	quotes    driven.QuoteStore
	favorites driven.FavoriteStore
	history   *HistoryTracker
	llm       driven.LLMService
	prompts   promptLoader
	resetter  driven.Resetter
	retry     RetryPolicy
	rngMu     sync.Mutex
	rng       *rand.Rand
	now       Clock
}

// NewQuoteService creates a quote service.
func NewQuoteService(
	quotes driven.QuoteStore,
	favorites driven.FavoriteStore,
	history *HistoryTracker,
	now Clock,
) *QuoteService {
	return &QuoteService{
		quotes:    quotes,
		favorites: favorites,
		history:   history,
		retry:     DefaultRetryPolicy(),
		rng:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // Not security sensitive.
		now:       clockOrDefault(now),
	}
}

// SetLLM sets the generation service used for translation backfill.
func (s *QuoteService) SetLLM(llm driven.LLMService) {
	s.llm = llm
}

// SetPromptStore sets the store for customisable prompts.
func (s *QuoteService) SetPromptStore(store driven.PromptStore) {
	s.prompts = promptLoader{store: store}
}

// SetResetter sets the store wiped by Reset.
func (s *QuoteService) SetResetter(r driven.Resetter) {
	s.resetter = r
}

// SetRand replaces the random source for daily picks.
func (s *QuoteService) SetRand(rng *rand.Rand) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng = rng
}

// SetRetryPolicy overrides the retry policy for store writes.
func (s *QuoteService) SetRetryPolicy(p RetryPolicy) {
	s.retry = p
}

// DailyQuote returns today's quote for the session.
//
// Signed-in users get one pick per day, remembered in their history and
// chosen outside their reuse window where possible. Anonymous callers get
// a pick derived from the date, the same for everyone that day.
func (s *QuoteService) DailyQuote(ctx context.Context, session domain.Session, lang domain.Language) (*domain.Quote, error) {
	if !lang.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, lang)
	}
	now := s.now()
	premium := session.Premium(now)

	if id, err := s.history.DailyShownToday(ctx, session.UserID); err != nil {
		return nil, err
	} else if id != "" {
		quote, err := s.quotes.Get(ctx, id)
		if err == nil {
			return quote, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get daily quote: %w", err)
		}
		logger.Warn("Daily quote %s no longer exists, picking another", id)
	}

	all, err := s.quotes.List(ctx, dailyScan)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	eligible := make([]domain.Quote, 0, len(all))
	for i := range all {
		if all[i].IsPremium && !premium {
			continue
		}
		if !all[i].HasLanguage(lang) {
			continue
		}
		eligible = append(eligible, all[i])
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("%w: no quotes available in %s", domain.ErrNotFound, lang.Name())
	}

	if session.Anonymous() {
		h := fnv.New32a()
		_, _ = h.Write([]byte(domain.DateKey(now) + string(lang)))
		pick := eligible[int(h.Sum32()%uint32(len(eligible)))] //nolint:gosec // len is positive.
		return &pick, nil
	}

	excluded, err := s.history.Exclusions(ctx, session.UserID, premium)
	if err != nil {
		return nil, err
	}
	fresh := make([]domain.Quote, 0, len(eligible))
	for i := range eligible {
		if _, skip := excluded[eligible[i].ID]; !skip {
			fresh = append(fresh, eligible[i])
		}
	}
	if len(fresh) == 0 {
		logger.Debug("Every quote is inside the reuse window for %s, ignoring it", session.UserID)
		fresh = eligible
	}

	pick := fresh[s.intN(len(fresh))]
	if err := s.history.RecordShown(ctx, session.UserID, domain.HistoryDaily, pick.ID); err != nil {
		return nil, err
	}
	logger.Info("Daily quote for %s: %s", session.UserID, pick.ID)
	return &pick, nil
}

// intN draws from the shared source; rand.Rand is not goroutine safe.
func (s *QuoteService) intN(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.IntN(n)
}

// AddFavorite saves a quote for a user.
func (s *QuoteService) AddFavorite(ctx context.Context, userID, quoteID string) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	if _, err := s.quotes.Get(ctx, quoteID); err != nil {
		return fmt.Errorf("get quote %s: %w", quoteID, err)
	}
	return s.favorites.Add(ctx, domain.UserFavorite{
		UserID:    userID,
		QuoteID:   quoteID,
		CreatedAt: s.now(),
	})
}

// RemoveFavorite deletes a saved quote.
func (s *QuoteService) RemoveFavorite(ctx context.Context, userID, quoteID string) error {
	if userID == "" {
		return domain.ErrUnauthenticated
	}
	return s.favorites.Remove(ctx, userID, quoteID)
}

// ListFavorites returns a user's saved quotes, newest first.
func (s *QuoteService) ListFavorites(ctx context.Context, userID string) ([]domain.Quote, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	favs, err := s.favorites.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	if len(favs) == 0 {
		return []domain.Quote{}, nil
	}

	ids := make([]string, len(favs))
	for i, f := range favs {
		ids[i] = f.QuoteID
	}
	quotes, err := s.quotes.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}

	byID := make(map[string]domain.Quote, len(quotes))
	for _, q := range quotes {
		byID[q.ID] = q
	}
	ordered := make([]domain.Quote, 0, len(quotes))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// BackfillTranslations asks the generation service to translate up to limit
// quotes that lack a bundle in lang. Individual failures are logged and
// skipped.
func (s *QuoteService) BackfillTranslations(ctx context.Context, lang domain.Language, limit int) (int, error) {
	logger.Section("Translation Backfill")
	if !lang.Valid() {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, lang)
	}
	if s.llm == nil {
		return 0, domain.ErrMissingAPIKey
	}

	pending, err := s.quotes.ListMissingTranslation(ctx, lang, limit)
	if err != nil {
		return 0, fmt.Errorf("list untranslated quotes: %w", err)
	}
	logger.Info("%d quotes missing a %s translation", len(pending), lang.Name())

	updated := 0
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if err := s.translate(ctx, &pending[i], lang); err != nil {
			if errors.Is(err, domain.ErrAIRateLimitExceeded) || errors.Is(err, domain.ErrInvalidAPIKey) {
				return updated, err
			}
			logger.Warn("Translating quote %s failed: %v", pending[i].ID, err)
			continue
		}
		updated++
	}
	return updated, nil
}

func (s *QuoteService) translate(ctx context.Context, quote *domain.Quote, target domain.Language) error {
	source, _ := quote.Bundle(quote.Language)
	payload, err := json.Marshal(source)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}

	prompt := fmt.Sprintf(s.prompts.load(driven.PromptTranslate),
		quote.Language.Name(), target.Name(), string(payload))
	raw, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: 1500, Temperature: 0.3})
	if err != nil {
		return err
	}

	t, err := ParseTranslation(raw)
	if err != nil {
		return err
	}
	return s.retry.Do(ctx, "set translation", func() error {
		return s.quotes.SetTranslation(ctx, quote.ID, target, t)
	})
}

// ParseTranslation decodes a single translated bundle from a generation
// response, tolerating code fences and raw newlines inside strings.
func ParseTranslation(raw string) (domain.Translation, error) {
	cleaned := escapeNewlinesInStrings(stripCodeFences(raw))
	candidates := append([]string{cleaned}, scanObjects(cleaned)...)

	for _, c := range candidates {
		var b CandidateBundle
		if err := json.Unmarshal([]byte(c), &b); err != nil {
			continue
		}
		t := b.Translation()
		if t.Text == "" {
			continue
		}
		return t, nil
	}
	return domain.Translation{}, fmt.Errorf("%w: no translation object in response", domain.ErrGenerationFailed)
}

// Reset deletes all persisted data.
func (s *QuoteService) Reset(ctx context.Context) error {
	if s.resetter == nil {
		return errors.New("reset not supported by this store")
	}
	logger.Warn("Resetting all stored data at %s", s.now().Format(time.RFC3339))
	return s.resetter.Reset(ctx)
}

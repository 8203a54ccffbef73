package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
	"github.com/custodia-labs/lumen/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// APIKeyEnv overrides the configured API key when set.
//
//nolint:gosec // G101: environment variable name, not a credential.
const APIKeyEnv = "LUMEN_API_KEY"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyAIAPIKey            = "ai.api_key"
	keyAIBaseURL           = "ai.base_url"
	keyAIModel             = "ai.model"
	keyAITimeout           = "ai.timeout"
	keyAIRequestsPerSecond = "ai.requests_per_second"

	keyMinCachedResults     = "search.min_cached_results"
	keyMaxResults           = "search.max_results"
	keyCrossMatchMultiplier = "search.cross_match_multiplier"
	keyRecentContextScan    = "search.recent_context_scan"
	keyCategoryContextScan  = "search.category_context_scan"
	keyFullTextScan         = "search.full_text_scan"
	keyFullTextScore        = "search.full_text_score"
	keyHighBand             = "search.high_band"
	keyMediumBand           = "search.medium_band"
	keyFreeReuseDays        = "search.free_reuse_days"
	keyPremiumReuseDays     = "search.premium_reuse_days"
	keyMaxSearchesPerDay    = "search.max_searches_per_day"
	keyMaxAISearchesPerDay  = "search.max_ai_searches_per_day"
	keyAIQuoteCount         = "search.ai_quote_count"
	keyDefaultAIRelevance   = "search.default_ai_relevance"
	keyAvoidListSize        = "search.avoid_list_size"
	keySearchDedupWindow    = "search.dedup_window"
)

// Default generation service endpoint and model.
const (
	DefaultAIBaseURL = "https://api.openai.com/v1"
	DefaultAIModel   = "gpt-4o-mini"
)

// SettingsService reads search and AI settings from the config store,
// falling back to defaults for absent keys.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Search returns the search heuristics.
func (s *SettingsService) Search() domain.SearchSettings {
	d := domain.DefaultSearchSettings()
	return domain.SearchSettings{
		MinCachedResults:            s.getInt(keyMinCachedResults, d.MinCachedResults),
		MaxResults:                  s.getInt(keyMaxResults, d.MaxResults),
		CrossMatchMultiplier:        s.getFloat(keyCrossMatchMultiplier, d.CrossMatchMultiplier),
		RecentContextScan:           s.getInt(keyRecentContextScan, d.RecentContextScan),
		CategoryContextScan:         s.getInt(keyCategoryContextScan, d.CategoryContextScan),
		FullTextScan:                s.getInt(keyFullTextScan, d.FullTextScan),
		FullTextScore:               s.getFloat(keyFullTextScore, d.FullTextScore),
		HighBand:                    s.getFloat(keyHighBand, d.HighBand),
		MediumBand:                  s.getFloat(keyMediumBand, d.MediumBand),
		FreeReuseDays:               s.getInt(keyFreeReuseDays, d.FreeReuseDays),
		PremiumReuseDays:            s.getInt(keyPremiumReuseDays, d.PremiumReuseDays),
		MaxSearchesPerDay:           s.getInt(keyMaxSearchesPerDay, d.MaxSearchesPerDay),
		MaxAISearchesPerDay:         s.getInt(keyMaxAISearchesPerDay, d.MaxAISearchesPerDay),
		AIQuoteCount:                s.getInt(keyAIQuoteCount, d.AIQuoteCount),
		DefaultAIRelevance:          s.getInt(keyDefaultAIRelevance, d.DefaultAIRelevance),
		RelatedSameLanguagePenalty:  d.RelatedSameLanguagePenalty,
		RelatedCrossLanguagePenalty: d.RelatedCrossLanguagePenalty,
		RelatedScoreFloor:           d.RelatedScoreFloor,
		AvoidListSize:               s.getInt(keyAvoidListSize, d.AvoidListSize),
		SearchDedupWindow:           s.getDuration(keySearchDedupWindow, d.SearchDedupWindow),
	}
}

// AI returns the generation service settings. The LUMEN_API_KEY
// environment variable takes precedence over the stored key.
func (s *SettingsService) AI() domain.AISettings {
	key := strings.TrimSpace(s.getenv(APIKeyEnv))
	if key == "" {
		key = s.configStore.GetString(keyAIAPIKey)
	}
	return domain.AISettings{
		APIKey:            key,
		BaseURL:           s.getString(keyAIBaseURL, DefaultAIBaseURL),
		Model:             s.getString(keyAIModel, DefaultAIModel),
		Timeout:           s.getDuration(keyAITimeout, 0),
		RequestsPerSecond: s.getFloat(keyAIRequestsPerSecond, 0),
	}
}

// SetAPIKey stores the generation service API key.
func (s *SettingsService) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: empty api key", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyAIAPIKey, key); err != nil {
		return fmt.Errorf("save ai api_key: %w", err)
	}
	return s.configStore.Save()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

// getDuration accepts "90s"-style strings or a number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	raw, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	if str, isStr := raw.(string); isStr {
		d, err := time.ParseDuration(str)
		if err != nil {
			return defaultVal
		}
		return d
	}
	return time.Duration(s.configStore.GetFloat(key) * float64(time.Second))
}

package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lumen/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lumen/internal/core/domain"
)

func newSettings(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)
	svc.getenv = func(key string) string { return env[key] }
	return svc, store
}

func TestSettingsService_SearchDefaults(t *testing.T) {
	svc, _ := newSettings(nil)
	assert.Equal(t, domain.DefaultSearchSettings(), svc.Search())
}

func TestSettingsService_SearchOverrides(t *testing.T) {
	svc, store := newSettings(nil)
	require.NoError(t, store.Set("search.max_results", 7))
	require.NoError(t, store.Set("search.min_cached_results", int64(2)))
	require.NoError(t, store.Set("search.cross_match_multiplier", 0.75))
	require.NoError(t, store.Set("search.max_searches_per_day", 0))
	require.NoError(t, store.Set("search.dedup_window", "90s"))

	s := svc.Search()
	assert.Equal(t, 7, s.MaxResults)
	assert.Equal(t, 2, s.MinCachedResults)
	assert.InDelta(t, 0.75, s.CrossMatchMultiplier, 1e-9)
	assert.Zero(t, s.MaxSearchesPerDay)
	assert.Equal(t, 90*time.Second, s.SearchDedupWindow)
	assert.Equal(t, 10, s.RelatedSameLanguagePenalty)
	assert.Equal(t, 50, s.RelatedScoreFloor)
}

func TestSettingsService_DurationForms(t *testing.T) {
	svc, store := newSettings(nil)

	require.NoError(t, store.Set("ai.timeout", 45))
	assert.Equal(t, 45*time.Second, svc.AI().Timeout)

	require.NoError(t, store.Set("ai.timeout", "2m"))
	assert.Equal(t, 2*time.Minute, svc.AI().Timeout)

	require.NoError(t, store.Set("ai.timeout", "soon"))
	assert.Zero(t, svc.AI().Timeout)
}

func TestSettingsService_AI(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		svc, _ := newSettings(nil)
		ai := svc.AI()
		assert.False(t, ai.IsConfigured())
		assert.Equal(t, DefaultAIBaseURL, ai.BaseURL)
		assert.Equal(t, DefaultAIModel, ai.Model)
	})

	t.Run("stored key", func(t *testing.T) {
		svc, _ := newSettings(nil)
		require.NoError(t, svc.SetAPIKey("  sk-stored "))
		ai := svc.AI()
		assert.True(t, ai.IsConfigured())
		assert.Equal(t, "sk-stored", ai.APIKey)
	})

	t.Run("environment wins", func(t *testing.T) {
		svc, store := newSettings(map[string]string{APIKeyEnv: "sk-env"})
		require.NoError(t, store.Set("ai.api_key", "sk-stored"))
		require.NoError(t, store.Set("ai.model", "gpt-4o"))
		ai := svc.AI()
		assert.Equal(t, "sk-env", ai.APIKey)
		assert.Equal(t, "gpt-4o", ai.Model)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		svc, _ := newSettings(nil)
		assert.ErrorIs(t, svc.SetAPIKey("   "), domain.ErrInvalidInput)
	})
}

package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestSearchCmd_HasLanguageFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("language")
	require.NotNil(t, flag, "language flag should exist")
	assert.Equal(t, "l", flag.Shorthand)
	assert.Equal(t, "en", flag.DefValue)
}

func TestSearchCmd_JoinsArgsAndRunsAnonymously(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "", "search", "stress", "at", "work")

	require.NoError(t, err)
	assert.Equal(t, "stress at work", ts.search.lastReq.Query)
	assert.Equal(t, domain.LanguageEnglish, ts.search.lastReq.Language)
	assert.True(t, ts.search.lastReq.Session.Anonymous())
	assert.Contains(t, out, "Source: cached")
	assert.Contains(t, out, "imagination")
	assert.Contains(t, out, "Seneca, Letters, 13")
	assert.NotContains(t, out, "Searches left today")
}

func TestSearchCmd_WithToken(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "", "search", "--token", "bob-token", "-l", "de", "angst")

	require.NoError(t, err)
	assert.Equal(t, "bob", ts.search.lastReq.Session.UserID)
	assert.True(t, ts.search.lastReq.Session.IsPremium)
	assert.Equal(t, domain.LanguageGerman, ts.search.lastReq.Language)
	assert.Contains(t, out, "Wir leiden")
	assert.Contains(t, out, "Searches left today: 9")
}

func TestSearchCmd_TokenFromEnv(t *testing.T) {
	ts := setupTestServices(t)
	t.Setenv(TokenEnv, "alice-token")

	_, err := execute(t, "", "search", "hope")

	require.NoError(t, err)
	assert.Equal(t, "alice", ts.search.lastReq.Session.UserID)
}

func TestSearchCmd_BadToken(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "search", "--token", "nope", "hope")

	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestSearchCmd_UnsupportedLanguage(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "search", "-l", "fr", "hope")

	assert.ErrorIs(t, err, domain.ErrUnsupportedLanguage)
}

func TestSearchCmd_RateLimited(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.result = &domain.SmartSearchResult{
		Source:    domain.SourceRateLimited,
		RateLimit: domain.RateLimitStatus{SearchCount: 10, MaxSearches: 10},
		Error:     domain.ErrSearchRateLimitExceeded.Error(),
	}

	out, err := execute(t, "", "search", "--token", "alice-token", "hope")

	require.NoError(t, err)
	assert.Contains(t, out, "Daily search limit reached (10/10)")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "search", "--json", "hope")

	require.NoError(t, err)
	assert.Contains(t, out, `"source": "cached"`)
	assert.Contains(t, out, `"id": "q1"`)
}

func TestSearchCmd_ServiceError(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.err = errors.New("disk full")

	_, err := execute(t, "", "search", "hope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestSearchCmd_ServiceNotConfigured(t *testing.T) {
	setupTestServices(t)
	searchService = nil

	_, err := execute(t, "", "search", "test")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}

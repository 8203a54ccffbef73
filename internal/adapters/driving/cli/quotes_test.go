package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

func TestDailyCmd(t *testing.T) {
	ts := setupTestServices(t)
	ts.quotes.daily = &domain.Quote{ID: "d1", Text: "Begin.", Author: "Lao Tzu", Language: domain.LanguageEnglish}

	out, err := execute(t, "", "daily", "--token", "alice-token")

	require.NoError(t, err)
	assert.Equal(t, "alice", ts.quotes.lastUser)
	assert.Contains(t, out, `"Begin."`)
	assert.Contains(t, out, "Lao Tzu")
}

func TestDailyCmd_FallsBackToPrimaryLanguage(t *testing.T) {
	ts := setupTestServices(t)
	ts.quotes.daily = &domain.Quote{ID: "d1", Text: "Begin.", Language: domain.LanguageEnglish}

	out, err := execute(t, "", "daily", "-l", "de")

	require.NoError(t, err)
	assert.Equal(t, "", ts.quotes.lastUser)
	assert.Contains(t, out, "Begin.")
}

func TestDailyCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.quotes.daily = &domain.Quote{ID: "d1", Text: "Begin."}

	out, err := execute(t, "", "daily", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"id": "d1"`)
}

func TestFavoriteCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, 3)
	for _, c := range favoriteCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"add", "remove", "list"}, names)
}

func TestFavoriteCmd_Flow(t *testing.T) {
	ts := setupTestServices(t)

	_, err := execute(t, "", "favorite", "add", "q1", "--token", "alice-token")
	require.NoError(t, err)
	_, err = execute(t, "", "favorite", "add", "q2", "--token", "alice-token")
	require.NoError(t, err)
	out, err := execute(t, "", "favorite", "remove", "q1", "--token", "alice-token")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed q1")

	out, err = execute(t, "", "favorite", "list", "--token", "alice-token")
	require.NoError(t, err)
	assert.Equal(t, "alice", ts.quotes.lastUser)
	assert.Contains(t, out, "Quote q2")
	assert.NotContains(t, out, "Quote q1")
}

func TestFavoriteCmd_RequiresToken(t *testing.T) {
	setupTestServices(t)

	for _, args := range [][]string{
		{"favorite", "add", "q1"},
		{"favorite", "remove", "q1"},
		{"favorite", "list"},
	} {
		_, err := execute(t, "", args...)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated, args)
	}
}

func TestFavoriteListCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "favorite", "list", "--token", "bob-token")

	require.NoError(t, err)
	assert.Contains(t, out, "No favourites yet.")
}

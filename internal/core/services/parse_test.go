package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	enText = "The Lord is close to the brokenhearted."
	deText = "Der Herr ist nahe denen, die zerbrochenen Herzens sind."
)

func TestParseCandidates_DirectArray(t *testing.T) {
	raw := mustJSON(t, []any{candidateJSON(enText, deText, 90, nil, nil)})

	res, ok := ParseCandidates(raw).(ParseSuccess)
	require.True(t, ok)
	assert.Equal(t, StrategyDirect, res.Strategy)
	require.Len(t, res.Candidates, 1)
	require.NotNil(t, res.Candidates[0].RelevanceScore)
	assert.Equal(t, 90, *res.Candidates[0].RelevanceScore)
}

func TestParseCandidates_LenientRelevanceScore(t *testing.T) {
	tests := []struct {
		name  string
		score any
		want  *int
	}{
		{"fraction rounds", 85.5, intPtr(86)},
		{"numeric string", "72", intPtr(72)},
		{"percent string", "64%", intPtr(64)},
		{"above range clamps", 250, intPtr(100)},
		{"below range clamps", -3.2, intPtr(0)},
		{"word is ignored", "high", nil},
		{"null is ignored", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := candidateJSON(enText, deText, 0, nil, nil)
			c["relevanceScore"] = tt.score

			res, ok := ParseCandidates(mustJSON(t, []any{c})).(ParseSuccess)
			require.True(t, ok)
			assert.Equal(t, StrategyDirect, res.Strategy)
			require.Len(t, res.Candidates, 1)
			assert.Equal(t, tt.want, res.Candidates[0].RelevanceScore)
			assert.True(t, res.Candidates[0].BilingualComplete())
		})
	}
}

func TestParseCandidates_SingleObjectAndWrapper(t *testing.T) {
	single := mustJSON(t, candidateJSON(enText, deText, 80, nil, nil))
	res, ok := ParseCandidates(single).(ParseSuccess)
	require.True(t, ok)
	assert.Len(t, res.Candidates, 1)

	wrapped := mustJSON(t, map[string]any{"quotes": []any{
		candidateJSON(enText, deText, 80, nil, nil),
		candidateJSON(enText, deText, 70, nil, nil),
	}})
	res, ok = ParseCandidates(wrapped).(ParseSuccess)
	require.True(t, ok)
	assert.Len(t, res.Candidates, 2)
}

func TestParseCandidates_CodeFencesAndRawNewlines(t *testing.T) {
	raw := "Here you go:\n```json\n[{\"author\": \"\", \"en\": {\"text\": \"line one\nline two of the quote\"}, " +
		"\"de\": {\"text\": \"Zeile eins\nZeile zwei des Zitats\"}}]\n```"

	res, ok := ParseCandidates(raw).(ParseSuccess)
	require.True(t, ok)
	assert.Equal(t, StrategyCleaned, res.Strategy)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "line one\nline two of the quote", res.Candidates[0].EN.Text)
}

func TestParseCandidates_TruncatedResponseKeepsCompleteObjects(t *testing.T) {
	first := mustJSON(t, candidateJSON(enText, deText, 90, nil, nil))
	raw := "[" + first + `, {"author": "x", "en": {"text": "cut off mid`

	res, ok := ParseCandidates(raw).(ParseSuccess)
	require.True(t, ok)
	assert.Equal(t, StrategyScanned, res.Strategy)
	assert.Len(t, res.Candidates, 1)
}

func TestParseCandidates_Failure(t *testing.T) {
	for _, raw := range []string{"", "I cannot help with that.", "[1, 2, 3"} {
		_, ok := ParseCandidates(raw).(ParseFailure)
		assert.True(t, ok, raw)
	}
}

func TestFilterBilingual(t *testing.T) {
	raw := mustJSON(t, []any{
		candidateJSON(enText, deText, 90, nil, nil),
		candidateJSON(enText, "Kurz", 90, nil, nil),
		map[string]any{"en": map[string]any{"text": enText}},
	})
	res, ok := ParseCandidates(raw).(ParseSuccess)
	require.True(t, ok)
	require.Len(t, res.Candidates, 3)

	kept := FilterBilingual(res.Candidates)
	require.Len(t, kept, 1)
	assert.Equal(t, deText, kept[0].DE.Text)
}

func TestCandidate_BilingualCompleteCountsCharacters(t *testing.T) {
	c := Candidate{
		EN: &CandidateBundle{Text: "0123456789"},
		DE: &CandidateBundle{Text: "  süße Grüße  "},
	}
	assert.True(t, c.BilingualComplete())

	c.DE.Text = "Hallo"
	assert.False(t, c.BilingualComplete())
}

func TestParseTranslation(t *testing.T) {
	raw := "```json\n{\"text\": \"Der Herr ist mein Hirte.\", \"reference\": \"Psalm 23,1\"}\n```"
	tr, err := ParseTranslation(raw)
	require.NoError(t, err)
	assert.Equal(t, "Der Herr ist mein Hirte.", tr.Text)
	assert.Equal(t, "Psalm 23,1", tr.Reference)

	_, err = ParseTranslation("no json here")
	assert.Error(t, err)
}

func intPtr(v int) *int { return &v }

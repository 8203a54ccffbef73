package services

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

func scored(id string, score float64) domain.ScoredQuote {
	return domain.ScoredQuote{Quote: domain.Quote{ID: id}, Score: score}
}

func TestShuffler_KeepsBandsInOrder(t *testing.T) {
	input := []domain.ScoredQuote{
		scored("low1", 10), scored("high1", 95), scored("mid1", 65),
		scored("high2", 80), scored("low2", 59), scored("mid2", 79),
	}

	for seed := uint64(0); seed < 20; seed++ {
		s := NewShuffler(rand.New(rand.NewPCG(seed, seed+1)), 80, 60)
		out := s.Shuffle(input)

		assert.Len(t, out, len(input))
		assert.ElementsMatch(t, []string{"high1", "high2"}, scoredIDs(out[:2]))
		assert.ElementsMatch(t, []string{"mid1", "mid2"}, scoredIDs(out[2:4]))
		assert.ElementsMatch(t, []string{"low1", "low2"}, scoredIDs(out[4:]))
	}
}

func TestShuffler_DoesNotMutateInput(t *testing.T) {
	input := []domain.ScoredQuote{scored("a", 10), scored("b", 90)}
	NewShuffler(nil, 80, 60).Shuffle(input)
	assert.Equal(t, "a", input[0].Quote.ID)
}

func TestShuffler_VariesWithinBand(t *testing.T) {
	input := []domain.ScoredQuote{
		scored("a", 90), scored("b", 90), scored("c", 90), scored("d", 90), scored("e", 90),
	}
	s := NewShuffler(rand.New(rand.NewPCG(7, 7)), 80, 60)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		seen[s.Shuffle(input)[0].Quote.ID] = true
	}
	assert.Greater(t, len(seen), 1)
}

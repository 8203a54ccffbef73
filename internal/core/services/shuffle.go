package services

import (
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

// Shuffler reorders scored results so repeated searches don't always
// surface the same top results, while keeping better bands first.
//
// A Shuffler is safe for concurrent use.
type Shuffler struct {
	mu         sync.Mutex
	rng        *rand.Rand
	highBand   float64
	mediumBand float64
}

// NewShuffler creates a shuffler. A nil rng uses a randomly seeded source.
func NewShuffler(rng *rand.Rand, highBand, mediumBand float64) *Shuffler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // not security sensitive
	}
	return &Shuffler{rng: rng, highBand: highBand, mediumBand: mediumBand}
}

// Shuffle sorts by score descending, then shuffles each band (high,
// medium, low) independently with Fisher-Yates and concatenates them.
func (s *Shuffler) Shuffle(quotes []domain.ScoredQuote) []domain.ScoredQuote {
	sorted := make([]domain.ScoredQuote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	var high, medium, low []domain.ScoredQuote
	for _, q := range sorted {
		switch {
		case q.Score >= s.highBand:
			high = append(high, q)
		case q.Score >= s.mediumBand:
			medium = append(medium, q)
		default:
			low = append(low, q)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ScoredQuote, 0, len(sorted))
	for _, band := range [][]domain.ScoredQuote{high, medium, low} {
		s.rng.Shuffle(len(band), func(i, j int) {
			band[i], band[j] = band[j], band[i]
		})
		out = append(out, band...)
	}
	return out
}

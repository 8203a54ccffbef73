package services

import (
	"strings"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

// MatchCategory scores every category against the expanded keyword set and
// returns the one with the strictly highest non-zero score. The score is the
// number of (keyword, category keyword) pairs where one contains the other.
// Ties keep the category seen first. Returns nil when nothing scores.
func MatchCategory(keywords KeywordSet, lang domain.Language, categories []domain.SearchCategory) *domain.SearchCategory {
	var best *domain.SearchCategory
	bestScore := 0

	for i := range categories {
		score := categoryScore(keywords, categories[i].Keywords[lang])
		if score > bestScore {
			bestScore = score
			best = &categories[i]
		}
	}

	return best
}

func categoryScore(keywords KeywordSet, categoryKeywords []string) int {
	score := 0
	for k := range keywords {
		for _, ck := range categoryKeywords {
			ck = strings.ToLower(ck)
			if ck == "" {
				continue
			}
			if strings.Contains(k, ck) || strings.Contains(ck, k) {
				score++
			}
		}
	}
	return score
}

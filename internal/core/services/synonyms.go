package services

import (
	"strings"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

// KeywordSet is an unordered set of lowercase keywords.
type KeywordSet map[string]struct{}

// NewKeywordSet builds a set from a keyword list.
func NewKeywordSet(keywords []string) KeywordSet {
	set := make(KeywordSet, len(keywords))
	for _, k := range keywords {
		set.Add(k)
	}
	return set
}

// Add inserts a keyword, lowercased. Empty strings are ignored.
func (s KeywordSet) Add(keyword string) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword != "" {
		s[keyword] = struct{}{}
	}
}

// Has reports whether keyword is in the set.
func (s KeywordSet) Has(keyword string) bool {
	_, ok := s[keyword]
	return ok
}

// Overlaps reports whether any of keywords is in the set.
func (s KeywordSet) Overlaps(keywords []string) bool {
	for _, k := range keywords {
		if s.Has(k) {
			return true
		}
	}
	return false
}

// ContainsLoosely reports whether any keyword in the set contains text
// or is contained in it.
func (s KeywordSet) ContainsLoosely(text string) bool {
	text = strings.ToLower(text)
	if text == "" {
		return false
	}
	for k := range s {
		if strings.Contains(text, k) || strings.Contains(k, text) {
			return true
		}
	}
	return false
}

// ExpandKeywords adds every term of every synonym group that loosely
// matches one of the keywords. Matching is substring containment in
// either direction so inflected forms still hit their group.
func ExpandKeywords(keywords []string, lang domain.Language, groups []domain.SynonymGroup) KeywordSet {
	expanded := NewKeywordSet(keywords)
	if len(keywords) == 0 {
		return expanded
	}
	input := NewKeywordSet(keywords)

	for _, group := range groups {
		terms := group.Terms[lang]
		if !groupMatches(input, terms) {
			continue
		}
		for _, term := range terms {
			expanded.Add(term)
		}
	}

	return expanded
}

func groupMatches(input KeywordSet, terms []string) bool {
	for _, term := range terms {
		if input.ContainsLoosely(term) {
			return true
		}
	}
	return false
}

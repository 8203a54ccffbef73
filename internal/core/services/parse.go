package services

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

// minCandidateTextLength is the shortest text accepted in each language.
const minCandidateTextLength = 10

// CandidateBundle is one language's content in a generated candidate.
type CandidateBundle struct {
	Text            string   `json:"text"`
	Reference       string   `json:"reference"`
	Context         string   `json:"context"`
	Explanation     string   `json:"explanation"`
	Situations      []string `json:"situations"`
	Tags            []string `json:"tags"`
	RelevantQueries []string `json:"relevantQueries"`
}

// Translation converts the bundle to a stored translation.
func (b *CandidateBundle) Translation() domain.Translation {
	return domain.Translation{
		Text:        strings.TrimSpace(b.Text),
		Reference:   strings.TrimSpace(b.Reference),
		Context:     strings.TrimSpace(b.Context),
		Explanation: strings.TrimSpace(b.Explanation),
		Situations:  b.Situations,
		Tags:        b.Tags,
	}
}

// Candidate is a single quote proposed by the generation service.
type Candidate struct {
	Author         string           `json:"author"`
	RelevanceScore *int             `json:"relevanceScore"`
	EN             *CandidateBundle `json:"en"`
	DE             *CandidateBundle `json:"de"`
}

// UnmarshalJSON accepts relevanceScore as an integer, a fraction or a
// numeric string. Anything else leaves the score unset instead of
// rejecting the candidate.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	type plain Candidate
	aux := struct {
		*plain
		RelevanceScore json.RawMessage `json:"relevanceScore"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.RelevanceScore = parseScore(aux.RelevanceScore)
	return nil
}

func parseScore(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "%")
		if f, err = strconv.ParseFloat(text, 64); err != nil {
			return nil
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	score := domain.ClampScore(int(math.Round(math.Max(-1, math.Min(f, 101)))))
	return &score
}

// Bundle returns the content for lang, or nil.
func (c *Candidate) Bundle(lang domain.Language) *CandidateBundle {
	switch lang {
	case domain.LanguageEnglish:
		return c.EN
	case domain.LanguageGerman:
		return c.DE
	default:
		return nil
	}
}

// BilingualComplete reports whether both languages carry a text of at
// least minCandidateTextLength characters.
func (c *Candidate) BilingualComplete() bool {
	for _, lang := range domain.SupportedLanguages {
		b := c.Bundle(lang)
		if b == nil || utf8.RuneCountInString(strings.TrimSpace(b.Text)) < minCandidateTextLength {
			return false
		}
	}
	return true
}

// ParseResult is the outcome of parsing a generation response.
// It is either ParseSuccess or ParseFailure.
type ParseResult interface {
	parseResult()
}

// ParseSuccess carries the decoded candidates.
type ParseSuccess struct {
	Candidates []Candidate
	// Strategy names the ladder step that succeeded.
	Strategy string
}

// ParseFailure explains why nothing could be decoded.
type ParseFailure struct {
	Reason string
}

func (ParseSuccess) parseResult() {}
func (ParseFailure) parseResult() {}

// Parse strategies, in the order they are attempted.
const (
	StrategyDirect  = "direct"
	StrategyCleaned = "cleaned"
	StrategyScanned = "scanned"
)

// ParseCandidates decodes a generation response into candidates. The
// response may be a JSON array or a single object. Steps are tried in order:
// direct decode; decode after stripping code fences and escaping raw
// newlines inside strings; extraction of every complete top-level object
// from a truncated or otherwise malformed response.
func ParseCandidates(raw string) ParseResult {
	if candidates, ok := decodeCandidates([]byte(strings.TrimSpace(raw))); ok {
		return ParseSuccess{Candidates: candidates, Strategy: StrategyDirect}
	}

	cleaned := escapeNewlinesInStrings(stripCodeFences(raw))
	if candidates, ok := decodeCandidates([]byte(cleaned)); ok {
		return ParseSuccess{Candidates: candidates, Strategy: StrategyCleaned}
	}

	var candidates []Candidate
	for _, obj := range scanObjects(cleaned) {
		var c Candidate
		if err := json.Unmarshal([]byte(obj), &c); err == nil {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) > 0 {
		return ParseSuccess{Candidates: candidates, Strategy: StrategyScanned}
	}

	return ParseFailure{Reason: "no parseable JSON object in response"}
}

// FilterBilingual drops candidates that are not bilingually complete.
func FilterBilingual(candidates []Candidate) []Candidate {
	kept := make([]Candidate, 0, len(candidates))
	for i := range candidates {
		if candidates[i].BilingualComplete() {
			kept = append(kept, candidates[i])
		}
	}
	return kept
}

func decodeCandidates(data []byte) ([]Candidate, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, false
	}
	switch data[0] {
	case '[':
		var list []Candidate
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, false
		}
		return list, true
	case '{':
		var wrapped struct {
			Quotes []Candidate `json:"quotes"`
		}
		if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Quotes) > 0 {
			return wrapped.Quotes, true
		}
		var single Candidate
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, false
		}
		return []Candidate{single}, true
	default:
		return nil, false
	}
}

// stripCodeFences removes markdown fences and any prose around the JSON.
func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)

	if strings.Contains(cleaned, "```") {
		lines := strings.Split(cleaned, "\n")
		kept := lines[:0]
		for _, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				continue
			}
			kept = append(kept, line)
		}
		cleaned = strings.TrimSpace(strings.Join(kept, "\n"))
	}

	if start := strings.IndexAny(cleaned, "[{"); start > 0 {
		cleaned = cleaned[start:]
	}
	return cleaned
}

// escapeNewlinesInStrings replaces raw line breaks and tabs inside string
// literals with their JSON escapes.
func escapeNewlinesInStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString, escaped := false, false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			case r == '\n':
				b.WriteString(`\n`)
				continue
			case r == '\r':
				continue
			case r == '\t':
				b.WriteString(`\t`)
				continue
			}
		} else if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

// scanObjects returns every balanced object that starts at brace depth
// zero, ignoring braces inside strings. An unterminated trailing object
// is dropped.
func scanObjects(s string) []string {
	var objects []string
	depth, start := 0, -1
	inString, escaped := false, false

	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				objects = append(objects, s[start:i+1])
				start = -1
			}
		}
	}
	return objects
}

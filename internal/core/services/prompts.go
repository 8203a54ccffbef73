package services

import (
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
)

// DefaultPrompts are the embedded prompt templates. A PromptStore may
// override any of them.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var DefaultPrompts = map[string]string{
	driven.PromptSearchSystem: `You are a compassionate curator of short, uplifting quotes, proverbs and scripture passages.
You always answer with valid JSON only: no markdown, no commentary.
Every quote must be provided in both English ("en") and German ("de"), with natural, idiomatic wording in each language.`,

	driven.PromptSearchUser: `Find %d quotes that speak to someone searching for: "%s" (the query is written in %s).

Return a JSON array. Each element must look like:
{
  "author": "name or empty string",
  "relevanceScore": 0-100,
  "en": {"text": "...", "reference": "...", "context": "...", "explanation": "...", "situations": ["..."], "tags": ["..."], "relevantQueries": ["..."]},
  "de": {"text": "...", "reference": "...", "context": "...", "explanation": "...", "situations": ["..."], "tags": ["..."], "relevantQueries": ["..."]}
}

Rules:
- "text" is required in both languages and must be at least 10 characters.
- "relevantQueries" lists 2-4 other short ways a person might phrase the same need, in that language.
- Do not repeat any of these quotes:
%s`,

	driven.PromptTranslate: `Translate this quote from %s to %s. Keep scripture references in the usual form for the target language.
Return ONLY a JSON object with the keys "text", "reference", "context", "explanation", "situations", "tags".

Quote:
%s`,
}

// promptLoader resolves templates from a store with embedded fallbacks.
type promptLoader struct {
	store driven.PromptStore
}

func (p promptLoader) load(name string) string {
	if p.store != nil {
		if prompt, err := p.store.Load(name); err == nil && prompt != "" {
			return prompt
		}
	}
	return DefaultPrompts[name]
}

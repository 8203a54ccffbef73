package driven

// PromptStore provides access to generation prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptSearchSystem is the system prompt for bilingual quote generation.
	// It has no placeholders.
	PromptSearchSystem = "search_system"

	// PromptSearchUser asks for quotes matching a query. Placeholders, in order:
	// %d (count), %s (query), %s (language name), %s (avoid list).
	PromptSearchUser = "search_user"

	// PromptTranslate asks for a translation bundle. Placeholders, in order:
	// %s (source language name), %s (target language name), %s (quote JSON).
	PromptTranslate = "translate"
)

package domain

// SeedData is the static content loaded into an empty store: the category
// taxonomy, synonym groups and curated quotes.
type SeedData struct {
	Categories    []SearchCategory
	SynonymGroups []SynonymGroup
	Quotes        []Quote
}

// SeedReport counts what a seed run wrote.
type SeedReport struct {
	Categories    int `json:"categories"`
	SynonymGroups int `json:"synonymGroups"`
	Quotes        int `json:"quotes"`
	Mappings      int `json:"mappings"`
}

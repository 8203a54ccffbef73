package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lumen/internal/core/domain"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find quotes for a situation",
	Long: `Runs a smart search for the given free-text query.

Results come from the cache tiers first (exact or synonym context, category,
full text). When fewer than the minimum are found and the daily AI quota
allows, new quotes are generated and cached.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	addLanguageFlag(searchCmd)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	ctx := commandContext(cmd)

	lang, err := parseLanguageFlag(cmd)
	if err != nil {
		return err
	}
	session, err := currentSession(ctx)
	if err != nil {
		return err
	}

	result, err := searchService.SmartSearch(ctx, domain.SearchRequest{
		Query:    strings.Join(args, " "),
		Language: lang,
		Session:  session,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, result)
	}
	return outputSearchTable(cmd, result, lang, session)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, result *domain.SmartSearchResult, lang domain.Language, session domain.Session) error {
	if result.Source == domain.SourceRateLimited {
		cmd.Printf("Daily search limit reached (%d/%d). Try again tomorrow.\n",
			result.RateLimit.SearchCount, result.RateLimit.MaxSearches)
		return nil
	}

	header := "Source: " + string(result.Source)
	if result.Category != "" {
		header += " (category: " + result.Category + ")"
	}
	if result.WasAIGenerated {
		header += " [generated]"
	}
	cmd.Println(header)

	if len(result.Quotes) == 0 {
		cmd.Println("No quotes found.")
	} else {
		cmd.Println()
		printQuotes(cmd, result.Quotes, lang)
	}

	if result.Error != "" {
		cmd.Printf("Note: %s\n", result.Error)
	}
	if !session.Anonymous() {
		cmd.Printf("Searches left today: %d\n", result.RateLimit.Remaining)
	}
	return nil
}

func printQuotes(cmd *cobra.Command, quotes []domain.Quote, lang domain.Language) {
	for i := range quotes {
		printQuote(cmd, i+1, &quotes[i], lang)
	}
}

func printQuote(cmd *cobra.Command, n int, q *domain.Quote, lang domain.Language) {
	b, ok := q.Bundle(lang)
	if !ok || b.Text == "" {
		b, _ = q.Bundle(q.Language)
	}
	cmd.Printf("  [%d] %q\n", n, b.Text)
	switch {
	case q.Author != "" && b.Reference != "":
		cmd.Printf("      %s, %s\n", q.Author, b.Reference)
	case q.Author != "":
		cmd.Printf("      %s\n", q.Author)
	case b.Reference != "":
		cmd.Printf("      %s\n", b.Reference)
	}
	cmd.Printf("      id: %s\n", q.ID)
	cmd.Println()
}

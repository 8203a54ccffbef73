package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List search categories",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var synonymsCmd = &cobra.Command{
	Use:   "synonyms [term...]",
	Short: "Show the synonym expansion of terms",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSynonyms,
}

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show today's search quota",
	Args:  cobra.NoArgs,
	RunE:  runLimits,
}

func init() {
	addLanguageFlag(categoriesCmd)
	addLanguageFlag(synonymsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(synonymsCmd)
	rootCmd.AddCommand(limitsCmd)
}

func runCategories(cmd *cobra.Command, _ []string) error {
	if taxonomyService == nil {
		return errors.New("taxonomy service not configured")
	}
	lang, err := parseLanguageFlag(cmd)
	if err != nil {
		return err
	}

	cats, err := taxonomyService.ListCategories(commandContext(cmd))
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		cmd.Println("No categories. Run 'lumen seed' first.")
		return nil
	}
	for i := range cats {
		cmd.Printf("  %-14s %s\n", cats[i].ID, cats[i].DisplayName(lang))
		if kw := cats[i].Keywords[lang]; len(kw) > 0 {
			cmd.Printf("  %-14s %s\n", "", strings.Join(kw, ", "))
		}
	}
	return nil
}

func runSynonyms(cmd *cobra.Command, args []string) error {
	if taxonomyService == nil {
		return errors.New("taxonomy service not configured")
	}
	lang, err := parseLanguageFlag(cmd)
	if err != nil {
		return err
	}

	terms, err := taxonomyService.FindSynonyms(commandContext(cmd), args, lang)
	if err != nil {
		return err
	}
	cmd.Println(strings.Join(terms, ", "))
	return nil
}

func runLimits(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	ctx := commandContext(cmd)
	session, err := requireSession(ctx)
	if err != nil {
		return err
	}

	status, err := searchService.CheckRateLimit(ctx, session.UserID)
	if err != nil {
		return err
	}
	cmd.Printf("Searches:    %d/%d\n", status.SearchCount, status.MaxSearches)
	cmd.Printf("AI searches: %d/%d\n", status.AISearchCount, status.MaxAISearches)
	cmd.Printf("Can search:  %t\n", status.CanSearch)
	cmd.Printf("Can use AI:  %t\n", status.CanUseAI)
	return nil
}

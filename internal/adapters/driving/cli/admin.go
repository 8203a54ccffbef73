package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load categories, synonyms and curated quotes",
	Long: `Loads the built-in seed data, or a TOML file in the same layout with --file.
Seeding twice leaves the store unchanged.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all stored data",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

var backfillLimit int

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Translate quotes missing a language",
	Long: `Asks the generation service to translate quotes that have no
content in the target language. Failures are skipped and reported.`,
	Args: cobra.NoArgs,
	RunE: runBackfill,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "seed file (default: built-in data)")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	addLanguageFlag(backfillCmd)
	backfillCmd.Flags().IntVarP(&backfillLimit, "limit", "n", 20, "maximum number of quotes to translate")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(backfillCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	if seeder == nil || loadSeed == nil {
		return errors.New("seeder not configured")
	}
	data, err := loadSeed(seedFile)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}
	report, err := seeder.Seed(commandContext(cmd), data)
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	cmd.Printf("Seeded %d categories, %d synonym groups, %d quotes (%d mappings)\n",
		report.Categories, report.SynonymGroups, report.Quotes, report.Mappings)
	return nil
}

func runReset(cmd *cobra.Command, _ []string) error {
	if quoteService == nil {
		return errors.New("quote service not configured")
	}
	if !resetYes {
		cmd.Print("This deletes every quote, context, history row and favourite. Continue? [y/N]: ")
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}
	if err := quoteService.Reset(commandContext(cmd)); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	cmd.Println("All data deleted.")
	return nil
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	if quoteService == nil {
		return errors.New("quote service not configured")
	}
	lang, err := parseLanguageFlag(cmd)
	if err != nil {
		return err
	}
	n, err := quoteService.BackfillTranslations(commandContext(cmd), lang, backfillLimit)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	cmd.Printf("Translated %d quotes into %s\n", n, lang.Name())
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change configuration",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var skipValidation bool

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [api-key]",
	Short: "Store the generation service API key",
	Long: `Stores the API key used for AI generation. Without an argument the key
is read from stdin (hidden when stdin is a terminal).

The key is checked against the configured endpoint before it is saved;
use --skip-validation to store it anyway.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigSetKey,
}

func init() {
	configSetKeyCmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "store the key without contacting the endpoint")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	ai := settingsService.AI()
	s := settingsService.Search()

	cmd.Println("AI")
	key := "(not set)"
	if ai.IsConfigured() {
		key = maskAPIKey(ai.APIKey)
	}
	cmd.Printf("  API key:   %s\n", key)
	cmd.Printf("  Endpoint:  %s\n", ai.BaseURL)
	cmd.Printf("  Model:     %s\n", ai.Model)
	cmd.Println()
	cmd.Println("Search")
	cmd.Printf("  Daily searches:     %d\n", s.MaxSearchesPerDay)
	cmd.Printf("  Daily AI searches:  %d\n", s.MaxAISearchesPerDay)
	cmd.Printf("  Min cached results: %d\n", s.MinCachedResults)
	cmd.Printf("  Max results:        %d\n", s.MaxResults)
	cmd.Printf("  Score bands:        >=%.0f high, >=%.0f medium\n", s.HighBand, s.MediumBand)
	cmd.Printf("  Reuse window:       %d days (premium %d)\n", s.FreeReuseDays, s.PremiumReuseDays)
	return nil
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		cmd.Print("Enter API key: ")
		key = readPassword(cmd.InOrStdin())
		cmd.Println()
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key is required")
	}

	if !skipValidation && validateKey != nil {
		candidate := settingsService.AI()
		candidate.APIKey = key
		cmd.Print("Validating key... ")
		if err := validateKey(commandContext(cmd), candidate); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("API key validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	if err := settingsService.SetAPIKey(key); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	cmd.Printf("API key stored (%s)\n", maskAPIKey(key))
	return nil
}

// readPassword reads without echo when in is a terminal.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

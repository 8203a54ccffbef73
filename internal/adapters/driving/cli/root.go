// Package cli implements the lumen command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
	"github.com/custodia-labs/lumen/internal/core/ports/driving"
	"github.com/custodia-labs/lumen/internal/logger"
)

// TokenEnv supplies the session token when --token is not given.
//
//nolint:gosec // G101: environment variable name, not a credential.
const TokenEnv = "LUMEN_TOKEN"

// version is set by SetVersion from build flags.
var version = "dev"

var (
	verbose  bool
	token    string
	inMemory bool
)

// Services are injected by main before Execute.
var (
	searchService   driving.SearchService
	taxonomyService driving.TaxonomyService
	quoteService    driving.QuoteService
	settingsService driving.SettingsService
	seeder          driving.Seeder
	sessions        driven.SessionResolver

	loadSeed    func(path string) (domain.SeedData, error)
	validateKey func(ctx context.Context, settings domain.AISettings) error
	watch       func(ctx context.Context) error
)

// Services holds everything the commands need.
type Services struct {
	Search   driving.SearchService
	Taxonomy driving.TaxonomyService
	Quotes   driving.QuoteService
	Settings driving.SettingsService
	Seeder   driving.Seeder
	Sessions driven.SessionResolver

	// LoadSeed returns seed data from path, or the built-in set for "".
	LoadSeed func(path string) (domain.SeedData, error)

	// ValidateKey checks generation settings before a key is stored.
	ValidateKey func(ctx context.Context, settings domain.AISettings) error

	// Watch reloads prompts and config on change until ctx ends.
	// Started in the background by the serve command.
	Watch func(ctx context.Context) error
}

// SetServices injects the application services.
func SetServices(s Services) {
	searchService = s.Search
	taxonomyService = s.Taxonomy
	quoteService = s.Quotes
	settingsService = s.Settings
	seeder = s.Seeder
	sessions = s.Sessions
	loadSeed = s.LoadSeed
	validateKey = s.ValidateKey
	watch = s.Watch
}

// SetVersion sets the version printed by 'lumen version'.
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "lumen",
	Short: "Smart quote search with a tiered cache and AI fallback",
	Long: `lumen finds quotes for a situation described in free text.

Searches are answered from cached contexts, categories and a full-text scan
first; when those find too little, new quotes are generated and cached for
the next person who asks something similar.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "session token (default $"+TokenEnv+")")
	rootCmd.PersistentFlags().BoolVar(&inMemory, MemoryFlag, false, "keep all data in memory for this run")
}

// MemoryFlag selects the in-memory store. main inspects it before
// Execute because the store is built before commands run.
const MemoryFlag = "memory"

// WantsMemoryStore reports whether args request the in-memory store.
func WantsMemoryStore(args []string) bool {
	for _, a := range args {
		if a == "--"+MemoryFlag || a == "--"+MemoryFlag+"=true" {
			return true
		}
		if a == "--" {
			return false
		}
	}
	return false
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// currentSession resolves the caller from --token or LUMEN_TOKEN.
// No token means an anonymous session.
func currentSession(ctx context.Context) (domain.Session, error) {
	t := token
	if t == "" {
		t = os.Getenv(TokenEnv)
	}
	if t == "" {
		return domain.Session{}, nil
	}
	if sessions == nil {
		return domain.Session{}, errors.New("session resolver not configured")
	}
	s, err := sessions.Resolve(ctx, t)
	if err != nil {
		return domain.Session{}, fmt.Errorf("resolve token: %w", err)
	}
	return s, nil
}

// requireSession is currentSession for commands that need a user.
func requireSession(ctx context.Context) (domain.Session, error) {
	s, err := currentSession(ctx)
	if err != nil {
		return s, err
	}
	if s.Anonymous() {
		return s, fmt.Errorf("%w: pass --token or set %s", domain.ErrUnauthenticated, TokenEnv)
	}
	return s, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseLanguageFlag(cmd *cobra.Command) (domain.Language, error) {
	code, err := cmd.Flags().GetString("language")
	if err != nil {
		return "", fmt.Errorf("getting language flag: %w", err)
	}
	return domain.ParseLanguage(code)
}

func addLanguageFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("language", "l", "en", "language code (en or de)")
}

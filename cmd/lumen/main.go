// Command lumen is the smart quote search CLI, HTTP API and MCP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/lumen/internal/adapters/driven/ai"
	"github.com/custodia-labs/lumen/internal/adapters/driven/auth"
	configfile "github.com/custodia-labs/lumen/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lumen/internal/adapters/driven/seed"
	"github.com/custodia-labs/lumen/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lumen/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lumen/internal/adapters/driving/cli"
	"github.com/custodia-labs/lumen/internal/core/domain"
	"github.com/custodia-labs/lumen/internal/core/ports/driven"
	"github.com/custodia-labs/lumen/internal/core/services"
	"github.com/custodia-labs/lumen/internal/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// stores is the set of persistence ports one backend provides.
type stores struct {
	quotes    driven.QuoteStore
	contexts  driven.ContextStore
	limits    driven.LimitStore
	history   driven.HistoryStore
	favorites driven.FavoriteStore
	taxonomy  driven.TaxonomyStore
	resetter  driven.Resetter
	close     func() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	useMemory := cli.WantsMemoryStore(os.Args[1:])

	var configStore driven.ConfigStore
	var fileConfig *configfile.ConfigStore
	if useMemory {
		configStore = memory.NewConfigStore()
	} else {
		fc, err := configfile.NewConfigStore("")
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		fileConfig = fc
		configStore = fc
	}

	st, err := openStores(useMemory)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := st.close(); cerr != nil {
			logger.Warn("Failed to close store: %v", cerr)
		}
	}()

	settingsService := services.NewSettingsService(configStore)
	searchSettings := settingsService.Search()

	llm, err := ai.CreateLLMService(settingsService.AI())
	if err != nil {
		return fmt.Errorf("create generation service: %w", err)
	}
	if llm != nil {
		defer llm.Close()
	}

	promptStore, err := configfile.NewPromptStore("", services.DefaultPrompts)
	if err != nil {
		return fmt.Errorf("create prompt store: %w", err)
	}

	sessions, err := auth.FromConfig(configStore)
	if err != nil {
		return fmt.Errorf("load %s: %w", auth.ConfigKey, err)
	}

	history := services.NewHistoryTracker(st.history, st.favorites, searchSettings, nil)
	limiter := services.NewRateLimiter(st.limits, searchSettings, nil)
	lookup := services.NewCacheLookup(st.quotes, st.contexts, st.taxonomy, history, nil, searchSettings)
	contexts := services.NewContextService(st.contexts, nil)

	generator := services.NewGenerator(llm, st.quotes, st.contexts, searchSettings, nil)
	generator.SetPromptStore(promptStore)

	searchService := services.NewSearchService(limiter, lookup, contexts, generator, history, st.quotes, searchSettings, nil)

	quoteService := services.NewQuoteService(st.quotes, st.favorites, history, nil)
	if llm != nil {
		quoteService.SetLLM(llm)
	}
	quoteService.SetPromptStore(promptStore)
	quoteService.SetResetter(st.resetter)

	seeder := services.NewSeedService(st.quotes, st.contexts, st.taxonomy, nil)
	if useMemory {
		// An in-memory run starts empty; give it the built-in content.
		data, err := seed.Default()
		if err != nil {
			return fmt.Errorf("load built-in seed: %w", err)
		}
		if _, err := seeder.Seed(ctx, data); err != nil {
			return fmt.Errorf("seed memory store: %w", err)
		}
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Search:      searchService,
		Taxonomy:    services.NewTaxonomyService(st.taxonomy),
		Quotes:      quoteService,
		Settings:    settingsService,
		Seeder:      seeder,
		Sessions:    sessions,
		LoadSeed:    loadSeed,
		ValidateKey: ai.ValidateLLMConfig,
		Watch: func(ctx context.Context) error {
			return watchFiles(ctx, promptStore, fileConfig, sessions)
		},
	})

	return cli.Execute(ctx)
}

func openStores(useMemory bool) (*stores, error) {
	if useMemory {
		m := memory.NewStore()
		return &stores{
			quotes:    m.Quotes,
			contexts:  m.Contexts,
			limits:    m.Limits,
			history:   m.History,
			favorites: m.Favorites,
			taxonomy:  m.Taxonomy,
			resetter:  m,
			close:     func() error { return nil },
		}, nil
	}

	s, err := sqlite.NewStore("")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &stores{
		quotes:    s.QuoteStore(),
		contexts:  s.ContextStore(),
		limits:    s.LimitStore(),
		history:   s.HistoryStore(),
		favorites: s.FavoriteStore(),
		taxonomy:  s.TaxonomyStore(),
		resetter:  s,
		close:     s.Close,
	}, nil
}

func loadSeed(path string) (domain.SeedData, error) {
	if path == "" {
		return seed.Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return domain.SeedData{}, err
	}
	defer f.Close()
	return seed.Load(f)
}

// watchFiles reloads prompt templates and session tokens while serving.
// Search settings are read once at startup.
func watchFiles(ctx context.Context, prompts *configfile.PromptStore, cfg *configfile.ConfigStore, sessions *auth.StaticResolver) error {
	w, err := configfile.NewWatcher(0)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(prompts.Dir(), 0o700); err != nil {
		return fmt.Errorf("create prompt directory: %w", err)
	}
	if err := w.WatchDir(prompts.Dir(), func(path string) {
		logger.Info("Prompt file changed (%s), reloading templates", path)
		prompts.Reload()
	}); err != nil {
		return err
	}

	if cfg != nil {
		if err := w.WatchFile(cfg.Path(), func(string) {
			if err := cfg.Load(); err != nil {
				logger.Error("Reload config: %v", err)
				return
			}
			if err := sessions.Replace(cfg.GetStringSlice(auth.ConfigKey)); err != nil {
				logger.Error("Reload %s: %v", auth.ConfigKey, err)
				return
			}
			logger.Info("Reloaded %d session tokens", sessions.Len())
		}); err != nil {
			return err
		}
	}

	return w.Run(ctx)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/lumen/internal/adapters/driving/api"
	"github.com/custodia-labs/lumen/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the JSON API:

  POST   /api/search              {"query": "...", "language": "en"}
  GET    /api/limits
  GET    /api/categories
  GET    /api/synonyms?terms=a,b&language=de
  GET    /api/daily?language=en
  GET    /api/favorites
  POST   /api/favorites/{quoteId}
  DELETE /api/favorites/{quoteId}

Callers authenticate with "Authorization: Bearer <token>" using the tokens
listed under auth.sessions in the config file. Requests without a token
are anonymous. Prompt files and the config file are reloaded on change.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1:8420", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	server, err := api.NewServer(&api.Ports{
		Search:   searchService,
		Taxonomy: taxonomyService,
		Quotes:   quoteService,
		Sessions: sessions,
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(commandContext(cmd))
	if watch != nil {
		g.Go(func() error {
			if err := watch(ctx); err != nil {
				logger.Warn("File watcher stopped: %v", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		fmt.Fprintf(cmd.OutOrStdout(), "lumen API listening on http://%s\n", addr)
		return server.Run(ctx, addr)
	})
	return g.Wait()
}

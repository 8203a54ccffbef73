package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var dailyJSON bool

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show today's quote",
	Long: `Shows the quote of the day. With a session token the pick is
remembered for the rest of the day and avoids quotes seen recently.`,
	Args: cobra.NoArgs,
	RunE: runDaily,
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite",
	Short: "Manage favourite quotes",
	Long:  `Favourites are never returned by search again, so new results stay fresh.`,
}

var favoriteAddCmd = &cobra.Command{
	Use:   "add [quote-id]",
	Short: "Save a quote",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoriteAdd,
}

var favoriteRemoveCmd = &cobra.Command{
	Use:   "remove [quote-id]",
	Short: "Remove a saved quote",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoriteRemove,
}

var favoriteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved quotes",
	Args:  cobra.NoArgs,
	RunE:  runFavoriteList,
}

func init() {
	addLanguageFlag(dailyCmd)
	dailyCmd.Flags().BoolVar(&dailyJSON, "json", false, "output the quote as JSON")
	addLanguageFlag(favoriteListCmd)

	favoriteCmd.AddCommand(favoriteAddCmd)
	favoriteCmd.AddCommand(favoriteRemoveCmd)
	favoriteCmd.AddCommand(favoriteListCmd)
	rootCmd.AddCommand(dailyCmd)
	rootCmd.AddCommand(favoriteCmd)
}

func runDaily(cmd *cobra.Command, _ []string) error {
	if quoteService == nil {
		return errors.New("quote service not configured")
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

	quote, err := quoteService.DailyQuote(ctx, session, lang)
	if err != nil {
		return err
	}
	if dailyJSON {
		return outputJSON(cmd, quote)
	}
	printQuote(cmd, 1, quote, lang)
	return nil
}

func runFavoriteAdd(cmd *cobra.Command, args []string) error {
	if quoteService == nil {
		return errors.New("quote service not configured")
	}
	ctx := commandContext(cmd)
	session, err := requireSession(ctx)
	if err != nil {
		return err
	}
	if err := quoteService.AddFavorite(ctx, session.UserID, args[0]); err != nil {
		return err
	}
	cmd.Printf("Saved %s\n", args[0])
	return nil
}

func runFavoriteRemove(cmd *cobra.Command, args []string) error {
	if quoteService == nil {
		return errors.New("quote service not configured")
	}
	ctx := commandContext(cmd)
	session, err := requireSession(ctx)
	if err != nil {
		return err
	}
	if err := quoteService.RemoveFavorite(ctx, session.UserID, args[0]); err != nil {
		return err
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}

func runFavoriteList(cmd *cobra.Command, _ []string) error {
	if quoteService == nil {
		return errors.New("quote service not configured")
	}
	ctx := commandContext(cmd)
	lang, err := parseLanguageFlag(cmd)
	if err != nil {
		return err
	}
	session, err := requireSession(ctx)
	if err != nil {
		return err
	}

	quotes, err := quoteService.ListFavorites(ctx, session.UserID)
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		cmd.Println("No favourites yet.")
		return nil
	}
	printQuotes(cmd, quotes, lang)
	return nil
}

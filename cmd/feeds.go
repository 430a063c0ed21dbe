package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bimmerbailey/surprise/internal/config"
	"github.com/bimmerbailey/surprise/internal/feeds"
	"github.com/bimmerbailey/surprise/internal/output"
)

var newsCmd = &cobra.Command{
	Use:   "news [query]",
	Short: "Search recent news headlines",
	Long: `Search newsapi.org for the newest English articles matching a query.
Requires NEWS_API_KEY (or [news] api_key in the secrets file).

Examples:
  surprise news golang
  surprise news "electric cars" --format table`,
	RunE: runNews,
}

var stockCmd = &cobra.Command{
	Use:   "stock [ticker]",
	Short: "Show daily prices for a ticker",
	Long: `Fetch the Alpha Vantage daily series for a ticker.
Requires ALPHAVANTAGE_API_KEY (or [stocks] api_key in the secrets file).

Examples:
  surprise stock IBM
  surprise stock MSFT --days 5 --format table`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStock,
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List today's football fixtures",
	Long: `List today's fixtures from football-data.org.
Requires FOOTBALL_DATA_API_KEY (or [football] api_key in the secrets file).

Examples:
  surprise matches
  surprise matches --competition CL`,
	Args: cobra.NoArgs,
	RunE: runMatches,
}

func init() {
	stockCmd.Flags().Int("days", 0, "only show the most recent N days (0 = all)")
	matchesCmd.Flags().String("competition", "", "competition code (default from config, e.g. PL)")

	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(stockCmd)
	rootCmd.AddCommand(matchesCmd)
}

func loadFeeds() (*feeds.Clients, config.FeedsConfig, error) {
	cfg, err := loadConfig(newLogger())
	if err != nil {
		return nil, config.FeedsConfig{}, err
	}
	return feeds.FromConfig(cfg.Feeds), cfg.Feeds, nil
}

// feedError adds the variable to set when a key is missing.
func feedError(err error, envVar string) error {
	if errors.Is(err, feeds.ErrMissingCredentials) {
		return fmt.Errorf("%w: set %s or add it to the secrets file", err, envVar)
	}
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runNews(cmd *cobra.Command, args []string) error {
	clients, fc, err := loadFeeds()
	if err != nil {
		return err
	}
	query := fc.Query
	if len(args) > 0 {
		query = strings.Join(args, " ")
	}

	articles, err := clients.News.Search(commandContext(cmd), query)
	if err != nil {
		return feedError(err, "NEWS_API_KEY")
	}
	return output.New(cmd.OutOrStdout(), outputFormat()).WriteArticles(articles)
}

func runStock(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")
	if days < 0 {
		return fmt.Errorf("invalid --days: %d", days)
	}

	clients, fc, err := loadFeeds()
	if err != nil {
		return err
	}
	ticker := fc.Ticker
	if len(args) == 1 {
		ticker = args[0]
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	points, err := clients.Stocks.Daily(commandContext(cmd), ticker)
	if err != nil {
		return feedError(err, "ALPHAVANTAGE_API_KEY")
	}
	if days > 0 && len(points) > days {
		points = points[len(points)-days:]
	}
	return output.New(cmd.OutOrStdout(), outputFormat()).WritePrices(ticker, points)
}

func runMatches(cmd *cobra.Command, args []string) error {
	competition, _ := cmd.Flags().GetString("competition")

	clients, fc, err := loadFeeds()
	if err != nil {
		return err
	}
	if competition == "" {
		competition = fc.Competition
	}

	matches, err := clients.Football.Today(commandContext(cmd), competition)
	if err != nil {
		return feedError(err, "FOOTBALL_DATA_API_KEY")
	}
	return output.New(cmd.OutOrStdout(), outputFormat()).WriteMatches(matches)
}

package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/surprise/internal/feeds"
	"github.com/bimmerbailey/surprise/internal/llm"
	"github.com/bimmerbailey/surprise/internal/session"
	"github.com/bimmerbailey/surprise/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web playground",
	Long: `Start the HTTP server with every page: press releases, action plans,
the joke and haiku playground, tic-tac-toe, chat, images, the market
dashboard, football fixtures and the log viewer.

The server still starts without an LLM; generation pages then show how to
configure one. Prometheus metrics are served on /metrics.

Examples:
  surprise serve
  surprise serve --addr 127.0.0.1:9000 --provider ollama`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().String("log-file", "", "log file shown on the /logs page")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("logs.path", serveCmd.Flags().Lookup("log-file"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := newProvider(ctx, cfg, logger, prometheus.DefaultRegisterer)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Warn("no LLM configured, generation pages are disabled", "error", err)
		provider = nil
	case err != nil:
		return err
	}

	images, err := llm.NewImageGenerator(ctx, cfg, logger)
	if err != nil {
		logger.Info("image generation disabled", "error", err)
		images = nil
	}

	srv, err := web.New(web.Deps{
		Config:   cfg,
		Logger:   logger,
		Provider: provider,
		Images:   images,
		Feeds:    feeds.FromConfig(cfg.Feeds),
		Store:    session.NewStore(cfg.Server.SessionTTL),
	})
	if err != nil {
		return err
	}

	return srv.Run(ctx)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/surprise/internal/config"
	"github.com/bimmerbailey/surprise/internal/llm"
	"github.com/bimmerbailey/surprise/internal/llm/fake"
	"github.com/bimmerbailey/surprise/internal/output"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "surprise",
	Short: "A playground of small generative apps",
	Long: `Surprise bundles a handful of LLM toys behind one CLI and web server:
press releases, action plans, jokes, haiku, tic-tac-toe, chat, images,
a news and market dashboard, football fixtures and a log tail viewer.

Examples:
  surprise serve --addr :8080
  surprise prompt press-release --subject Acme --year 2100 --detail "space expansion"
  surprise generate action-plan --subject GadgetPro --detail "the buttons are too small"
  surprise joke cats --count 3
  surprise logs /var/log/app.log -n 50 --summarize
  surprise news golang --format table`,
	SilenceUsage: true,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.surprise.yaml)")
	rootCmd.PersistentFlags().String("format", "text", "output format (text, json, table)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("provider", "", "LLM provider (ollama, openai, anthropic, gemini, fake)")
	rootCmd.PersistentFlags().String("secrets", config.DefaultSecretsFile, "TOML secrets file with [openai] api_key style sections")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file consulted for API keys")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("llm.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("secrets_file", rootCmd.PersistentFlags().Lookup("secrets"))
	_ = viper.BindPFlag("env_file", rootCmd.PersistentFlags().Lookup("env-file"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".surprise")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SURPRISE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func setDefaults() {
	viper.SetDefault("format", "text")
	viper.SetDefault("verbose", false)
	viper.SetDefault("secrets_file", config.DefaultSecretsFile)
	viper.SetDefault("env_file", ".env")

	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.max_tokens", 1024)
	viper.SetDefault("llm.ollama.host", "http://localhost:11434")
	viper.SetDefault("llm.ollama.model", "llama3.2")
	viper.SetDefault("llm.openai.model", "gpt-4o-mini")
	viper.SetDefault("llm.anthropic.model", "claude-3-5-haiku-latest")
	viper.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("llm.gemini.image_model", "imagen-3.0-generate-002")

	viper.SetDefault("feeds.competition", "PL")
	viper.SetDefault("feeds.ticker", "IBM")
	viper.SetDefault("feeds.query", "technology")
	viper.SetDefault("feeds.timeout", "15s")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.session_ttl", "30m")
	viper.SetDefault("server.cookie_name", "surprise_session")

	viper.SetDefault("logs.max_lines", 200)

	viper.SetDefault("redaction.enabled", true)
}

// loadConfig unmarshals viper into a Config and resolves API keys from the
// secrets file, the dotenv file and the environment. Unreadable secrets are
// logged, never fatal.
func loadConfig(logger *slog.Logger) (*config.Config, error) {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	secrets, err := config.LoadSecrets(cfg.SecretsFile, cfg.EnvFile)
	if err != nil {
		logger.Warn("could not read secrets", "error", err)
	}
	config.ApplySecrets(cfg, secrets)
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelError
	if viper.GetBool("verbose") {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func outputFormat() output.Format {
	return output.ParseFormat(viper.GetString("format"))
}

// newProvider is replaced in tests.
var newProvider = buildProvider

// buildProvider creates the configured provider. "fake" selects the
// in-memory echo provider for offline demos. When reg is non-nil the
// provider is instrumented.
func buildProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (llm.Provider, error) {
	name := strings.ToLower(cfg.LLM.Provider)

	var p llm.Provider
	if name == "fake" {
		p = fake.New()
	} else {
		var err error
		p, err = llm.NewProvider(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
	}

	if reg != nil {
		p = llm.Instrument(p, name, reg)
	}
	return p, nil
}

// requireProvider is used by commands that cannot do anything without an
// LLM. The error carries the configuration hint.
func requireProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (llm.Provider, error) {
	p, err := newProvider(ctx, cfg, logger, nil)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, llm.ErrNotConfigured) {
		return nil, fmt.Errorf("%w\n\nTroubleshooting:\n- Set llm.provider in ~/.surprise.yaml (ollama, openai, anthropic, gemini)\n- Add an api_key under [%s] in %s\n- Or export the provider's *_API_KEY variable",
			err, strings.ToLower(cfg.LLM.Provider), cfg.SecretsFile)
	}
	return nil, fmt.Errorf("failed to create LLM provider: %w", err)
}

// chatOptions applies the configured sampling settings and model.
func chatOptions(cfg *config.Config) *llm.ChatOptions {
	return &llm.ChatOptions{
		Model:       llm.DefaultModel(cfg),
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	}
}

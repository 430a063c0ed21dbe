package llm

import (
	"fmt"
	"log/slog"

	"github.com/bimmerbailey/surprise/internal/config"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
)

// newOpenAIProvider creates an OpenAI provider. The API key must already be
// resolved into cfg (see config.ApplySecrets).
func newOpenAIProvider(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	apiKey := cfg.LLM.OpenAI.APIKey
	if apiKey == "" {
		return nil, fmt.Errorf(
			"%w: openai api key missing: set OPENAI_API_KEY, [openai] api_key in secrets.toml, or llm.openai.api_key in config",
			ErrNotConfigured,
		)
	}

	model := cfg.LLM.OpenAI.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}

	if cfg.LLM.OpenAI.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.LLM.OpenAI.BaseURL))
	}

	if cfg.LLM.OpenAI.OrgID != "" {
		opts = append(opts, openai.WithOrganization(cfg.LLM.OpenAI.OrgID))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai provider: %w", err)
	}

	logger.Info("initialized openai provider",
		"model", model,
		"base_url", cfg.LLM.OpenAI.BaseURL,
	)

	return &langchainAdapter{
		model:        client,
		defaultModel: model,
		providerType: "openai",
		logger:       logger,
	}, nil
}

// newAnthropicProvider creates an Anthropic/Claude provider.
func newAnthropicProvider(cfg *config.Config, logger *slog.Logger) (Provider, error) {
	apiKey := cfg.LLM.Anthropic.APIKey
	if apiKey == "" {
		return nil, fmt.Errorf(
			"%w: anthropic api key missing: set ANTHROPIC_API_KEY, [anthropic] api_key in secrets.toml, or llm.anthropic.api_key in config",
			ErrNotConfigured,
		)
	}

	model := cfg.LLM.Anthropic.Model
	if model == "" {
		model = defaultAnthropicModel
	}

	client, err := anthropic.New(
		anthropic.WithToken(apiKey),
		anthropic.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create anthropic provider: %w", err)
	}

	logger.Info("initialized anthropic provider", "model", model)

	return &langchainAdapter{
		model:        client,
		defaultModel: model,
		providerType: "anthropic",
		logger:       logger,
	}, nil
}

// Package ollama talks to a local Ollama server for the playground apps.
//
// To avoid import cycles this package defines its own message and option
// types; the parent llm package adapts them to llm.Provider.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// Provider implements the LLM provider interface for Ollama.
type Provider struct {
	client    *api.Client
	config    Config
	keepAlive *api.Duration
	logger    *slog.Logger
}

// Config holds Ollama-specific configuration.
type Config struct {
	// Host is the Ollama API endpoint (e.g., "http://localhost:11434")
	Host string

	// Model is the default model to use (e.g., "llama3.2")
	Model string

	// KeepAlive controls how long the model stays loaded (e.g. "5m").
	// Empty uses the server default.
	KeepAlive string
}

// Message represents a single message in a conversation.
type Message struct {
	Role    string
	Content string
}

// ChatOptions configures chat behavior.
type ChatOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// Response represents a complete LLM response.
type Response struct {
	Content      string
	Model        string
	TokensPrompt int
	TokensTotal  int
}

// StreamEvent represents a single event in a streaming response.
type StreamEvent struct {
	Content string
	Done    bool
	Error   error
}

// Common errors
var (
	ErrProviderUnavailable = errors.New("llm provider is not reachable")
	ErrContextCanceled     = errors.New("operation was canceled")
)

// New creates a new Ollama provider.
// If cfg.Host is empty, it uses the OLLAMA_HOST environment variable or defaults to http://localhost:11434.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	// Start with environment-based client (respects OLLAMA_HOST)
	client, err := api.ClientFromEnvironment()
	if err != nil {
		logger.Error("failed to create ollama client from environment", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	// Override with explicit config if provided
	if cfg.Host != "" {
		parsedURL, err := url.Parse(cfg.Host)
		if err != nil {
			logger.Error("invalid ollama host URL", "host", cfg.Host, "error", err)
			return nil, fmt.Errorf("invalid ollama host: %w", err)
		}

		client = api.NewClient(parsedURL, http.DefaultClient)
		logger.Debug("created ollama client with explicit host", "host", cfg.Host)
	} else {
		logger.Debug("created ollama client from environment")
	}

	// Set default model if not specified
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
		logger.Debug("using default model", "model", cfg.Model)
	}

	var keepAlive *api.Duration
	if cfg.KeepAlive != "" {
		d, err := time.ParseDuration(cfg.KeepAlive)
		if err != nil {
			return nil, fmt.Errorf("invalid ollama keep_alive %q: %w", cfg.KeepAlive, err)
		}
		keepAlive = &api.Duration{Duration: d}
	}

	return &Provider{
		client:    client,
		config:    cfg,
		keepAlive: keepAlive,
		logger:    logger,
	}, nil
}

// buildRequest converts messages and options into an Ollama chat request.
func (p *Provider) buildRequest(messages []Message, opts *ChatOptions, stream bool) *api.ChatRequest {
	model := p.config.Model
	temperature := float32(0)
	maxTokens := 0
	if opts != nil {
		if opts.Model != "" {
			model = opts.Model
		}
		temperature = opts.Temperature
		maxTokens = opts.MaxTokens
	}

	ollamaMessages := make([]api.Message, len(messages))
	for i, msg := range messages {
		ollamaMessages[i] = api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	req := &api.ChatRequest{
		Model:    model,
		Messages: ollamaMessages,
		Options: map[string]interface{}{
			"temperature": temperature,
		},
		Stream:    ptrBool(stream),
		KeepAlive: p.keepAlive,
	}
	if maxTokens > 0 {
		req.Options["num_predict"] = maxTokens
	}
	return req
}

// Chat sends messages to Ollama and returns a complete response.
func (p *Provider) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	req := p.buildRequest(messages, opts, false)
	p.logger.Debug("sending chat request", "model", req.Model, "messages", len(messages))

	var response api.ChatResponse
	err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		response = resp
		return nil
	})

	if err != nil {
		p.logger.Error("chat request failed", "error", err, "model", req.Model)
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %v", ErrContextCanceled, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	p.logger.Debug("chat request completed",
		"model", response.Model,
		"prompt_tokens", response.PromptEvalCount,
		"total_tokens", response.EvalCount)

	return &Response{
		Content:      response.Message.Content,
		Model:        response.Model,
		TokensPrompt: response.PromptEvalCount,
		TokensTotal:  response.PromptEvalCount + response.EvalCount,
	}, nil
}

// ChatStream sends messages to Ollama and returns a channel of streaming events.
func (p *Provider) ChatStream(ctx context.Context, messages []Message, opts *ChatOptions) (<-chan StreamEvent, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	req := p.buildRequest(messages, opts, true)
	model := req.Model
	p.logger.Debug("starting chat stream", "model", model, "messages", len(messages))

	// Create channel for streaming events
	eventChan := make(chan StreamEvent, 10)

	// Every stream ends with exactly one Done or Error event.
	go func() {
		defer close(eventChan)

		finished := false
		err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if resp.Message.Content != "" {
				eventChan <- StreamEvent{Content: resp.Message.Content}
			}

			if resp.Done {
				p.logger.Debug("chat stream completed",
					"model", resp.Model,
					"prompt_tokens", resp.PromptEvalCount,
					"total_tokens", resp.EvalCount)
				finished = true
				eventChan <- StreamEvent{Done: true}
			}

			return nil
		})

		switch {
		case finished:
		case ctx.Err() != nil || errors.Is(err, context.Canceled):
			p.logger.Debug("chat stream canceled by context")
			cause := ctx.Err()
			if cause == nil {
				cause = err
			}
			eventChan <- StreamEvent{
				Error: fmt.Errorf("%w: %v", ErrContextCanceled, cause),
				Done:  true,
			}
		case err != nil:
			p.logger.Error("chat stream failed", "error", err, "model", model)
			eventChan <- StreamEvent{
				Error: fmt.Errorf("%w: %v", ErrProviderUnavailable, err),
				Done:  true,
			}
		default:
			eventChan <- StreamEvent{
				Error: errors.New("stream ended without a final chunk"),
				Done:  true,
			}
		}
	}()

	return eventChan, nil
}

// Heartbeat checks if the Ollama service is reachable and healthy.
func (p *Provider) Heartbeat(ctx context.Context) error {
	p.logger.Debug("checking ollama heartbeat")

	err := p.client.Heartbeat(ctx)
	if err != nil {
		p.logger.Error("ollama heartbeat failed", "error", err)
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	p.logger.Debug("ollama heartbeat successful")
	return nil
}

// ModelAvailable checks if a specific model is available (i.e., has been pulled).
func (p *Provider) ModelAvailable(ctx context.Context, model string) (bool, error) {
	p.logger.Debug("checking model availability", "model", model)

	// List all available models
	listResp, err := p.client.List(ctx)
	if err != nil {
		p.logger.Error("failed to list models", "error", err)
		return false, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	// Check if requested model is in the list
	for _, modelInfo := range listResp.Models {
		if modelInfo.Name == model || modelInfo.Model == model {
			p.logger.Debug("model is available", "model", model)
			return true, nil
		}
	}

	p.logger.Debug("model not found", "model", model, "available_count", len(listResp.Models))
	return false, nil
}

// ptrBool returns a pointer to a bool value.
func ptrBool(b bool) *bool {
	return &b
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bimmerbailey/surprise/internal/config"
	"github.com/bimmerbailey/surprise/internal/llm/ollama"
)

// Provider defines the interface for LLM interactions.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Chat sends messages and returns a complete response.
	// The context can be used to cancel the request.
	Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error)

	// ChatStream sends messages and returns a channel of streaming events.
	// The channel will be closed when the stream completes or encounters an error.
	ChatStream(ctx context.Context, messages []Message, opts *ChatOptions) (<-chan StreamEvent, error)

	// Heartbeat checks if the provider is reachable and healthy.
	Heartbeat(ctx context.Context) error

	// ModelAvailable checks if a specific model is available for use.
	ModelAvailable(ctx context.Context, model string) (bool, error)
}

// ImageGenerator produces an image from a text prompt.
type ImageGenerator interface {
	// GenerateImage renders prompt at the requested size ("1024x1024",
	// "16:9", ...). Unknown sizes fall back to a square image.
	GenerateImage(ctx context.Context, prompt, size string) (*Image, error)
}

// Message represents a single message in a conversation.
type Message struct {
	// Role identifies the message sender: "system", "user", or "assistant"
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// Roles used in Message.Role.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatOptions configures chat behavior.
// All fields are optional; nil opts uses provider defaults.
type ChatOptions struct {
	// Model specifies which model to use (e.g., "llama3.2", "gpt-4o-mini")
	Model string

	// Temperature controls randomness (0.0 = deterministic, 2.0 = very random)
	Temperature float32

	// MaxTokens limits the response length (0 = provider default)
	MaxTokens int
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
	// Content is the incremental text chunk
	Content string

	// Done indicates if this is the final event in the stream
	Done bool

	// Error terminates the stream when non-nil
	Error error
}

// Image is a generated image held in memory.
type Image struct {
	Data     []byte
	MIMEType string
	Prompt   string
}

// Common errors returned by LLM providers.
var (
	// ErrProviderUnavailable indicates the LLM provider is not reachable
	ErrProviderUnavailable = errors.New("llm provider is not reachable")

	// ErrModelNotFound indicates the requested model is not available
	ErrModelNotFound = errors.New("requested model is not available")

	// ErrInvalidResponse indicates the provider returned an invalid response
	ErrInvalidResponse = errors.New("provider returned invalid response")

	// ErrContextCanceled indicates the operation was canceled via context
	ErrContextCanceled = errors.New("operation was canceled")

	// ErrNotConfigured indicates a provider was requested without the
	// credentials or settings it needs.
	ErrNotConfigured = errors.New("llm provider is not configured")
)

// NewProvider creates an LLM provider based on the configuration.
// Returns an error wrapping ErrNotConfigured when credentials are missing so
// callers can degrade instead of failing.
func NewProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Provider, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	providerType := strings.ToLower(cfg.LLM.Provider)
	logger.Debug("creating llm provider", "type", providerType)

	switch providerType {
	case "ollama":
		ollamaProvider, err := ollama.New(ollama.Config{
			Host:      cfg.LLM.Ollama.Host,
			Model:     cfg.LLM.Ollama.Model,
			KeepAlive: cfg.LLM.Ollama.KeepAlive,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &ollamaProviderAdapter{provider: ollamaProvider}, nil

	case "openai":
		return newOpenAIProvider(cfg, logger)

	case "anthropic":
		return newAnthropicProvider(cfg, logger)

	case "gemini":
		gp, err := newGeminiProvider(ctx, cfg.LLM.Gemini, logger)
		if err != nil {
			return nil, err
		}
		return gp, nil

	case "":
		return nil, fmt.Errorf("%w: llm.provider not specified in configuration", ErrNotConfigured)

	default:
		return nil, fmt.Errorf("unknown llm provider: %s (supported: ollama, openai, anthropic, gemini)", providerType)
	}
}

// NewImageGenerator returns the image backend. Only Gemini/Imagen is wired.
func NewImageGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ImageGenerator, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("config and logger are required")
	}
	gp, err := newGeminiProvider(ctx, cfg.LLM.Gemini, logger)
	if err != nil {
		return nil, err
	}
	return gp, nil
}

// DefaultModel returns the configured model name for the active provider.
func DefaultModel(cfg *config.Config) string {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "ollama":
		return cfg.LLM.Ollama.Model
	case "openai":
		return cfg.LLM.OpenAI.Model
	case "anthropic":
		return cfg.LLM.Anthropic.Model
	case "gemini":
		return cfg.LLM.Gemini.Model
	}
	return ""
}

// ollamaProviderAdapter adapts the ollama.Provider to the llm.Provider interface.
// This is needed to avoid import cycles between llm and ollama packages.
type ollamaProviderAdapter struct {
	provider *ollama.Provider
}

func toOllama(messages []Message, opts *ChatOptions) ([]ollama.Message, *ollama.ChatOptions) {
	ollamaMessages := make([]ollama.Message, len(messages))
	for i, msg := range messages {
		ollamaMessages[i] = ollama.Message{Role: msg.Role, Content: msg.Content}
	}

	var ollamaOpts *ollama.ChatOptions
	if opts != nil {
		ollamaOpts = &ollama.ChatOptions{
			Model:       opts.Model,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		}
	}
	return ollamaMessages, ollamaOpts
}

func (a *ollamaProviderAdapter) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	msgs, o := toOllama(messages, opts)
	resp, err := a.provider.Chat(ctx, msgs, o)
	if err != nil {
		return nil, translateOllamaError(err)
	}

	return &Response{
		Content:      resp.Content,
		Model:        resp.Model,
		TokensPrompt: resp.TokensPrompt,
		TokensTotal:  resp.TokensTotal,
	}, nil
}

func (a *ollamaProviderAdapter) ChatStream(ctx context.Context, messages []Message, opts *ChatOptions) (<-chan StreamEvent, error) {
	msgs, o := toOllama(messages, opts)
	ollamaStream, err := a.provider.ChatStream(ctx, msgs, o)
	if err != nil {
		return nil, translateOllamaError(err)
	}

	eventChan := make(chan StreamEvent, 10)
	go func() {
		defer close(eventChan)
		finished := false
		for ev := range ollamaStream {
			if ev.Done || ev.Error != nil {
				finished = true
			}
			eventChan <- StreamEvent{
				Content: ev.Content,
				Done:    ev.Done,
				Error:   translateOllamaError(ev.Error),
			}
		}
		if finished {
			return
		}
		if err := ctx.Err(); err != nil {
			eventChan <- StreamEvent{Error: fmt.Errorf("%w: %v", ErrContextCanceled, err), Done: true}
			return
		}
		eventChan <- StreamEvent{Error: fmt.Errorf("%w: stream closed without a final event", ErrInvalidResponse), Done: true}
	}()

	return eventChan, nil
}

func (a *ollamaProviderAdapter) Heartbeat(ctx context.Context) error {
	return translateOllamaError(a.provider.Heartbeat(ctx))
}

func (a *ollamaProviderAdapter) ModelAvailable(ctx context.Context, model string) (bool, error) {
	ok, err := a.provider.ModelAvailable(ctx, model)
	return ok, translateOllamaError(err)
}

// translateOllamaError maps the ollama package sentinels onto ours so callers
// only need to check llm errors.
func translateOllamaError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ollama.ErrContextCanceled):
		return fmt.Errorf("%w: %v", ErrContextCanceled, err)
	case errors.Is(err, ollama.ErrProviderUnavailable):
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	default:
		return err
	}
}

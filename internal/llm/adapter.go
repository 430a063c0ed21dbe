package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
)

// langchainAdapter implements the Provider interface using langchaingo.
// This adapter translates between our Provider interface and langchaingo's llms.Model.
type langchainAdapter struct {
	model        llms.Model
	defaultModel string
	providerType string
	logger       *slog.Logger
}

// Chat sends messages and returns a complete response.
func (a *langchainAdapter) Chat(ctx context.Context, messages []Message, opts *ChatOptions) (*Response, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	a.logger.Debug("sending chat request", "provider", a.providerType, "messages", len(messages))

	resp, err := a.model.GenerateContent(ctx, convertMessages(messages), convertOptions(opts, a.defaultModel)...)
	if err != nil {
		a.logger.Error("chat request failed", "provider", a.providerType, "error", err)
		return nil, wrapError(err)
	}

	out := convertResponse(resp, a.defaultModel)
	if out.Content == "" {
		return nil, fmt.Errorf("%w: empty completion from %s", ErrInvalidResponse, a.providerType)
	}
	return out, nil
}

// ChatStream sends messages and returns a channel of streaming events.
func (a *langchainAdapter) ChatStream(ctx context.Context, messages []Message, opts *ChatOptions) (<-chan StreamEvent, error) {
	if len(messages) == 0 {
		return nil, errors.New("messages cannot be empty")
	}

	lcMessages := convertMessages(messages)
	lcOpts := convertOptions(opts, a.defaultModel)

	eventChan := make(chan StreamEvent, 10)

	go func() {
		defer close(eventChan)

		streamOpts := append(lcOpts, llms.WithStreamingFunc(
			func(ctx context.Context, chunk []byte) error {
				select {
				case eventChan <- StreamEvent{Content: string(chunk)}:
				case <-ctx.Done():
					return ctx.Err()
				}
				return nil
			},
		))

		_, err := a.model.GenerateContent(ctx, lcMessages, streamOpts...)
		if err != nil {
			eventChan <- StreamEvent{Error: wrapError(err), Done: true}
		} else {
			eventChan <- StreamEvent{Done: true}
		}
	}()

	return eventChan, nil
}

// Heartbeat checks if a cloud provider is reachable with a one-token request.
func (a *langchainAdapter) Heartbeat(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := a.model.GenerateContent(ctx,
		convertMessages([]Message{{Role: RoleUser, Content: "ping"}}),
		llms.WithModel(a.defaultModel),
		llms.WithMaxTokens(1),
	)
	return wrapError(err)
}

// ModelAvailable assumes cloud models exist; they fail at request time with
// a clear error otherwise.
func (a *langchainAdapter) ModelAvailable(ctx context.Context, model string) (bool, error) {
	return true, nil
}

// --- Conversion Helpers ---

func convertMessages(messages []Message) []llms.MessageContent {
	result := make([]llms.MessageContent, len(messages))
	for i, msg := range messages {
		result[i] = llms.TextParts(convertRole(msg.Role), msg.Content)
	}
	return result
}

func convertRole(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleUser:
		return llms.ChatMessageTypeHuman
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeGeneric
	}
}

func convertOptions(opts *ChatOptions, defaultModel string) []llms.CallOption {
	result := []llms.CallOption{}

	if opts != nil && opts.Model != "" {
		result = append(result, llms.WithModel(opts.Model))
	} else {
		result = append(result, llms.WithModel(defaultModel))
	}

	if opts != nil {
		result = append(result, llms.WithTemperature(float64(opts.Temperature)))
	}

	if opts != nil && opts.MaxTokens > 0 {
		result = append(result, llms.WithMaxTokens(opts.MaxTokens))
	}

	return result
}

func convertResponse(lcResp *llms.ContentResponse, defaultModel string) *Response {
	if lcResp == nil || len(lcResp.Choices) == 0 {
		return &Response{Model: defaultModel}
	}

	choice := lcResp.Choices[0]

	return &Response{
		Content:      choice.Content,
		Model:        getStringFromInfo(choice.GenerationInfo, "Model", defaultModel),
		TokensPrompt: getIntFromInfo(choice.GenerationInfo, "PromptTokens"),
		TokensTotal:  getIntFromInfo(choice.GenerationInfo, "TotalTokens"),
	}
}

func getIntFromInfo(info map[string]any, key string) int {
	if v, ok := info[key].(int); ok {
		return v
	}
	if v, ok := info[key].(float64); ok {
		return int(v)
	}
	return 0
}

func getStringFromInfo(info map[string]any, key string, defaultVal string) string {
	if v, ok := info[key].(string); ok && v != "" {
		return v
	}
	return defaultVal
}

// wrapError converts transport errors to our error types.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrContextCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: timed out: %v", ErrProviderUnavailable, err)
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return fmt.Errorf("%w: rate limit exceeded: %v", ErrProviderUnavailable, err)
	case strings.Contains(msg, "401") || strings.Contains(msg, "invalid api key") || strings.Contains(msg, "authentication"):
		return fmt.Errorf("%w: authentication failed (check API key): %v", ErrNotConfigured, err)
	case strings.Contains(msg, "model") && strings.Contains(msg, "not found"):
		return fmt.Errorf("%w: %v", ErrModelNotFound, err)
	default:
		return err
	}
}

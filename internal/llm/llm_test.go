package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/bimmerbailey/surprise/internal/config"
	"github.com/tmc/langchaingo/llms"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewProvider_AllProviders(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.LLMConfig
		expectError bool
		notConfig   bool
		errorMsg    string
	}{
		{
			name: "ollama - valid config",
			cfg: config.LLMConfig{
				Provider: "ollama",
				Ollama:   config.OllamaConfig{Host: "http://localhost:11434", Model: "llama3.2"},
			},
		},
		{
			name: "openai - with key",
			cfg: config.LLMConfig{
				Provider: "openai",
				OpenAI:   config.OpenAIConfig{APIKey: "sk-from-config", Model: "gpt-4o-mini"},
			},
		},
		{
			name: "openai - missing api key",
			cfg: config.LLMConfig{
				Provider: "openai",
				OpenAI:   config.OpenAIConfig{Model: "gpt-4o-mini"},
			},
			expectError: true,
			notConfig:   true,
			errorMsg:    "OPENAI_API_KEY",
		},
		{
			name: "anthropic - with key",
			cfg: config.LLMConfig{
				Provider:  "Anthropic",
				Anthropic: config.AnthropicConfig{APIKey: "sk-ant-test"},
			},
		},
		{
			name: "anthropic - missing api key",
			cfg: config.LLMConfig{
				Provider: "anthropic",
			},
			expectError: true,
			notConfig:   true,
			errorMsg:    "ANTHROPIC_API_KEY",
		},
		{
			name: "gemini - with key",
			cfg: config.LLMConfig{
				Provider: "gemini",
				Gemini:   config.GeminiConfig{APIKey: "g-test"},
			},
		},
		{
			name: "gemini - missing api key",
			cfg: config.LLMConfig{
				Provider: "gemini",
			},
			expectError: true,
			notConfig:   true,
			errorMsg:    "GEMINI_API_KEY",
		},
		{
			name:        "unknown provider",
			cfg:         config.LLMConfig{Provider: "mistral"},
			expectError: true,
			errorMsg:    "unknown llm provider",
		},
		{
			name:        "empty provider",
			cfg:         config.LLMConfig{},
			expectError: true,
			notConfig:   true,
			errorMsg:    "not specified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{LLM: tt.cfg}

			provider, err := NewProvider(context.Background(), cfg, testLogger())

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("error should contain %q, got: %v", tt.errorMsg, err)
				}
				if tt.notConfig != errors.Is(err, ErrNotConfigured) {
					t.Errorf("errors.Is(err, ErrNotConfigured) = %v, want %v", !tt.notConfig, tt.notConfig)
				}
				if provider != nil {
					t.Error("provider should be nil on error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if provider == nil {
				t.Fatal("provider is nil")
			}
		})
	}
}

func TestNewProvider_NilArguments(t *testing.T) {
	if _, err := NewProvider(context.Background(), nil, testLogger()); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewProvider(context.Background(), &config.Config{}, nil); err == nil {
		t.Error("expected error for nil logger")
	}
}

func TestNewImageGenerator_RequiresGeminiKey(t *testing.T) {
	_, err := NewImageGenerator(context.Background(), &config.Config{}, testLogger())
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestDefaultModel(t *testing.T) {
	cfg := &config.Config{LLM: config.LLMConfig{
		Provider: "gemini",
		Gemini:   config.GeminiConfig{Model: "gemini-2.5-pro"},
		OpenAI:   config.OpenAIConfig{Model: "gpt-4o"},
	}}
	if got := DefaultModel(cfg); got != "gemini-2.5-pro" {
		t.Errorf("DefaultModel() = %q", got)
	}
	cfg.LLM.Provider = "openai"
	if got := DefaultModel(cfg); got != "gpt-4o" {
		t.Errorf("DefaultModel() = %q", got)
	}
}

func TestAspectRatio(t *testing.T) {
	tests := []struct {
		size string
		want string
	}{
		{"", "1:1"},
		{"square", "1:1"},
		{"1024x1024", "1:1"},
		{"1792x1024", "16:9"},
		{"1024x1792", "9:16"},
		{"800x600", "4:3"},
		{"3:4", "3:4"},
		{"landscape", "16:9"},
		{"garbage", "1:1"},
		{"0x100", "1:1"},
	}
	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			if got := AspectRatio(tt.size); got != tt.want {
				t.Errorf("AspectRatio(%q) = %q, want %q", tt.size, got, tt.want)
			}
		})
	}
}

func TestSplitSystem(t *testing.T) {
	system, contents := splitSystem([]Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleSystem, Content: "be kind"},
	})

	if system != "be brief\n\nbe kind" {
		t.Errorf("system = %q", system)
	}
	if len(contents) != 2 {
		t.Fatalf("contents = %d, want 2", len(contents))
	}
	if contents[1].Role != "model" {
		t.Errorf("assistant role mapped to %q, want model", contents[1].Role)
	}
}

func TestConvertRole(t *testing.T) {
	tests := map[string]llms.ChatMessageType{
		RoleSystem:    llms.ChatMessageTypeSystem,
		RoleUser:      llms.ChatMessageTypeHuman,
		RoleAssistant: llms.ChatMessageTypeAI,
		"tool":        llms.ChatMessageTypeGeneric,
	}
	for role, want := range tests {
		if got := convertRole(role); got != want {
			t.Errorf("convertRole(%q) = %v, want %v", role, got, want)
		}
	}
}

func TestConvertOptions(t *testing.T) {
	if got := convertOptions(nil, "m"); len(got) != 1 {
		t.Errorf("nil opts should only set model, got %d options", len(got))
	}
	got := convertOptions(&ChatOptions{Model: "x", Temperature: 0.5, MaxTokens: 10}, "m")
	if len(got) != 3 {
		t.Errorf("expected model, temperature and max tokens, got %d options", len(got))
	}
}

func TestConvertResponse(t *testing.T) {
	resp := convertResponse(&llms.ContentResponse{
		Choices: []*llms.ContentChoice{{
			Content: "hello",
			GenerationInfo: map[string]any{
				"PromptTokens": 3,
				"TotalTokens":  float64(7),
			},
		}},
	}, "default")

	if resp.Content != "hello" || resp.Model != "default" {
		t.Errorf("unexpected response %+v", resp)
	}
	if resp.TokensPrompt != 3 || resp.TokensTotal != 7 {
		t.Errorf("token counts = %d/%d, want 3/7", resp.TokensPrompt, resp.TokensTotal)
	}

	empty := convertResponse(&llms.ContentResponse{}, "default")
	if empty.Content != "" || empty.Model != "default" {
		t.Errorf("unexpected empty response %+v", empty)
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"canceled", fmt.Errorf("call: %w", context.Canceled), ErrContextCanceled},
		{"deadline", context.DeadlineExceeded, ErrProviderUnavailable},
		{"rate limit", errors.New("API returned unexpected status code: 429"), ErrProviderUnavailable},
		{"auth", errors.New("status code: 401 invalid api key"), ErrNotConfigured},
		{"model", errors.New("model gpt-9 not found"), ErrModelNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("wrapError(%v) = %v, want wrapping %v", tt.err, got, tt.want)
			}
		})
	}

	if wrapError(nil) != nil {
		t.Error("wrapError(nil) should be nil")
	}
	plain := errors.New("something else")
	if got := wrapError(plain); got != plain {
		t.Errorf("unrecognised errors should pass through, got %v", got)
	}
}

// Package config provides configuration types and helpers for surprise.
package config

import (
	"encoding/json"
	"strings"
	"time"
)

// Config holds the application-wide configuration.
type Config struct {
	Format      string          `mapstructure:"format"`
	Verbose     bool            `mapstructure:"verbose"`
	SecretsFile string          `mapstructure:"secrets_file"`
	EnvFile     string          `mapstructure:"env_file"`
	LLM         LLMConfig       `mapstructure:"llm"`
	Feeds       FeedsConfig     `mapstructure:"feeds"`
	Server      ServerConfig    `mapstructure:"server"`
	Logs        LogsConfig      `mapstructure:"logs"`
	Redaction   RedactionConfig `mapstructure:"redaction"`
}

// LLMConfig holds configuration for LLM providers.
type LLMConfig struct {
	// Provider selects which LLM to use: "ollama", "openai", "anthropic", "gemini"
	Provider string `mapstructure:"provider"`

	// Global settings applied to all providers
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	// Provider-specific configuration
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host      string `mapstructure:"host"`       // API endpoint
	Model     string `mapstructure:"model"`      // Default model name
	KeepAlive string `mapstructure:"keep_alive"` // e.g., "5m"
}

// OpenAIConfig holds OpenAI-specific settings.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`  // Optional: resolved from secrets/env if empty
	Model   string `mapstructure:"model"`    // e.g., "gpt-4o-mini"
	BaseURL string `mapstructure:"base_url"` // Optional: for compatible endpoints
	OrgID   string `mapstructure:"org_id"`   // Optional: organization ID
}

// AnthropicConfig holds Anthropic/Claude-specific settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"` // Optional: resolved from secrets/env if empty
	Model  string `mapstructure:"model"`
}

// GeminiConfig holds Google Gemini settings. Gemini is also the image backend.
type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	Model      string `mapstructure:"model"`       // e.g. "gemini-2.5-flash"
	ImageModel string `mapstructure:"image_model"` // e.g. "imagen-3.0-generate-002"
}

// FeedsConfig holds credentials and endpoints for the news, market and
// football data providers used by the dashboard pages.
type FeedsConfig struct {
	NewsAPIKey     string        `mapstructure:"news_api_key"`
	NewsBaseURL    string        `mapstructure:"news_base_url"`
	StockAPIKey    string        `mapstructure:"stock_api_key"`
	StockBaseURL   string        `mapstructure:"stock_base_url"`
	FootballAPIKey string        `mapstructure:"football_api_key"`
	FootballURL    string        `mapstructure:"football_base_url"`
	Competition    string        `mapstructure:"competition"` // e.g. "PL"
	Ticker         string        `mapstructure:"ticker"`      // default dashboard ticker
	Query          string        `mapstructure:"query"`       // default dashboard news query
	Timeout        time.Duration `mapstructure:"timeout"`
}

// ServerConfig holds the web server settings.
type ServerConfig struct {
	Addr        string        `mapstructure:"addr"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
	CookieName  string        `mapstructure:"cookie_name"`
	ReleaseMode bool          `mapstructure:"release_mode"`
}

// LogsConfig holds settings for the log tail views.
type LogsConfig struct {
	Path     string `mapstructure:"path"`
	MaxLines int    `mapstructure:"max_lines"`
}

// RedactionConfig holds configuration for secret redaction before log text
// is sent to an LLM.
type RedactionConfig struct {
	// Enabled controls whether redaction is active
	Enabled bool `mapstructure:"enabled"`

	// Patterns specifies which redaction patterns to use
	// Available: ipv4, email, api_key, bearer, llm_key, google_key, aws_key,
	// jwt, private_key, credit_card
	Patterns []string `mapstructure:"patterns"`
}

// LogLevel represents a standard log severity level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	LevelUnknown
)

// String returns the string representation of a LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON implements json.Marshaler for LogLevel.
func (l LogLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON implements json.Unmarshaler for LogLevel.
func (l *LogLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseLevel(s)
	return nil
}

// ParseLevel converts a string to a LogLevel.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug", "dbg":
		return LevelDebug
	case "info", "inf":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error", "err":
		return LevelError
	case "fatal", "critical", "crit":
		return LevelFatal
	default:
		return LevelUnknown
	}
}

// DetectLevel guesses the severity of a raw log line by looking for the
// first recognisable level token. Brackets, colons and key=value prefixes
// are stripped before matching.
func DetectLevel(line string) LogLevel {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		switch r {
		case ' ', '\t', '[', ']', ':', '=', '"', ',', '|':
			return true
		}
		return false
	})
	for _, f := range fields {
		if lvl := ParseLevel(f); lvl != LevelUnknown {
			return lvl
		}
	}
	return LevelUnknown
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSecretsFile mirrors the streamlit convention the playground apps
// were configured with.
const DefaultSecretsFile = ".streamlit/secrets.toml"

// Secrets is a read-only view over a TOML secrets file and a dotenv file.
// A zero or nil Secrets only consults the process environment.
type Secrets struct {
	file   *viper.Viper
	dotenv map[string]string
}

// LoadSecrets reads the secrets file (TOML, sections like [openai]) and the
// dotenv file. Missing files are not an error: key resolution simply falls
// through to the process environment. A file that exists but cannot be
// parsed returns an error alongside whatever could be loaded.
func LoadSecrets(secretsFile, envFile string) (*Secrets, error) {
	s := &Secrets{dotenv: map[string]string{}}
	var errs []error

	if secretsFile != "" {
		if _, err := os.Stat(secretsFile); err == nil {
			v := viper.New()
			v.SetConfigFile(secretsFile)
			v.SetConfigType("toml")
			if err := v.ReadInConfig(); err != nil {
				errs = append(errs, fmt.Errorf("reading secrets file %s: %w", secretsFile, err))
			} else {
				s.file = v
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("stat secrets file %s: %w", secretsFile, err))
		}
	}

	if envFile != "" {
		env, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			s.dotenv = env
		case errors.Is(err, fs.ErrNotExist):
		default:
			errs = append(errs, fmt.Errorf("reading env file %s: %w", envFile, err))
		}
	}

	return s, errors.Join(errs...)
}

// Lookup returns section.key from the secrets file, then envVar from the
// dotenv file, then envVar from the process environment.
func (s *Secrets) Lookup(section, key, envVar string) string {
	if s != nil && s.file != nil && section != "" {
		if v := strings.TrimSpace(s.file.GetString(section + "." + key)); v != "" {
			return v
		}
	}
	if envVar == "" {
		return ""
	}
	if s != nil {
		if v := strings.TrimSpace(s.dotenv[envVar]); v != "" {
			return v
		}
	}
	return strings.TrimSpace(os.Getenv(envVar))
}

// ResolveAPIKey checks the explicit config value first, then falls back to
// the secrets lookup chain. Returns empty string if nothing is set.
func ResolveAPIKey(configKey string, s *Secrets, section, envVar string) string {
	if k := strings.TrimSpace(configKey); k != "" {
		return k
	}
	return s.Lookup(section, "api_key", envVar)
}

// ApplySecrets fills every empty API key in cfg from the secrets chain.
func ApplySecrets(cfg *Config, s *Secrets) {
	cfg.LLM.OpenAI.APIKey = ResolveAPIKey(cfg.LLM.OpenAI.APIKey, s, "openai", "OPENAI_API_KEY")
	cfg.LLM.Anthropic.APIKey = ResolveAPIKey(cfg.LLM.Anthropic.APIKey, s, "anthropic", "ANTHROPIC_API_KEY")
	cfg.LLM.Gemini.APIKey = ResolveAPIKey(cfg.LLM.Gemini.APIKey, s, "gemini", "GEMINI_API_KEY")
	cfg.Feeds.NewsAPIKey = ResolveAPIKey(cfg.Feeds.NewsAPIKey, s, "news", "NEWS_API_KEY")
	cfg.Feeds.StockAPIKey = ResolveAPIKey(cfg.Feeds.StockAPIKey, s, "stocks", "ALPHAVANTAGE_API_KEY")
	cfg.Feeds.FootballAPIKey = ResolveAPIKey(cfg.Feeds.FootballAPIKey, s, "football", "FOOTBALL_DATA_API_KEY")
}

package web

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bimmerbailey/surprise/internal/config"
	"github.com/bimmerbailey/surprise/internal/feeds"
	"github.com/bimmerbailey/surprise/internal/llm"
	"github.com/bimmerbailey/surprise/internal/prompt"
	"github.com/bimmerbailey/surprise/internal/session"
)

const sessionKey = "session"

type navItem struct {
	Path  string
	Label string
}

var nav = []navItem{
	{"/press-release", "Press release"},
	{"/action-plan", "Action plan"},
	{"/playground", "Playground"},
	{"/tictactoe", "Tic-tac-toe"},
	{"/chat", "Chat"},
	{"/image", "Image"},
	{"/dashboard", "Dashboard"},
	{"/matches", "Matches"},
	{"/logs", "Logs"},
}

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// render executes the named page with the shared layout fields filled in.
func (s *Server) render(c *gin.Context, code int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Nav"] = nav
	data["Active"] = c.FullPath()
	data["Configured"] = s.provider != nil
	if s.provider == nil {
		data["Hint"] = providerHint(s.cfg)
	}
	c.HTML(code, name, data)
}

// sessionMiddleware attaches the caller's session, issuing a cookie for new
// visitors.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	name := s.cfg.Server.CookieName
	if name == "" {
		name = defaultCookieName
	}
	return func(c *gin.Context) {
		id, _ := c.Cookie(name)
		sess, created := s.store.GetOrCreate(id)
		if created {
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     name,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// chatOptions applies the configured sampling settings.
func (s *Server) chatOptions() *llm.ChatOptions {
	return &llm.ChatOptions{
		Temperature: s.cfg.LLM.Temperature,
		MaxTokens:   s.cfg.LLM.MaxTokens,
	}
}

// providerHint tells the user how to enable generation.
func providerHint(cfg *config.Config) string {
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		return "OpenAI API key not found. Add [openai] api_key to " + secretsFile(cfg) + " or set OPENAI_API_KEY."
	case "anthropic":
		return "Anthropic API key not found. Add [anthropic] api_key to " + secretsFile(cfg) + " or set ANTHROPIC_API_KEY."
	case "gemini":
		return "Gemini API key not found. Add [gemini] api_key to " + secretsFile(cfg) + " or set GEMINI_API_KEY."
	case "ollama":
		return "Ollama is not reachable. Start it with `ollama serve` or set llm.ollama.host."
	default:
		return "No LLM provider configured. Set llm.provider (ollama, openai, anthropic or gemini) in ~/.surprise.yaml."
	}
}

func secretsFile(cfg *config.Config) string {
	if cfg.SecretsFile != "" {
		return cfg.SecretsFile
	}
	return config.DefaultSecretsFile
}

// errorMessage turns a downstream failure into a sentence for the page.
func errorMessage(err error) string {
	var se *feeds.StatusError
	switch {
	case errors.Is(err, prompt.ErrMissingField), errors.Is(err, prompt.ErrUnknownVariant):
		return err.Error()
	case errors.Is(err, llm.ErrProviderUnavailable):
		return "The text-generation service is not reachable. Please try again."
	case errors.Is(err, llm.ErrModelNotFound):
		return "The configured model is not available."
	case errors.Is(err, llm.ErrContextCanceled):
		return "The request was cancelled."
	case errors.Is(err, feeds.ErrMissingCredentials):
		return "API key not configured."
	case errors.As(err, &se):
		return fmt.Sprintf("The data provider returned an error (%d): %s", se.Code, se.Body)
	case errors.Is(err, feeds.ErrMalformedResponse):
		return "The data provider returned a response that could not be read."
	default:
		return "Request failed: " + err.Error()
	}
}

// Package web serves the playground pages: prompt builders, the joke and
// haiku playground, tic-tac-toe, chat, image generation, the news and
// market dashboard, football fixtures and the log tail view.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bimmerbailey/surprise/internal/config"
	"github.com/bimmerbailey/surprise/internal/feeds"
	"github.com/bimmerbailey/surprise/internal/llm"
	"github.com/bimmerbailey/surprise/internal/redact"
	"github.com/bimmerbailey/surprise/internal/session"
	"github.com/bimmerbailey/surprise/internal/tictactoe"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	defaultAddr        = ":8080"
	defaultCookieName  = "surprise_session"
	shutdownTimeout    = 5 * time.Second
	sweepInterval      = time.Minute
	healthCheckTimeout = 2 * time.Second
)

// Deps are the collaborators a Server is built from. Provider and Images
// may be nil; the pages then show a configuration hint instead of
// generating anything.
type Deps struct {
	Config   *config.Config
	Logger   *slog.Logger
	Provider llm.Provider
	Images   llm.ImageGenerator
	Feeds    *feeds.Clients
	Store    *session.Store

	// Registry receives the HTTP metrics and Gatherer backs /metrics.
	// Both default to the Prometheus default registry.
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
}

// Server is the HTTP front end.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	provider llm.Provider
	images   llm.ImageGenerator
	feeds    *feeds.Clients
	store    *session.Store
	opponent *tictactoe.Opponent
	jokes    *session.JokeGenerator
	redactor *redact.Redactor
	metrics  *httpMetrics

	engine *gin.Engine
}

// New builds the router and registers every route.
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, errors.New("config cannot be nil")
	}
	if deps.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	s := &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		provider: deps.Provider,
		images:   deps.Images,
		feeds:    deps.Feeds,
		store:    deps.Store,
		redactor: redact.New(deps.Config.Redaction.Enabled, deps.Config.Redaction.Patterns),
	}
	if s.feeds == nil {
		s.feeds = feeds.FromConfig(deps.Config.Feeds)
	}
	if s.store == nil {
		s.store = session.NewStore(deps.Config.Server.SessionTTL)
	}

	s.opponent = tictactoe.NewOpponent(s.provider, &llm.ChatOptions{Temperature: 0.2}, s.logger)
	if s.provider != nil {
		jokes, err := session.NewJokeGenerator(s.provider, &llm.ChatOptions{Temperature: 1.0}, s.logger)
		if err != nil {
			return nil, err
		}
		s.jokes = jokes
	}

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s.metrics = newHTTPMetrics(reg)

	if deps.Config.Server.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger(), s.metrics.middleware(), s.sessionMiddleware())
	engine.SetHTMLTemplate(tmpl)
	s.engine = engine

	s.routes(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return s, nil
}

func (s *Server) routes(metricsHandler http.Handler) {
	r := s.engine

	r.GET("/", s.handleIndex)
	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(metricsHandler))

	r.GET("/press-release", s.handlePressReleaseForm)
	r.POST("/press-release", s.handlePressRelease)
	r.GET("/action-plan", s.handleActionPlanForm)
	r.POST("/action-plan", s.handleActionPlan)

	r.GET("/playground", s.handlePlaygroundForm)
	r.POST("/playground", s.handlePlayground)
	r.POST("/playground/reset", s.handlePlaygroundReset)

	r.GET("/tictactoe", s.handleTicTacToe)
	r.POST("/tictactoe/move", s.handleTicTacToeMove)
	r.POST("/tictactoe/reset", s.handleTicTacToeReset)

	r.GET("/chat", s.handleChatPage)
	r.POST("/chat", s.handleChat)
	r.POST("/chat/reset", s.handleChatReset)
	r.POST("/chat/stream", s.handleChatStream)

	r.GET("/image", s.handleImageForm)
	r.POST("/image", s.handleImage)

	r.GET("/dashboard", s.handleDashboard)
	r.GET("/matches", s.handleMatches)

	r.GET("/logs", s.handleLogs)
	r.POST("/logs/summarize", s.handleLogsSummarize)

	api := r.Group("/api/v1")
	{
		api.POST("/generate", s.handleAPIGenerate)
	}
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully. Idle sessions are swept while the server runs.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Server.Addr
	if addr == "" {
		addr = defaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.store.Run(sweepCtx, sweepInterval)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("web server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	component := gin.H{"status": "not_configured"}

	if s.provider != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()
		component = gin.H{"status": "up"}
		if err := s.provider.Heartbeat(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
			component = gin.H{"status": "down", "error": err.Error()}
		}
	}

	c.JSON(code, gin.H{
		"status":     status,
		"components": gin.H{"llm": component},
		"sessions":   s.store.Len(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	})
}

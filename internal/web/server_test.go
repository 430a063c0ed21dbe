package web

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimmerbailey/surprise/internal/config"
	"github.com/bimmerbailey/surprise/internal/feeds"
	"github.com/bimmerbailey/surprise/internal/llm"
	"github.com/bimmerbailey/surprise/internal/llm/fake"
	"github.com/bimmerbailey/surprise/internal/logtail"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testEnv struct {
	srv      *Server
	reg      *prometheus.Registry
	provider *fake.Provider
	cookie   *http.Cookie
}

func newTestEnv(t *testing.T, provider *fake.Provider, mutate ...func(*Deps)) *testEnv {
	t.Helper()

	reg := prometheus.NewRegistry()
	deps := Deps{
		Config:   &config.Config{},
		Logger:   slog.New(slog.DiscardHandler),
		Registry: reg,
		Gatherer: reg,
	}
	if provider != nil {
		deps.Provider = provider
	}
	for _, fn := range mutate {
		fn(&deps)
	}

	srv, err := New(deps)
	require.NoError(t, err)
	return &testEnv{srv: srv, reg: reg, provider: provider}
}

// do sends a request, carrying the session cookie between calls.
func (e *testEnv) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}

	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == defaultCookieName {
			e.cookie = c
		}
	}
	return rec
}

func TestNew_RequiresConfigAndLogger(t *testing.T) {
	_, err := New(Deps{Logger: slog.New(slog.DiscardHandler)})
	assert.Error(t, err)

	_, err = New(Deps{Config: &config.Config{}})
	assert.Error(t, err)
}

func TestIndex_ShowsHintWithoutProvider(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Surprise playground")
	assert.Contains(t, rec.Body.String(), "No LLM provider configured")
}

func TestIndex_NoHintWithProvider(t *testing.T) {
	env := newTestEnv(t, fake.New())

	rec := env.do(t, http.MethodGet, "/", nil)
	assert.NotContains(t, rec.Body.String(), `class="hint"`)
}

func TestProviderHint(t *testing.T) {
	tests := []struct {
		provider string
		want     string
	}{
		{"openai", "OPENAI_API_KEY"},
		{"anthropic", "ANTHROPIC_API_KEY"},
		{"gemini", "GEMINI_API_KEY"},
		{"ollama", "ollama serve"},
		{"", "No LLM provider configured"},
	}
	for _, tt := range tests {
		cfg := &config.Config{LLM: config.LLMConfig{Provider: tt.provider}}
		assert.Contains(t, providerHint(cfg), tt.want, tt.provider)
	}

	cfg := &config.Config{SecretsFile: "custom.toml", LLM: config.LLMConfig{Provider: "openai"}}
	assert.Contains(t, providerHint(cfg), "custom.toml")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Status     string `json:"status"`
		Components map[string]struct {
			Status string `json:"status"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, "not_configured", payload.Components["llm"].Status)

	p := fake.New()
	p.Err = llm.ErrProviderUnavailable
	env = newTestEnv(t, p)
	rec = env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestSessionCookie(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/", nil)
	require.NotNil(t, env.cookie, "first visit should set a session cookie")
	assert.True(t, env.cookie.HttpOnly)

	rec = env.do(t, http.MethodGet, "/", nil)
	assert.Empty(t, rec.Result().Cookies(), "known session should not be reissued")
	assert.Equal(t, 1, env.srv.store.Len())
}

func TestPressRelease(t *testing.T) {
	p := fake.New("ACME GOES TO SPACE")
	env := newTestEnv(t, p)

	rec := env.do(t, http.MethodPost, "/press-release", url.Values{
		"subject": {"Acme"},
		"year":    {"2100"},
		"detail":  {"space expansion"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ACME GOES TO SPACE")

	calls := p.Calls()
	require.Len(t, calls, 1)
	sent := calls[0][len(calls[0])-1].Content
	assert.True(t, strings.HasPrefix(sent, "Write a press release"))
	assert.Contains(t, sent, "Acme")
	assert.Contains(t, sent, "2100")
	assert.Contains(t, sent, "space expansion")
}

func TestPressRelease_Validation(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing company", url.Values{"detail": {"x"}}, "Please fill in the company name."},
		{"blank announcement", url.Values{"subject": {"Acme"}, "detail": {"   "}}, "Please fill in the announcement."},
		{"bad year", url.Values{"subject": {"Acme"}, "detail": {"x"}, "year": {"soon"}}, "year must be a whole number"},
		{"negative year", url.Values{"subject": {"Acme"}, "detail": {"x"}, "year": {"-5"}}, "Year must not be negative."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fake.New("unused")
			env := newTestEnv(t, p)

			rec := env.do(t, http.MethodPost, "/press-release", tt.form)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
			assert.Empty(t, p.Calls(), "validation must happen before any request")
		})
	}
}

func TestPressRelease_NoProvider(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/press-release", url.Values{"subject": {"Acme"}, "detail": {"news"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), disabledMessage)
	assert.Contains(t, rec.Body.String(), "disabled>")
}

func TestPressRelease_ProviderErrorKeepsForm(t *testing.T) {
	p := fake.New()
	p.Err = fmt.Errorf("%w: connection refused", llm.ErrProviderUnavailable)
	env := newTestEnv(t, p)

	rec := env.do(t, http.MethodPost, "/press-release", url.Values{"subject": {"Acme"}, "detail": {"rockets"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "not reachable")
	assert.Contains(t, rec.Body.String(), `value="Acme"`)
	assert.Contains(t, rec.Body.String(), "rockets")

	assert.Equal(t, 1.0, testutil.ToFloat64(env.srv.metrics.generations.WithLabelValues("press_release", "failure")))
}

func TestActionPlan(t *testing.T) {
	p := fake.New("1. Bigger buttons")
	env := newTestEnv(t, p)

	rec := env.do(t, http.MethodPost, "/action-plan", url.Values{
		"subject": {"GadgetPro"},
		"detail":  {"the buttons are too small"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1. Bigger buttons")

	sent := p.Calls()[0][1].Content
	assert.True(t, strings.HasPrefix(sent, "Generate a fun action plan"))
	assert.Contains(t, sent, "GadgetPro")
	assert.Contains(t, sent, "the buttons are too small")
}

func TestPlayground_JokesAreNotRepeated(t *testing.T) {
	p := fake.New("joke A", "joke A", "joke B")
	env := newTestEnv(t, p)
	form := url.Values{"kind": {"joke"}, "subject": {"cats"}}

	rec := env.do(t, http.MethodPost, "/playground", form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "joke A")

	rec = env.do(t, http.MethodPost, "/playground", form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div class="output">joke B</div>`)
	assert.Len(t, p.Calls(), 3)

	rec = env.do(t, http.MethodPost, "/playground/reset", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	rec = env.do(t, http.MethodGet, "/playground", nil)
	assert.NotContains(t, rec.Body.String(), "Jokes told this session")
}

func TestPlayground_Variants(t *testing.T) {
	p := fake.New("five seven five")
	env := newTestEnv(t, p)

	rec := env.do(t, http.MethodPost, "/playground", url.Values{"kind": {"haiku"}, "subject": {"autumn"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(p.Calls()[0][1].Content, "Write a haiku about"))

	rec = env.do(t, http.MethodPost, "/playground", url.Values{"kind": {"summary"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please fill in the text to summarize.")

	rec = env.do(t, http.MethodPost, "/playground", url.Values{"kind": {"press_release"}, "subject": {"x"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, p.Calls(), 1)
}

func TestTicTacToe(t *testing.T) {
	p := fake.New("I'll take 5")
	env := newTestEnv(t, p)

	rec := env.do(t, http.MethodGet, "/tictactoe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "X to move")

	rec = env.do(t, http.MethodPost, "/tictactoe/move", url.Values{"cell": {"0"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "computer played 5")

	sess, ok := env.srv.store.Get(env.cookie.Value)
	require.True(t, ok)
	assert.Equal(t, "X", sess.Game.Board[0].String())
	assert.Equal(t, "O", sess.Game.Board[4].String())

	rec = env.do(t, http.MethodPost, "/tictactoe/move", url.Values{"cell": {"4"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "That square is taken.")

	rec = env.do(t, http.MethodPost, "/tictactoe/move", url.Values{"cell": {"nine"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = env.do(t, http.MethodPost, "/tictactoe/reset", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, sess.Game.Board.Free(), 9)
}

func TestTicTacToe_WithoutProviderStillPlays(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/tictactoe/move", url.Values{"cell": {"4"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "computer played 1")
}

func TestChat(t *testing.T) {
	p := fake.New() // echoes the user
	env := newTestEnv(t, p)

	rec := env.do(t, http.MethodPost, "/chat", url.Values{"message": {"hello there"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, strings.Count(rec.Body.String(), "hello there"))

	env.do(t, http.MethodPost, "/chat", url.Values{"message": {"again"}})
	calls := p.Calls()
	require.Len(t, calls, 2)
	require.Len(t, calls[1], 4, "system + two history turns + new message")
	assert.Equal(t, llm.RoleSystem, calls[1][0].Role)
	assert.Equal(t, "again", calls[1][3].Content)

	rec = env.do(t, http.MethodPost, "/chat/reset", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	rec = env.do(t, http.MethodGet, "/chat", nil)
	assert.Contains(t, rec.Body.String(), "No messages yet.")
}

func TestChat_ErrorsDoNotGrowHistory(t *testing.T) {
	p := fake.New()
	p.Err = llm.ErrModelNotFound
	env := newTestEnv(t, p)

	rec := env.do(t, http.MethodPost, "/chat", url.Values{"message": {"hi"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "model is not available")

	sess, _ := env.srv.store.Get(env.cookie.Value)
	assert.Equal(t, 0, sess.History.Len())

	rec = env.do(t, http.MethodPost, "/chat", url.Values{"message": {"  "}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestChatStream(t *testing.T) {
	p := fake.New("streamed reply")
	env := newTestEnv(t, p)
	ts := httptest.NewServer(env.srv.Handler())
	defer ts.Close()

	resp, err := http.PostForm(ts.URL+"/chat/stream", url.Values{"message": {"hi"}})
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "event:token")
	assert.Contains(t, string(body), "event:done")
	assert.Contains(t, string(body), "streamed")

	var id string
	for _, c := range resp.Cookies() {
		if c.Name == defaultCookieName {
			id = c.Value
		}
	}
	sess, ok := env.srv.store.Get(id)
	require.True(t, ok)
	msgs := sess.History.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "streamed reply", msgs[1].Content)
}

func ollamaChatServer(t *testing.T, chunks ...string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, c := range chunks {
			fmt.Fprintln(w, c)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func postChatStream(t *testing.T, env *testEnv, message string) (string, []llm.Message) {
	t.Helper()
	ts := httptest.NewServer(env.srv.Handler())
	defer ts.Close()

	resp, err := http.PostForm(ts.URL+"/chat/stream", url.Values{"message": {message}})
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var id string
	for _, c := range resp.Cookies() {
		if c.Name == defaultCookieName {
			id = c.Value
		}
	}
	sess, ok := env.srv.store.Get(id)
	require.True(t, ok)
	return string(body), sess.History.Messages()
}

func newOllamaEnv(t *testing.T, upstream *httptest.Server) *testEnv {
	t.Helper()
	cfg := &config.Config{LLM: config.LLMConfig{
		Provider: "ollama",
		Ollama:   config.OllamaConfig{Host: upstream.URL, Model: "llama3.2"},
	}}
	logger := slog.New(slog.DiscardHandler)
	p, err := llm.NewProvider(t.Context(), cfg, logger)
	require.NoError(t, err)

	return newTestEnv(t, nil, func(d *Deps) {
		d.Config = cfg
		d.Provider = p
	})
}

func TestChatStream_Ollama(t *testing.T) {
	upstream := ollamaChatServer(t,
		`{"model":"llama3.2","message":{"role":"assistant","content":"hello"},"done":false}`,
		`{"model":"llama3.2","message":{"role":"assistant","content":""},"done":true}`,
	)
	env := newOllamaEnv(t, upstream)

	body, history := postChatStream(t, env, "hi")
	assert.Contains(t, body, "event:token\ndata:hello")
	assert.Contains(t, body, "event:done")
	assert.NotContains(t, body, "event:error")

	require.Len(t, history, 2)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, "hello", history[1].Content)
}

func TestChatStream_OllamaEndsEarly(t *testing.T) {
	upstream := ollamaChatServer(t,
		`{"model":"llama3.2","message":{"role":"assistant","content":"hel"},"done":false}`,
	)
	env := newOllamaEnv(t, upstream)

	body, history := postChatStream(t, env, "hi")
	assert.Contains(t, body, "event:error")
	assert.NotContains(t, body, "event:done")
	assert.Empty(t, history, "a stream without a final event must not be saved")
}

func TestImage(t *testing.T) {
	gen := &fake.ImageGenerator{Data: []byte("png")}
	env := newTestEnv(t, fake.New(), func(d *Deps) { d.Images = gen })

	rec := env.do(t, http.MethodPost, "/image", url.Values{"prompt": {"a red fox"}, "size": {"1792x1024"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data:image/png;base64,cG5n")
	assert.Equal(t, []string{"a red fox"}, gen.Prompts())

	rec = env.do(t, http.MethodPost, "/image", url.Values{"prompt": {""}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Len(t, gen.Prompts(), 1)
}

func TestImage_Disabled(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/image", url.Values{"prompt": {"a fox"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), imageDisabledMessage)
}

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

const stockBody = `{"Time Series (Daily)": {
	"2025-03-03": {"1. open": "9", "2. high": "10", "3. low": "8", "4. close": "10.00", "5. volume": "1"},
	"2025-03-04": {"1. open": "10", "2. high": "13", "3. low": "9", "4. close": "12.00", "5. volume": "2"}
}}`

func TestDashboard(t *testing.T) {
	news := feedServer(t, `{"status":"ok","articles":[{"source":{"name":"Wire"},"title":"Markets rally","url":"https://x/1","publishedAt":"2025-03-04T10:00:00Z"}]}`)
	stocks := feedServer(t, stockBody)

	p := fake.New("Up and to the right.")
	env := newTestEnv(t, p, func(d *Deps) {
		d.Feeds = &feeds.Clients{
			News:     feeds.NewNewsClient("k", feeds.WithBaseURL(news.URL)),
			Stocks:   feeds.NewStockClient("k", feeds.WithBaseURL(stocks.URL)),
			Football: feeds.NewFootballClient(""),
		}
	})

	rec := env.do(t, http.MethodGet, "/dashboard?ticker=ibm", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Markets rally")
	assert.Contains(t, body, "Last close 12.00")
	assert.Contains(t, body, "<polyline")
	assert.Empty(t, p.Calls())

	rec = env.do(t, http.MethodGet, "/dashboard?ticker=ibm&brief=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Up and to the right.")
	sent := p.Calls()[0][1].Content
	assert.True(t, strings.HasPrefix(sent, "Write a short market brief"))
	assert.Contains(t, sent, "Markets rally")
}

func TestDashboard_MissingKeys(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Set NEWS_API_KEY")
	assert.Contains(t, rec.Body.String(), "Set ALPHAVANTAGE_API_KEY")
}

func TestDashboard_UpstreamError(t *testing.T) {
	news := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message":"rate limited"}`)
	}))
	defer news.Close()

	env := newTestEnv(t, nil, func(d *Deps) {
		d.Feeds = &feeds.Clients{
			News:     feeds.NewNewsClient("k", feeds.WithBaseURL(news.URL)),
			Stocks:   feeds.NewStockClient(""),
			Football: feeds.NewFootballClient(""),
		}
	})

	rec := env.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "(429): rate limited")
}

func TestSparkline(t *testing.T) {
	assert.Empty(t, sparkline(nil, 100, 10))

	pts := []feeds.PricePoint{{Close: 1}, {Close: 3}, {Close: 2}}
	assert.Equal(t, "0.0,10.0 50.0,0.0 100.0,5.0", sparkline(pts, 100, 10))

	flat := []feeds.PricePoint{{Close: 5}}
	assert.Equal(t, "0.0,10.0", sparkline(flat, 100, 10))
}

func TestMatches(t *testing.T) {
	football := feedServer(t, `{"matches":[{"id":1,"utcDate":"2025-05-10T14:00:00Z","status":"FINISHED",
		"homeTeam":{"name":"Arsenal FC","shortName":"Arsenal"},"awayTeam":{"name":"Chelsea FC","shortName":"Chelsea"},
		"score":{"fullTime":{"home":2,"away":1}}}]}`)

	env := newTestEnv(t, nil, func(d *Deps) {
		d.Feeds = &feeds.Clients{
			News:     feeds.NewNewsClient(""),
			Stocks:   feeds.NewStockClient(""),
			Football: feeds.NewFootballClient("k", feeds.WithBaseURL(football.URL)),
		}
	})

	rec := env.do(t, http.MethodGet, "/matches", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Arsenal")
	assert.Contains(t, rec.Body.String(), "2 - 1")
	assert.Contains(t, rec.Body.String(), "FINISHED • 14:00")
}

func TestMatches_Empty(t *testing.T) {
	football := feedServer(t, `{"matches":[]}`)
	env := newTestEnv(t, nil, func(d *Deps) {
		d.Feeds = &feeds.Clients{
			News:     feeds.NewNewsClient(""),
			Stocks:   feeds.NewStockClient(""),
			Football: feeds.NewFootballClient("k", feeds.WithBaseURL(football.URL)),
		}
	})

	rec := env.do(t, http.MethodGet, "/matches", nil)
	assert.Contains(t, rec.Body.String(), "No matches found.")
}

func TestLogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte("line1\nline2 user=alice@example.com\nline3\n"), 0o644))

	p := fake.New() // echoes the prompt back
	env := newTestEnv(t, p, func(d *Deps) {
		d.Config.Logs.Path = path
		d.Config.Redaction.Enabled = true
	})

	rec := env.do(t, http.MethodGet, "/logs?n=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "line3")
	assert.NotContains(t, rec.Body.String(), "line1")

	rec = env.do(t, http.MethodPost, "/logs/summarize?n=2", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code)
	sent := p.Calls()[0][1].Content
	assert.True(t, strings.HasPrefix(sent, "Summarize the following text"))
	assert.NotContains(t, sent, "alice@example.com")
	assert.Contains(t, sent, "[EMAIL:")
	assert.Contains(t, rec.Body.String(), "1 value(s) redacted")
}

func TestLogs_Missing(t *testing.T) {
	p := fake.New()
	env := newTestEnv(t, p, func(d *Deps) {
		d.Config.Logs.Path = filepath.Join(t.TempDir(), "nope.log")
	})

	rec := env.do(t, http.MethodGet, "/logs", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), logtail.MissingFile)

	rec = env.do(t, http.MethodPost, "/logs/summarize", url.Values{})
	assert.Contains(t, rec.Body.String(), "Nothing to summarize.")
	assert.Empty(t, p.Calls())
}

func TestAPIGenerate(t *testing.T) {
	p := fake.New("done")
	env := newTestEnv(t, p)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		env.srv.Handler().ServeHTTP(rec, req)
		return rec
	}

	rec := post(`{"variant":"action-plan","subject":"GadgetPro","detail":"too small"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "done", out["text"])
	assert.True(t, strings.HasPrefix(out["prompt"], "Generate a fun action plan"))

	assert.Equal(t, http.StatusBadRequest, post(`{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{"variant":"limerick"}`).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, post(`{"variant":"joke"}`).Code)
	assert.Len(t, p.Calls(), 1)
}

func TestAPIGenerate_NoProvider(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate",
		strings.NewReader(`{"variant":"haiku","subject":"rain"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Write a haiku about rain")
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodGet, "/", nil)
	env.do(t, http.MethodGet, "/does-not-exist", nil)

	n, err := testutil.GatherAndCount(env.reg, "surprise_web_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="unmatched"`)
}

func TestMetrics_ReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := newHTTPMetrics(reg)
	b := newHTTPMetrics(reg)
	assert.Same(t, a.requestTotal, b.requestTotal)
	assert.Same(t, a.generations, b.generations)
}

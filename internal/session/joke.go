package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bimmerbailey/surprise/internal/llm"
	"github.com/bimmerbailey/surprise/internal/prompt"
)

// MaxJokeAttempts bounds how many completions are requested per joke.
const MaxJokeAttempts = 3

// Jokes records every joke told in a session, in order.
type Jokes struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

// Seen reports whether text has already been told.
func (j *Jokes) Seen(text string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.seen[text]
	return ok
}

// Add records text as told.
func (j *Jokes) Add(text string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.seen == nil {
		j.seen = make(map[string]struct{})
	}
	if _, ok := j.seen[text]; ok {
		return
	}
	j.seen[text] = struct{}{}
	j.order = append(j.order, text)
}

// All returns every recorded joke, oldest first.
func (j *Jokes) All() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.order...)
}

// Reset forgets every recorded joke.
func (j *Jokes) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.seen = nil
	j.order = nil
}

// Joke is the outcome of one Generate call.
type Joke struct {
	Text     string `json:"text"`
	Attempts int    `json:"attempts"`

	// Repeat is set when every attempt returned a joke already told and the
	// last one was accepted anyway.
	Repeat bool `json:"repeat"`
}

// JokeGenerator asks a provider for jokes, rejecting exact repeats.
type JokeGenerator struct {
	provider llm.Provider
	opts     *llm.ChatOptions
	logger   *slog.Logger
}

// NewJokeGenerator creates a JokeGenerator. Temperature in opts should be
// high enough for repeated requests to differ.
func NewJokeGenerator(provider llm.Provider, opts *llm.ChatOptions, logger *slog.Logger) (*JokeGenerator, error) {
	if provider == nil {
		return nil, errors.New("provider cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &JokeGenerator{provider: provider, opts: opts, logger: logger}, nil
}

// Generate requests up to MaxJokeAttempts jokes about topic. The first one
// not already in seen is accepted; if all are repeats the last is accepted
// regardless. The accepted joke is added to seen. A provider error ends the
// loop immediately.
func (g *JokeGenerator) Generate(ctx context.Context, topic string, seen *Jokes) (Joke, error) {
	req := prompt.Request{Subject: topic}
	if err := prompt.Validate(prompt.VariantJoke, req); err != nil {
		return Joke{}, err
	}
	msgs := prompt.Messages(prompt.VariantJoke, req)

	var text string
	for attempt := 1; attempt <= MaxJokeAttempts; attempt++ {
		resp, err := g.provider.Chat(ctx, msgs, g.opts)
		if err != nil {
			return Joke{}, fmt.Errorf("joke request failed: %w", err)
		}

		text = strings.TrimSpace(resp.Content)
		if !seen.Seen(text) {
			seen.Add(text)
			return Joke{Text: text, Attempts: attempt}, nil
		}
		g.logger.Debug("discarding repeated joke", "attempt", attempt)
	}

	seen.Add(text)
	return Joke{Text: text, Attempts: MaxJokeAttempts, Repeat: true}, nil
}

// Package fake provides an in-memory llm.Provider and llm.ImageGenerator for
// tests and offline demos. Callers select it explicitly.
package fake

import (
	"context"
	"strings"
	"sync"

	"github.com/bimmerbailey/surprise/internal/llm"
)

// Provider replays scripted replies in order. When the script runs out, the
// last reply repeats; with no script it echoes the final user message.
type Provider struct {
	mu      sync.Mutex
	replies []string
	next    int
	calls   [][]llm.Message
	opts    []*llm.ChatOptions

	// Err, when set, is returned by every call.
	Err error

	// Model is reported in responses. Defaults to "fake".
	Model string
}

// New returns a Provider that answers with replies in order.
func New(replies ...string) *Provider {
	return &Provider{replies: replies, Model: "fake"}
}

// Chat records the call and returns the next scripted reply.
func (p *Provider) Chat(ctx context.Context, messages []llm.Message, opts *llm.ChatOptions) (*llm.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, append([]llm.Message(nil), messages...))
	p.opts = append(p.opts, opts)
	if p.Err != nil {
		return nil, p.Err
	}

	content := p.reply(messages)
	return &llm.Response{
		Content:      content,
		Model:        p.Model,
		TokensPrompt: countWords(messages),
		TokensTotal:  countWords(messages) + len(strings.Fields(content)),
	}, nil
}

// ChatStream emits the next reply one word at a time.
func (p *Provider) ChatStream(ctx context.Context, messages []llm.Message, opts *llm.ChatOptions) (<-chan llm.StreamEvent, error) {
	resp, err := p.Chat(ctx, messages, opts)
	if err != nil {
		return nil, err
	}

	words := strings.SplitAfter(resp.Content, " ")
	ch := make(chan llm.StreamEvent, len(words)+1)
	for _, w := range words {
		if w != "" {
			ch <- llm.StreamEvent{Content: w}
		}
	}
	ch <- llm.StreamEvent{Done: true}
	close(ch)
	return ch, nil
}

// Heartbeat returns Err.
func (p *Provider) Heartbeat(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Err
}

// ModelAvailable reports true unless Err is set.
func (p *Provider) ModelAvailable(ctx context.Context, model string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Err == nil, p.Err
}

// Calls returns a copy of every message list received so far.
func (p *Provider) Calls() [][]llm.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]llm.Message, len(p.calls))
	copy(out, p.calls)
	return out
}

// Options returns the options passed with each call.
func (p *Provider) Options() []*llm.ChatOptions {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*llm.ChatOptions, len(p.opts))
	copy(out, p.opts)
	return out
}

// reply must be called with mu held.
func (p *Provider) reply(messages []llm.Message) string {
	if len(p.replies) == 0 {
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Role == llm.RoleUser {
				return messages[i].Content
			}
		}
		return ""
	}
	r := p.replies[p.next]
	if p.next < len(p.replies)-1 {
		p.next++
	}
	return r
}

func countWords(messages []llm.Message) int {
	n := 0
	for _, m := range messages {
		n += len(strings.Fields(m.Content))
	}
	return n
}

// ImageGenerator returns a fixed payload for every prompt.
type ImageGenerator struct {
	Data []byte
	Err  error

	mu      sync.Mutex
	prompts []string
	sizes   []string
}

// GenerateImage records the request and returns Data as a PNG.
func (g *ImageGenerator) GenerateImage(ctx context.Context, prompt, size string) (*llm.Image, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	g.sizes = append(g.sizes, size)
	if g.Err != nil {
		return nil, g.Err
	}
	return &llm.Image{Data: g.Data, MIMEType: "image/png", Prompt: prompt}, nil
}

// Prompts returns every prompt received so far.
func (g *ImageGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

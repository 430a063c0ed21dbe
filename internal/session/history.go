// Package session holds the typed, in-memory state of one interactive user:
// chat history, jokes already told and the current tic-tac-toe game.
//
// State lives only as long as the process. Nothing is persisted.
package session

import (
	"sync"

	"github.com/bimmerbailey/surprise/internal/llm"
)

// History is an append-only, ordered list of role-tagged messages.
// It is safe for concurrent use.
type History struct {
	mu       sync.Mutex
	messages []llm.Message
}

// Append adds a message to the end of the history.
func (h *History) Append(role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, llm.Message{Role: role, Content: content})
}

// Messages returns a copy of the history in order.
func (h *History) Messages() []llm.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]llm.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

// Reset empties the history.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = nil
}

package session

import (
	"sync"
	"time"

	"github.com/bimmerbailey/surprise/internal/tictactoe"
)

// Session is the state owned by one interactive user.
type Session struct {
	ID      string
	Created time.Time

	History *History
	Jokes   *Jokes
	Game    *tictactoe.Game

	// mu serialises multi-step updates such as a move plus the reply move.
	mu       sync.Mutex
	lastSeen time.Time
	stamp    sync.Mutex
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:       id,
		Created:  now,
		History:  &History{},
		Jokes:    &Jokes{},
		Game:     tictactoe.NewGame(),
		lastSeen: now,
	}
}

// Lock acquires the session for a multi-step update.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// LastSeen returns when the session was last fetched from its store.
func (s *Session) LastSeen() time.Time {
	s.stamp.Lock()
	defer s.stamp.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.stamp.Lock()
	s.lastSeen = now
	s.stamp.Unlock()
}

// ResetChat clears the conversation history.
func (s *Session) ResetChat() { s.History.Reset() }

// ResetJokes forgets the jokes already told.
func (s *Session) ResetJokes() { s.Jokes.Reset() }

// ResetGame starts a new tic-tac-toe game. Like any Game update, callers
// sharing the session hold Lock.
func (s *Session) ResetGame() { s.Game.Reset() }

// Reset clears all session state but keeps the ID.
func (s *Session) Reset() {
	s.ResetChat()
	s.ResetJokes()
	s.ResetGame()
}

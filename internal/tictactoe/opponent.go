package tictactoe

import (
	"context"
	"log/slog"

	"github.com/bimmerbailey/surprise/internal/llm"
	"github.com/bimmerbailey/surprise/internal/prompt"
)

// Opponent picks moves by asking an LLM. Whenever the provider fails or
// replies with something unusable it takes the first free cell instead, so
// a move is always produced while one is possible.
type Opponent struct {
	provider llm.Provider
	opts     *llm.ChatOptions
	logger   *slog.Logger
}

// NewOpponent creates an Opponent. provider may be nil, in which case every
// move is the first free cell.
func NewOpponent(provider llm.Provider, opts *llm.ChatOptions, logger *slog.Logger) *Opponent {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Opponent{provider: provider, opts: opts, logger: logger}
}

// ChooseMove returns a free cell index for m, or -1 when the board is full.
func (o *Opponent) ChooseMove(ctx context.Context, b Board, m Mark) int {
	free := b.Free()
	if len(free) == 0 {
		return -1
	}
	if o.provider == nil {
		return free[0]
	}

	msgs := prompt.Messages(prompt.VariantTicTacToeMove, prompt.Request{
		Subject: m.String(),
		Detail:  b.String(),
	})
	resp, err := o.provider.Chat(ctx, msgs, o.opts)
	if err != nil {
		o.logger.Warn("opponent move request failed, using first free cell", "error", err)
		return free[0]
	}

	if i, ok := ParseMove(resp.Content, b); ok {
		return i
	}
	o.logger.Debug("unusable opponent reply, using first free cell", "reply", resp.Content)
	return free[0]
}

// ParseMove returns the first digit 1-9 in reply that names an empty cell on
// b, as a 0-based index.
func ParseMove(reply string, b Board) (int, bool) {
	for _, r := range reply {
		if r < '1' || r > '9' {
			continue
		}
		i := int(r - '1')
		if b[i] == Empty {
			return i, true
		}
	}
	return 0, false
}

// Respond plays the computer's move in g if it is the computer's turn and
// the game is not over. It returns the chosen cell, or -1 when no move was
// made.
func (o *Opponent) Respond(ctx context.Context, g *Game, computer Mark) int {
	if g.Over() || g.Turn != computer {
		return -1
	}
	i := o.ChooseMove(ctx, g.Board, computer)
	if i < 0 {
		return -1
	}
	if err := g.Play(i); err != nil {
		return -1
	}
	return i
}

package tictactoe

// Game tracks a board and whose turn it is. The human always plays X and
// moves first; the computer plays O.
type Game struct {
	Board Board
	Turn  Mark
}

// NewGame returns a fresh game with X to move.
func NewGame() *Game {
	return &Game{Turn: X}
}

// Play places the current player's mark at cell i and passes the turn.
func (g *Game) Play(i int) error {
	if g.Over() {
		return ErrGameOver
	}
	if err := g.Board.Move(i, g.Turn); err != nil {
		return err
	}
	g.Turn = g.Turn.Opponent()
	return nil
}

// PlayAs is Play with a check that m is the player to move.
func (g *Game) PlayAs(m Mark, i int) error {
	if g.Over() {
		return ErrGameOver
	}
	if m != g.Turn {
		return ErrNotYourTurn
	}
	return g.Play(i)
}

// Winner returns the winning mark, or Empty.
func (g *Game) Winner() Mark {
	return g.Board.Winner()
}

// Over reports a win or a full board.
func (g *Game) Over() bool {
	return g.Board.Winner() != Empty || g.Board.Full()
}

// Status describes the game state for display.
func (g *Game) Status() string {
	switch w := g.Board.Winner(); {
	case w != Empty:
		return w.String() + " wins!"
	case g.Board.Full():
		return "It's a draw."
	default:
		return g.Turn.String() + " to move"
	}
}

// Reset clears the board and gives the first move back to X.
func (g *Game) Reset() {
	g.Board = Board{}
	g.Turn = X
}

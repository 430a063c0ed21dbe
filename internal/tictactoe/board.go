// Package tictactoe implements the 3x3 game toy: board rules, turn
// tracking and a computer opponent that asks an LLM for its move.
package tictactoe

import (
	"errors"
	"fmt"
	"strings"
)

// Mark is the content of one cell.
type Mark uint8

const (
	Empty Mark = iota
	X
	O
)

// String renders the mark as it appears on the board.
func (m Mark) String() string {
	switch m {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return " "
	}
}

// Opponent returns the other player's mark. Empty has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// ParseMark accepts "x" or "o" in any case.
func ParseMark(s string) (Mark, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return X, nil
	case "O":
		return O, nil
	}
	return Empty, fmt.Errorf("invalid mark %q: use X or O", s)
}

var (
	// ErrOutOfRange is returned for a cell index outside 0-8.
	ErrOutOfRange = errors.New("tictactoe: cell out of range")

	// ErrOccupied is returned when the target cell already holds a mark.
	ErrOccupied = errors.New("tictactoe: cell already taken")

	// ErrGameOver is returned when a move is made after a win or draw.
	ErrGameOver = errors.New("tictactoe: game is over")

	// ErrNotYourTurn is returned when a mark plays out of turn.
	ErrNotYourTurn = errors.New("tictactoe: not your turn")
)

// Board holds the nine cells in row-major order.
type Board [9]Mark

// lines lists the eight winning triples: rows, columns, diagonals.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Winner returns the mark holding a complete line, or Empty.
func (b Board) Winner() Mark {
	for _, l := range lines {
		if m := b[l[0]]; m != Empty && m == b[l[1]] && m == b[l[2]] {
			return m
		}
	}
	return Empty
}

// Full reports whether no empty cell remains.
func (b Board) Full() bool {
	for _, m := range b {
		if m == Empty {
			return false
		}
	}
	return true
}

// Free returns the indices of empty cells in ascending order.
func (b Board) Free() []int {
	var free []int
	for i, m := range b {
		if m == Empty {
			free = append(free, i)
		}
	}
	return free
}

// Move places m at cell i (0-8).
func (b *Board) Move(i int, m Mark) error {
	if i < 0 || i >= len(b) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, i)
	}
	if b[i] != Empty {
		return fmt.Errorf("%w: %d", ErrOccupied, i)
	}
	b[i] = m
	return nil
}

// String renders the board as three rows of "X|O| " separated by newlines.
func (b Board) String() string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("\n")
		}
		for col := 0; col < 3; col++ {
			if col > 0 {
				sb.WriteString("|")
			}
			sb.WriteString(b[row*3+col].String())
		}
	}
	return sb.String()
}

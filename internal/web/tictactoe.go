package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bimmerbailey/surprise/internal/session"
	"github.com/bimmerbailey/surprise/internal/tictactoe"
)

type cellView struct {
	Index int
	Mark  string
	Free  bool
}

// boardData snapshots the game for the template. Callers hold the session
// lock.
func boardData(sess *session.Session) gin.H {
	g := sess.Game
	over := g.Over()
	cells := make([]cellView, len(g.Board))
	for i, m := range g.Board {
		cells[i] = cellView{Index: i, Mark: m.String(), Free: m == tictactoe.Empty && !over}
		if m == tictactoe.Empty {
			cells[i].Mark = ""
		}
	}
	return gin.H{
		"Cells":  cells,
		"Status": g.Status(),
		"Over":   over,
	}
}

func (s *Server) handleTicTacToe(c *gin.Context) {
	sess := currentSession(c)
	sess.Lock()
	data := boardData(sess)
	sess.Unlock()

	s.render(c, http.StatusOK, "tictactoe.html", "Tic-tac-toe", data)
}

// handleTicTacToeMove plays the human's X, then the computer's O.
func (s *Server) handleTicTacToeMove(c *gin.Context) {
	sess := currentSession(c)
	sess.Lock()
	defer sess.Unlock()

	cell, err := strconv.Atoi(c.PostForm("cell"))
	if err == nil {
		err = sess.Game.PlayAs(tictactoe.X, cell)
	}
	if err != nil {
		data := boardData(sess)
		data["Error"] = moveError(err)
		s.render(c, http.StatusUnprocessableEntity, "tictactoe.html", "Tic-tac-toe", data)
		return
	}

	reply := s.opponent.Respond(c.Request.Context(), sess.Game, tictactoe.O)

	data := boardData(sess)
	if reply >= 0 {
		data["Reply"] = reply + 1
	}
	s.render(c, http.StatusOK, "tictactoe.html", "Tic-tac-toe", data)
}

func moveError(err error) string {
	switch {
	case errors.Is(err, tictactoe.ErrOccupied):
		return "That square is taken."
	case errors.Is(err, tictactoe.ErrGameOver):
		return "The game is over. Start a new one."
	case errors.Is(err, tictactoe.ErrNotYourTurn):
		return "Wait for the computer to move."
	default:
		return "Pick a square from 1 to 9."
	}
}

func (s *Server) handleTicTacToeReset(c *gin.Context) {
	sess := currentSession(c)
	sess.Lock()
	sess.ResetGame()
	sess.Unlock()
	c.Redirect(http.StatusSeeOther, "/tictactoe")
}

package game

import (
	"errors"
	"slices"
)

// Mark is a tic-tac-toe cell value. The host always plays X.
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// MarkOf returns the mark played by role.
func MarkOf(r Role) Mark {
	if r == Host {
		return X
	}
	return O
}

func (m Mark) role() Role {
	if m == X {
		return Host
	}
	return Guest
}

// TicTacToeState is a 3x3 board stored row-major.
type TicTacToeState struct {
	Board         []Mark  `json:"board"`
	CurrentPlayer Mark    `json:"currentPlayer"`
	Winner        Outcome `json:"winner,omitempty"`
}

func (TicTacToeState) Variant() Variant { return TicTacToe }
func (s TicTacToeState) Over() bool     { return s.Winner != NoOutcome }

func (s TicTacToeState) validate() error {
	if len(s.Board) != 9 {
		return errors.New("tic-tac-toe board must have 9 cells")
	}
	for _, m := range s.Board {
		if m != Empty && m != X && m != O {
			return errors.New("tic-tac-toe cells must be empty, X or O")
		}
	}
	if s.CurrentPlayer != X && s.CurrentPlayer != O {
		return errors.New("tic-tac-toe current player must be X or O")
	}
	if !s.Winner.Valid() {
		return errors.New("unknown winner")
	}
	return nil
}

var tttLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// TicTacToeEngine implements the classic 3x3 game.
type TicTacToeEngine struct{}

func (TicTacToeEngine) Variant() Variant { return TicTacToe }

func (TicTacToeEngine) New(State) State {
	return TicTacToeState{Board: make([]Mark, 9), CurrentPlayer: X}
}

func (TicTacToeEngine) Apply(s State, m Move) (State, error) {
	st, err := As[TicTacToeState](s)
	if err != nil {
		return nil, err
	}
	if m.Kind != KindPlace {
		return nil, illegal("tic-tac-toe does not accept %q", m.Kind)
	}
	if err := checkTurn(st.Over(), st.CurrentPlayer.role(), m.Mover); err != nil {
		return nil, err
	}
	if m.Index < 0 || m.Index >= len(st.Board) {
		return nil, illegal("cell %d out of range", m.Index)
	}
	if st.Board[m.Index] != Empty {
		return nil, illegal("cell %d already taken", m.Index)
	}

	board := slices.Clone(st.Board)
	board[m.Index] = st.CurrentPlayer

	next := TicTacToeState{Board: board, CurrentPlayer: st.CurrentPlayer, Winner: tttWinner(board)}
	if next.Winner == NoOutcome {
		next.CurrentPlayer = MarkOf(m.Mover.Other())
	}
	return next, nil
}

func tttWinner(board []Mark) Outcome {
	for _, line := range tttLines {
		a, b, c := board[line[0]], board[line[1]], board[line[2]]
		if a != Empty && a == b && a == c {
			return WinnerOf(a.role())
		}
	}
	if !slices.Contains(board, Empty) {
		return Draw
	}
	return NoOutcome
}

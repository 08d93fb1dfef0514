package game

import (
	"errors"
	"slices"
)

const (
	c4Rows   = 6
	c4Cols   = 7
	c4Window = 4
)

// Cell is a grid coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ConnectFourState holds a 6x7 grid; row 0 is the top.
type ConnectFourState struct {
	Board         [][]Role `json:"board"`
	CurrentPlayer Role     `json:"currentPlayer"`
	Winner        Outcome  `json:"winner,omitempty"`
	WinningCells  []Cell   `json:"winningCells"`
	LastMove      *Cell    `json:"lastMove,omitempty"`
}

func (ConnectFourState) Variant() Variant { return ConnectFour }
func (s ConnectFourState) Over() bool     { return s.Winner != NoOutcome }

func (s ConnectFourState) validate() error {
	if len(s.Board) != c4Rows {
		return errors.New("connect-four board must have 6 rows")
	}
	for _, row := range s.Board {
		if len(row) != c4Cols {
			return errors.New("connect-four rows must have 7 columns")
		}
		for _, cell := range row {
			if !seatOrEmpty(cell) {
				return errors.New("connect-four cells must be empty, host or guest")
			}
		}
	}
	if !s.CurrentPlayer.Valid() {
		return errors.New("connect-four current player must be host or guest")
	}
	if !s.Winner.Valid() {
		return errors.New("unknown winner")
	}
	if s.LastMove != nil && !s.LastMove.onBoard() {
		return errors.New("connect-four last move out of range")
	}
	for _, c := range s.WinningCells {
		if !c.onBoard() {
			return errors.New("connect-four winning cell out of range")
		}
	}
	return nil
}

func (c Cell) onBoard() bool {
	return c.Row >= 0 && c.Row < c4Rows && c.Col >= 0 && c.Col < c4Cols
}

// ConnectFourEngine drops discs into columns.
type ConnectFourEngine struct{}

func (ConnectFourEngine) Variant() Variant { return ConnectFour }

func (ConnectFourEngine) New(State) State {
	board := make([][]Role, c4Rows)
	for r := range board {
		board[r] = make([]Role, c4Cols)
	}
	return ConnectFourState{Board: board, CurrentPlayer: Host, WinningCells: []Cell{}}
}

func (ConnectFourEngine) Apply(s State, m Move) (State, error) {
	st, err := As[ConnectFourState](s)
	if err != nil {
		return nil, err
	}
	if m.Kind != KindDrop {
		return nil, illegal("connect-four does not accept %q", m.Kind)
	}
	if err := checkTurn(st.Over(), st.CurrentPlayer, m.Mover); err != nil {
		return nil, err
	}
	col := m.Index
	if col < 0 || col >= c4Cols {
		return nil, illegal("column %d out of range", col)
	}

	row := -1
	for r := c4Rows - 1; r >= 0; r-- {
		if st.Board[r][col] == "" {
			row = r
			break
		}
	}
	if row < 0 {
		return nil, illegal("column %d is full", col)
	}

	board := cloneGrid(st.Board)
	board[row][col] = m.Mover

	winner, cells := c4Winner(board)
	next := ConnectFourState{
		Board:         board,
		CurrentPlayer: st.CurrentPlayer,
		Winner:        winner,
		WinningCells:  cells,
		LastMove:      &Cell{Row: row, Col: col},
	}
	if winner == NoOutcome {
		next.CurrentPlayer = m.Mover.Other()
	}
	return next, nil
}

// c4Directions are right, down, down-right and down-left.
var c4Directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

func c4Winner(board [][]Role) (Outcome, []Cell) {
	rows := len(board)
	for r := 0; r < rows; r++ {
		cols := len(board[r])
		for c := 0; c < cols; c++ {
			owner := board[r][c]
			if owner == "" {
				continue
			}
			for _, d := range c4Directions {
				run := make([]Cell, 0, c4Window)
				for k := 0; k < c4Window; k++ {
					rr, cc := r+d[0]*k, c+d[1]*k
					if rr < 0 || rr >= rows || cc < 0 || cc >= len(board[rr]) || board[rr][cc] != owner {
						break
					}
					run = append(run, Cell{Row: rr, Col: cc})
				}
				if len(run) == c4Window {
					return WinnerOf(owner), run
				}
			}
		}
	}
	for _, row := range board {
		if slices.Contains(row, "") {
			return NoOutcome, []Cell{}
		}
	}
	return Draw, []Cell{}
}

func cloneGrid[T any](g [][]T) [][]T {
	out := make([][]T, len(g))
	for i, row := range g {
		out[i] = slices.Clone(row)
	}
	return out
}

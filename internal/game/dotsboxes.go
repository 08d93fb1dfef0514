package game

import "errors"

// dnbDots is the number of dots per side; boxes are (dnbDots-1)^2.
const dnbDots = 5

// DotsAndBoxesState tracks drawn edges and box owners. HorizontalLines is
// dnbDots rows of dnbDots-1 edges, VerticalLines dnbDots-1 rows of dnbDots.
// Box (r, c) is closed by H[r][c], H[r+1][c], V[r][c] and V[r][c+1].
type DotsAndBoxesState struct {
	HorizontalLines [][]bool `json:"horizontalLines"`
	VerticalLines   [][]bool `json:"verticalLines"`
	Boxes           [][]Role `json:"boxes"`
	CurrentPlayer   Role     `json:"currentPlayer"`
	HostScore       int      `json:"hostScore"`
	GuestScore      int      `json:"guestScore"`
	Winner          Outcome  `json:"winner,omitempty"`
	LastMove        *Edge    `json:"lastMove,omitempty"`
}

// Edge identifies one line segment between two adjacent dots.
type Edge struct {
	Type Orientation `json:"type"`
	Row  int         `json:"row"`
	Col  int         `json:"col"`
}

func (DotsAndBoxesState) Variant() Variant { return DotsAndBoxes }
func (s DotsAndBoxesState) Over() bool     { return s.Winner != NoOutcome }

func (s DotsAndBoxesState) validate() error {
	if !gridShape(s.HorizontalLines, dnbDots, dnbDots-1) {
		return errors.New("horizontal lines must be 5x4")
	}
	if !gridShape(s.VerticalLines, dnbDots-1, dnbDots) {
		return errors.New("vertical lines must be 4x5")
	}
	if !gridShape(s.Boxes, dnbDots-1, dnbDots-1) {
		return errors.New("boxes must be 4x4")
	}
	for _, row := range s.Boxes {
		for _, owner := range row {
			if !seatOrEmpty(owner) {
				return errors.New("box owners must be empty, host or guest")
			}
		}
	}
	if !s.CurrentPlayer.Valid() {
		return errors.New("current player must be host or guest")
	}
	if s.HostScore < 0 || s.GuestScore < 0 {
		return errors.New("scores must not be negative")
	}
	if !s.Winner.Valid() {
		return errors.New("unknown winner")
	}
	return nil
}

func gridShape[T any](g [][]T, rows, cols int) bool {
	if len(g) != rows {
		return false
	}
	for _, row := range g {
		if len(row) != cols {
			return false
		}
	}
	return true
}

func newGrid[T any](rows, cols int) [][]T {
	g := make([][]T, rows)
	for r := range g {
		g[r] = make([]T, cols)
	}
	return g
}

// DotsAndBoxesEngine draws one edge per move.
type DotsAndBoxesEngine struct{}

func (DotsAndBoxesEngine) Variant() Variant { return DotsAndBoxes }

func (DotsAndBoxesEngine) New(State) State {
	return DotsAndBoxesState{
		HorizontalLines: newGrid[bool](dnbDots, dnbDots-1),
		VerticalLines:   newGrid[bool](dnbDots-1, dnbDots),
		Boxes:           newGrid[Role](dnbDots-1, dnbDots-1),
		CurrentPlayer:   Host,
	}
}

func (DotsAndBoxesEngine) Apply(s State, m Move) (State, error) {
	st, err := As[DotsAndBoxesState](s)
	if err != nil {
		return nil, err
	}
	if m.Kind != KindLine {
		return nil, illegal("dots-and-boxes does not accept %q", m.Kind)
	}
	if err := checkTurn(st.Over(), st.CurrentPlayer, m.Mover); err != nil {
		return nil, err
	}

	h := cloneGrid(st.HorizontalLines)
	v := cloneGrid(st.VerticalLines)
	var lines [][]bool
	switch m.Orientation {
	case Horizontal:
		lines = h
	case Vertical:
		lines = v
	default:
		return nil, illegal("unknown line orientation %q", m.Orientation)
	}
	if m.Row < 0 || m.Row >= len(lines) || m.Col < 0 || m.Col >= len(lines[m.Row]) {
		return nil, illegal("line %s(%d,%d) out of range", m.Orientation, m.Row, m.Col)
	}
	if lines[m.Row][m.Col] {
		return nil, illegal("line %s(%d,%d) already drawn", m.Orientation, m.Row, m.Col)
	}
	lines[m.Row][m.Col] = true

	boxes := cloneGrid(st.Boxes)
	completed := 0
	for r := range boxes {
		for c := range boxes[r] {
			if boxes[r][c] == "" && h[r][c] && h[r+1][c] && v[r][c] && v[r][c+1] {
				boxes[r][c] = m.Mover
				completed++
			}
		}
	}

	next := DotsAndBoxesState{
		HorizontalLines: h,
		VerticalLines:   v,
		Boxes:           boxes,
		CurrentPlayer:   st.CurrentPlayer,
		HostScore:       st.HostScore,
		GuestScore:      st.GuestScore,
		LastMove:        &Edge{Type: m.Orientation, Row: m.Row, Col: m.Col},
	}
	if m.Mover == Host {
		next.HostScore += completed
	} else {
		next.GuestScore += completed
	}

	total := (dnbDots - 1) * (dnbDots - 1)
	if next.HostScore+next.GuestScore == total {
		next.Winner = compareScores(next.HostScore, next.GuestScore)
		return next, nil
	}
	if completed == 0 {
		next.CurrentPlayer = m.Mover.Other()
	}
	return next, nil
}

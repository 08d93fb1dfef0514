package game

import "errors"

const (
	BoardSquares = 100
	DieFaces     = 6
)

// Snakes maps a snake head to its tail.
var Snakes = map[int]int{98: 78, 95: 56, 88: 24, 62: 18, 48: 26, 36: 6, 32: 10}

// Ladders maps a ladder bottom to its top.
var Ladders = map[int]int{4: 14, 9: 31, 20: 38, 28: 84, 40: 59, 51: 67, 63: 81, 71: 91}

// SnakeLaddersState holds both positions; 0 is off the board.
type SnakeLaddersState struct {
	HostPosition  int     `json:"hostPosition"`
	GuestPosition int     `json:"guestPosition"`
	CurrentPlayer Role    `json:"currentPlayer"`
	DiceValue     int     `json:"diceValue,omitempty"`
	CanRoll       bool    `json:"canRoll"`
	Winner        Outcome `json:"winner,omitempty"`
}

func (SnakeLaddersState) Variant() Variant { return SnakeLadders }
func (s SnakeLaddersState) Over() bool     { return s.Winner != NoOutcome }

func (s SnakeLaddersState) validate() error {
	for _, p := range []int{s.HostPosition, s.GuestPosition} {
		if p < 0 || p > BoardSquares {
			return errors.New("position out of range")
		}
	}
	if s.DiceValue < 0 || s.DiceValue > DieFaces {
		return errors.New("dice value out of range")
	}
	if !s.CurrentPlayer.Valid() {
		return errors.New("current player must be host or guest")
	}
	if !s.Winner.Valid() {
		return errors.New("unknown winner")
	}
	return nil
}

func (s SnakeLaddersState) position(r Role) int {
	if r == Host {
		return s.HostPosition
	}
	return s.GuestPosition
}

// SnakeLaddersEngine moves a token by a die value supplied in the move.
type SnakeLaddersEngine struct{}

func (SnakeLaddersEngine) Variant() Variant { return SnakeLadders }

func (SnakeLaddersEngine) New(State) State {
	return SnakeLaddersState{CurrentPlayer: Host, CanRoll: true}
}

func (SnakeLaddersEngine) Apply(s State, m Move) (State, error) {
	st, err := As[SnakeLaddersState](s)
	if err != nil {
		return nil, err
	}
	switch m.Kind {
	case KindRoll:
		return roll(st, m)
	case KindSettle:
		if st.Over() || st.CanRoll {
			return nil, illegal("nothing to settle")
		}
		st.CanRoll = true
		return st, nil
	}
	return nil, illegal("snake-and-ladders does not accept %q", m.Kind)
}

func roll(st SnakeLaddersState, m Move) (State, error) {
	if err := checkTurn(st.Over(), st.CurrentPlayer, m.Mover); err != nil {
		return nil, err
	}
	if !st.CanRoll {
		return nil, illegal("roll not allowed yet")
	}
	if m.Die < 1 || m.Die > DieFaces {
		return nil, illegal("die value %d out of range", m.Die)
	}

	pos := Advance(st.position(m.Mover), m.Die)
	next := st
	if m.Mover == Host {
		next.HostPosition = pos
	} else {
		next.GuestPosition = pos
	}
	next.DiceValue = m.Die
	next.CanRoll = false
	if pos == BoardSquares {
		next.Winner = WinnerOf(m.Mover)
		return next, nil
	}
	if m.Die != DieFaces {
		next.CurrentPlayer = m.Mover.Other()
	}
	return next, nil
}

// Advance moves from pos by die, staying put on overshoot and following a
// snake or ladder from the landing square.
func Advance(pos, die int) int {
	landing := pos + die
	if landing > BoardSquares {
		return pos
	}
	if tail, ok := Snakes[landing]; ok {
		return tail
	}
	if top, ok := Ladders[landing]; ok {
		return top
	}
	return landing
}

// Pending schedules the settle that re-enables rolling after the dice
// animation.
func (SnakeLaddersEngine) Pending(s State) (Move, bool) {
	st, ok := s.(SnakeLaddersState)
	if !ok || st.Over() || st.CanRoll {
		return Move{}, false
	}
	return Move{Kind: KindSettle, Mover: st.CurrentPlayer}, true
}

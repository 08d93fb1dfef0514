package game

import (
	"errors"
	"math/rand/v2"
	"slices"
)

// memoryFaces are the pair faces dealt into a fresh game.
var memoryFaces = []string{"🐶", "🐱", "🐭", "🐹", "🐰", "🦊", "🐻", "🐼"}

// MemoryCard is one card on the memory table.
type MemoryCard struct {
	ID      int    `json:"id"`
	Face    string `json:"emoji,omitempty"`
	Flipped bool   `json:"isFlipped"`
	Matched bool   `json:"isMatched"`
}

// MemoryState is the shuffled table. Revealed holds the positions of at most
// two face-up cards awaiting resolution; Checking is set once two are up.
type MemoryState struct {
	Cards         []MemoryCard `json:"cards"`
	Revealed      []int        `json:"flippedCards"`
	CurrentPlayer Role         `json:"currentPlayer"`
	HostScore     int          `json:"hostScore"`
	GuestScore    int          `json:"guestScore"`
	Winner        Outcome      `json:"winner,omitempty"`
	Checking      bool         `json:"isChecking"`
}

func (MemoryState) Variant() Variant { return MemoryMatch }
func (s MemoryState) Over() bool     { return s.Winner != NoOutcome }

func (s MemoryState) validate() error {
	if len(s.Cards) == 0 || len(s.Cards)%2 != 0 {
		return errors.New("memory table needs an even number of cards")
	}
	if len(s.Revealed) > 2 {
		return errors.New("at most two cards may be revealed")
	}
	for i, idx := range s.Revealed {
		if idx < 0 || idx >= len(s.Cards) {
			return errors.New("revealed card out of range")
		}
		if c := s.Cards[idx]; !c.Flipped || c.Matched {
			return errors.New("revealed cards must be face up and unmatched")
		}
		if slices.Contains(s.Revealed[:i], idx) {
			return errors.New("card revealed twice")
		}
	}
	if s.Checking != (len(s.Revealed) == 2) {
		return errors.New("checking must be set exactly when two cards are revealed")
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

func (s MemoryState) clone() MemoryState {
	s.Cards = slices.Clone(s.Cards)
	s.Revealed = slices.Clone(s.Revealed)
	return s
}

// ViewFor hides the face of every card that is not face up.
func (s MemoryState) ViewFor(Role) any {
	v := s.clone()
	for i := range v.Cards {
		if !v.Cards[i].Flipped && !v.Cards[i].Matched {
			v.Cards[i].Face = ""
		}
	}
	return v
}

// MemoryEngine is a pair-matching game played in turns.
type MemoryEngine struct {
	// Rand shuffles the table; nil uses the global source.
	Rand *rand.Rand
}

func (MemoryEngine) Variant() Variant { return MemoryMatch }

func (e MemoryEngine) New(State) State {
	faces := append(slices.Clone(memoryFaces), memoryFaces...)
	shuffle(e.Rand, len(faces), func(i, j int) { faces[i], faces[j] = faces[j], faces[i] })

	cards := make([]MemoryCard, len(faces))
	for i, f := range faces {
		cards[i] = MemoryCard{ID: i, Face: f}
	}
	return MemoryState{Cards: cards, Revealed: []int{}, CurrentPlayer: Host}
}

func (e MemoryEngine) Apply(s State, m Move) (State, error) {
	st, err := As[MemoryState](s)
	if err != nil {
		return nil, err
	}
	switch m.Kind {
	case KindFlip:
		return flip(st, m)
	case KindSettle:
		return settlePair(st)
	}
	return nil, illegal("memory does not accept %q", m.Kind)
}

func flip(st MemoryState, m Move) (State, error) {
	if err := checkTurn(st.Over(), st.CurrentPlayer, m.Mover); err != nil {
		return nil, err
	}
	if st.Checking || len(st.Revealed) >= 2 {
		return nil, illegal("two cards are already face up")
	}
	if m.Index < 0 || m.Index >= len(st.Cards) {
		return nil, illegal("card %d out of range", m.Index)
	}
	if c := st.Cards[m.Index]; c.Flipped || c.Matched {
		return nil, illegal("card %d is already face up", m.Index)
	}

	next := st.clone()
	next.Cards[m.Index].Flipped = true
	next.Revealed = append(next.Revealed, m.Index)
	next.Checking = len(next.Revealed) == 2
	return next, nil
}

func settlePair(st MemoryState) (State, error) {
	if !st.Checking || len(st.Revealed) != 2 {
		return nil, illegal("no pair to resolve")
	}
	next := st.clone()
	a, b := next.Revealed[0], next.Revealed[1]
	next.Revealed = []int{}
	next.Checking = false

	if next.Cards[a].Face != next.Cards[b].Face {
		next.Cards[a].Flipped = false
		next.Cards[b].Flipped = false
		next.CurrentPlayer = st.CurrentPlayer.Other()
		return next, nil
	}

	next.Cards[a].Matched = true
	next.Cards[b].Matched = true
	if st.CurrentPlayer == Host {
		next.HostScore++
	} else {
		next.GuestScore++
	}
	allMatched := !slices.ContainsFunc(next.Cards, func(c MemoryCard) bool { return !c.Matched })
	if allMatched {
		next.Winner = compareScores(next.HostScore, next.GuestScore)
	}
	return next, nil
}

// Pending schedules pair resolution once two cards are face up.
func (MemoryEngine) Pending(s State) (Move, bool) {
	st, ok := s.(MemoryState)
	if !ok || !st.Checking {
		return Move{}, false
	}
	return Move{Kind: KindSettle, Mover: st.CurrentPlayer}, true
}

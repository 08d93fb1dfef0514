package game

import (
	"errors"
	"math/rand/v2"
	"slices"
)

// Color is a four colors suit.
type Color string

const (
	Red    Color = "red"
	Blue   Color = "blue"
	Green  Color = "green"
	Yellow Color = "yellow"
)

var fcColors = [4]Color{Red, Blue, Green, Yellow}

const (
	fcHandSize  = 7
	fcMaxNumber = 9
)

// Card is a four colors card.
type Card struct {
	Color  Color `json:"color"`
	Number int   `json:"number"`
}

// matches reports whether c may be played on top.
func (c Card) matches(top Card) bool {
	return c.Color == top.Color || c.Number == top.Number
}

// FourColorsState is the full table. Deck is the draw pile, top at index 0;
// the last element of DiscardPile is the face-up card.
type FourColorsState struct {
	Deck          []Card  `json:"deck"`
	HostHand      []Card  `json:"hostHand"`
	GuestHand     []Card  `json:"guestHand"`
	DiscardPile   []Card  `json:"discardPile"`
	CurrentPlayer Role    `json:"currentPlayer"`
	Winner        Outcome `json:"winner,omitempty"`
	LastDrawn     bool    `json:"lastDrawn"`
}

func (FourColorsState) Variant() Variant { return FourColors }
func (s FourColorsState) Over() bool     { return s.Winner != NoOutcome }

func (s FourColorsState) validate() error {
	if !s.CurrentPlayer.Valid() {
		return errors.New("current player must be host or guest")
	}
	for _, pile := range [][]Card{s.Deck, s.HostHand, s.GuestHand, s.DiscardPile} {
		for _, c := range pile {
			if !slices.Contains(fcColors[:], c.Color) || c.Number < 0 || c.Number > fcMaxNumber {
				return errors.New("invalid card")
			}
		}
	}
	if !s.Winner.Valid() {
		return errors.New("unknown winner")
	}
	return nil
}

func (s FourColorsState) hand(r Role) []Card {
	if r == Host {
		return s.HostHand
	}
	return s.GuestHand
}

func (s *FourColorsState) setHand(r Role, h []Card) {
	if r == Host {
		s.HostHand = h
	} else {
		s.GuestHand = h
	}
}

func (s FourColorsState) top() (Card, bool) {
	if len(s.DiscardPile) == 0 {
		return Card{}, false
	}
	return s.DiscardPile[len(s.DiscardPile)-1], true
}

func (s FourColorsState) playable(c Card) bool {
	top, ok := s.top()
	return !ok || c.matches(top)
}

func (s FourColorsState) clone() FourColorsState {
	s.Deck = slices.Clone(s.Deck)
	s.HostHand = slices.Clone(s.HostHand)
	s.GuestHand = slices.Clone(s.GuestHand)
	s.DiscardPile = slices.Clone(s.DiscardPile)
	return s
}

// FourColorsView is what one participant may see of the table.
type FourColorsView struct {
	Hand              []Card  `json:"hand"`
	OpponentHandCount int     `json:"opponentHandCount"`
	DeckCount         int     `json:"deckCount"`
	DiscardTop        *Card   `json:"discardTop,omitempty"`
	DiscardCount      int     `json:"discardCount"`
	CurrentPlayer     Role    `json:"currentPlayer"`
	Winner            Outcome `json:"winner,omitempty"`
	LastDrawn         bool    `json:"lastDrawn"`
}

// ViewFor hides the opponent's hand and the order of the draw pile.
func (s FourColorsState) ViewFor(role Role) any {
	v := FourColorsView{
		Hand:              slices.Clone(s.hand(role)),
		OpponentHandCount: len(s.hand(role.Other())),
		DeckCount:         len(s.Deck),
		DiscardCount:      len(s.DiscardPile),
		CurrentPlayer:     s.CurrentPlayer,
		Winner:            s.Winner,
		LastDrawn:         s.LastDrawn,
	}
	if top, ok := s.top(); ok {
		v.DiscardTop = &top
	}
	return v
}

// FourColorsEngine is a two-player shedding game: match the color or the
// number of the discard top, first to empty their hand wins.
type FourColorsEngine struct {
	// Rand drives dealing and reshuffles; nil uses the global source.
	Rand *rand.Rand
}

func (FourColorsEngine) Variant() Variant { return FourColors }

// NewDeck returns the 76 card deck: one zero and two of each of 1-9 per color.
func NewDeck() []Card {
	deck := make([]Card, 0, 76)
	for _, color := range fcColors {
		for n := 0; n <= fcMaxNumber; n++ {
			deck = append(deck, Card{Color: color, Number: n})
			if n != 0 {
				deck = append(deck, Card{Color: color, Number: n})
			}
		}
	}
	return deck
}

func (e FourColorsEngine) New(State) State {
	deck := NewDeck()
	shuffle(e.Rand, len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	return FourColorsState{
		HostHand:      slices.Clone(deck[:fcHandSize]),
		GuestHand:     slices.Clone(deck[fcHandSize : 2*fcHandSize]),
		DiscardPile:   []Card{deck[2*fcHandSize]},
		Deck:          slices.Clone(deck[2*fcHandSize+1:]),
		CurrentPlayer: Host,
	}
}

func (e FourColorsEngine) Apply(s State, m Move) (State, error) {
	st, err := As[FourColorsState](s)
	if err != nil {
		return nil, err
	}
	if err := checkTurn(st.Over(), st.CurrentPlayer, m.Mover); err != nil {
		return nil, err
	}

	switch m.Kind {
	case KindPlay:
		return e.play(st, m)
	case KindDraw:
		return e.draw(st, m)
	case KindPass:
		if !st.LastDrawn {
			return nil, illegal("can only pass after drawing a playable card")
		}
		next := st.clone()
		next.LastDrawn = false
		next.CurrentPlayer = m.Mover.Other()
		return next, nil
	}
	return nil, illegal("four colors does not accept %q", m.Kind)
}

func (e FourColorsEngine) play(st FourColorsState, m Move) (State, error) {
	hand := st.hand(m.Mover)
	if m.Index < 0 || m.Index >= len(hand) {
		return nil, illegal("hand index %d out of range", m.Index)
	}
	card := hand[m.Index]
	if !st.playable(card) {
		return nil, illegal("%s %d does not match the discard pile", card.Color, card.Number)
	}

	next := st.clone()
	next.setHand(m.Mover, slices.Delete(slices.Clone(hand), m.Index, m.Index+1))
	next.DiscardPile = append(next.DiscardPile, card)
	next.LastDrawn = false
	if len(next.hand(m.Mover)) == 0 {
		next.Winner = WinnerOf(m.Mover)
		return next, nil
	}
	next.CurrentPlayer = m.Mover.Other()
	return next, nil
}

func (e FourColorsEngine) draw(st FourColorsState, m Move) (State, error) {
	if st.LastDrawn {
		return nil, illegal("already drew this turn")
	}

	next := st.clone()
	if len(next.Deck) == 0 {
		// Reshuffle everything under the face-up card into a new draw pile.
		if len(next.DiscardPile) < 2 {
			return nil, illegal("no cards left to draw")
		}
		top := next.DiscardPile[len(next.DiscardPile)-1]
		pile := next.DiscardPile[:len(next.DiscardPile)-1]
		shuffle(e.Rand, len(pile), func(i, j int) { pile[i], pile[j] = pile[j], pile[i] })
		next.Deck = pile
		next.DiscardPile = []Card{top}
	}

	drawn := next.Deck[0]
	next.Deck = next.Deck[1:]
	next.setHand(m.Mover, append(next.hand(m.Mover), drawn))

	if next.playable(drawn) {
		next.LastDrawn = true
		return next, nil
	}
	next.LastDrawn = false
	next.CurrentPlayer = m.Mover.Other()
	return next, nil
}

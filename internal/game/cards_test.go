package game

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() *rand.Rand { return rand.New(rand.NewPCG(7, 11)) }

func TestFourColorsDeal(t *testing.T) {
	st := FourColorsEngine{Rand: seeded()}.New(nil).(FourColorsState)
	assert.Len(t, st.HostHand, fcHandSize)
	assert.Len(t, st.GuestHand, fcHandSize)
	assert.Len(t, st.DiscardPile, 1)
	assert.Len(t, st.Deck, 76-2*fcHandSize-1)
	assert.Equal(t, Host, st.CurrentPlayer)
	require.NoError(t, st.validate())

	again := FourColorsEngine{Rand: seeded()}.New(nil)
	if diff := cmp.Diff(st, again); diff != "" {
		t.Fatalf("same seed dealt differently:\n%s", diff)
	}
}

func fcTable() FourColorsState {
	return FourColorsState{
		Deck:          []Card{{Red, 1}, {Green, 2}},
		HostHand:      []Card{{Green, 2}, {Blue, 5}},
		GuestHand:     []Card{{Yellow, 9}},
		DiscardPile:   []Card{{Red, 5}},
		CurrentPlayer: Host,
	}
}

func TestFourColorsPlay(t *testing.T) {
	eng := FourColorsEngine{Rand: seeded()}
	st := fcTable()

	_, err := eng.Apply(st, Move{Kind: KindPlay, Mover: Host, Index: 0})
	assert.ErrorIs(t, err, ErrIllegalMove, "green 2 does not match red 5")
	_, err = eng.Apply(st, Move{Kind: KindPlay, Mover: Host, Index: 2})
	assert.ErrorIs(t, err, ErrIllegalMove)
	_, err = eng.Apply(st, Move{Kind: KindPlay, Mover: Guest, Index: 0})
	assert.ErrorIs(t, err, ErrIllegalMove, "not guest's turn")

	next, err := eng.Apply(st, Move{Kind: KindPlay, Mover: Host, Index: 1})
	require.NoError(t, err)
	got := next.(FourColorsState)
	assert.Equal(t, []Card{{Green, 2}}, got.HostHand)
	assert.Equal(t, Card{Blue, 5}, got.DiscardPile[len(got.DiscardPile)-1])
	assert.Equal(t, Guest, got.CurrentPlayer)
	assert.Len(t, st.HostHand, 2, "input hand untouched")
	assert.Len(t, st.DiscardPile, 1, "input discard untouched")
}

func TestFourColorsEmptyHandWins(t *testing.T) {
	st := fcTable()
	st.CurrentPlayer = Guest
	st.DiscardPile = []Card{{Yellow, 0}}

	next, err := FourColorsEngine{}.Apply(st, Move{Kind: KindPlay, Mover: Guest, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, GuestWins, next.(FourColorsState).Winner)
	assert.True(t, next.Over())
}

func TestFourColorsDrawPlayableKeepsTurn(t *testing.T) {
	eng := FourColorsEngine{}
	next, err := eng.Apply(fcTable(), Move{Kind: KindDraw, Mover: Host})
	require.NoError(t, err)
	got := next.(FourColorsState)
	assert.True(t, got.LastDrawn)
	assert.Equal(t, Host, got.CurrentPlayer)
	assert.Equal(t, Card{Red, 1}, got.HostHand[len(got.HostHand)-1])
	assert.Len(t, got.Deck, 1)

	_, err = eng.Apply(got, Move{Kind: KindDraw, Mover: Host})
	assert.ErrorIs(t, err, ErrIllegalMove, "one draw per turn")

	passed, err := eng.Apply(got, Move{Kind: KindPass, Mover: Host})
	require.NoError(t, err)
	assert.Equal(t, Guest, passed.(FourColorsState).CurrentPlayer)
	assert.False(t, passed.(FourColorsState).LastDrawn)

	played, err := eng.Apply(got, Move{Kind: KindPlay, Mover: Host, Index: len(got.HostHand) - 1})
	require.NoError(t, err)
	assert.Equal(t, Guest, played.(FourColorsState).CurrentPlayer)
}

func TestFourColorsDrawUnplayableEndsTurn(t *testing.T) {
	st := fcTable()
	st.Deck = []Card{{Green, 2}}

	next, err := FourColorsEngine{}.Apply(st, Move{Kind: KindDraw, Mover: Host})
	require.NoError(t, err)
	got := next.(FourColorsState)
	assert.False(t, got.LastDrawn)
	assert.Equal(t, Guest, got.CurrentPlayer)

	_, err = FourColorsEngine{}.Apply(fcTable(), Move{Kind: KindPass, Mover: Host})
	assert.ErrorIs(t, err, ErrIllegalMove, "pass only after a playable draw")
}

func TestFourColorsReshufflesDiscard(t *testing.T) {
	st := fcTable()
	st.Deck = nil
	st.DiscardPile = []Card{{Blue, 3}, {Green, 4}, {Red, 5}}

	next, err := FourColorsEngine{Rand: seeded()}.Apply(st, Move{Kind: KindDraw, Mover: Host})
	require.NoError(t, err)
	got := next.(FourColorsState)
	assert.Equal(t, []Card{{Red, 5}}, got.DiscardPile, "top card stays face up")
	assert.Len(t, got.Deck, 1)
	assert.Len(t, got.HostHand, 3)
	assert.Len(t, st.DiscardPile, 3, "input discard untouched")

	st.DiscardPile = []Card{{Red, 5}}
	_, err = FourColorsEngine{}.Apply(st, Move{Kind: KindDraw, Mover: Host})
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestFourColorsViewHidesOpponent(t *testing.T) {
	v := fcTable().ViewFor(Guest).(FourColorsView)
	assert.Equal(t, []Card{{Yellow, 9}}, v.Hand)
	assert.Equal(t, 2, v.OpponentHandCount)
	assert.Equal(t, 2, v.DeckCount)
	require.NotNil(t, v.DiscardTop)
	assert.Equal(t, Card{Red, 5}, *v.DiscardTop)
}

func TestMemoryDeal(t *testing.T) {
	st := MemoryEngine{Rand: seeded()}.New(nil).(MemoryState)
	require.Len(t, st.Cards, 2*len(memoryFaces))
	counts := map[string]int{}
	for i, c := range st.Cards {
		assert.Equal(t, i, c.ID)
		assert.False(t, c.Flipped)
		counts[c.Face]++
	}
	for _, f := range memoryFaces {
		assert.Equal(t, 2, counts[f], f)
	}
	if diff := cmp.Diff(st, MemoryEngine{Rand: seeded()}.New(nil)); diff != "" {
		t.Fatalf("same seed dealt differently:\n%s", diff)
	}
}

// pairOf finds the partner of card i and a card with a different face.
func pairOf(st MemoryState, i int) (match, other int) {
	match, other = -1, -1
	for j, c := range st.Cards {
		if j == i {
			continue
		}
		if c.Face == st.Cards[i].Face {
			match = j
		} else if other < 0 {
			other = j
		}
	}
	return match, other
}

func TestMemoryMatchKeepsTurn(t *testing.T) {
	eng := MemoryEngine{Rand: seeded()}
	st := eng.New(nil).(MemoryState)
	match, _ := pairOf(st, 0)

	s, err := eng.Apply(st, Move{Kind: KindFlip, Mover: Host, Index: 0})
	require.NoError(t, err)
	_, pending := eng.Pending(s)
	assert.False(t, pending, "one card up needs no settle")

	s, err = eng.Apply(s, Move{Kind: KindFlip, Mover: Host, Index: match})
	require.NoError(t, err)
	assert.True(t, s.(MemoryState).Checking)

	_, err = eng.Apply(s, Move{Kind: KindFlip, Mover: Host, Index: 5})
	assert.ErrorIs(t, err, ErrIllegalMove, "third flip while checking")

	settle, ok := eng.Pending(s)
	require.True(t, ok)
	s, err = eng.Apply(s, settle)
	require.NoError(t, err)
	got := s.(MemoryState)
	assert.True(t, got.Cards[0].Matched)
	assert.True(t, got.Cards[match].Matched)
	assert.Equal(t, 1, got.HostScore)
	assert.Equal(t, Host, got.CurrentPlayer)
	assert.Empty(t, got.Revealed)
	assert.False(t, got.Checking)
}

func TestMemoryMismatchSwitchesTurn(t *testing.T) {
	eng := MemoryEngine{Rand: seeded()}
	st := eng.New(nil).(MemoryState)
	_, other := pairOf(st, 0)

	s, err := eng.Apply(st, Move{Kind: KindFlip, Mover: Host, Index: 0})
	require.NoError(t, err)
	_, err = eng.Apply(s, Move{Kind: KindFlip, Mover: Host, Index: 0})
	assert.ErrorIs(t, err, ErrIllegalMove, "card already face up")

	s, err = eng.Apply(s, Move{Kind: KindFlip, Mover: Host, Index: other})
	require.NoError(t, err)
	s, err = eng.Apply(s, Move{Kind: KindSettle})
	require.NoError(t, err)
	got := s.(MemoryState)
	assert.False(t, got.Cards[0].Flipped)
	assert.False(t, got.Cards[other].Flipped)
	assert.Equal(t, Guest, got.CurrentPlayer)
	assert.Zero(t, got.HostScore)

	_, err = eng.Apply(got, Move{Kind: KindSettle})
	assert.ErrorIs(t, err, ErrIllegalMove, "nothing to settle")
}

func TestMemoryLastPairDecides(t *testing.T) {
	eng := MemoryEngine{Rand: seeded()}
	st := eng.New(nil).(MemoryState)
	match, _ := pairOf(st, 0)
	for i := range st.Cards {
		if i != 0 && i != match {
			st.Cards[i].Matched = true
		}
	}
	st.HostScore, st.GuestScore = 3, 4
	st.CurrentPlayer = Guest

	s, err := eng.Apply(st, Move{Kind: KindFlip, Mover: Guest, Index: 0})
	require.NoError(t, err)
	s, err = eng.Apply(s, Move{Kind: KindFlip, Mover: Guest, Index: match})
	require.NoError(t, err)
	s, err = eng.Apply(s, Move{Kind: KindSettle})
	require.NoError(t, err)
	assert.Equal(t, GuestWins, s.(MemoryState).Winner)

	st.HostScore = 4
	st.GuestScore = 3
	s, _ = eng.Apply(st, Move{Kind: KindFlip, Mover: Guest, Index: 0})
	s, _ = eng.Apply(s, Move{Kind: KindFlip, Mover: Guest, Index: match})
	s, err = eng.Apply(s, Move{Kind: KindSettle})
	require.NoError(t, err)
	assert.Equal(t, Draw, s.(MemoryState).Winner, "4-4 is a draw")
}

func TestMemoryViewHidesFaceDown(t *testing.T) {
	eng := MemoryEngine{Rand: seeded()}
	s, err := eng.Apply(eng.New(nil), Move{Kind: KindFlip, Mover: Host, Index: 3})
	require.NoError(t, err)

	v := s.(MemoryState).ViewFor(Guest).(MemoryState)
	for i, c := range v.Cards {
		if i == 3 {
			assert.NotEmpty(t, c.Face)
		} else {
			assert.Empty(t, c.Face)
		}
	}
	assert.NotEmpty(t, s.(MemoryState).Cards[0].Face, "projection does not touch the state")
}

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rollFrom(t *testing.T, pos, die int) SnakeLaddersState {
	t.Helper()
	st := SnakeLaddersState{HostPosition: pos, CurrentPlayer: Host, CanRoll: true}
	next, err := SnakeLaddersEngine{}.Apply(st, Move{Kind: KindRoll, Mover: Host, Die: die})
	require.NoError(t, err)
	return next.(SnakeLaddersState)
}

func TestSnakeLaddersSixKeepsTurn(t *testing.T) {
	got := rollFrom(t, 0, 6)
	assert.Equal(t, 6, got.HostPosition)
	assert.Equal(t, Host, got.CurrentPlayer)
	assert.False(t, got.CanRoll)

	got = rollFrom(t, 0, 5)
	assert.Equal(t, Guest, got.CurrentPlayer)
}

func TestSnakeLaddersSnakeHeads(t *testing.T) {
	for head, tail := range Snakes {
		got := rollFrom(t, head-3, 3)
		assert.Equal(t, tail, got.HostPosition, "snake at %d", head)
	}
}

func TestSnakeLaddersLadderBottoms(t *testing.T) {
	for bottom, top := range Ladders {
		got := rollFrom(t, bottom-1, 1)
		assert.Equal(t, top, got.HostPosition, "ladder at %d", bottom)
	}
}

func TestSnakeLaddersOvershootStaysPut(t *testing.T) {
	got := rollFrom(t, 97, 5)
	assert.Equal(t, 97, got.HostPosition)
	assert.Equal(t, 5, got.DiceValue)
	assert.Equal(t, Guest, got.CurrentPlayer, "roll is consumed")
	assert.False(t, got.Over())
}

func TestSnakeLaddersExactFinish(t *testing.T) {
	got := rollFrom(t, 94, 6)
	assert.Equal(t, BoardSquares, got.HostPosition)
	assert.Equal(t, HostWins, got.Winner)

	_, ok := SnakeLaddersEngine{}.Pending(got)
	assert.False(t, ok, "no settle after the game ends")
}

func TestSnakeLaddersRollGate(t *testing.T) {
	eng := SnakeLaddersEngine{}
	got := rollFrom(t, 0, 2)

	_, err := eng.Apply(got, Move{Kind: KindRoll, Mover: Guest, Die: 3})
	assert.ErrorIs(t, err, ErrIllegalMove, "roll before settle")

	settle, ok := eng.Pending(got)
	require.True(t, ok)
	settled, err := eng.Apply(got, settle)
	require.NoError(t, err)
	assert.True(t, settled.(SnakeLaddersState).CanRoll)

	_, err = eng.Apply(settled, Move{Kind: KindRoll, Mover: Host, Die: 3})
	assert.ErrorIs(t, err, ErrIllegalMove, "not host's turn")
	_, err = eng.Apply(settled, Move{Kind: KindRoll, Mover: Guest, Die: 7})
	assert.ErrorIs(t, err, ErrIllegalMove, "die out of range")
	_, err = eng.Apply(settled, Move{Kind: KindSettle})
	assert.ErrorIs(t, err, ErrIllegalMove, "nothing to settle")

	next, err := eng.Apply(settled, Move{Kind: KindRoll, Mover: Guest, Die: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, next.(SnakeLaddersState).GuestPosition)
}

func TestAdvanceTablesAreOneWay(t *testing.T) {
	for head, tail := range Snakes {
		assert.Less(t, tail, head)
		_, ladder := Ladders[head]
		assert.False(t, ladder, "square %d is both snake and ladder", head)
	}
	for bottom, top := range Ladders {
		assert.Greater(t, top, bottom)
	}
	// Landing on a snake tail or ladder top does not chain.
	assert.Equal(t, 14+1, Advance(14, 1))
	assert.Equal(t, 78+2, Advance(78, 2))
}

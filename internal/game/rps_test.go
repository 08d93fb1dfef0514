package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		host, guest Choice
		want        Outcome
	}{
		{Rock, Scissors, HostWins},
		{Paper, Rock, HostWins},
		{Scissors, Paper, HostWins},
		{Scissors, Rock, GuestWins},
		{Rock, Paper, GuestWins},
		{Paper, Scissors, GuestWins},
		{Rock, Rock, Draw},
		{Paper, Paper, Draw},
		{Scissors, Scissors, Draw},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Resolve(tc.host, tc.guest), "%s vs %s", tc.host, tc.guest)
	}
}

func TestRPSOneSideNeverResolves(t *testing.T) {
	eng := RPSEngine{}
	for _, role := range []Role{Host, Guest} {
		for _, c := range []Choice{Rock, Paper, Scissors} {
			s, err := eng.Apply(eng.New(nil), Move{Kind: KindChoose, Mover: role, Choice: c})
			require.NoError(t, err)
			assert.False(t, s.Over())
			assert.Equal(t, NoOutcome, s.(RPSState).Result)
		}
	}
}

func TestRPSRound(t *testing.T) {
	eng := RPSEngine{}
	start := RPSState{Scores: Scores{Host: 2, Guest: 1}}

	s, err := eng.Apply(start, Move{Kind: KindChoose, Mover: Guest, Choice: Paper})
	require.NoError(t, err)
	_, err = eng.Apply(s, Move{Kind: KindChoose, Mover: Guest, Choice: Rock})
	assert.ErrorIs(t, err, ErrIllegalMove, "second choice in one round")

	s, err = eng.Apply(s, Move{Kind: KindChoose, Mover: Host, Choice: Rock})
	require.NoError(t, err)
	got := s.(RPSState)
	assert.Equal(t, GuestWins, got.Result)
	assert.Equal(t, Scores{Host: 2, Guest: 2}, got.Scores)
	assert.Equal(t, Choices{Host: Rock, Guest: Paper}, got.Choices)

	s, err = eng.Apply(got, Move{Kind: KindChoose, Mover: Host, Choice: Rock})
	require.NoError(t, err)
	assert.Equal(t, RPSState{Choices: Choices{Host: Rock}, Scores: Scores{Host: 2, Guest: 2}}, s,
		"a resolved round rolls over")

	_, err = eng.Apply(start, Move{Kind: KindChoose, Mover: Host, Choice: "lizard"})
	assert.ErrorIs(t, err, ErrIllegalMove)
}

func TestRPSViewMasksOpponent(t *testing.T) {
	st := RPSState{Choices: Choices{Host: Rock}}
	assert.Equal(t, Choices{Host: Rock}, st.ViewFor(Host).(RPSState).Choices)
	assert.Equal(t, Choices{}, st.ViewFor(Guest).(RPSState).Choices)

	done := RPSState{Choices: Choices{Host: Rock, Guest: Paper}, Result: GuestWins}
	assert.Equal(t, done, done.ViewFor(Host))
}

func TestResetIsIdempotent(t *testing.T) {
	engines := NewEngines(nil)
	for _, v := range []Variant{TicTacToe, ConnectFour, DotsAndBoxes, SnakeLadders} {
		eng, err := engines.For(v)
		require.NoError(t, err)
		assert.Equal(t, eng.New(nil), eng.New(eng.New(nil)), v)
	}

	rps := RPSEngine{}
	prev := RPSState{Choices: Choices{Host: Rock}, Scores: Scores{Host: 3, Guest: 5}}
	first := rps.New(prev)
	assert.Equal(t, first, rps.New(first))
	assert.Equal(t, RPSState{Scores: Scores{Host: 3, Guest: 5}}, first)

	assert.Equal(t, FourColorsEngine{Rand: seeded()}.New(nil), FourColorsEngine{Rand: seeded()}.New(nil))
	assert.Equal(t, MemoryEngine{Rand: seeded()}.New(nil), MemoryEngine{Rand: seeded()}.New(nil))
}

func TestEnginesRegistry(t *testing.T) {
	engines := NewEngines(nil)
	for _, v := range Variants {
		eng, err := engines.For(v)
		require.NoError(t, err)
		assert.Equal(t, v, eng.Variant())
		assert.Equal(t, v, eng.New(nil).Variant())
	}
	_, err := engines.For("chess")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

package resolver

import (
	"testing"

	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundSeedsPersistedScore(t *testing.T) {
	r := NewRound(game.RPSState{Result: game.Draw, Scores: game.Scores{Host: 4, Guest: 2}})
	assert.Equal(t, game.RPSState{Scores: game.Scores{Host: 4, Guest: 2}}, r.State())

	assert.Equal(t, game.RPSState{}, NewRound(nil).State())
	assert.Equal(t, game.RPSState{}, NewRound(game.TicTacToeState{}).State())
}

func TestRoundOrderDoesNotChangeOutcome(t *testing.T) {
	orders := [][]game.Role{{game.Host, game.Guest}, {game.Guest, game.Host}}
	choices := map[game.Role]game.Choice{game.Host: game.Scissors, game.Guest: game.Paper}

	for _, order := range orders {
		r := NewRound(game.RPSState{Scores: game.Scores{Host: 1, Guest: 1}})

		interim, err := r.Submit(order[0], choices[order[0]])
		require.NoError(t, err)
		assert.Equal(t, game.NoOutcome, interim.Result)
		assert.False(t, r.Resolved())
		assert.True(t, r.Pending(order[1]))
		assert.False(t, r.Pending(order[0]))

		final, err := r.Submit(order[1], choices[order[1]])
		require.NoError(t, err)
		assert.Equal(t, game.HostWins, final.Result)
		assert.Equal(t, game.Scores{Host: 2, Guest: 1}, final.Scores)
		assert.True(t, r.Resolved())
	}
}

func TestRoundRejectsRepeatsAndLateChoices(t *testing.T) {
	r := NewRound(nil)
	_, err := r.Submit(game.Host, game.Rock)
	require.NoError(t, err)

	_, err = r.Submit(game.Host, game.Paper)
	assert.ErrorIs(t, err, game.ErrIllegalMove)
	assert.Equal(t, game.Rock, r.State().Choices.Host, "first choice stands")

	_, err = r.Submit(game.Guest, "spock")
	assert.ErrorIs(t, err, game.ErrIllegalMove)

	_, err = r.Submit(game.Guest, game.Rock)
	require.NoError(t, err)
	assert.Equal(t, game.Draw, r.State().Result)

	_, err = r.Submit(game.Guest, game.Rock)
	assert.ErrorIs(t, err, ErrRoundClosed)
}

// Package resolver buffers simultaneous hidden rock-paper-scissors choices
// for a single room until both sides have chosen.
//
// A Round is not safe for concurrent use; the owning room actor serializes
// every call.
package resolver

import (
	"errors"

	"github.com/jason-s-yu/gameroom/internal/game"
)

// ErrRoundClosed is returned when a choice arrives for a round that has
// already resolved.
var ErrRoundClosed = errors.New("round already resolved")

// Round is the scratch state of one round in one room.
type Round struct {
	state  game.RPSState
	engine game.RPSEngine
}

// NewRound starts a round seeded with the running score held by prev, the
// last persisted state. prev may be nil or a state of another shape, in which
// case the score starts at zero.
func NewRound(prev game.State) *Round {
	r := &Round{}
	r.state = r.engine.New(prev).(game.RPSState)
	return r
}

// Submit records role's hidden choice. The returned state carries a Result
// only once both sides have chosen; the caller must not reveal the
// opponent's choice from an unresolved state.
func (r *Round) Submit(role game.Role, choice game.Choice) (game.RPSState, error) {
	if r.state.Over() {
		return game.RPSState{}, ErrRoundClosed
	}
	next, err := r.engine.Apply(r.state, game.Move{Kind: game.KindChoose, Mover: role, Choice: choice})
	if err != nil {
		return game.RPSState{}, err
	}
	r.state = next.(game.RPSState)
	return r.state, nil
}

// Resolved reports whether both sides have chosen.
func (r *Round) Resolved() bool { return r.state.Over() }

// Pending reports whether role still owes a choice.
func (r *Round) Pending(role game.Role) bool {
	if role == game.Host {
		return r.state.Choices.Host == ""
	}
	return r.state.Choices.Guest == ""
}

// State returns the current round.
func (r *Round) State() game.RPSState { return r.state }

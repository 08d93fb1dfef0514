// internal/game/engine.go
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Variant tags which game a room is playing. The string values are the
// identifiers stored in the rooms table.
type Variant string

const (
	TicTacToe    Variant = "tic_tac_toe"
	ConnectFour  Variant = "connect_four"
	DotsAndBoxes Variant = "dots_and_boxes"
	FourColors   Variant = "four_colors"
	SnakeLadders Variant = "snake_ladders"
	MemoryMatch  Variant = "memory_match"
	RockPaper    Variant = "rps"
)

// Variants lists every supported variant in a stable order.
var Variants = []Variant{TicTacToe, ConnectFour, DotsAndBoxes, FourColors, SnakeLadders, MemoryMatch, RockPaper}

// Valid reports whether v names a supported variant.
func (v Variant) Valid() bool {
	for _, known := range Variants {
		if v == known {
			return true
		}
	}
	return false
}

// Role identifies one of the two seats in a room.
type Role string

const (
	Host  Role = "host"
	Guest Role = "guest"
)

// Other returns the opposing role.
func (r Role) Other() Role {
	if r == Host {
		return Guest
	}
	return Host
}

// Valid reports whether r is host or guest.
func (r Role) Valid() bool {
	return r == Host || r == Guest
}

// Outcome is the terminal result of a game or round. The zero value means
// the game is still in progress.
type Outcome string

const (
	NoOutcome Outcome = ""
	HostWins  Outcome = "host"
	GuestWins Outcome = "guest"
	Draw      Outcome = "draw"
)

// Valid reports whether o is one of the known outcomes, including NoOutcome.
func (o Outcome) Valid() bool {
	switch o {
	case NoOutcome, HostWins, GuestWins, Draw:
		return true
	}
	return false
}

// seatOrEmpty reports whether r is a grid cell value: unclaimed, host or guest.
func seatOrEmpty(r Role) bool {
	return r == "" || r.Valid()
}

// WinnerOf converts a role into its winning outcome.
func WinnerOf(r Role) Outcome {
	if r == Host {
		return HostWins
	}
	return GuestWins
}

// compareScores decides a finished game by score.
func compareScores(host, guest int) Outcome {
	switch {
	case host > guest:
		return HostWins
	case guest > host:
		return GuestWins
	default:
		return Draw
	}
}

var (
	// ErrIllegalMove is returned by an engine that declines a move.
	ErrIllegalMove = errors.New("illegal move")
	// ErrVariantMismatch is returned when a state or move does not belong to the expected variant.
	ErrVariantMismatch = errors.New("state does not match room variant")
	// ErrUnknownVariant is returned for a variant tag outside the supported set.
	ErrUnknownVariant = errors.New("unknown game variant")
)

func illegal(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIllegalMove, fmt.Sprintf(format, args...))
}

// State is the tagged union of per-variant game states. Every transition
// produces a brand new value; states are never patched in place.
type State interface {
	Variant() Variant
	// Over reports whether the game (or round) has reached a terminal outcome.
	Over() bool
}

// Viewer is implemented by states that carry information one participant
// must not see. ViewFor returns the payload safe to show to role.
type Viewer interface {
	ViewFor(role Role) any
}

// Settler is implemented by engines whose states need a server-driven
// follow-up move after a display delay (memory reveal, dice settle).
type Settler interface {
	Pending(s State) (Move, bool)
}

// Engine is the rule engine for one variant. Apply must not mutate s.
type Engine interface {
	Variant() Variant
	// New returns the blank state used on creation and reset. prev may be
	// nil; cumulative scores are carried over where the game tracks them.
	New(prev State) State
	Apply(s State, m Move) (State, error)
}

// Engines maps each variant to its rule engine.
type Engines map[Variant]Engine

// NewEngines builds the full registry. rng seeds shuffles; nil uses the
// global source, which is safe for concurrent use.
func NewEngines(rng *rand.Rand) Engines {
	engines := []Engine{
		TicTacToeEngine{},
		ConnectFourEngine{},
		DotsAndBoxesEngine{},
		FourColorsEngine{Rand: rng},
		SnakeLaddersEngine{},
		MemoryEngine{Rand: rng},
		RPSEngine{},
	}
	reg := make(Engines, len(engines))
	for _, e := range engines {
		reg[e.Variant()] = e
	}
	return reg
}

// For returns the engine for v.
func (e Engines) For(v Variant) (Engine, error) {
	eng, ok := e[v]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
	return eng, nil
}

// View projects s for role if the state hides anything, otherwise returns s.
func View(s State, role Role) any {
	if v, ok := s.(Viewer); ok {
		return v.ViewFor(role)
	}
	return s
}

func shuffle(r *rand.Rand, n int, swap func(i, j int)) {
	if r == nil {
		rand.Shuffle(n, swap)
		return
	}
	r.Shuffle(n, swap)
}

// checkTurn is the common guard for alternating-turn games.
func checkTurn(over bool, current, mover Role) error {
	if over {
		return illegal("game is already over")
	}
	if !mover.Valid() {
		return illegal("unknown mover %q", mover)
	}
	if mover != current {
		return illegal("not %s's turn", mover)
	}
	return nil
}

package game

import "errors"

// Choice is a rock-paper-scissors hand.
type Choice string

const (
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

// beats maps each choice to the one it defeats.
var beats = map[Choice]Choice{Rock: Scissors, Scissors: Paper, Paper: Rock}

// Valid reports whether c is one of the three hands.
func (c Choice) Valid() bool {
	_, ok := beats[c]
	return ok
}

// Resolve applies the cyclic dominance rule with host on the left.
func Resolve(host, guest Choice) Outcome {
	switch {
	case host == guest:
		return Draw
	case beats[host] == guest:
		return HostWins
	default:
		return GuestWins
	}
}

// Choices holds each side's hand for the current round; empty means not yet chosen.
type Choices struct {
	Host  Choice `json:"host,omitempty"`
	Guest Choice `json:"guest,omitempty"`
}

func (c Choices) of(r Role) Choice {
	if r == Host {
		return c.Host
	}
	return c.Guest
}

func (c *Choices) set(r Role, ch Choice) {
	if r == Host {
		c.Host = ch
	} else {
		c.Guest = ch
	}
}

// Scores is the running tally across rounds.
type Scores struct {
	Host  int `json:"host"`
	Guest int `json:"guest"`
}

// RPSState is one round plus the running score. Result is set once both
// choices are in.
type RPSState struct {
	Choices Choices `json:"choices"`
	Result  Outcome `json:"result,omitempty"`
	Scores  Scores  `json:"scores"`
}

func (RPSState) Variant() Variant { return RockPaper }
func (s RPSState) Over() bool     { return s.Result != NoOutcome }

func (s RPSState) validate() error {
	for _, c := range []Choice{s.Choices.Host, s.Choices.Guest} {
		if c != "" && !c.Valid() {
			return errors.New("unknown choice")
		}
	}
	if s.Scores.Host < 0 || s.Scores.Guest < 0 {
		return errors.New("scores must not be negative")
	}
	if !s.Result.Valid() {
		return errors.New("unknown result")
	}
	return nil
}

// ViewFor masks the opponent's choice until the round resolves.
func (s RPSState) ViewFor(role Role) any {
	if s.Over() {
		return s
	}
	v := s
	v.Choices.set(role.Other(), "")
	return v
}

// RPSEngine runs rounds of rock-paper-scissors. Live play goes through the
// resolver; the engine is the single source of the round rules.
type RPSEngine struct{}

func (RPSEngine) Variant() Variant { return RockPaper }

// New starts a blank round keeping the running score of prev.
func (RPSEngine) New(prev State) State {
	next := RPSState{}
	if p, ok := prev.(RPSState); ok {
		next.Scores = p.Scores
	}
	return next
}

func (e RPSEngine) Apply(s State, m Move) (State, error) {
	st, err := As[RPSState](s)
	if err != nil {
		return nil, err
	}
	if m.Kind != KindChoose {
		return nil, illegal("rock-paper-scissors does not accept %q", m.Kind)
	}
	if !m.Mover.Valid() {
		return nil, illegal("unknown mover %q", m.Mover)
	}
	if !m.Choice.Valid() {
		return nil, illegal("unknown choice %q", m.Choice)
	}
	if st.Over() {
		// A finished round rolls over into a blank one.
		st = e.New(st).(RPSState)
	}
	if st.Choices.of(m.Mover) != "" {
		return nil, illegal("%s already chose this round", m.Mover)
	}

	next := st
	next.Choices.set(m.Mover, m.Choice)
	if next.Choices.Host == "" || next.Choices.Guest == "" {
		return next, nil
	}
	next.Result = Resolve(next.Choices.Host, next.Choices.Guest)
	switch next.Result {
	case HostWins:
		next.Scores.Host++
	case GuestWins:
		next.Scores.Guest++
	}
	return next, nil
}

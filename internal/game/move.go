package game

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MoveKind names the action a move performs.
type MoveKind string

const (
	KindPlace  MoveKind = "place"  // tic-tac-toe: Index is the cell
	KindDrop   MoveKind = "drop"   // connect-four: Index is the column
	KindLine   MoveKind = "line"   // dots-and-boxes: Orientation, Row, Col
	KindPlay   MoveKind = "play"   // four colors: Index into the mover's hand
	KindDraw   MoveKind = "draw"   // four colors
	KindPass   MoveKind = "pass"   // four colors, after drawing a playable card
	KindRoll   MoveKind = "roll"   // snake-and-ladders: Die
	KindFlip   MoveKind = "flip"   // memory: Index is the card position
	KindChoose MoveKind = "choose" // rock-paper-scissors: Choice
	KindSettle MoveKind = "settle" // server-issued follow-up, never accepted from clients
)

// Orientation of a dots-and-boxes edge.
type Orientation string

const (
	Horizontal Orientation = "h"
	Vertical   Orientation = "v"
)

// Move is a requested transition. Mover is assigned by the relay from the
// authenticated connection and is never decoded from the wire.
type Move struct {
	Kind        MoveKind    `json:"kind"`
	Mover       Role        `json:"-"`
	Index       int         `json:"index,omitempty"`
	Orientation Orientation `json:"orientation,omitempty"`
	Row         int         `json:"row,omitempty"`
	Col         int         `json:"col,omitempty"`
	Die         int         `json:"die,omitempty"`
	Choice      Choice      `json:"choice,omitempty"`
}

// FromClient reports whether the kind may be submitted by a participant.
func (k MoveKind) FromClient() bool {
	switch k {
	case KindPlace, KindDrop, KindLine, KindPlay, KindDraw, KindPass, KindRoll, KindFlip, KindChoose:
		return true
	}
	return false
}

// validator is implemented by every concrete state to check grid shapes
// after decoding.
type validator interface {
	validate() error
}

// DecodeState strictly decodes raw as the state of variant v. Unknown fields
// and malformed shapes are rejected with ErrVariantMismatch. An empty or null
// payload returns a nil state and no error.
func DecodeState(v Variant, raw []byte) (State, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var target State
	switch v {
	case TicTacToe:
		target = &TicTacToeState{}
	case ConnectFour:
		target = &ConnectFourState{}
	case DotsAndBoxes:
		target = &DotsAndBoxesState{}
	case FourColors:
		target = &FourColorsState{}
	case SnakeLadders:
		target = &SnakeLaddersState{}
	case MemoryMatch:
		target = &MemoryState{}
	case RockPaper:
		target = &RPSState{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVariantMismatch, err)
	}
	if err := target.(validator).validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVariantMismatch, err)
	}
	return deref(target), nil
}

// deref turns the decode target back into the value type the engines use.
func deref(s State) State {
	switch st := s.(type) {
	case *TicTacToeState:
		return *st
	case *ConnectFourState:
		return *st
	case *DotsAndBoxesState:
		return *st
	case *FourColorsState:
		return *st
	case *SnakeLaddersState:
		return *st
	case *MemoryState:
		return *st
	case *RPSState:
		return *st
	}
	return s
}

// As asserts that s has the concrete type T, reporting ErrVariantMismatch otherwise.
func As[T State](s State) (T, error) {
	st, ok := s.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: got %T", ErrVariantMismatch, s)
	}
	return st, nil
}

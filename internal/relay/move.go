package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/gameroom/internal/config"
	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/jason-s-yu/gameroom/internal/models"
	"github.com/jason-s-yu/gameroom/internal/resolver"
	"github.com/sirupsen/logrus"
)

// MoveRequest is a game-move frame. Exactly one of GameState, Move or Reset
// is expected; PlayerID, when present, must be the sender's own user ID.
type MoveRequest struct {
	RequestID string
	PlayerID  string
	GameState json.RawMessage
	Move      *game.Move
	Reset     bool
}

type requestKind int

const (
	kindSnapshot requestKind = iota
	kindIntent
	kindChoice
	kindReset
)

// legacyRPS is the shape older clients send inside gameState for
// rock-paper-scissors: either {"choice": "..."} or {"reset": true}.
type legacyRPS struct {
	Choice *game.Choice `json:"choice"`
	Reset  *bool        `json:"reset"`
}

// classify decides what req asks for in a room of variant v.
func classify(v game.Variant, req MoveRequest) (requestKind, game.Move, error) {
	switch {
	case req.Move != nil:
		if !req.Move.Kind.FromClient() {
			return 0, game.Move{}, fmt.Errorf("%w: unknown move kind %q", ErrBadRequest, req.Move.Kind)
		}
		if req.Move.Kind == game.KindChoose {
			return kindChoice, *req.Move, nil
		}
		return kindIntent, *req.Move, nil
	case req.Reset:
		return kindReset, game.Move{}, nil
	}

	raw := bytes.TrimSpace(req.GameState)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, game.Move{}, fmt.Errorf("%w: game-move needs gameState, move or reset", ErrBadRequest)
	}
	if v == game.RockPaper {
		var legacy legacyRPS
		if err := json.Unmarshal(raw, &legacy); err == nil {
			switch {
			case legacy.Reset != nil && *legacy.Reset:
				return kindReset, game.Move{}, nil
			case legacy.Choice != nil:
				return kindChoice, game.Move{Kind: game.KindChoose, Choice: *legacy.Choice}, nil
			}
		}
	}
	return kindSnapshot, game.Move{}, nil
}

// SubmitMove applies a game-move from c to roomID. On success the new state
// is persisted and broadcast; on failure nothing is broadcast and the error
// is meant for c alone.
func (r *Relay) SubmitMove(ctx context.Context, c *Conn, roomID uuid.UUID, req MoveRequest) error {
	if req.PlayerID != "" && req.PlayerID != c.UserID.String() {
		return fmt.Errorf("%w: playerId does not match the session", ErrNotParticipant)
	}
	return r.do(ctx, roomID, func(ctx context.Context, a *actor) error {
		return a.submit(ctx, c, req)
	})
}

func (a *actor) submit(ctx context.Context, c *Conn, req MoveRequest) error {
	r := a.relay
	room, role, err := r.participant(ctx, c, a.id)
	if err != nil {
		return err
	}
	if room.Status != models.StatusPlaying {
		return ErrRoomNotReady
	}
	eng, err := r.engines.For(room.Variant)
	if err != nil {
		return err
	}
	kind, move, err := classify(room.Variant, req)
	if err != nil {
		return err
	}

	logger := a.log().WithFields(logrus.Fields{"user": c.UserID, "role": role})

	var next game.State
	switch kind {
	case kindChoice:
		if room.Variant != game.RockPaper {
			return fmt.Errorf("%w: %s has no hidden choices", game.ErrIllegalMove, room.Variant)
		}
		return a.choose(ctx, room, role, c.UserID, move.Choice)

	case kindReset:
		a.clear()
		next = eng.New(room.State)
		logger.Info("game reset")

	case kindIntent:
		current := room.State
		if current == nil {
			current = eng.New(nil)
		}
		move.Mover = role
		next, err = eng.Apply(current, move)
		if err != nil {
			return err
		}

	case kindSnapshot:
		if r.opts.Policy == config.PolicyAuthoritative {
			return ErrSnapshotRejected
		}
		next, err = game.DecodeState(room.Variant, req.GameState)
		if err != nil {
			return err
		}
		if next == nil {
			return fmt.Errorf("%w: empty gameState", ErrBadRequest)
		}
		// A snapshot supersedes whatever the actor was holding.
		a.clear()
	}

	if err := r.saveState(ctx, a.id, next); err != nil {
		return err
	}
	a.broadcastState(room, next, c.UserID, r.projected())
	if kind == kindIntent {
		a.scheduleSettle(eng, next)
	}
	return nil
}

// choose feeds a hidden choice to the room's round. Interim states are only
// broadcast masked and never persisted; the resolved round is persisted and
// broadcast in full.
func (a *actor) choose(ctx context.Context, room *models.Room, role game.Role, by uuid.UUID, choice game.Choice) error {
	if a.round == nil {
		a.round = resolver.NewRound(room.State)
	}
	st, err := a.round.Submit(role, choice)
	if err != nil {
		return err
	}
	if !st.Over() {
		a.broadcastState(room, st, by, true)
		return nil
	}

	a.round = nil
	if err := a.relay.saveState(ctx, a.id, st); err != nil {
		return err
	}
	a.log().WithField("result", st.Result).Info("round resolved")
	a.broadcastState(room, st, by, false)
	return nil
}

package relay

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/jason-s-yu/gameroom/internal/models"
	"github.com/jason-s-yu/gameroom/internal/resolver"
	"github.com/sirupsen/logrus"
)

// op runs on the actor goroutine.
type op func(ctx context.Context, a *actor)

// actor is the single goroutine allowed to mutate one room. It owns the
// room's simultaneous round and its pending follow-up timer.
type actor struct {
	relay *Relay
	id    uuid.UUID
	inbox chan op

	round *resolver.Round
	// gone is set once an op found the room missing.
	gone bool

	settleTimer *time.Timer
	settleC     <-chan time.Time
}

func newActor(r *Relay, id uuid.UUID) *actor {
	return &actor{
		relay: r,
		id:    id,
		inbox: make(chan op, r.opts.InboxSize),
	}
}

func (a *actor) log() *logrus.Entry {
	return a.relay.logger.WithField("room", a.id)
}

func (a *actor) run(ctx context.Context) {
	defer a.relay.wg.Done()
	defer a.stopSettle()

	idle := time.NewTimer(a.relay.opts.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-a.inbox:
			fn(ctx, a)
			if a.gone && a.retire() {
				a.log().Debug("room actor retired, room not found")
				return
			}
			idle.Reset(a.relay.opts.IdleTimeout)
		case <-a.settleC:
			a.settleC = nil
			a.settle(ctx)
			if a.gone && a.retire() {
				return
			}
			idle.Reset(a.relay.opts.IdleTimeout)
		case <-idle.C:
			if a.retire() {
				a.log().Debug("room actor retired")
				return
			}
			idle.Reset(a.relay.opts.IdleTimeout)
		}
	}
}

// retire removes the actor from the registry if it has nothing left to do.
// The registry lock also guards enqueue, so no op can slip in afterwards.
func (a *actor) retire() bool {
	r := a.relay
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(a.inbox) > 0 || a.settleC != nil || r.hub.Count(a.id) > 0 {
		return false
	}
	delete(r.actors, a.id)
	return true
}

// clear drops the scratch round and any pending follow-up.
func (a *actor) clear() {
	a.round = nil
	a.stopSettle()
}

func (a *actor) stopSettle() {
	if a.settleTimer != nil {
		a.settleTimer.Stop()
	}
	a.settleTimer = nil
	a.settleC = nil
}

// scheduleSettle arms the follow-up timer if st is waiting on one.
func (a *actor) scheduleSettle(eng game.Engine, st game.State) {
	s, ok := eng.(game.Settler)
	if !ok {
		return
	}
	if _, pending := s.Pending(st); !pending {
		return
	}
	a.stopSettle()
	a.settleTimer = time.NewTimer(a.relay.opts.SettleDelays[eng.Variant()])
	a.settleC = a.settleTimer.C
}

// settle applies the follow-up to whatever state is stored now. Anything
// written in the meantime wins; if the stored state no longer needs a
// follow-up nothing happens.
func (a *actor) settle(ctx context.Context) {
	r := a.relay
	ctx, cancel := context.WithTimeout(ctx, r.opts.OpTimeout)
	defer cancel()

	room, err := r.loadRoom(ctx, a.id)
	a.gone = errors.Is(err, ErrRoomNotFound)
	if err != nil {
		a.log().WithError(err).Warn("settle: failed to load room")
		return
	}
	eng, err := r.engines.For(room.Variant)
	if err != nil || room.State == nil {
		return
	}
	s, ok := eng.(game.Settler)
	if !ok {
		return
	}
	m, pending := s.Pending(room.State)
	if !pending {
		return
	}
	next, err := eng.Apply(room.State, m)
	if err != nil {
		a.log().WithError(err).Warn("settle: follow-up rejected")
		return
	}
	if err := r.saveState(ctx, a.id, next); err != nil {
		a.log().WithError(err).Error("settle: failed to persist")
		return
	}
	a.broadcastState(room, next, uuid.Nil, r.projected())
	a.scheduleSettle(eng, next)
}

// broadcastState sends game-updated to every member. With project set each
// participant gets its own view and anyone else gets nothing.
func (a *actor) broadcastState(room *models.Room, st game.State, by uuid.UUID, project bool) {
	ev := Event{Type: EventGameUpdated, RoomID: a.id.String()}
	if by != uuid.Nil {
		ev.PlayerID = by.String()
	}
	if !project {
		ev.GameState = st
		a.relay.broadcastSeated(room, ev)
		return
	}
	a.relay.hub.BroadcastFunc(a.id, func(c *Conn) (Event, bool) {
		role, ok := room.RoleOf(c.UserID)
		if !ok {
			return Event{}, false
		}
		out := ev
		out.GameState = game.View(st, role)
		return out, true
	})
}

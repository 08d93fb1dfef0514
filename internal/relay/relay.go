// Package relay serializes every mutation of a room on a per-room actor and
// fans the results out to the room's connections.
package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/gameroom/internal/config"
	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/jason-s-yu/gameroom/internal/models"
	"github.com/sirupsen/logrus"
)

// Store is the persistence the relay needs.
type Store interface {
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	UpdateRoomState(ctx context.Context, id uuid.UUID, state game.State, at time.Time) error
	InsertChatMessage(ctx context.Context, msg *models.ChatMessage) error
}

// Options tunes a Relay. Zero values fall back to the defaults in withDefaults.
type Options struct {
	Policy config.MovePolicy
	// SettleDelays is how long a state needing a server follow-up stays on
	// screen before the follow-up is applied.
	SettleDelays map[game.Variant]time.Duration
	// IdleTimeout retires an actor with no members and nothing queued.
	IdleTimeout time.Duration
	InboxSize   int
	// OpTimeout bounds the persistence calls of a single operation.
	OpTimeout time.Duration
}

// OptionsFromConfig maps the environment settings onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Policy: cfg.MovePolicy,
		SettleDelays: map[game.Variant]time.Duration{
			game.MemoryMatch:  cfg.MemoryRevealDelay,
			game.SnakeLadders: cfg.RollSettleDelay,
		},
		IdleTimeout: cfg.ActorIdleTimeout,
	}
}

func (o Options) withDefaults() Options {
	if o.Policy == "" {
		o.Policy = config.PolicyTrusted
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = 2 * time.Minute
	}
	if o.InboxSize <= 0 {
		o.InboxSize = 64
	}
	if o.OpTimeout <= 0 {
		o.OpTimeout = 5 * time.Second
	}
	return o
}

// Relay owns the membership hub and one actor per active room.
type Relay struct {
	store   Store
	engines game.Engines
	hub     *Hub
	logger  *logrus.Logger
	opts    Options
	now     func() time.Time

	mu     sync.Mutex
	actors map[uuid.UUID]*actor
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(store Store, engines game.Engines, logger *logrus.Logger, opts Options) *Relay {
	ctx, cancel := context.WithCancel(context.Background())
	return &Relay{
		store:   store,
		engines: engines,
		hub:     NewHub(logger),
		logger:  logger,
		opts:    opts.withDefaults(),
		now:     time.Now,
		actors:  make(map[uuid.UUID]*actor),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Close stops every actor. Queued operations are abandoned and their callers
// receive ErrClosed.
func (r *Relay) Close() {
	r.mu.Lock()
	r.closed = true
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
}

// enqueue hands op to the room's actor, starting one if needed.
func (r *Relay) enqueue(roomID uuid.UUID, op op) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	a, ok := r.actors[roomID]
	if !ok {
		a = newActor(r, roomID)
		r.actors[roomID] = a
		r.wg.Add(1)
		go a.run(r.ctx)
	}
	select {
	case a.inbox <- op:
		return nil
	default:
		return ErrRoomBusy
	}
}

// do runs fn on the room's actor and waits for its result.
func (r *Relay) do(ctx context.Context, roomID uuid.UUID, fn func(ctx context.Context, a *actor) error) error {
	res := make(chan error, 1)
	err := r.enqueue(roomID, func(actx context.Context, a *actor) {
		opCtx, cancel := context.WithTimeout(actx, r.opts.OpTimeout)
		defer cancel()
		err := fn(opCtx, a)
		a.gone = errors.Is(err, ErrRoomNotFound)
		res <- err
	})
	if err != nil {
		return err
	}

	select {
	case err := <-res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.ctx.Done():
		return ErrClosed
	}
}

// loadRoom reads the room, mapping a missing row to ErrRoomNotFound.
func (r *Relay) loadRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	room, err := r.store.GetRoom(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return room, nil
}

func (r *Relay) saveState(ctx context.Context, id uuid.UUID, st game.State) error {
	err := r.store.UpdateRoomState(ctx, id, st, r.now())
	if errors.Is(err, models.ErrNotFound) {
		return ErrRoomNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// participant loads the room and resolves c's seat in it.
func (r *Relay) participant(ctx context.Context, c *Conn, roomID uuid.UUID) (*models.Room, game.Role, error) {
	room, err := r.loadRoom(ctx, roomID)
	if err != nil {
		return nil, "", err
	}
	role, ok := room.RoleOf(c.UserID)
	if !ok {
		return nil, "", ErrNotParticipant
	}
	return room, role, nil
}

// broadcastSeated sends ev to the members of room that hold a seat in it.
func (r *Relay) broadcastSeated(room *models.Room, ev Event) {
	r.hub.BroadcastFunc(room.ID, func(c *Conn) (Event, bool) {
		_, ok := room.RoleOf(c.UserID)
		return ev, ok
	})
}

// projected reports whether broadcasts of st are tailored per viewer.
func (r *Relay) projected() bool {
	return r.opts.Policy == config.PolicyAuthoritative
}

// Join subscribes c to roomID. Only the host and guest may join. The joiner
// receives the current room and state; the other members get player-joined.
func (r *Relay) Join(ctx context.Context, c *Conn, roomID uuid.UUID) error {
	return r.do(ctx, roomID, func(ctx context.Context, a *actor) error {
		room, role, err := r.participant(ctx, c, roomID)
		if err != nil {
			return err
		}
		r.hub.Join(roomID, c)

		var view any
		switch {
		case a.round != nil:
			view = game.View(a.round.State(), role)
		case room.State != nil && r.projected():
			view = game.View(room.State, role)
		case room.State != nil:
			view = room.State
		}
		c.Deliver(Event{Type: EventRoomState, RoomID: roomID.String(), Room: roomInfo(room), GameState: view})
		return nil
	})
}

// Leave unsubscribes c and discards any half-played simultaneous round.
func (r *Relay) Leave(ctx context.Context, c *Conn, roomID uuid.UUID) error {
	if !r.hub.Leave(roomID, c) {
		return nil
	}
	return r.do(ctx, roomID, func(_ context.Context, a *actor) error {
		a.round = nil
		return nil
	})
}

// Disconnect drops c from every room. Scratch rounds survive until the
// room's actor retires.
func (r *Relay) Disconnect(c *Conn) {
	r.hub.LeaveAll(c)
	c.Close()
}

// RoomUpdated tells the members of room that its seats or status changed.
// Connections whose user no longer holds a seat are evicted with
// room-closed. A room back to waiting loses its scratch round and pending
// follow-ups.
func (r *Relay) RoomUpdated(room *models.Room) {
	unseated := func(c *Conn) bool {
		_, ok := room.RoleOf(c.UserID)
		return !ok
	}
	if n := r.hub.EvictIf(room.ID, Event{Type: EventRoomClosed, RoomID: room.ID.String()}, unseated); n > 0 {
		r.logger.WithFields(logrus.Fields{"room": room.ID, "evicted": n}).Info("evicted connections without a seat")
	}
	r.hub.Broadcast(room.ID, Event{Type: EventRoomUpdated, RoomID: room.ID.String(), Room: roomInfo(room)})
	if room.Status != models.StatusWaiting {
		return
	}
	r.resetScratch(room.ID)
}

// RoomDeleted evicts every member of a deleted room.
func (r *Relay) RoomDeleted(roomID uuid.UUID) {
	r.hub.Evict(roomID, Event{Type: EventRoomClosed, RoomID: roomID.String()})
	r.resetScratch(roomID)
}

func (r *Relay) resetScratch(roomID uuid.UUID) {
	r.mu.Lock()
	_, running := r.actors[roomID]
	r.mu.Unlock()
	if !running {
		return
	}
	if err := r.enqueue(roomID, func(_ context.Context, a *actor) { a.clear() }); err != nil {
		r.logger.WithError(err).WithField("room", roomID).Warn("could not clear room scratch")
	}
}

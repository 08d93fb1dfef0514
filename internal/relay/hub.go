// internal/relay/hub.go
package relay

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Hub tracks which connections have joined which rooms. Membership is purely
// connection scoped and has no persistence side effects.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]map[uuid.UUID]*Conn     // room -> conn ID -> conn
	byConn map[uuid.UUID]map[uuid.UUID]struct{} // conn ID -> rooms
	logger *logrus.Logger
}

// NewHub initializes an empty Hub.
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		rooms:  make(map[uuid.UUID]map[uuid.UUID]*Conn),
		byConn: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		logger: logger,
	}
}

// Join adds c to roomID and tells the other members. Joining twice is a
// no-op and returns false.
func (h *Hub) Join(roomID uuid.UUID, c *Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[uuid.UUID]*Conn)
		h.rooms[roomID] = members
	}
	if _, dup := members[c.ID]; dup {
		return false
	}
	members[c.ID] = c
	if h.byConn[c.ID] == nil {
		h.byConn[c.ID] = make(map[uuid.UUID]struct{})
	}
	h.byConn[c.ID][roomID] = struct{}{}

	ev := Event{Type: EventPlayerJoined, RoomID: roomID.String(), SocketID: c.ID.String()}
	for id, other := range members {
		if id != c.ID {
			other.Deliver(ev)
		}
	}
	h.logger.WithFields(logrus.Fields{"room": roomID, "socket": c.ID, "user": c.UserID}).Debug("joined room")
	return true
}

// Leave removes c from roomID and tells the remaining members. It returns
// false if c was not a member.
func (h *Hub) Leave(roomID uuid.UUID, c *Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.leaveLocked(roomID, c)
}

// LeaveAll removes c from every room it joined and returns those rooms.
func (h *Hub) LeaveAll(c *Conn) []uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()

	var left []uuid.UUID
	for roomID := range h.byConn[c.ID] {
		if h.leaveLocked(roomID, c) {
			left = append(left, roomID)
		}
	}
	return left
}

func (h *Hub) leaveLocked(roomID uuid.UUID, c *Conn) bool {
	members := h.rooms[roomID]
	if _, ok := members[c.ID]; !ok {
		return false
	}
	delete(members, c.ID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
	delete(h.byConn[c.ID], roomID)
	if len(h.byConn[c.ID]) == 0 {
		delete(h.byConn, c.ID)
	}

	ev := Event{Type: EventPlayerLeft, RoomID: roomID.String(), SocketID: c.ID.String()}
	for _, other := range members {
		other.Deliver(ev)
	}
	h.logger.WithFields(logrus.Fields{"room": roomID, "socket": c.ID, "user": c.UserID}).Debug("left room")
	return true
}

// Evict drops every member of roomID after sending them ev.
func (h *Hub) Evict(roomID uuid.UUID, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.rooms[roomID] {
		c.Deliver(ev)
		delete(h.byConn[id], roomID)
		if len(h.byConn[id]) == 0 {
			delete(h.byConn, id)
		}
	}
	delete(h.rooms, roomID)
}

// EvictIf drops every member of roomID for which drop returns true, sending
// ev to each of them and player-left to the members that stay. It returns
// the number of connections dropped.
func (h *Hub) EvictIf(roomID uuid.UUID, ev Event, drop func(c *Conn) bool) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.rooms[roomID] {
		if !drop(c) {
			continue
		}
		c.Deliver(ev)
		h.leaveLocked(roomID, c)
		n++
	}
	return n
}

// IsMember reports whether c has joined roomID.
func (h *Hub) IsMember(roomID uuid.UUID, c *Conn) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[roomID][c.ID]
	return ok
}

// Count returns the number of connections in roomID.
func (h *Hub) Count(roomID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Broadcast sends the same event to every member of roomID.
func (h *Hub) Broadcast(roomID uuid.UUID, ev Event) {
	h.BroadcastFunc(roomID, func(*Conn) (Event, bool) { return ev, true })
}

// BroadcastFunc builds one event per member; members for which build
// returns false are skipped.
func (h *Hub) BroadcastFunc(roomID uuid.UUID, build func(c *Conn) (Event, bool)) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[roomID] {
		if ev, ok := build(c); ok {
			c.Deliver(ev)
		}
	}
}

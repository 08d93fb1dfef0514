// internal/models/room.go
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/gameroom/internal/game"
)

// RoomStatus is the lifecycle stage of a room.
type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusPlaying RoomStatus = "playing"
)

// Room is a row of the rooms table. GuestID is nil while the room is
// waiting; once a guest is seated the room is playing.
type Room struct {
	ID        uuid.UUID    `json:"id"`
	Code      string       `json:"room_code"`
	Variant   game.Variant `json:"game_name"`
	HostID    uuid.UUID    `json:"host_id"`
	GuestID   *uuid.UUID   `json:"guest_id"`
	Status    RoomStatus   `json:"status"`
	State     game.State   `json:"game_state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// RoleOf returns the seat held by userID, if any.
func (r *Room) RoleOf(userID uuid.UUID) (game.Role, bool) {
	switch {
	case userID == uuid.Nil:
		return "", false
	case userID == r.HostID:
		return game.Host, true
	case r.GuestID != nil && userID == *r.GuestID:
		return game.Guest, true
	}
	return "", false
}

// Seat returns the user holding role, or uuid.Nil.
func (r *Room) Seat(role game.Role) uuid.UUID {
	if role == game.Host {
		return r.HostID
	}
	if r.GuestID != nil {
		return *r.GuestID
	}
	return uuid.Nil
}

// Clone returns a copy that shares no pointers with r. States are immutable
// values so they are shared as is.
func (r *Room) Clone() *Room {
	c := *r
	if r.GuestID != nil {
		g := *r.GuestID
		c.GuestID = &g
	}
	return &c
}

// UnmarshalJSON decodes game_state according to game_name.
func (r *Room) UnmarshalJSON(data []byte) error {
	type alias Room
	aux := struct {
		*alias
		State json.RawMessage `json:"game_state"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	st, err := game.DecodeState(r.Variant, aux.State)
	if err != nil {
		return fmt.Errorf("room %s: %w", r.ID, err)
	}
	r.State = st
	return nil
}

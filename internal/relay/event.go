package relay

import (
	"time"

	"github.com/jason-s-yu/gameroom/internal/models"
)

// Server to client event types.
const (
	EventPlayerJoined = "player-joined"
	EventPlayerLeft   = "player-left"
	EventGameUpdated  = "game-updated"
	EventNewMessage   = "new-message"
	EventRoomState    = "room-state"
	EventRoomUpdated  = "room-updated"
	EventRoomClosed   = "room-closed"
	EventError        = "error"
	EventPong         = "pong"
)

// Event is one JSON frame sent to a connection. Only the fields relevant to
// Type are set.
type Event struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`

	SocketID string `json:"socketId,omitempty"`

	GameState any          `json:"gameState,omitempty"`
	PlayerID  string       `json:"playerId,omitempty"`
	Room      *models.Room `json:"room,omitempty"`

	ID        int64      `json:"id,omitempty"`
	Message   string     `json:"message,omitempty"`
	Username  string     `json:"username,omitempty"`
	UserID    string     `json:"userId,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`

	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// roomInfo strips the game state from a room so it can travel next to a
// projected state without leaking it.
func roomInfo(room *models.Room) *models.Room {
	info := room.Clone()
	info.State = nil
	return info
}

func chatEvent(msg *models.ChatMessage) Event {
	at := msg.CreatedAt
	return Event{
		Type:      EventNewMessage,
		RoomID:    msg.RoomID.String(),
		ID:        msg.ID,
		Message:   msg.Message,
		Username:  msg.Username,
		UserID:    msg.UserID.String(),
		CreatedAt: &at,
	}
}

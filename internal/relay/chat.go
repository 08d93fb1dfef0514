package relay

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/gameroom/internal/models"
)

// ChatRequest is a send-message frame. UserID, when present, must be the
// sender's own user ID; Username falls back to the connection's name.
type ChatRequest struct {
	RequestID string
	Message   string
	Username  string
	UserID    string
}

// SendMessage persists a chat line and broadcasts it to every seated member
// of the room, sender included. Nothing is broadcast if persistence fails.
func (r *Relay) SendMessage(ctx context.Context, c *Conn, roomID uuid.UUID, req ChatRequest) error {
	if req.UserID != "" && req.UserID != c.UserID.String() {
		return fmt.Errorf("%w: userId does not match the session", ErrNotParticipant)
	}
	if !c.AllowChat() {
		return ErrRateLimited
	}
	name := req.Username
	if name == "" {
		name = c.Username
	}
	msg, err := models.NewChatMessage(roomID, c.UserID, name, req.Message)
	if err != nil {
		return err
	}

	return r.do(ctx, roomID, func(ctx context.Context, a *actor) error {
		room, _, err := r.participant(ctx, c, roomID)
		if err != nil {
			return err
		}
		if err := r.store.InsertChatMessage(ctx, msg); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		r.broadcastSeated(room, chatEvent(msg))
		return nil
	})
}

// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/jason-s-yu/gameroom/internal/middleware"
	"github.com/jason-s-yu/gameroom/internal/relay"
	"github.com/sirupsen/logrus"
)

// Subprotocol is the websocket subprotocol clients must request.
const Subprotocol = "room"

// Client to server frame types.
const (
	frameJoinRoom    = "join-room"
	frameLeaveRoom   = "leave-room"
	frameGameMove    = "game-move"
	frameSendMessage = "send-message"
	framePing        = "ping"
)

// clientFrame is every field any client frame may carry.
type clientFrame struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	RoomID    string `json:"roomId,omitempty"`

	GameState json.RawMessage `json:"gameState,omitempty"`
	Move      *game.Move      `json:"move,omitempty"`
	Reset     bool            `json:"reset,omitempty"`
	PlayerID  string          `json:"playerId,omitempty"`

	Message  string `json:"message,omitempty"`
	Username string `json:"username,omitempty"`
	UserID   string `json:"userId,omitempty"`
}

// WSHandler upgrades to the relay protocol. The session cookie is resolved
// (or an ephemeral account minted) before the upgrade so the cookie can
// still be set on the handshake response.
func (s *Server) WSHandler(w http.ResponseWriter, r *http.Request) {
	u, err := s.EnsureEphemeralUser(w, r)
	if err != nil {
		s.logger.WithError(err).Warn("websocket auth failed")
		http.Error(w, "authentication failed", http.StatusUnauthorized)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{Subprotocol},
		OriginPatterns: []string{"*"}, // Adjust in production
	})
	if err != nil {
		s.logger.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	if c.Subprotocol() != Subprotocol {
		c.Close(BadSubprotocolError, "client must speak the room subprotocol")
		return
	}

	conn := relay.NewConn(u.ID, u.Username)
	middleware.LogWebSocketConnect(s.logger, r.RemoteAddr, r.URL.Path, u.ID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.writePump(ctx, c, conn)
	err = s.readPump(ctx, c, conn)

	s.relay.Disconnect(conn)
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
		err = nil
	}
	middleware.LogWebSocketDisconnect(s.logger, r.RemoteAddr, r.URL.Path, u.ID, err)
}

// readPump decodes frames until the connection fails.
func (s *Server) readPump(ctx context.Context, c *websocket.Conn, conn *relay.Conn) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			conn.Deliver(relay.ErrorEvent(fmt.Errorf("%w: frames must be JSON text", relay.ErrBadRequest), ""))
			continue
		}
		if !conn.Allow() {
			conn.Deliver(relay.ErrorEvent(relay.ErrRateLimited, ""))
			continue
		}

		var f clientFrame
		if err := json.Unmarshal(data, &f); err != nil {
			conn.Deliver(relay.ErrorEvent(fmt.Errorf("%w: %v", relay.ErrBadRequest, err), ""))
			continue
		}
		if err := s.handleFrame(ctx, conn, f); err != nil {
			s.logger.WithFields(logrus.Fields{
				"user":  conn.UserID,
				"room":  f.RoomID,
				"frame": f.Type,
				"code":  relay.Code(err),
			}).WithError(err).Info("frame rejected")
			conn.Deliver(relay.ErrorEvent(err, f.RequestID))
		}
	}
}

func (s *Server) handleFrame(ctx context.Context, conn *relay.Conn, f clientFrame) error {
	if f.Type == framePing {
		conn.Deliver(relay.Event{Type: relay.EventPong, RequestID: f.RequestID})
		return nil
	}

	roomID, err := uuid.Parse(f.RoomID)
	if err != nil {
		return fmt.Errorf("%w: invalid roomId", relay.ErrBadRequest)
	}

	switch f.Type {
	case frameJoinRoom:
		return s.relay.Join(ctx, conn, roomID)
	case frameLeaveRoom:
		return s.relay.Leave(ctx, conn, roomID)
	case frameGameMove:
		return s.relay.SubmitMove(ctx, conn, roomID, relay.MoveRequest{
			RequestID: f.RequestID,
			PlayerID:  f.PlayerID,
			GameState: f.GameState,
			Move:      f.Move,
			Reset:     f.Reset,
		})
	case frameSendMessage:
		return s.relay.SendMessage(ctx, conn, roomID, relay.ChatRequest{
			RequestID: f.RequestID,
			Message:   f.Message,
			Username:  f.Username,
			UserID:    f.UserID,
		})
	}
	return fmt.Errorf("%w: unknown frame type %q", relay.ErrBadRequest, f.Type)
}

// writePump drains the connection's outbound queue and pings periodically.
func (s *Server) writePump(ctx context.Context, c *websocket.Conn, conn *relay.Conn) {
	ticker := time.NewTicker(s.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.Done():
			// Closed by the relay because the buffer overflowed.
			c.Close(SlowConsumerError, "too slow to keep up")
			return
		case ev := <-conn.Send():
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Warnf("failed to marshal %s event for user %v: %v", ev.Type, conn.UserID, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					s.logger.Warnf("failed to write to websocket for user %v: %v", conn.UserID, err)
				}
				c.Close(websocket.StatusGoingAway, "write failed")
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				s.logger.Warnf("failed to send ping to user %v: %v. Assuming disconnect.", conn.UserID, err)
				c.Close(websocket.StatusGoingAway, "ping failed")
				return
			}
		}
	}
}

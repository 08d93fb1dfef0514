package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/jason-s-yu/gameroom/internal/models"
)

// roomResponse shadows the room's state with the caller's view of it.
type roomResponse struct {
	*models.Room
	GameState any `json:"game_state"`
}

// roomView projects the state for userID when hidden information must not
// leave the server.
func (s *Server) roomView(room *models.Room, userID uuid.UUID) roomResponse {
	resp := roomResponse{Room: room, GameState: room.State}
	if !s.ProjectStates || room.State == nil {
		return resp
	}
	if role, ok := room.RoleOf(userID); ok {
		resp.GameState = game.View(room.State, role)
	}
	return resp
}

type createRoomRequest struct {
	Game game.Variant `json:"game"`
}

// CreateRoomHandler opens a waiting room hosted by the caller. Callers
// without a session get an ephemeral account.
func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	u, err := s.EnsureEphemeralUser(w, r)
	if err != nil {
		s.httpError(w, r, err)
		return
	}

	room, err := s.lobby.Create(r.Context(), u.ID, req.Game)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.roomView(room, u.ID))
}

// JoinRoomHandler seats the caller as guest.
func (s *Server) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	u, err := s.EnsureEphemeralUser(w, r)
	if err != nil {
		s.httpError(w, r, err)
		return
	}

	room, err := s.lobby.Join(r.Context(), id, u.ID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.roomView(room, u.ID))
}

type leaveRoomResponse struct {
	Deleted bool          `json:"deleted"`
	Room    *roomResponse `json:"room,omitempty"`
}

// LeaveRoomHandler gives up the caller's seat; the host leaving deletes the room.
func (s *Server) LeaveRoomHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	u, err := s.sessionUser(r)
	if err != nil {
		s.httpError(w, r, err)
		return
	}

	room, err := s.lobby.Leave(r.Context(), id, u.ID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	resp := leaveRoomResponse{Deleted: room == nil}
	if room != nil {
		v := s.roomView(room, u.ID)
		resp.Room = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	u, err := s.sessionUser(r)
	if err != nil {
		s.httpError(w, r, err)
		return
	}

	room, err := s.lobby.Get(r.Context(), id, u.ID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.roomView(room, u.ID))
}

// ListMessagesHandler returns the room's chat history, oldest first.
func (s *Server) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid room id", http.StatusBadRequest)
		return
	}
	u, err := s.sessionUser(r)
	if err != nil {
		s.httpError(w, r, err)
		return
	}

	msgs, err := s.lobby.History(r.Context(), id, u.ID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

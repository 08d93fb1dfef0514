package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/gameroom/internal/auth"
	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/jason-s-yu/gameroom/internal/lobby"
	"github.com/jason-s-yu/gameroom/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lobby.ErrNotParticipant), errors.Is(err, lobby.ErrOwnRoom):
		return http.StatusForbidden
	case errors.Is(err, models.ErrRoomFull), errors.Is(err, models.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, game.ErrUnknownVariant):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// httpError writes err with its mapped status. Server errors are logged and
// reported without detail.
func (s *Server) httpError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		msg = http.StatusText(status)
	}
	http.Error(w, msg, status)
}

// pathID parses the {id} wildcard.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	return id, err == nil
}

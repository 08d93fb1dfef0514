// internal/handlers/server.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/gameroom/internal/auth"
	"github.com/jason-s-yu/gameroom/internal/lobby"
	"github.com/jason-s-yu/gameroom/internal/middleware"
	"github.com/jason-s-yu/gameroom/internal/models"
	"github.com/jason-s-yu/gameroom/internal/relay"
	"github.com/sirupsen/logrus"
)

// UserStore holds the accounts behind session cookies.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserCredentials(ctx context.Context, user *models.User) error
}

// Server holds the collaborators shared by every HTTP and websocket handler.
type Server struct {
	users    UserStore
	sessions *auth.Sessions
	lobby    *lobby.Lobby
	relay    *relay.Relay
	logger   *logrus.Logger

	// PingInterval is how often idle websocket connections are pinged.
	PingInterval time.Duration
	// ProjectStates hides each participant's secrets in HTTP room payloads.
	ProjectStates bool
}

func NewServer(users UserStore, sessions *auth.Sessions, lob *lobby.Lobby, rel *relay.Relay, logger *logrus.Logger) *Server {
	return &Server{
		users:        users,
		sessions:     sessions,
		lobby:        lob,
		relay:        rel,
		logger:       logger,
		PingInterval: 30 * time.Second,
	}
}

// Routes registers every endpoint behind the request logger.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.HealthHandler)

	// user endpoints
	mux.HandleFunc("POST /user/create", s.CreateUserHandler)
	mux.HandleFunc("POST /user/login", s.LoginHandler)
	mux.HandleFunc("POST /user/claim", s.ClaimEphemeralHandler)

	// room endpoints
	mux.HandleFunc("POST /room/create", s.CreateRoomHandler)
	mux.HandleFunc("GET /room/{id}", s.GetRoomHandler)
	mux.HandleFunc("POST /room/{id}/join", s.JoinRoomHandler)
	mux.HandleFunc("POST /room/{id}/leave", s.LeaveRoomHandler)
	mux.HandleFunc("GET /room/{id}/messages", s.ListMessagesHandler)

	// relay websocket
	mux.HandleFunc("GET /ws", s.WSHandler)

	return middleware.LogMiddleware(s.logger)(mux)
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

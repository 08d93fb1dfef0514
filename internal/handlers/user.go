package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jason-s-yu/gameroom/internal/auth"
	"github.com/jason-s-yu/gameroom/internal/models"
)

// EnsureEphemeralUser returns the user behind the session cookie. If the
// request carries no valid session, a "Guest" ephemeral account is created
// and its cookie is set on w, so it must run before anything is written.
func (s *Server) EnsureEphemeralUser(w http.ResponseWriter, r *http.Request) (*models.User, error) {
	if id, err := s.sessions.FromRequest(r); err == nil {
		u, err := s.users.GetUserByID(r.Context(), id)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}

	ephemeralUser := &models.User{
		Username:    "Guest",
		IsEphemeral: true,
	}
	if err := s.users.CreateUser(r.Context(), ephemeralUser); err != nil {
		return nil, err
	}
	if err := s.issueSession(w, ephemeralUser); err != nil {
		return nil, err
	}
	s.logger.WithField("user", ephemeralUser.ID).Debug("issued ephemeral user")
	return ephemeralUser, nil
}

func (s *Server) issueSession(w http.ResponseWriter, u *models.User) error {
	token, err := s.sessions.Create(u.ID)
	if err != nil {
		return err
	}
	http.SetCookie(w, s.sessions.Cookie(token))
	return nil
}

// sessionUser authenticates the request without minting anything.
func (s *Server) sessionUser(r *http.Request) (*models.User, error) {
	id, err := s.sessions.FromRequest(r)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetUserByID(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, auth.ErrInvalidToken
	}
	return u, err
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

func (req *credentialsRequest) decode(r *http.Request) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return false
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	return req.Email != "" && req.Password != ""
}

// publicUser strips the password hash.
func publicUser(u *models.User) *models.User {
	c := *u
	c.Password = ""
	return &c
}

// CreateUserHandler registers a permanent account.
func (s *Server) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !req.decode(r) {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	user := &models.User{
		Email:    req.Email,
		Password: hash,
		Username: req.Username,
	}
	if user.Username == "" {
		user.Username = strings.Split(req.Email, "@")[0]
	}
	if err := s.users.CreateUser(r.Context(), user); err != nil {
		s.httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, publicUser(user))
}

type loginResponse struct {
	Token string `json:"token"`
}

// LoginHandler checks email and password and returns a session token, which
// is also set as the auth_token cookie.
//
// Request payload:
//
//	{
//	  "email": "someone@example.com",
//	  "password": "password"
//	}
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !req.decode(r) {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	u, err := s.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil || !auth.VerifyPassword(req.Password, u.Password) {
		s.logger.WithField("email", req.Email).Info("failed login")
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}

	token, err := s.sessions.Create(u.ID)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	http.SetCookie(w, s.sessions.Cookie(token))
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// ClaimEphemeralHandler turns the caller's ephemeral account into a
// permanent one, keeping its ID so existing rooms stay theirs.
func (s *Server) ClaimEphemeralHandler(w http.ResponseWriter, r *http.Request) {
	u, err := s.sessionUser(r)
	if err != nil {
		s.httpError(w, r, err)
		return
	}
	if !u.IsEphemeral {
		http.Error(w, "user is not ephemeral", http.StatusBadRequest)
		return
	}

	var req credentialsRequest
	if !req.decode(r) {
		http.Error(w, "invalid claim payload", http.StatusBadRequest)
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.httpError(w, r, err)
		return
	}

	u.Email = req.Email
	u.Password = hash
	if req.Username != "" {
		u.Username = req.Username
	}
	u.IsEphemeral = false
	if err := s.users.UpdateUserCredentials(r.Context(), u); err != nil {
		s.httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, publicUser(u))
}

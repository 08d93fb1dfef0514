// Package memstore is an in-process persistence collaborator with the same
// contract as the Postgres store. Rows live only as long as the process.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/jason-s-yu/gameroom/internal/models"
)

// Store keeps rooms, chat and users in maps guarded by one mutex. Callers
// always receive copies.
type Store struct {
	mu     sync.Mutex
	rooms  map[uuid.UUID]*models.Room
	chat   map[uuid.UUID][]models.ChatMessage
	users  map[uuid.UUID]*models.User
	nextID int64
	now    func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		rooms: make(map[uuid.UUID]*models.Room),
		chat:  make(map[uuid.UUID][]models.ChatMessage),
		users: make(map[uuid.UUID]*models.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) CreateRoom(_ context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	room.CreatedAt, room.UpdatedAt = now, now
	s.rooms[room.ID] = room.Clone()
	return nil
}

func (s *Store) GetRoom(_ context.Context, id uuid.UUID) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *Store) UpdateRoomState(_ context.Context, id uuid.UUID, state game.State, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return models.ErrNotFound
	}
	r.State = state
	r.UpdatedAt = at
	return nil
}

func (s *Store) SetGuest(_ context.Context, id, guestID uuid.UUID) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if r.GuestID != nil {
		if *r.GuestID != guestID {
			return nil, models.ErrRoomFull
		}
		return r.Clone(), nil
	}
	r.GuestID = &guestID
	r.Status = models.StatusPlaying
	r.UpdatedAt = s.now()
	return r.Clone(), nil
}

func (s *Store) ClearGuest(_ context.Context, id uuid.UUID) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	r.GuestID = nil
	r.Status = models.StatusWaiting
	r.UpdatedAt = s.now()
	return r.Clone(), nil
}

func (s *Store) DeleteRoom(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.rooms, id)
	delete(s.chat, id)
	return nil
}

func (s *Store) InsertChatMessage(_ context.Context, msg *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[msg.RoomID]; !ok {
		return models.ErrNotFound
	}
	s.nextID++
	msg.ID = s.nextID
	msg.CreatedAt = s.now()
	s.chat[msg.RoomID] = append(s.chat[msg.RoomID], *msg)
	return nil
}

func (s *Store) ListChatMessages(_ context.Context, roomID uuid.UUID) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.chat[roomID]), nil
}

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Email != "" && s.findEmail(user.Email) != nil {
		return models.ErrDuplicateEmail
	}
	u := *user
	s.users[u.ID] = &u
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findEmail(email)
	if u == nil {
		return nil, models.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *Store) UpdateUserCredentials(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return models.ErrNotFound
	}
	if found := s.findEmail(user.Email); user.Email != "" && found != nil && found.ID != user.ID {
		return models.ErrDuplicateEmail
	}
	u := *user
	s.users[u.ID] = &u
	return nil
}

func (s *Store) findEmail(email string) *models.User {
	for _, u := range s.users {
		if u.Email != "" && strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

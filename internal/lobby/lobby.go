// internal/lobby/lobby.go
package lobby

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/jason-s-yu/gameroom/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	// ErrOwnRoom is returned when a host tries to take the guest seat of their own room.
	ErrOwnRoom = errors.New("host cannot join their own room as guest")
	// ErrNotParticipant is returned for reads and leaves by users holding no seat.
	ErrNotParticipant = errors.New("not a participant of this room")
)

// Store is the persistence the lobby needs.
type Store interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	SetGuest(ctx context.Context, id, guestID uuid.UUID) (*models.Room, error)
	ClearGuest(ctx context.Context, id uuid.UUID) (*models.Room, error)
	DeleteRoom(ctx context.Context, id uuid.UUID) error
	ListChatMessages(ctx context.Context, roomID uuid.UUID) ([]models.ChatMessage, error)
}

// Notifier hears about seat changes so live connections can be told.
type Notifier interface {
	RoomUpdated(room *models.Room)
	RoomDeleted(roomID uuid.UUID)
}

// Lobby runs the room lifecycle: a host opens a waiting room, one guest
// takes the second seat and the room starts playing. A guest leaving puts
// the room back to waiting; the host leaving deletes it.
type Lobby struct {
	store   Store
	engines game.Engines
	notify  Notifier
	logger  *logrus.Logger
}

func New(store Store, engines game.Engines, notify Notifier, logger *logrus.Logger) *Lobby {
	return &Lobby{store: store, engines: engines, notify: notify, logger: logger}
}

// codeAlphabet leaves out characters that are easy to misread.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

func newCode() string {
	var b strings.Builder
	for range codeLength {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}

// Create opens a waiting room of variant hosted by hostID with a fresh state.
func (l *Lobby) Create(ctx context.Context, hostID uuid.UUID, variant game.Variant) (*models.Room, error) {
	eng, err := l.engines.For(variant)
	if err != nil {
		return nil, err
	}
	room := &models.Room{
		ID:      uuid.New(),
		Code:    newCode(),
		Variant: variant,
		HostID:  hostID,
		Status:  models.StatusWaiting,
		State:   eng.New(nil),
	}
	if err := l.store.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	l.logger.WithFields(logrus.Fields{"room": room.ID, "host": hostID, "game": variant}).Info("room created")
	return room, nil
}

// Join seats userID as the guest. Joining a room already holding that guest
// returns the room unchanged.
func (l *Lobby) Join(ctx context.Context, roomID, userID uuid.UUID) (*models.Room, error) {
	room, err := l.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.HostID == userID {
		return nil, ErrOwnRoom
	}
	room, err = l.store.SetGuest(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	l.logger.WithFields(logrus.Fields{"room": roomID, "guest": userID}).Info("guest joined room")
	l.notify.RoomUpdated(room)
	return room, nil
}

// Leave gives up userID's seat. It returns the updated room, or nil if the
// host left and the room was deleted.
func (l *Lobby) Leave(ctx context.Context, roomID, userID uuid.UUID) (*models.Room, error) {
	room, err := l.Get(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{"room": roomID, "user": userID}
	if room.HostID == userID {
		if err := l.store.DeleteRoom(ctx, roomID); err != nil {
			return nil, err
		}
		l.logger.WithFields(fields).Info("host left, room deleted")
		l.notify.RoomDeleted(roomID)
		return nil, nil
	}

	room, err = l.store.ClearGuest(ctx, roomID)
	if err != nil {
		return nil, err
	}
	l.logger.WithFields(fields).Info("guest left room")
	l.notify.RoomUpdated(room)
	return room, nil
}

// Get returns the room if userID holds one of its seats.
func (l *Lobby) Get(ctx context.Context, roomID, userID uuid.UUID) (*models.Room, error) {
	room, err := l.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if _, ok := room.RoleOf(userID); !ok {
		return nil, ErrNotParticipant
	}
	return room, nil
}

// History lists the room's chat ordered by creation time, then ID.
func (l *Lobby) History(ctx context.Context, roomID, userID uuid.UUID) ([]models.ChatMessage, error) {
	if _, err := l.Get(ctx, roomID, userID); err != nil {
		return nil, err
	}
	return l.store.ListChatMessages(ctx, roomID)
}

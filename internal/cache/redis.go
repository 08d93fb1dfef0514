// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/jason-s-yu/gameroom/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ConnectRedis opens a client for addr/db and pings it.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Backend is the full persistence collaborator the cache sits in front of.
type Backend interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	UpdateRoomState(ctx context.Context, id uuid.UUID, state game.State, at time.Time) error
	SetGuest(ctx context.Context, id, guestID uuid.UUID) (*models.Room, error)
	ClearGuest(ctx context.Context, id uuid.UUID) (*models.Room, error)
	DeleteRoom(ctx context.Context, id uuid.UUID) error

	InsertChatMessage(ctx context.Context, msg *models.ChatMessage) error
	ListChatMessages(ctx context.Context, roomID uuid.UUID) ([]models.ChatMessage, error)

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserCredentials(ctx context.Context, user *models.User) error
}

// RoomCache is a read-through cache of room rows. Every room write goes to
// the backend first and then drops the cached copy; a fill that overlaps a
// write is discarded. Redis failures are
// logged and fall back to the backend. Chat and user calls pass through.
type RoomCache struct {
	Backend
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRoomCache wraps backend.
func NewRoomCache(backend Backend, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *RoomCache {
	return &RoomCache{Backend: backend, rdb: rdb, ttl: ttl, logger: logger}
}

func roomKey(id uuid.UUID) string { return "room:" + id.String() }

// versionKey is bumped by every invalidation. A read-through fill watches it
// so a fill that raced a write is never stored.
func versionKey(id uuid.UUID) string { return "room:" + id.String() + ":v" }

func (c *RoomCache) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	data, err := c.rdb.Get(ctx, roomKey(id)).Bytes()
	switch {
	case err == nil:
		var room models.Room
		if err := json.Unmarshal(data, &room); err == nil {
			return &room, nil
		}
		c.logger.WithField("room", id).Warn("dropping undecodable cached room")
		c.invalidate(ctx, id)
	case !errors.Is(err, redis.Nil):
		c.logger.WithError(err).WithField("room", id).Warn("room cache read failed")
	}

	var (
		room    *models.Room
		loadErr error
	)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		room, loadErr = c.Backend.GetRoom(ctx, id)
		if loadErr != nil {
			return nil
		}
		data, err := json.Marshal(room)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, roomKey(id), data, c.ttl)
			return nil
		})
		return err
	}, versionKey(id))

	switch {
	case room == nil && loadErr == nil:
		// Redis failed before the backend was consulted.
		c.logger.WithError(err).WithField("room", id).Warn("room cache unavailable")
		return c.Backend.GetRoom(ctx, id)
	case errors.Is(err, redis.TxFailedErr):
		c.logger.WithField("room", id).Debug("room changed while loading, not cached")
	case err != nil:
		c.logger.WithError(err).WithField("room", id).Warn("room cache write failed")
	}
	if loadErr != nil {
		return nil, loadErr
	}
	return room, nil
}

func (c *RoomCache) UpdateRoomState(ctx context.Context, id uuid.UUID, state game.State, at time.Time) error {
	defer c.invalidate(ctx, id)
	return c.Backend.UpdateRoomState(ctx, id, state, at)
}

func (c *RoomCache) SetGuest(ctx context.Context, id, guestID uuid.UUID) (*models.Room, error) {
	defer c.invalidate(ctx, id)
	return c.Backend.SetGuest(ctx, id, guestID)
}

func (c *RoomCache) ClearGuest(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	defer c.invalidate(ctx, id)
	return c.Backend.ClearGuest(ctx, id)
}

func (c *RoomCache) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	defer c.invalidate(ctx, id)
	return c.Backend.DeleteRoom(ctx, id)
}

func (c *RoomCache) invalidate(ctx context.Context, id uuid.UUID) {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(id))
		if c.ttl > 0 {
			pipe.Expire(ctx, versionKey(id), c.ttl)
		}
		pipe.Del(ctx, roomKey(id))
		return nil
	})
	if err != nil {
		c.logger.WithError(err).WithField("room", id).Warn("room cache invalidation failed")
	}
}

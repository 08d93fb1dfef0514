// internal/database/room.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/gameroom/internal/game"
	"github.com/jason-s-yu/gameroom/internal/models"
)

const roomColumns = `id, room_code, game_name, host_id, guest_id, status, game_state, created_at, updated_at`

func scanRoom(row pgx.Row) (*models.Room, error) {
	var (
		r       models.Room
		variant string
		status  string
		raw     []byte
	)
	err := row.Scan(&r.ID, &r.Code, &variant, &r.HostID, &r.GuestID, &status, &raw, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	r.Variant = game.Variant(variant)
	r.Status = models.RoomStatus(status)
	if r.State, err = game.DecodeState(r.Variant, raw); err != nil {
		return nil, fmt.Errorf("room %s: %w", r.ID, err)
	}
	return &r, nil
}

func encodeState(s game.State) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// CreateRoom inserts a new room. CreatedAt and UpdatedAt are filled from the database clock.
func (s *Store) CreateRoom(ctx context.Context, room *models.Room) error {
	raw, err := encodeState(room.State)
	if err != nil {
		return fmt.Errorf("failed to encode game state: %w", err)
	}
	q := `INSERT INTO rooms (id, room_code, game_name, host_id, guest_id, status, game_state)
	      VALUES ($1, $2, $3, $4, $5, $6, $7)
	      RETURNING created_at, updated_at`

	err = pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q,
			room.ID, room.Code, string(room.Variant), room.HostID, room.GuestID, string(room.Status), raw,
		).Scan(&room.CreatedAt, &room.UpdatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

// GetRoom fetches a room by ID.
func (s *Store) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	return scanRoom(s.DB.QueryRow(ctx, q, id))
}

// UpdateRoomState replaces the stored game state.
func (s *Store) UpdateRoomState(ctx context.Context, id uuid.UUID, state game.State, at time.Time) error {
	raw, err := encodeState(state)
	if err != nil {
		return fmt.Errorf("failed to encode game state: %w", err)
	}
	q := `UPDATE rooms SET game_state = $2, updated_at = $3 WHERE id = $1`
	return pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, id, raw, at)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

// SetGuest seats guestID in the room and marks it playing. Re-seating the
// current guest is a no-op; any other occupant yields models.ErrRoomFull.
func (s *Store) SetGuest(ctx context.Context, id, guestID uuid.UUID) (*models.Room, error) {
	var room *models.Room
	err := pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		cur, err := scanRoom(tx.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}
		if cur.GuestID != nil {
			if *cur.GuestID != guestID {
				return models.ErrRoomFull
			}
			room = cur
			return nil
		}
		q := `UPDATE rooms SET guest_id = $2, status = $3, updated_at = now()
		      WHERE id = $1 RETURNING ` + roomColumns
		room, err = scanRoom(tx.QueryRow(ctx, q, id, guestID, string(models.StatusPlaying)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// ClearGuest empties the guest seat and reverts the room to waiting.
func (s *Store) ClearGuest(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	q := `UPDATE rooms SET guest_id = NULL, status = $2, updated_at = now()
	      WHERE id = $1 RETURNING ` + roomColumns
	return scanRoom(s.DB.QueryRow(ctx, q, id, string(models.StatusWaiting)))
}

// DeleteRoom removes the room and, by cascade, its chat history.
func (s *Store) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}

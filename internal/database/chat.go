package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/gameroom/internal/models"
)

// InsertChatMessage stores msg and fills in its ID and CreatedAt.
func (s *Store) InsertChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	q := `INSERT INTO chat_messages (room_id, user_id, username, message)
	      VALUES ($1, $2, $3, $4)
	      RETURNING id, created_at`
	err := pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, msg.RoomID, msg.UserID, msg.Username, msg.Message).Scan(&msg.ID, &msg.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// ListChatMessages returns a room's history oldest first.
func (s *Store) ListChatMessages(ctx context.Context, roomID uuid.UUID) ([]models.ChatMessage, error) {
	q := `SELECT id, room_id, user_id, username, message, created_at
	      FROM chat_messages
	      WHERE room_id = $1
	      ORDER BY created_at, id`
	rows, err := s.DB.Query(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	msgs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ChatMessage, error) {
		var m models.ChatMessage
		err := row.Scan(&m.ID, &m.RoomID, &m.UserID, &m.Username, &m.Message, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return msgs, nil
}

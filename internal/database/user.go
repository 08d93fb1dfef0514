package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/gameroom/internal/models"
)

// CreateUser inserts user, assigning an ID if it has none. The password must
// already be hashed.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}

	q := `INSERT INTO users (id, email, password, username, is_ephemeral)
	      VALUES ($1, NULLIF($2, ''), $3, $4, $5)`

	err := pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q, user.ID, user.Email, user.Password, user.Username, user.IsEphemeral)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", mapErr(err))
	}
	return nil
}

const userColumns = `id, COALESCE(email, ''), password, username, is_ephemeral`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Username, &u.IsEphemeral); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// UpdateUserCredentials turns an ephemeral account into a registered one.
// The password must already be hashed.
func (s *Store) UpdateUserCredentials(ctx context.Context, u *models.User) error {
	q := `UPDATE users SET email = NULLIF($1, ''), password = $2, username = $3, is_ephemeral = $4 WHERE id = $5`
	err := pgx.BeginTxFunc(ctx, s.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, e := tx.Exec(ctx, q, u.Email, u.Password, u.Username, u.IsEphemeral, u.ID)
		if e != nil {
			return e
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update user credentials: %w", mapErr(err))
	}
	return nil
}

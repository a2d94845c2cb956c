package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/typist/internal/model"
)

// CreateUser inserts a user. A taken email returns ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (model.User, error) {
	now := time.Now().UTC()
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)`,
		email, passwordHash, formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, fmt.Errorf("user %s: %w", email, ErrDuplicate)
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{ID: id, Email: email, PasswordHash: passwordHash, CreatedAt: now}, nil
}

// GetUser returns the user with id, or nil when none exists.
func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.scanUser(s.q.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

// GetUserByEmail returns the user with email, or nil when none exists.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.scanUser(s.q.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (s *Store) scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var createdAt string
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Package auth manages credentials and bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/store"
)

var (
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = fmt.Errorf("%w: incorrect email or password", model.ErrUnauthorized)
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Accounts registers and verifies users.
type Accounts struct {
	users UserStore
	cost  int
}

// NewAccounts returns Accounts hashing with bcrypt's default cost.
func NewAccounts(users UserStore) *Accounts {
	return &Accounts{users: users, cost: bcrypt.DefaultCost}
}

// Signup creates a user with a hashed password.
func (a *Accounts) Signup(ctx context.Context, email, password string) (model.User, error) {
	email = NormalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := a.users.CreateUser(ctx, email, string(hash))
	if errors.Is(err, store.ErrDuplicate) {
		return model.User{}, ErrEmailTaken
	}
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Verify checks a password and returns its user.
func (a *Accounts) Verify(ctx context.Context, email, password string) (model.User, error) {
	user, err := a.users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return model.User{}, err
	}
	if user == nil {
		return model.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return *user, nil
}

// User returns the user with id or a not-found error.
func (a *Accounts) User(ctx context.Context, id int64) (model.User, error) {
	user, err := a.users.GetUser(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if user == nil {
		return model.User{}, fmt.Errorf("user %d: %w", id, model.ErrNotFound)
	}
	return *user, nil
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

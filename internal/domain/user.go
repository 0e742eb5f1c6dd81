package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEmailTaken indicates a registration attempt with an already-used email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on login failure. The cause (unknown
	// email vs wrong password) is deliberately not distinguished.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserNotFound is returned when a user cannot be located.
	ErrUserNotFound = errors.New("user not found")
)

// User is the account aggregate stored in Postgres.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Age          *int
	Gender       string
	IsActive     bool
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// UserRepository captures account persistence operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
}

package auth

import (
	"context"
	"time"
)

// User is the canonical security principal.
// Created on registration; this subsystem never mutates or destroys it.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is a server-side session row.
// IMPORTANT: TokenHash is the storage digest of the opaque token; the
// plain token is never persisted. Sessions are immutable once created.
type Session struct {
	TokenHash string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Active reports whether the session authorizes at the given instant.
func (s Session) Active(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// CredentialStore is the persistence boundary for user records.
type CredentialStore interface {
	// FindByUsername looks a user up by case-insensitive username.
	// Returns ErrNotFound when no account matches.
	FindByUsername(ctx context.Context, username string) (User, error)

	// FindByID loads a user by id (session resolution).
	// Returns ErrNotFound when no account matches.
	FindByID(ctx context.Context, id string) (User, error)

	// CreateUser persists a new user row.
	// Returns ErrConflict when the normalized username is already taken;
	// the store's unique constraint is the real backstop for the
	// check-then-create race in Register.
	CreateUser(ctx context.Context, u User) error
}

// SessionStore is the persistence boundary for session records.
type SessionStore interface {
	// CreateSession persists a new session row.
	// Returns ErrConflict on a token-hash collision (never expected with
	// 256-bit tokens) and ErrNotFound when the user does not exist.
	CreateSession(ctx context.Context, s Session) error

	// FindByTokenHash loads a session by its storage digest.
	// Returns ErrNotFound when no row matches.
	FindByTokenHash(ctx context.Context, tokenHash string) (Session, error)

	// DeleteByTokenHash deletes the session whose digest matches exactly.
	// Returns ErrNotFound when zero rows were deleted.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
}

// Store bundles both capability sets; implemented by PostgresStore and MemoryStore.
type Store interface {
	CredentialStore
	SessionStore
}

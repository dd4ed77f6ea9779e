// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/srt-bank/srtbank/internal/domain"
)

// Repository defines the interface for persisting users and sessions.
// The account ledger is deliberately not here: it is an in-memory service
// owned by the hosting layer.
type Repository interface {
	// GetUser retrieves a user by username. Returns (nil, nil) when the
	// user does not exist.
	GetUser(ctx context.Context, username string) (*domain.User, error)

	// UpsertUser creates or updates a user record.
	UpsertUser(ctx context.Context, user *domain.User) error

	// GetSession retrieves a session by its token. Returns (nil, nil) when
	// the token is unknown.
	GetSession(ctx context.Context, token string) (*domain.Session, error)

	// UpsertSession creates or updates a session, including its dialogue
	// state and collected slots.
	UpsertSession(ctx context.Context, session *domain.Session) error

	// DeleteSession removes a session entirely (logout).
	DeleteSession(ctx context.Context, token string) error

	// TouchSession updates the last_seen_at timestamp for a session.
	TouchSession(ctx context.Context, token string, lastSeen time.Time) error

	// CleanupExpiredSessions removes sessions idle longer than ttl and
	// returns the number deleted.
	CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

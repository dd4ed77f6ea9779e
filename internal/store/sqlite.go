package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/srt-bank/srtbank/internal/domain"
	"github.com/srt-bank/srtbank/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	sessionMu sync.Mutex // Mutex for session writes to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		dialogue_state TEXT NOT NULL DEFAULT '',
		slots_json TEXT,
		created_at INTEGER NOT NULL,
		last_seen_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_last_seen ON sessions(last_seen_at);
	CREATE INDEX IF NOT EXISTS idx_sessions_username ON sessions(username);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetUser retrieves a user by username.
func (s *SQLiteStore) GetUser(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT username, password, created_at, updated_at FROM users WHERE username = ?`

	row := s.db.QueryRowContext(ctx, query, username)

	var user domain.User
	var createdAt, updatedAt int64

	err := row.Scan(&user.Username, &user.Password, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)

	return &user, nil
}

// UpsertUser creates or updates a user record.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *domain.User) error {
	query := `
	INSERT INTO users (username, password, created_at, updated_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(username) DO UPDATE SET
		password = excluded.password,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		user.Username, user.Password,
		user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetSession retrieves a session by its token.
func (s *SQLiteStore) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	query := `
		SELECT token, username, dialogue_state, slots_json, created_at, last_seen_at
		FROM sessions WHERE token = ?`

	row := s.db.QueryRowContext(ctx, query, token)

	var sess domain.Session
	var state string
	var slotsJSON sql.NullString
	var createdAt, lastSeen int64

	err := row.Scan(&sess.Token, &sess.Username, &state, &slotsJSON, &createdAt, &lastSeen)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	sess.State = domain.DialogueState(state)
	if !sess.State.Valid() {
		sess.State = domain.StateNone
	}
	if slotsJSON.Valid && slotsJSON.String != "" {
		if err := json.Unmarshal([]byte(slotsJSON.String), &sess.Transfer); err != nil {
			return nil, fmt.Errorf("unmarshal session slots: %w", err)
		}
	}
	sess.CreatedAt = time.Unix(createdAt, 0)
	sess.LastSeenAt = time.Unix(lastSeen, 0)

	return &sess, nil
}

// UpsertSession creates or updates a session record.
func (s *SQLiteStore) UpsertSession(ctx context.Context, session *domain.Session) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	var slotsJSON interface{}
	if !session.Transfer.Empty() {
		data, err := json.Marshal(session.Transfer)
		if err != nil {
			return fmt.Errorf("marshal session slots: %w", err)
		}
		slotsJSON = string(data)
	}

	query := `
	INSERT INTO sessions (token, username, dialogue_state, slots_json, created_at, last_seen_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(token) DO UPDATE SET
		dialogue_state = excluded.dialogue_state,
		slots_json = excluded.slots_json,
		last_seen_at = excluded.last_seen_at`

	err := s.execWithRetry(ctx, query,
		session.Token, session.Username, string(session.State), slotsJSON,
		session.CreatedAt.Unix(), session.LastSeenAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// DeleteSession removes a session entirely.
func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	if err := s.execWithRetry(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// TouchSession updates the last_seen_at timestamp for a session.
func (s *SQLiteStore) TouchSession(ctx context.Context, token string, lastSeen time.Time) error {
	query := `UPDATE sessions SET last_seen_at = ? WHERE token = ?`
	if err := s.execWithRetry(ctx, query, lastSeen.Unix(), token); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes sessions idle longer than ttl.
func (s *SQLiteStore) CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	cutoff := time.Now().Add(-ttl).Unix()
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE last_seen_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return deleted, nil
}

// execWithRetry executes a statement, retrying once after a short backoff on
// SQLite concurrency errors.
func (s *SQLiteStore) execWithRetry(ctx context.Context, query string, args ...interface{}) error {
	_, err := s.db.ExecContext(ctx, query, args...)
	if err != nil && shared.IsSQLiteConflictError(err) {
		time.Sleep(50 * time.Millisecond)
		_, err = s.db.ExecContext(ctx, query, args...)
	}
	return err
}

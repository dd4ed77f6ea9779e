package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/srt-bank/srtbank/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return repo
}

func TestUserRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()

	got, err := repo.GetUser(ctx, "teja")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for unknown user")
	}

	now := time.Now().Truncate(time.Second)
	user := &domain.User{Username: "teja", Password: "srt123", CreatedAt: now, UpdatedAt: now}
	if err := repo.UpsertUser(ctx, user); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}

	got, err = repo.GetUser(ctx, "teja")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got == nil || got.Password != "srt123" || !got.CreatedAt.Equal(now) {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// Upsert updates in place.
	user.Password = "changed"
	user.UpdatedAt = now.Add(time.Minute)
	if err := repo.UpsertUser(ctx, user); err != nil {
		t.Fatalf("UpsertUser update: %v", err)
	}
	got, _ = repo.GetUser(ctx, "teja")
	if got.Password != "changed" || !got.CreatedAt.Equal(now) {
		t.Fatalf("update mismatch: %+v", got)
	}
}

func TestSessionRoundTripWithSlots(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	sess := &domain.Session{
		Token:      "0123456789abcdef0123456789abcdef",
		Username:   "teja",
		State:      domain.StateAwaitingConfirmation,
		Transfer:   domain.TransferDetails{Recipient: "Priya", Amount: "500"},
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := repo.UpsertSession(ctx, sess); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}

	got, err := repo.GetSession(ctx, sess.Token)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got == nil {
		t.Fatal("session not found after upsert")
	}
	if got.State != domain.StateAwaitingConfirmation {
		t.Errorf("state = %q, want awaiting_confirmation", got.State)
	}
	if got.Transfer != sess.Transfer {
		t.Errorf("slots = %+v, want %+v", got.Transfer, sess.Transfer)
	}
	if !got.CreatedAt.Equal(now) || !got.LastSeenAt.Equal(now) {
		t.Errorf("timestamps drifted: %+v", got)
	}
}

func TestSessionUpsertClearsSlots(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	sess := &domain.Session{
		Token:      "0123456789abcdef0123456789abcdef",
		Username:   "teja",
		State:      domain.StateAwaitingAmount,
		Transfer:   domain.TransferDetails{Recipient: "Priya"},
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := repo.UpsertSession(ctx, sess); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}

	// Flow terminated: clean state must overwrite the stored slots.
	sess.ClearFlow()
	if err := repo.UpsertSession(ctx, sess); err != nil {
		t.Fatalf("UpsertSession after clear: %v", err)
	}

	got, err := repo.GetSession(ctx, sess.Token)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.State != domain.StateNone || !got.Transfer.Empty() {
		t.Fatalf("expected clean session, got state=%q slots=%+v", got.State, got.Transfer)
	}
}

func TestGetSessionUnknownToken(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	got, err := repo.GetSession(context.Background(), "ffffffffffffffffffffffffffffffff")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown token, got %+v", got)
	}
}

func TestGetSessionClampsUnknownState(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	sess := &domain.Session{
		Token:      "0123456789abcdef0123456789abcdef",
		Username:   "teja",
		State:      domain.DialogueState("awaiting_something_new"),
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := repo.UpsertSession(ctx, sess); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}

	got, err := repo.GetSession(ctx, sess.Token)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.State != domain.StateNone {
		t.Fatalf("unknown persisted state must clamp to NONE, got %q", got.State)
	}
}

func TestTouchSession(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()
	created := time.Now().Add(-time.Hour).Truncate(time.Second)

	sess := &domain.Session{
		Token:      "0123456789abcdef0123456789abcdef",
		Username:   "teja",
		CreatedAt:  created,
		LastSeenAt: created,
	}
	if err := repo.UpsertSession(ctx, sess); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}

	touched := time.Now().Truncate(time.Second)
	if err := repo.TouchSession(ctx, sess.Token, touched); err != nil {
		t.Fatalf("TouchSession: %v", err)
	}

	got, _ := repo.GetSession(ctx, sess.Token)
	if !got.LastSeenAt.Equal(touched) {
		t.Errorf("last seen = %v, want %v", got.LastSeenAt, touched)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created at must not change, got %v", got.CreatedAt)
	}
}

func TestDeleteSession(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	sess := &domain.Session{
		Token: "0123456789abcdef0123456789abcdef", Username: "teja",
		CreatedAt: now, LastSeenAt: now,
	}
	if err := repo.UpsertSession(ctx, sess); err != nil {
		t.Fatalf("UpsertSession: %v", err)
	}
	if err := repo.DeleteSession(ctx, sess.Token); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	got, err := repo.GetSession(ctx, sess.Token)
	if err != nil || got != nil {
		t.Fatalf("expected session gone, got %+v err=%v", got, err)
	}

	// Deleting a missing session is not an error.
	if err := repo.DeleteSession(ctx, sess.Token); err != nil {
		t.Fatalf("DeleteSession on missing token: %v", err)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	t.Parallel()

	repo := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	fresh := &domain.Session{
		Token: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Username: "teja",
		CreatedAt: now, LastSeenAt: now,
	}
	stale := &domain.Session{
		Token: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", Username: "sri",
		CreatedAt: now.Add(-3 * time.Hour), LastSeenAt: now.Add(-2 * time.Hour),
	}
	for _, s := range []*domain.Session{fresh, stale} {
		if err := repo.UpsertSession(ctx, s); err != nil {
			t.Fatalf("UpsertSession: %v", err)
		}
	}

	deleted, err := repo.CleanupExpiredSessions(ctx, time.Hour)
	if err != nil {
		t.Fatalf("CleanupExpiredSessions: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}

	if got, _ := repo.GetSession(ctx, stale.Token); got != nil {
		t.Fatal("stale session should be gone")
	}
	if got, _ := repo.GetSession(ctx, fresh.Token); got == nil {
		t.Fatal("fresh session should survive")
	}
}

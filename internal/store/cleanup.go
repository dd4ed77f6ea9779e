package store

import (
	"context"
	"log/slog"
	"time"
)

const cleanupInterval = 5 * time.Minute

// StartSessionCleanup runs a background goroutine that periodically sweeps
// expired sessions out of the store. An abandoned mid-flow conversation is
// bounded by this: the session row (and its dialogue state) disappears once
// the TTL elapses.
func StartSessionCleanup(ctx context.Context, repo Repository, ttl time.Duration) {
	ticker := time.NewTicker(cleanupInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session cleanup worker started", "interval", cleanupInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				deleted, err := repo.CleanupExpiredSessions(ctx, ttl)
				if err != nil {
					slog.Error("Session cleanup failed", "error", err)
					continue
				}
				if deleted > 0 {
					slog.Info("Session cleanup removed expired sessions", "count", deleted)
				}
			case <-ctx.Done():
				slog.Info("Session cleanup worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

// Package auth provides credentialed login sessions for the bank demo.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/srt-bank/srtbank/internal/domain"
	"github.com/srt-bank/srtbank/internal/store"
)

const (
	// SessionCookieName carries the opaque session token.
	SessionCookieName = "srtbank_session"

	sessionCookieMaxAge = 24 * time.Hour
)

type contextKey int

const sessionKey contextKey = iota

var tokenPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

// SessionFromContext extracts the authenticated session from the request
// context. Returns nil when the request is unauthenticated.
func SessionFromContext(ctx context.Context) *domain.Session {
	if s, ok := ctx.Value(sessionKey).(*domain.Session); ok {
		return s
	}
	return nil
}

// generateToken returns a new random session token.
func generateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func isValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}

// setSessionCookie writes the session cookie with the attributes the
// frontend expects.
func setSessionCookie(w http.ResponseWriter, token string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(sessionCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// clearSessionCookie expires the session cookie.
func clearSessionCookie(w http.ResponseWriter, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

// checkPassword compares a candidate password against the stored one in
// constant time. Fixture users keep demo passwords as-is.
func checkPassword(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

// Middleware resolves the session cookie into a session record on the
// request context. Requests without a valid session pass through
// unauthenticated; handlers decide how to respond.
func Middleware(repo store.Repository, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(SessionCookieName)
			if err != nil || !isValidToken(c.Value) {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := repo.GetSession(r.Context(), c.Value)
			if err != nil || sess == nil || sess.Expired(ttl) {
				next.ServeHTTP(w, r)
				return
			}

			// Sliding expiry: a turn of activity keeps the session alive.
			now := time.Now()
			if err := repo.TouchSession(r.Context(), sess.Token, now); err == nil {
				sess.LastSeenAt = now
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SeedUsers ensures the demo fixture users exist.
func SeedUsers(ctx context.Context, repo store.Repository) error {
	fixtures := []domain.User{
		{Username: "teja", Password: "srt123"},
		{Username: "sri", Password: "bank123"},
	}
	now := time.Now()
	for _, u := range fixtures {
		existing, err := repo.GetUser(ctx, u.Username)
		if err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		if existing != nil {
			continue
		}
		u.CreatedAt = now
		u.UpdatedAt = now
		if err := repo.UpsertUser(ctx, &u); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}
	return nil
}

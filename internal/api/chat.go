package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/srt-bank/srtbank/internal/auth"
	"github.com/srt-bank/srtbank/internal/chatlog"
	"github.com/srt-bank/srtbank/internal/dialogue"
	"github.com/srt-bank/srtbank/internal/domain"
	"github.com/srt-bank/srtbank/internal/metrics"
	"github.com/srt-bank/srtbank/internal/store"
)

// maxChatBodySize caps the chat request body (64KB is generous for one
// utterance).
const maxChatBodySize = 64 << 10

// ChatHandler serves the assistant's turn endpoint.
type ChatHandler struct {
	engine      *dialogue.Engine
	repo        store.Repository
	rateLimiter *RateLimiter
	log         chatlog.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(engine *dialogue.Engine, repo store.Repository, limiter *RateLimiter, convLog chatlog.Logger) *ChatHandler {
	if convLog == nil {
		convLog = chatlog.Noop{}
	}
	return &ChatHandler{
		engine:      engine,
		repo:        repo,
		rateLimiter: limiter,
		log:         convLog,
	}
}

// RegisterRoutes registers the chat route.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/chat", h.HandleChat)
}

type chatRequest struct {
	Message string `json:"message"`
}

// HandleChat runs one dialogue turn. All outcomes, including auth failures,
// surface as a reply plus an intent tag, matching the assistant's contract.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		// Short-circuits before any state-machine logic runs.
		out := h.engine.Process(r.Context(), &domain.Session{}, dialogue.Turn{Authenticated: false})
		metrics.ChatTurns.WithLabelValues(out.Intent).Inc()
		JSON(w, http.StatusOK, out)
		return
	}

	if !h.rateLimiter.Allow(sess.Username) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		case errors.Is(err, io.EOF):
			// A missing body is an empty message; the engine answers it.
			req = chatRequest{}
		default:
			Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	reqID := chiMiddleware.GetReqID(r.Context())
	slog.Info("Chat turn",
		"username", sess.Username,
		"state", sess.State,
		"message_length", len(req.Message),
	)
	h.log.Log(chatlog.Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Username:  sess.Username,
		Session:   sess.Token,
		Direction: "user",
		Content:   req.Message,
		Meta:      map[string]any{"request_id": reqID, "state": string(sess.State)},
	})

	out := h.engine.Process(r.Context(), sess, dialogue.Turn{
		Authenticated: true,
		Utterance:     req.Message,
	})
	metrics.ChatTurns.WithLabelValues(out.Intent).Inc()

	// Persist the updated dialogue state; the engine has already clamped
	// every terminal branch back to a clean state.
	if err := h.repo.UpsertSession(r.Context(), sess); err != nil {
		slog.Error("failed to persist session state", "error", err, "username", sess.Username)
		Error(w, http.StatusInternalServerError, "failed to save conversation state")
		return
	}

	h.log.Log(chatlog.Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Username:  sess.Username,
		Session:   sess.Token,
		Direction: "assistant",
		Content:   out.Reply,
		Meta:      map[string]any{"request_id": reqID, "intent": out.Intent, "state": string(sess.State)},
	})

	JSON(w, http.StatusOK, out)
}

// RateLimiter implements a per-user sliding-window rate limiter. The key is
// the username so a user cannot bypass throttling with parallel sessions.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
}

// NewRateLimiter creates a new rate limiter and starts the background
// eviction goroutine.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}
	rl.startEviction()
	return rl
}

// Allow checks if a request is allowed for the given key.
func (r *RateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-r.window)

	var recent []time.Time
	for _, t := range r.requests[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= r.limit {
		r.requests[key] = recent
		return false
	}

	r.requests[key] = append(recent, now)
	return true
}

// startEviction runs a background goroutine that periodically removes
// expired keys from the requests map, preventing unbounded memory growth.
func (r *RateLimiter) startEviction() {
	go func() {
		ticker := time.NewTicker(r.window)
		defer ticker.Stop()
		for range ticker.C {
			r.mu.Lock()
			cutoff := time.Now().Add(-r.window)
			for key, times := range r.requests {
				var fresh []time.Time
				for _, t := range times {
					if t.After(cutoff) {
						fresh = append(fresh, t)
					}
				}
				if len(fresh) == 0 {
					delete(r.requests, key)
				} else {
					r.requests[key] = fresh
				}
			}
			r.mu.Unlock()
		}
	}()
}

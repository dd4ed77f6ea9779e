// Package chat provides the WebSocket chat surface. It drives the same
// dialogue engine as POST /api/chat, one turn per inbound frame.
package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/srt-bank/srtbank/internal/api"
	"github.com/srt-bank/srtbank/internal/auth"
	"github.com/srt-bank/srtbank/internal/chatlog"
	"github.com/srt-bank/srtbank/internal/dialogue"
	"github.com/srt-bank/srtbank/internal/domain"
	"github.com/srt-bank/srtbank/internal/metrics"
	"github.com/srt-bank/srtbank/internal/store"
)

// WebSocketHandler upgrades /ws/chat connections and runs dialogue turns
// over them. Both chat surfaces share one rate limiter and one conversation
// log, so switching transports cannot evade throttling or logging.
type WebSocketHandler struct {
	engine        *dialogue.Engine
	repo          store.Repository
	rateLimiter   *api.RateLimiter
	log           chatlog.Logger
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a WebSocket chat handler.
func NewWebSocketHandler(engine *dialogue.Engine, repo store.Repository, limiter *api.RateLimiter, convLog chatlog.Logger, allowedOrigin string, isDev bool) *WebSocketHandler {
	if convLog == nil {
		convLog = chatlog.Noop{}
	}
	return &WebSocketHandler{
		engine:        engine,
		repo:          repo,
		rateLimiter:   limiter,
		log:           convLog,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// wsMessage represents the WebSocket frame structure, both directions.
type wsMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Intent  string `json:"intent,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess := auth.SessionFromContext(r.Context())
	username := ""
	if sess != nil {
		username = sess.Username
	}
	slog.Info("WebSocket chat connection request", "username", username, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "chat ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			slog.Debug("WebSocket chat closed", "error", err)
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "message" {
			if writeErr := h.writeJSON(ctx, ws, wsMessage{Type: "error", Content: "invalid message"}); writeErr != nil {
				return
			}
			continue
		}

		if sess != nil && !h.rateLimiter.Allow(sess.Username) {
			if writeErr := h.writeJSON(ctx, ws, wsMessage{Type: "error", Content: "rate limit exceeded"}); writeErr != nil {
				return
			}
			continue
		}

		if sess != nil {
			h.log.Log(chatlog.Event{
				Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
				Username:  sess.Username,
				Session:   sess.Token,
				Direction: "user",
				Content:   msg.Content,
				Meta:      map[string]any{"channel": "ws", "state": string(sess.State)},
			})
		}

		turnSess := sess
		if turnSess == nil {
			turnSess = &domain.Session{}
		}
		out := h.engine.Process(ctx, turnSess, dialogue.Turn{
			Authenticated: sess != nil,
			Utterance:     msg.Content,
		})
		metrics.ChatTurns.WithLabelValues(out.Intent).Inc()

		if sess != nil {
			sess.LastSeenAt = time.Now()
			if err := h.repo.UpsertSession(ctx, sess); err != nil {
				slog.Error("failed to persist session state", "error", err, "username", sess.Username)
			}
			h.log.Log(chatlog.Event{
				Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
				Username:  sess.Username,
				Session:   sess.Token,
				Direction: "assistant",
				Content:   out.Reply,
				Meta:      map[string]any{"channel": "ws", "intent": out.Intent, "state": string(sess.State)},
			})
		}

		if err := h.writeJSON(ctx, ws, wsMessage{Type: "reply", Content: out.Reply, Intent: out.Intent}); err != nil {
			slog.Debug("WebSocket write failed", "error", err)
			return
		}
	}
}

func (h *WebSocketHandler) writeJSON(ctx context.Context, ws *websocket.Conn, msg wsMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return ws.Write(writeCtx, websocket.MessageText, data)
}

// checkOrigin validates the Origin header outside development mode.
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev || h.allowedOrigin == "" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || strings.HasPrefix(origin, h.allowedOrigin)
}

package domain

import (
	"time"
)

// Session is one logged-in user's session, including the conversation state
// the dialogue engine reads and writes. Created at login, deleted entirely
// at logout; State and Transfer are cleared whenever a flow terminates.
type Session struct {
	Token      string
	Username   string
	State      DialogueState
	Transfer   TransferDetails
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// Expired reports whether the session has exceeded the inactivity TTL.
func (s *Session) Expired(ttl time.Duration) bool {
	return time.Since(s.LastSeenAt) > ttl
}

package identity

import (
	"time"
)

// Session correlates a caller's requests across traces: the HTTP server
// issues one per caller, the MCP server one per stdio connection, and the
// session ID is stamped into every audit entry the caller produces.
type Session struct {
	CallerID  string    `json:"caller_id"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession creates a session for the given caller with a generated ID.
func NewSession(callerID string) *Session {
	return &Session{
		CallerID:  callerID,
		SessionID: prefixedID("sess", 16),
		CreatedAt: time.Now().UTC(),
	}
}

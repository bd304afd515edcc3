package identity

import (
	"strings"
	"testing"
	"time"
)

func TestNewSessionGeneratesID(t *testing.T) {
	s := NewSession("sales001")
	if s.SessionID == "" {
		t.Error("expected non-empty session ID")
	}
	if !strings.HasPrefix(s.SessionID, "sess-") {
		t.Errorf("expected sess- prefix, got %q", s.SessionID)
	}
	if s.CallerID != "sales001" {
		t.Errorf("expected caller_id sales001, got %q", s.CallerID)
	}
}

func TestNewSessionTimestamp(t *testing.T) {
	before := time.Now().UTC()
	s := NewSession("sales001")
	after := time.Now().UTC()

	if s.CreatedAt.Before(before) || s.CreatedAt.After(after) {
		t.Errorf("created_at %v not between %v and %v", s.CreatedAt, before, after)
	}
}

func TestNewTraceIDShape(t *testing.T) {
	id := NewTraceID()
	if !strings.HasPrefix(id, "t-") {
		t.Errorf("expected t- prefix, got %q", id)
	}
	if len(id) != 2+12 {
		t.Errorf("expected 12 hex chars, got %q", id)
	}
}

func TestTraceIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewTraceID()
		if seen[id] {
			t.Fatalf("duplicate trace ID: %s", id)
		}
		seen[id] = true
	}
}

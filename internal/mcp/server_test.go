package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/acinsight/querygate/internal/audit"
)

func newTestServer(t *testing.T, role, userID string) *Server {
	t.Helper()
	s, err := New(Config{Role: role, UserID: userID}, nil)
	if err != nil {
		t.Fatalf("failed to create MCP server: %v", err)
	}
	return s
}

func TestInterceptToolAllows(t *testing.T) {
	s := newTestServer(t, "Sales", "sales001")

	result, out, err := s.handleIntercept(context.Background(), &mcpsdk.CallToolRequest{}, InterceptInput{
		Intent: "查询本月订单数",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatal("expected success result")
	}
	if out.Outcome != "allowed" {
		t.Fatalf("expected allowed, got %s (%s)", out.Outcome, out.DenialMessage)
	}
	if !strings.Contains(out.RewrittenQuery, "sales001") {
		t.Errorf("expected row-scoped intent, got %q", out.RewrittenQuery)
	}
}

func TestInterceptToolDenies(t *testing.T) {
	s := newTestServer(t, "Sales", "sales001")

	result, out, err := s.handleIntercept(context.Background(), &mcpsdk.CallToolRequest{}, InterceptInput{
		Intent: "查询本月毛利",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatal("expected error result for denial")
	}
	if out.Outcome != "denied" {
		t.Fatalf("expected denied, got %s", out.Outcome)
	}
	if !strings.Contains(out.DenialMessage, "Admin") {
		t.Errorf("denial must name the escalation path, got %q", out.DenialMessage)
	}
}

func TestInterceptToolPartial(t *testing.T) {
	s := newTestServer(t, "Sales", "sales001")

	result, out, err := s.handleIntercept(context.Background(), &mcpsdk.CallToolRequest{}, InterceptInput{
		Intent: "统计订单数和毛利",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatal("partial decisions are not tool errors")
	}
	if out.Outcome != "allowed_partial" {
		t.Fatalf("expected allowed_partial, got %s", out.Outcome)
	}
	if out.Suggestion == "" || strings.Contains(out.Suggestion, "毛利") {
		t.Errorf("suggestion must name only the allowed subset: %q", out.Suggestion)
	}
}

func TestRewriteSQLTool(t *testing.T) {
	s := newTestServer(t, "Sales", "sales001")

	result, out, err := s.handleRewriteSQL(context.Background(), &mcpsdk.CallToolRequest{}, RewriteSQLInput{
		SQL: "SELECT COUNT(*) FROM orders",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatal("expected success result")
	}
	if !strings.Contains(out.SQL, "owner_id = 'sales001'") {
		t.Errorf("missing ownership predicate: %s", out.SQL)
	}
}

func TestRewriteSQLToolRejectsEmpty(t *testing.T) {
	s := newTestServer(t, "Sales", "sales001")

	result, _, err := s.handleRewriteSQL(context.Background(), &mcpsdk.CallToolRequest{}, RewriteSQLInput{})
	if err == nil {
		t.Fatal("expected error for empty SQL")
	}
	if result == nil || !result.IsError {
		t.Fatal("expected error result")
	}
}

func TestCheckToolDoesNotAudit(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "audit.jsonl")
	s, err := New(Config{Role: "Sales", UserID: "sales001", AuditLogPath: auditPath}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, out, err := s.handleCheck(context.Background(), &mcpsdk.CallToolRequest{}, CheckInput{
		Intent: "查询本月毛利",
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Outcome != "denied" {
		t.Fatalf("expected denied, got %s", out.Outcome)
	}

	result := audit.Verify(auditPath)
	if result.Lines != 0 {
		t.Errorf("dry-run must not write audit entries, found %d", result.Lines)
	}
}

func TestInterceptToolAudits(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "audit.jsonl")
	s, err := New(Config{Role: "Sales", UserID: "sales001", AuditLogPath: auditPath}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, _, err = s.handleIntercept(context.Background(), &mcpsdk.CallToolRequest{}, InterceptInput{
		Intent: "查询本月毛利",
	})
	if err != nil {
		t.Fatal(err)
	}

	result := audit.Verify(auditPath)
	if !result.Valid || result.Lines != 1 {
		t.Errorf("expected 1 audited decision, got %+v", result)
	}

	replay, err := audit.Replay(auditPath, audit.ReplayFilter{CallerID: "sales001"})
	if err != nil {
		t.Fatal(err)
	}
	if len(replay.Entries) != 1 || !strings.HasPrefix(replay.Entries[0].SessionID, "sess-") {
		t.Errorf("expected entry with stdio session id, got %+v", replay.Entries)
	}
	if replay.Entries[0].SessionID != s.session.SessionID {
		t.Errorf("audit session %q != server session %q", replay.Entries[0].SessionID, s.session.SessionID)
	}
}

func TestNewRejectsBadIdentity(t *testing.T) {
	if _, err := New(Config{Role: "superuser", UserID: "sales001"}, nil); err == nil {
		t.Error("expected error for unknown role")
	}
	if _, err := New(Config{Role: "Sales", UserID: "x"}, nil); err == nil {
		t.Error("expected error for malformed user id")
	}
}

package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/acinsight/querygate/internal/intercept"
	"github.com/acinsight/querygate/internal/model"
)

// --- Input/Output types ---

// InterceptInput defines parameters for the querygate_intercept tool.
type InterceptInput struct {
	Intent  string `json:"intent" jsonschema:"natural-language query intent"`
	TraceID string `json:"trace_id,omitempty" jsonschema:"trace ID, generated when omitted"`
}

// InterceptOutput carries the decision back to the agent.
type InterceptOutput struct {
	Outcome        string   `json:"outcome"`
	SecurityLevel  string   `json:"security_level"`
	RewrittenQuery string   `json:"rewritten_query,omitempty"`
	DenialMessage  string   `json:"denial_message,omitempty"`
	BlockedFields  []string `json:"blocked_fields,omitempty"`
	AllowedFields  []string `json:"allowed_fields,omitempty"`
	Suggestion     string   `json:"suggestion,omitempty"`
}

// RewriteSQLInput defines parameters for the querygate_rewrite_sql tool.
type RewriteSQLInput struct {
	SQL string `json:"sql" jsonschema:"generated SQL statement to secure"`
}

// RewriteSQLOutput contains the secured statement.
type RewriteSQLOutput struct {
	SQL string `json:"sql"`
}

// CheckInput defines parameters for the querygate_check tool.
type CheckInput struct {
	Intent string `json:"intent" jsonschema:"query intent to dry-run"`
}

// CheckOutput contains the dry-run decision.
type CheckOutput struct {
	Outcome       string   `json:"outcome"`
	SecurityLevel string   `json:"security_level"`
	BlockedFields []string `json:"blocked_fields,omitempty"`
	Reason        string   `json:"reason,omitempty"`
}

// --- Handlers ---

func (s *Server) handleIntercept(ctx context.Context, req *mcpsdk.CallToolRequest, input InterceptInput) (*mcpsdk.CallToolResult, InterceptOutput, error) {
	d := s.interceptor.Intercept(intercept.Request{
		Intent:    input.Intent,
		Caller:    s.caller,
		TraceID:   input.TraceID,
		SessionID: s.session.SessionID,
	})

	out := InterceptOutput{
		Outcome:        string(d.Outcome),
		SecurityLevel:  string(d.SecurityLevel),
		RewrittenQuery: d.RewrittenQuery,
		DenialMessage:  d.DenialMessage,
		BlockedFields:  d.BlockedFields,
		AllowedFields:  d.AllowedFields,
	}
	if d.Partial != nil {
		out.Suggestion = d.Partial.Suggestion
	}

	// A denial is a tool result, not a protocol error: the agent needs the
	// message to relay to the user.
	return &mcpsdk.CallToolResult{IsError: d.Outcome == model.OutcomeDenied}, out, nil
}

func (s *Server) handleRewriteSQL(ctx context.Context, req *mcpsdk.CallToolRequest, input RewriteSQLInput) (*mcpsdk.CallToolResult, RewriteSQLOutput, error) {
	out, err := s.interceptor.RewriteSQL(input.SQL, s.caller)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, RewriteSQLOutput{}, err
	}
	return nil, RewriteSQLOutput{SQL: out}, nil
}

func (s *Server) handleCheck(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, CheckOutput, error) {
	d := s.checker.Intercept(intercept.Request{
		Intent: input.Intent,
		Caller: s.caller,
	})

	return nil, CheckOutput{
		Outcome:       string(d.Outcome),
		SecurityLevel: string(d.SecurityLevel),
		BlockedFields: d.BlockedFields,
		Reason:        d.DenialMessage,
	}, nil
}

package audit

// AuditCaller is the identity snapshot recorded with each decision.
type AuditCaller struct {
	Role string `json:"role"`
	ID   string `json:"id"`
}

// AuditEntry is one line in the hash-chained JSONL audit log: a single
// interception decision. All fields are structs or scalars (no
// map[string]any) to guarantee deterministic json.Marshal field order for
// reproducible hashing.
type AuditEntry struct {
	Timestamp     string      `json:"ts"`
	TraceID       string      `json:"trace_id"`
	SessionID     string      `json:"session_id,omitempty"`
	Caller        AuditCaller `json:"caller"`
	Intent        string      `json:"intent"`
	Outcome       string      `json:"outcome"`
	SecurityLevel string      `json:"security_level"`
	Reason        string      `json:"reason,omitempty"`
	BlockedFields []string    `json:"blocked_fields,omitempty"`
	CatalogHash   string      `json:"catalog_hash"`
	PrevHash      string      `json:"prev_hash"`
}

package model

// Role identifies the caller's access tier.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleSales   Role = "Sales"
)

// ParseRole maps a string to a Role. Fail-closed: unknown roles are rejected
// rather than defaulted, since a mistyped role must never widen access.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleSales:
		return Role(s), true
	default:
		return "", false
	}
}

// HasRestrictedAccess reports whether the role may read L1 indicators.
func (r Role) HasRestrictedAccess() bool {
	return r == RoleAdmin
}

// Level classifies indicator sensitivity.
type Level string

const (
	LevelPublic     Level = "L0"
	LevelRestricted Level = "L1"
)

// ValidLevel reports whether s is a known sensitivity level.
func ValidLevel(s string) bool {
	return Level(s) == LevelPublic || Level(s) == LevelRestricted
}

// Caller is the authenticated identity a request is evaluated for.
// Created once per request and never mutated.
type Caller struct {
	Role       Role   `json:"role"`
	ID         string `json:"id"`
	RowFilter  string `json:"row_filter,omitempty"`
	Department string `json:"department,omitempty"`
}

// Stage names a step in the interception pipeline. The orchestrator records
// the stages it passed through so the audit trail shows where a request
// terminated.
type Stage string

const (
	StageReceived         Stage = "received"
	StageInjectionChecked Stage = "injection_checked"
	StageClassified       Stage = "classified"
	StageScanned          Stage = "scanned"
	StageDecided          Stage = "decided"
	StageRewritten        Stage = "rewritten"
	StageDenied           Stage = "denied"
)

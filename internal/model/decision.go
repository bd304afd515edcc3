package model

// Outcome is the terminal result of intercepting a request.
type Outcome string

const (
	// OutcomeDenied blocks the whole request.
	OutcomeDenied Outcome = "denied"
	// OutcomeAllowed permits the full request after rewriting.
	OutcomeAllowed Outcome = "allowed"
	// OutcomeAllowedPartial permits only the non-restricted portion of a
	// mixed request; the blocked portion must not be executed.
	OutcomeAllowedPartial Outcome = "allowed_partial"
)

// Partial describes the split of a mixed request into an executable part
// and a blocked part, plus a user-facing suggestion naming the allowed subset.
type Partial struct {
	AllowedQuery string `json:"allowed_query"`
	BlockedQuery string `json:"blocked_query"`
	Suggestion   string `json:"suggestion"`
}

// Decision is the structured outcome of one interception. It is a tagged
// variant over {Denied, Allowed, AllowedPartial}: use the constructors below
// so illegal combinations (an allowed decision carrying a denial message, a
// denied one carrying a rewritten query) cannot be built.
type Decision struct {
	Outcome        Outcome  `json:"outcome"`
	SecurityLevel  Level    `json:"security_level"`
	RewrittenQuery string   `json:"rewritten_query,omitempty"`
	DenialMessage  string   `json:"denial_message,omitempty"`
	BlockedFields  []string `json:"blocked_fields,omitempty"`
	AllowedFields  []string `json:"allowed_fields,omitempty"`
	Partial        *Partial `json:"partial,omitempty"`
	Trail          []Stage  `json:"trail,omitempty"`
}

// Allowed reports whether any portion of the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllowed || d.Outcome == OutcomeAllowedPartial
}

// Denied builds a hard-deny decision.
func Denied(level Level, message string, blockedFields []string) Decision {
	return Decision{
		Outcome:       OutcomeDenied,
		SecurityLevel: level,
		DenialMessage: message,
		BlockedFields: blockedFields,
	}
}

// DeniedWithSuggestion builds a hard-deny decision carrying a remediation
// hint in the partial descriptor (used for formula-derivation denials).
func DeniedWithSuggestion(level Level, message, suggestion string, blockedFields []string) Decision {
	d := Denied(level, message, blockedFields)
	d.Partial = &Partial{Suggestion: suggestion}
	return d
}

// AllowedFull builds a fully allowed decision with the rewritten query text.
func AllowedFull(rewritten string) Decision {
	return Decision{
		Outcome:        OutcomeAllowed,
		SecurityLevel:  LevelPublic,
		RewrittenQuery: rewritten,
	}
}

// AllowedPartial builds an atomic partial decision: the allowed subset may
// execute, the blocked subset must not.
func AllowedPartial(rewritten string, allowedFields, blockedFields []string, partial Partial) Decision {
	return Decision{
		Outcome:        OutcomeAllowedPartial,
		SecurityLevel:  LevelPublic,
		RewrittenQuery: rewritten,
		AllowedFields:  allowedFields,
		BlockedFields:  blockedFields,
		Partial:        &partial,
	}
}

// Package rewrite injects row-ownership, time-bounding, and null-safety
// constraints into query text. Rewriting is string-pattern based by design:
// the inputs are intent text and already-templated SQL, not arbitrary SQL.
// The package boundary is the narrow interface that would let a parser-based
// rewriter replace it without touching the orchestrator.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// OwnerColumn is the row-ownership column every tenant table carries.
const OwnerColumn = "owner_id"

// DefaultTimeRange is the user-facing label for the injected time window.
const DefaultTimeRange = "近30天"

// defaultTimePredicate bounds a query to the last 30 days when the caller
// gave no time constraint of their own.
const defaultTimePredicate = "created_at >= date('now', '-30 days')"

var (
	whereRe    = regexp.MustCompile(`(?i)\bWHERE\s+`)
	groupRe    = regexp.MustCompile(`(?i)\b(GROUP\s+BY|ORDER\s+BY)\b`)
	fromRe     = regexp.MustCompile(`(?i)\bFROM\s+(\S+)`)
	timeHintRe = regexp.MustCompile(`(?i)where[\s\S]*?(created_at|order_date)|date\s*\(|今天|昨天|本周|本月|上月|近\d+天|本季度|本年度|last\s+\d+\s+days?|this\s+month|last\s+month`)
)

// OwnershipPredicate returns the exact row-filter predicate for a caller.
func OwnershipPredicate(callerID string) string {
	return fmt.Sprintf("%s = '%s'", OwnerColumn, callerID)
}

// SQL rewrites generated SQL so that it is safe to execute for callerID:
// exactly one row-ownership predicate for the caller, at least one
// time-bounding predicate, and null-safe arithmetic. Idempotent —
// re-applying to its own output is a no-op.
func SQL(sql, callerID string) string {
	return SQLWithPredicate(sql, OwnershipPredicate(callerID))
}

// SQLWithPredicate is SQL with an explicit row-filter predicate, for callers
// whose scope is not the default owner_id binding (an upstream row filter).
//
// If an ownership predicate for a different identifier is already present,
// the caller's predicate is still conjoined with AND: conjunction can only
// narrow the result set, so a pre-supplied filter cannot widen scope.
func SQLWithPredicate(sql, pred string) string {
	out := sql
	if !strings.Contains(out, pred) {
		out = injectOwnership(out, pred)
	}
	if !HasTimePredicate(out) {
		out = injectTime(out)
	}
	return NullSafe(out)
}

// HasOwnership reports whether sql already binds the caller's predicate.
func HasOwnership(sql, callerID string) bool {
	return strings.Contains(sql, OwnershipPredicate(callerID))
}

// OwnershipCount returns how many times the caller's exact predicate occurs.
// Correct rewriting yields exactly one.
func OwnershipCount(sql, callerID string) int {
	return PredicateCount(sql, OwnershipPredicate(callerID))
}

// PredicateCount counts occurrences of an explicit row-filter predicate.
func PredicateCount(sql, pred string) int {
	return strings.Count(sql, pred)
}

// HasTimePredicate reports whether sql carries any recognized time bound.
func HasTimePredicate(sql string) bool {
	return timeHintRe.MatchString(sql)
}

func injectOwnership(sql, pred string) string {
	// Existing WHERE: conjoin at the front of the clause.
	if loc := whereRe.FindStringIndex(sql); loc != nil {
		return sql[:loc[1]] + pred + " AND " + sql[loc[1]:]
	}
	// No WHERE but grouping/ordering: the filter must precede it.
	if loc := groupRe.FindStringIndex(sql); loc != nil {
		return sql[:loc[0]] + "WHERE " + pred + " " + sql[loc[0]:]
	}
	// Plain SELECT ... FROM t: attach after the source clause.
	if loc := fromRe.FindStringSubmatchIndex(sql); loc != nil {
		end := loc[3] // end of the table token
		return sql[:end] + " WHERE " + pred + sql[end:]
	}
	return sql + " WHERE " + pred
}

func injectTime(sql string) string {
	clause := "AND " + defaultTimePredicate
	if whereRe.FindStringIndex(sql) == nil {
		clause = "WHERE " + defaultTimePredicate
	}
	if loc := groupRe.FindStringIndex(sql); loc != nil {
		return sql[:loc[0]] + clause + " " + sql[loc[0]:]
	}
	return sql + " " + clause
}

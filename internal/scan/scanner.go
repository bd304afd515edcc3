// Package scan detects sensitive-field exposure in query intents, including
// algebraic paraphrases that reconstruct a restricted formula without naming
// the indicator.
package scan

import (
	"fmt"
	"strings"

	"github.com/acinsight/querygate/internal/catalog"
	"github.com/acinsight/querygate/internal/model"
)

// MarkerFormulaIntent is appended when a paraphrase pattern matches and a
// restricted indicator's fields are implicated. It distinguishes a
// derivation attempt from a naive field mention in audit output.
const MarkerFormulaIntent = "formula_intent"

// Scanner scans intents against one dictionary with a fixed paraphrase
// pattern set. Safe for concurrent use; all state is per-call.
type Scanner struct {
	dict     *catalog.Dictionary
	formulas *PatternSet
}

// New creates a Scanner. A nil patterns argument uses the built-in set.
func New(dict *catalog.Dictionary, formulas *PatternSet) *Scanner {
	if formulas == nil {
		formulas = DefaultPatterns()
	}
	return &Scanner{dict: dict, formulas: formulas}
}

// Scan returns string markers for every sensitive field the intent exposes:
// a bare field name for a direct hit, "key(field)" when the field belongs to
// a restricted indicator the role may not read, "key(formula)" plus
// MarkerFormulaIntent when a paraphrase reconstructs a restricted formula.
// An empty result means no sensitivity was detected. Never errors.
//
// The sibling expansion is iterative: a hit on one field of a restricted
// indicator force-marks the indicator's other fields through a worklist, so
// compound exposure surfaces even when only one operand was named. The
// visited set bounds the walk — each field is processed at most once, making
// the worst case linear in catalog size regardless of how indicators share
// fields.
func (s *Scanner) Scan(intent string, role model.Role) []string {
	lower := strings.ToLower(intent)

	var markers []string
	visited := make(map[string]bool)
	var worklist []string

	// Direct containment pass seeds the worklist in catalog order.
	for _, field := range s.dict.AllFields() {
		if strings.Contains(lower, strings.ToLower(field)) {
			worklist = append(worklist, field)
		}
	}

	for len(worklist) > 0 {
		field := worklist[0]
		worklist = worklist[1:]
		if visited[field] {
			continue
		}
		visited[field] = true
		markers = append(markers, field)

		if role.HasRestrictedAccess() {
			continue
		}
		for _, ind := range s.dict.FieldOwners(field) {
			if ind.Level != model.LevelRestricted {
				continue
			}
			compound := fmt.Sprintf("%s(%s)", ind.Key, field)
			if !visited[compound] {
				visited[compound] = true
				markers = append(markers, compound)
			}
			for _, sibling := range ind.Fields {
				if !visited[sibling] {
					worklist = append(worklist, sibling)
				}
			}
		}
	}

	markers = append(markers, s.formulaMarkers(intent, lower, role)...)
	return markers
}

// formulaMarkers applies the paraphrase pattern set. A marker is emitted
// only when a pattern matches AND a restricted indicator's field co-occurs
// in the text — an arithmetic phrase over public quantities is not an
// evasion attempt.
func (s *Scanner) formulaMarkers(intent, lower string, role model.Role) []string {
	if role.HasRestrictedAccess() {
		return nil
	}
	if !s.formulas.Match(intent) {
		return nil
	}

	var markers []string
	for _, ind := range s.dict.Indicators {
		if ind.Level != model.LevelRestricted {
			continue
		}
		for _, field := range ind.Fields {
			if strings.Contains(lower, strings.ToLower(field)) {
				markers = append(markers, fmt.Sprintf("%s(formula)", ind.Key))
				break
			}
		}
	}
	if len(markers) == 0 {
		return nil
	}
	return append(markers, MarkerFormulaIntent)
}

// HasFormulaIntent reports whether markers contain the formula-intent
// sentinel.
func HasFormulaIntent(markers []string) bool {
	for _, m := range markers {
		if m == MarkerFormulaIntent {
			return true
		}
	}
	return false
}

// ImplicatedKeys extracts the restricted indicator keys named by compound
// and formula markers, in first-seen order.
func ImplicatedKeys(markers []string, dict *catalog.Dictionary) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range markers {
		open := strings.IndexByte(m, '(')
		if open <= 0 || !strings.HasSuffix(m, ")") {
			continue
		}
		key := m[:open]
		if _, ok := dict.Indicator(key); ok && !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

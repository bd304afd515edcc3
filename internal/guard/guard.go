// Package guard scans raw query intents for SQL-injection and
// privilege-probing patterns before any model sees them. Deny-by-default:
// false positives are acceptable, false negatives are not.
package guard

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Rule is one named blacklist pattern. Patterns are compiled
// case-insensitively; any single match fails the scan.
type Rule struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// Guard holds the compiled rule set, applied in order.
type Guard struct {
	rules []Rule
}

// New compiles the given rules into a Guard.
func New(rules []Rule) (*Guard, error) {
	g := &Guard{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("guard rule %q: %w", r.Name, err)
		}
		r.re = re
		g.rules = append(g.rules, r)
	}
	return g, nil
}

// NewDefault creates a Guard with the built-in pattern set.
func NewDefault() *Guard {
	g, err := New(defaultRules)
	if err != nil {
		// Built-in patterns are compile-checked by tests.
		panic(err)
	}
	return g
}

// Load reads extra rules from a YAML file and appends them to the defaults.
// A missing file yields the defaults alone; invalid YAML or an invalid
// pattern is an error, since a silently dropped rule would widen access.
func Load(path string) (*Guard, error) {
	if path == "" {
		return NewDefault(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil
		}
		return nil, fmt.Errorf("read guard rules: %w", err)
	}
	var extra []Rule
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse guard rules: %w", err)
	}
	return New(append(append([]Rule{}, defaultRules...), extra...))
}

// Scan reports whether text is safe. Absence of a match is the only
// success signal; Scan never errors.
func (g *Guard) Scan(text string) bool {
	_, hit := g.Match(text)
	return !hit
}

// Match returns the name of the first rule text trips, for audit reporting.
func (g *Guard) Match(text string) (string, bool) {
	for _, r := range g.rules {
		if r.re.MatchString(text) {
			return r.Name, true
		}
	}
	return "", false
}

// AddRule compiles and appends a rule at runtime.
func (g *Guard) AddRule(r Rule) error {
	re, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return fmt.Errorf("guard rule %q: %w", r.Name, err)
	}
	r.re = re
	g.rules = append(g.rules, r)
	return nil
}

// Rules returns the rule names in evaluation order (for inspection).
func (g *Guard) Rules() []string {
	names := make([]string, len(g.rules))
	for i, r := range g.rules {
		names[i] = r.Name
	}
	return names
}

package scan

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// PatternSet holds the compiled paraphrase patterns. The sample patterns are
// not exhaustive — the set is loadable from a file precisely so new bypass
// phrasings can ship without a code change.
type PatternSet struct {
	patterns []*regexp.Regexp
}

// defaultPatternSources covers the paraphrase shapes seen in red-team
// exercises: two quantities joined by + or -, in symbolic or natural
// language form, with reordered operands, and explicit formula statements.
var defaultPatternSources = []string{
	// Symbolic arithmetic over named prices/costs.
	`单价\s*[-+]\s*成本`,
	`成本\s*[-+]\s*单价`,
	`售价\s*[-+]\s*成本`,
	`进货\s*[-+]\s*售价`,
	`进价\s*[-+]\s*售价`,
	`销售价\s*[-+]\s*进货价`,
	`进货价\s*[-+]\s*销售价`,
	// Explicit formula statements.
	`利润\s*=\s*.*[-+].*`,
	`毛利\s*=\s*.*[-+].*`,
	`收益\s*=\s*.*[-+].*`,
	`盈利\s*=\s*.*[-+].*`,
	`收入\s*-\s*支出`,
	`营收\s*-\s*成本`,
	// Natural-language subtraction, either operand order.
	`(销售.*?[-+减加].*?进货)|(进货.*?[-+减加].*?销售)`,
	`(售价.*?[-+减加].*?进价)|(进价.*?[-+减加].*?售价)`,
	// Profit/loss phrasing over concrete amounts.
	`(赚|亏|赚了|亏了).*\d+.*元`,
	`盈亏.*\d+`,
	// Generic: two CJK or alphanumeric terms joined by an operator.
	`[a-zA-Z0-9\x{4e00}-\x{9fa5}]+\s*[-+]\s*[a-zA-Z0-9\x{4e00}-\x{9fa5}]+`,
}

// DefaultPatterns compiles the built-in paraphrase set.
func DefaultPatterns() *PatternSet {
	ps, err := Compile(defaultPatternSources)
	if err != nil {
		// Built-in patterns are compile-checked by tests.
		panic(err)
	}
	return ps
}

// Compile builds a PatternSet from pattern sources, case-insensitively.
func Compile(sources []string) (*PatternSet, error) {
	ps := &PatternSet{patterns: make([]*regexp.Regexp, 0, len(sources))}
	for _, src := range sources {
		re, err := regexp.Compile("(?i)" + src)
		if err != nil {
			return nil, fmt.Errorf("formula pattern %q: %w", src, err)
		}
		ps.patterns = append(ps.patterns, re)
	}
	return ps, nil
}

// LoadPatterns reads extra patterns from a YAML list and appends them to the
// defaults. Missing file yields the defaults alone.
func LoadPatterns(path string) (*PatternSet, error) {
	if path == "" {
		return DefaultPatterns(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultPatterns(), nil
		}
		return nil, fmt.Errorf("read formula patterns: %w", err)
	}
	var extra []string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse formula patterns: %w", err)
	}
	return Compile(append(append([]string{}, defaultPatternSources...), extra...))
}

// Match reports whether any paraphrase pattern matches the text.
func (ps *PatternSet) Match(text string) bool {
	for _, re := range ps.patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (ps *PatternSet) Len() int { return len(ps.patterns) }

package rewrite

import (
	"regexp"
	"strings"
)

// nullableFields are the numeric columns that may legitimately hold NULL.
// An arithmetic expression over any of them must degrade to zero instead of
// propagating NULL through the whole computation.
var nullableFields = map[string]bool{
	"unit_price":   true,
	"cost_price":   true,
	"quantity":     true,
	"amount":       true,
	"total_amount": true,
	"profit":       true,
	"销售价":          true,
	"进货价":          true,
	"单价":           true,
	"成本":           true,
}

// amountHint marks SUM arguments worth wrapping: anything that names an
// amount-like quantity.
var amountHint = regexp.MustCompile(`(?i)amount|price|profit|quantity|金额|价|成本|毛利`)

// operand matches a bare column reference on either side of an arithmetic
// operator. \w alone is ASCII-only in Go regexp, so the CJK column names in
// nullableFields need the explicit Han range.
const operand = `([\w\x{4e00}-\x{9fa5}]+)`

var (
	sumRe     = regexp.MustCompile(`(?i)\bSUM\s*\(\s*([^()]+?)\s*\)`)
	productRe = regexp.MustCompile(operand + `\s*\*\s*` + operand)
	diffRe    = regexp.MustCompile(operand + `\s*-\s*` + operand)
)

const coalesceOpen = "COALESCE("

// NullSafe wraps arithmetic over nullable numeric fields in
// COALESCE(..., 0). Already-wrapped expressions are left alone, so the
// transformation is idempotent.
func NullSafe(sql string) string {
	out := wrapMatches(sql, sumRe, func(m []string) bool {
		return amountHint.MatchString(m[1])
	})
	out = wrapMatches(out, productRe, func(m []string) bool {
		return nullableFields[m[1]] || nullableFields[m[2]]
	})
	out = wrapMatches(out, diffRe, func(m []string) bool {
		return nullableFields[m[1]] && nullableFields[m[2]]
	})
	return out
}

// wrapMatches rewrites every match of re that eligible accepts and that is
// not already directly inside a COALESCE, replacing it with
// COALESCE(match, 0). Matches are processed right to left so earlier
// indices stay valid.
func wrapMatches(sql string, re *regexp.Regexp, eligible func([]string) bool) string {
	locs := re.FindAllStringSubmatchIndex(sql, -1)
	for i := len(locs) - 1; i >= 0; i-- {
		loc := locs[i]
		start, end := loc[0], loc[1]
		if alreadyWrapped(sql, start) {
			continue
		}
		groups := make([]string, 0, len(loc)/2)
		for g := 0; g < len(loc); g += 2 {
			if loc[g] < 0 {
				groups = append(groups, "")
				continue
			}
			groups = append(groups, sql[loc[g]:loc[g+1]])
		}
		if !eligible(groups) {
			continue
		}
		sql = sql[:start] + coalesceOpen + sql[start:end] + ", 0)" + sql[end:]
	}
	return sql
}

func alreadyWrapped(sql string, start int) bool {
	return start >= len(coalesceOpen) &&
		strings.EqualFold(sql[start-len(coalesceOpen):start], coalesceOpen)
}

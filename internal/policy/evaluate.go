// Package policy decides whether a classified request may proceed, and in
// what form. It is pure: catalog in, decision out, no side effects.
package policy

import (
	"fmt"
	"strings"

	"github.com/acinsight/querygate/internal/catalog"
	"github.com/acinsight/querygate/internal/model"
	"github.com/acinsight/querygate/internal/scan"
)

// Evaluate computes the allow/deny/partial decision for one request.
//
// Rule: an indicator is blocked iff its level is L1 and the role lacks
// restricted access; L0 indicators are always allowed. Sensitive markers
// implicate indicators the classifier never saw (a paraphrase names fields,
// not indicators), so their keys join the blocked set.
//
// Outcomes (must not be reordered):
//  1. Allowed and blocked both present — atomic partial decision at L0:
//     the caller executes only the allowed subset.
//  2. Blocked only — hard deny at L1; a formula-intent marker upgrades the
//     message to state that a derivation of restricted data was attempted.
//  3. Neither — fully allowed; the orchestrator applies the rewrite.
func Evaluate(dict *catalog.Dictionary, classified, markers []string, role model.Role) model.Decision {
	blockedKeys := restrictedKeys(dict, classified, role)
	for _, key := range scan.ImplicatedKeys(markers, dict) {
		if !containsString(blockedKeys, key) && isRestricted(dict, key, role) {
			blockedKeys = append(blockedKeys, key)
		}
	}

	var allowedNames []string
	for _, key := range classified {
		if !containsString(blockedKeys, key) {
			allowedNames = append(allowedNames, displayName(dict, key))
		}
	}
	blockedNames := make([]string, 0, len(blockedKeys))
	for _, key := range blockedKeys {
		blockedNames = append(blockedNames, displayName(dict, key))
	}

	switch {
	case len(allowedNames) > 0 && len(blockedNames) > 0:
		return partialDecision(allowedNames, blockedNames)
	case len(blockedNames) > 0:
		return denyDecision(dict, blockedKeys, blockedNames, markers)
	default:
		// Fully allowed; rewritten query is filled in by the orchestrator.
		return model.AllowedFull("")
	}
}

func partialDecision(allowed, blocked []string) model.Decision {
	rewritten := fmt.Sprintf("安全查询：仅处理 %s，已屏蔽 %s",
		strings.Join(allowed, "、"), strings.Join(blocked, "、"))
	return model.AllowedPartial(rewritten, allowed, blocked, model.Partial{
		AllowedQuery: fmt.Sprintf("允许查询：%s", strings.Join(allowed, "、")),
		BlockedQuery: fmt.Sprintf("已屏蔽：%s", strings.Join(blocked, "、")),
		Suggestion:   fmt.Sprintf("建议仅查询 %s 等公开指标", strings.Join(allowed, "、")),
	})
}

func denyDecision(dict *catalog.Dictionary, keys, names, markers []string) model.Decision {
	var messages []string
	for _, key := range keys {
		ind, ok := dict.Indicator(key)
		if !ok {
			continue
		}
		msg := ind.DenialMessage
		if msg == "" {
			msg = fmt.Sprintf("%s涉及敏感数据，需 Admin 权限", ind.Name)
		}
		messages = append(messages, msg)
	}
	joined := strings.Join(messages, "；")

	if scan.HasFormulaIntent(markers) {
		return model.DeniedWithSuggestion(
			model.LevelRestricted,
			fmt.Sprintf("检测到变相计算敏感数据的意图：%s", joined),
			"如需查看相关数据，请申请 Admin 权限",
			names,
		)
	}
	return model.Denied(model.LevelRestricted, joined, names)
}

func restrictedKeys(dict *catalog.Dictionary, classified []string, role model.Role) []string {
	var keys []string
	for _, key := range classified {
		if isRestricted(dict, key, role) {
			keys = append(keys, key)
		}
	}
	return keys
}

func isRestricted(dict *catalog.Dictionary, key string, role model.Role) bool {
	if role.HasRestrictedAccess() {
		return false
	}
	ind, ok := dict.Indicator(key)
	return ok && ind.Level == model.LevelRestricted
}

func displayName(dict *catalog.Dictionary, key string) string {
	if ind, ok := dict.Indicator(key); ok {
		return ind.Name
	}
	return key
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

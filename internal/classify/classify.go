// Package classify maps free-text query intents to known indicator keys.
package classify

import (
	"strings"

	"github.com/acinsight/querygate/internal/catalog"
)

// Classify returns the keys of every catalog indicator whose display name or
// any synonym appears in the intent text, matched case-insensitively by
// containment. Keys come back in catalog order. An empty result only means
// no indicator was named explicitly — paraphrase detection is the scanner's
// job, not ours.
func Classify(intent string, dict *catalog.Dictionary) []string {
	lower := strings.ToLower(intent)

	var keys []string
	for _, ind := range dict.Indicators {
		if matches(lower, ind) {
			keys = append(keys, ind.Key)
		}
	}
	return keys
}

func matches(lowerIntent string, ind catalog.Indicator) bool {
	if strings.Contains(lowerIntent, strings.ToLower(ind.Name)) {
		return true
	}
	for _, syn := range ind.Synonyms {
		if strings.Contains(lowerIntent, strings.ToLower(syn)) {
			return true
		}
	}
	return false
}

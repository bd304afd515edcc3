package intercept

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/acinsight/querygate/internal/identity"
	"github.com/acinsight/querygate/internal/model"
	"github.com/acinsight/querygate/internal/rewrite"
)

// ErrRewriteInvariant is returned when the rewritten statement does not
// carry the caller's ownership predicate exactly once. It should never
// trigger; when it does, the statement must not be executed.
var ErrRewriteInvariant = errors.New("rewrite: ownership predicate must appear exactly once")

// RewriteSQL is the second entry point: the intent already became SQL and
// the statement itself needs the security constraints. Every role gets row
// scoping, the default time range and null safety — the executing side
// checks for the ownership predicate before running anything, Admin
// included, so an unscoped statement would be refused there anyway. A
// caller-supplied row filter replaces the default owner_id binding.
func (ic *Interceptor) RewriteSQL(sqlText string, caller model.Caller) (string, error) {
	if strings.TrimSpace(sqlText) == "" {
		return "", errors.New("rewrite: empty statement")
	}
	if _, ok := model.ParseRole(string(caller.Role)); !ok {
		return "", fmt.Errorf("rewrite: unknown role %q", caller.Role)
	}

	// The ID lands inside a string literal in the predicate, so its shape
	// is checked here even though the frontend already validated it.
	if !identity.ValidID(caller.ID) {
		return "", fmt.Errorf("rewrite: invalid caller id %q", caller.ID)
	}

	pred := rewrite.OwnershipPredicate(caller.ID)
	if caller.RowFilter != "" {
		if !identity.ValidRowFilter(caller.RowFilter) {
			return "", fmt.Errorf("rewrite: malformed row filter %q", caller.RowFilter)
		}
		pred = caller.RowFilter
	}

	out := rewrite.SQLWithPredicate(sqlText, pred)
	if n := rewrite.PredicateCount(out, pred); n != 1 {
		ic.logger.Error("ownership predicate count off after rewrite",
			zap.Int("count", n),
			zap.String("caller_id", caller.ID),
			zap.String("predicate", pred))
		return "", ErrRewriteInvariant
	}
	return out, nil
}

// Package identity resolves the caller a request is evaluated for. The
// gateway trusts its frontend to authenticate; here we only validate shape
// and map the claims onto the role model, failing closed on anything
// unrecognized.
package identity

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/acinsight/querygate/internal/model"
)

// Request headers carrying the caller's claims.
const (
	HeaderUserID     = "X-User-ID"
	HeaderUserRole   = "X-User-Role"
	HeaderRowFilter  = "X-Row-Filter"
	HeaderDepartment = "X-Department"
)

var (
	callerIDRe  = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	rowFilterRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*\s*=\s*'[a-zA-Z0-9_]{3,20}'$`)
)

// ValidID reports whether id is a well-formed caller ID. The restriction to
// word characters matters downstream: the ID is interpolated into the
// ownership predicate, so it must never be able to carry SQL syntax.
func ValidID(id string) bool {
	return callerIDRe.MatchString(id)
}

// ValidRowFilter reports whether f is a well-formed row-filter predicate:
// a single column = 'value' equality, nothing else. The filter is injected
// into generated SQL verbatim, so any other shape is rejected.
func ValidRowFilter(f string) bool {
	return rowFilterRe.MatchString(f)
}

// ExtractCaller builds the caller identity from request headers.
// Missing or malformed claims are errors, never defaults.
func ExtractCaller(r *http.Request) (model.Caller, error) {
	id := r.Header.Get(HeaderUserID)
	if !ValidID(id) {
		return model.Caller{}, fmt.Errorf("identity: invalid caller id %q", id)
	}

	role, ok := model.ParseRole(r.Header.Get(HeaderUserRole))
	if !ok {
		return model.Caller{}, fmt.Errorf("identity: unknown role %q", r.Header.Get(HeaderUserRole))
	}

	rowFilter := r.Header.Get(HeaderRowFilter)
	if rowFilter != "" && !ValidRowFilter(rowFilter) {
		return model.Caller{}, fmt.Errorf("identity: malformed row filter %q", rowFilter)
	}

	return model.Caller{
		Role:       role,
		ID:         id,
		RowFilter:  rowFilter,
		Department: r.Header.Get(HeaderDepartment),
	}, nil
}

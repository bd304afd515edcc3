package rewrite

import (
	"fmt"
	"regexp"

	"github.com/acinsight/querygate/internal/model"
)

// Intent-level annotations. The intent has not become SQL yet, so the same
// three concerns are expressed as instructions the generator must honor
// rather than as SQL syntax.

var intentTimeRe = regexp.MustCompile(`(?i)今天|昨天|本周|本月|上月|近\d+天|本季度|本年度|last\s+\d+\s+days?|this\s+month|last\s+month`)

const (
	scopePrefix = "仅查询用户 %s 名下的数据："
	timePrefix  = "默认时间范围（%s）："
)

var (
	scopeMarkRe = regexp.MustCompile(`仅查询用户 .+ 名下的数据：`)
	timeMarkRe  = regexp.MustCompile(`默认时间范围（.+）：`)
)

// Intent rewrites a query intent with the caller's security constraints and
// returns the annotated text plus the security notes applied, for the audit
// trail. Idempotent: annotations already present are not repeated.
func Intent(intent string, caller model.Caller) (string, []string) {
	out := intent
	var notes []string

	if caller.Role != model.RoleAdmin && !scopeMarkRe.MatchString(out) {
		out = fmt.Sprintf(scopePrefix, caller.ID) + out
		notes = append(notes, fmt.Sprintf("已注入行级权限过滤：%s = %s", OwnerColumn, caller.ID))
	}

	if !intentTimeRe.MatchString(out) && !timeMarkRe.MatchString(out) {
		out = fmt.Sprintf(timePrefix, DefaultTimeRange) + out
		notes = append(notes, fmt.Sprintf("已添加默认时间范围：%s", DefaultTimeRange))
	}

	return out, notes
}

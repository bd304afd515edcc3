// Package intercept runs the full interception pipeline: injection guard,
// intent classification, sensitive-field scan, policy evaluation and query
// rewrite, in that order. Fail-closed: any internal failure yields a denial,
// never a pass-through.
package intercept

import (
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/acinsight/querygate/internal/alert"
	"github.com/acinsight/querygate/internal/audit"
	"github.com/acinsight/querygate/internal/catalog"
	"github.com/acinsight/querygate/internal/classify"
	"github.com/acinsight/querygate/internal/guard"
	"github.com/acinsight/querygate/internal/identity"
	"github.com/acinsight/querygate/internal/model"
	"github.com/acinsight/querygate/internal/policy"
	"github.com/acinsight/querygate/internal/rewrite"
	"github.com/acinsight/querygate/internal/scan"
)

// User-facing denial messages for pipeline-level rejections. Indicator-level
// denials carry their own messages from the catalog.
const (
	DenyUnsafe   = "查询包含不安全的内容，已被系统拦截"
	DenyEmpty    = "查询内容为空，已拒绝"
	DenyRole     = "无法识别的用户角色，已拒绝查询"
	DenyInternal = "系统内部错误，查询已被安全拦截"
)

// Request is one intent to intercept. An empty TraceID gets one generated.
// SessionID is optional: the serving layers set it to correlate a caller's
// requests across traces in the audit log.
type Request struct {
	Intent    string       `json:"intent"`
	Caller    model.Caller `json:"caller"`
	TraceID   string       `json:"trace_id,omitempty"`
	SessionID string       `json:"session_id,omitempty"`
}

// Options carries the optional collaborators of an Interceptor.
// Zero values are usable: default guard, built-in paraphrase patterns,
// no audit log, no alerts, no-op logger.
type Options struct {
	Guard    *guard.Guard
	Patterns *scan.PatternSet
	Audit    *audit.Log
	Alerts   *alert.Dispatcher
	Logger   *zap.Logger
}

// Interceptor evaluates requests against the active catalog version.
// Safe for concurrent use: the catalog, guard rules and paraphrase patterns
// are all read through atomic pointers so the hot-reloader can swap any of
// them mid-flight, and all per-request state lives on the stack.
type Interceptor struct {
	store    *catalog.Store
	guard    atomic.Pointer[guard.Guard]
	patterns atomic.Pointer[scan.PatternSet]
	auditLog *audit.Log
	alerts   *alert.Dispatcher
	logger   *zap.Logger
}

// New creates an Interceptor over the given catalog store.
func New(store *catalog.Store, opts Options) *Interceptor {
	g := opts.Guard
	if g == nil {
		g = guard.NewDefault()
	}
	patterns := opts.Patterns
	if patterns == nil {
		patterns = scan.DefaultPatterns()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ic := &Interceptor{
		store:    store,
		auditLog: opts.Audit,
		alerts:   opts.Alerts,
		logger:   logger,
	}
	ic.guard.Store(g)
	ic.patterns.Store(patterns)
	return ic
}

// SwapGuard publishes a new guard rule set. In-flight requests finish with
// the set they started with.
func (ic *Interceptor) SwapGuard(g *guard.Guard) {
	if g != nil {
		ic.guard.Store(g)
	}
}

// SwapPatterns publishes a new paraphrase pattern set.
func (ic *Interceptor) SwapPatterns(ps *scan.PatternSet) {
	if ps != nil {
		ic.patterns.Store(ps)
	}
}

// Intercept runs the pipeline for one request and returns the decision.
// It never returns an error and never panics outward: anything that goes
// wrong inside the pipeline is converted into an L1 denial.
func (ic *Interceptor) Intercept(req Request) (decision model.Decision) {
	if req.TraceID == "" {
		req.TraceID = identity.NewTraceID()
	}
	trail := []model.Stage{model.StageReceived}

	defer func() {
		if r := recover(); r != nil {
			ic.logger.Error("interception pipeline panic",
				zap.Any("panic", r),
				zap.String("trace_id", req.TraceID))
			decision = model.Denied(model.LevelRestricted, DenyInternal, nil)
			decision.Trail = append(trail, model.StageDenied)
			ic.record(req, decision)
		}
	}()

	if strings.TrimSpace(req.Intent) == "" {
		return ic.deny(req, trail, DenyEmpty)
	}
	if _, ok := model.ParseRole(string(req.Caller.Role)); !ok {
		return ic.deny(req, trail, DenyRole)
	}

	g := ic.guard.Load()
	if !g.Scan(req.Intent) {
		rule, _ := g.Match(req.Intent)
		ic.logger.Warn("injection pattern matched",
			zap.String("rule", rule),
			zap.String("trace_id", req.TraceID))
		return ic.deny(req, trail, DenyUnsafe)
	}
	trail = append(trail, model.StageInjectionChecked)

	dict := ic.store.Get()
	classified := classify.Classify(req.Intent, dict)
	trail = append(trail, model.StageClassified)

	markers := scan.New(dict, ic.patterns.Load()).Scan(req.Intent, req.Caller.Role)
	trail = append(trail, model.StageScanned)

	decision = policy.Evaluate(dict, classified, markers, req.Caller.Role)
	trail = append(trail, model.StageDecided)

	switch decision.Outcome {
	case model.OutcomeAllowed:
		annotated, notes := rewrite.Intent(req.Intent, req.Caller)
		decision.RewrittenQuery = annotated
		trail = append(trail, model.StageRewritten)
		ic.logger.Debug("intent rewritten",
			zap.Strings("notes", notes),
			zap.String("trace_id", req.TraceID))
	case model.OutcomeAllowedPartial:
		trail = append(trail, model.StageRewritten)
	default:
		trail = append(trail, model.StageDenied)
	}

	decision.Trail = trail
	ic.record(req, decision)
	return decision
}

func (ic *Interceptor) deny(req Request, trail []model.Stage, message string) model.Decision {
	d := model.Denied(model.LevelRestricted, message, nil)
	d.Trail = append(trail, model.StageDenied)
	ic.record(req, d)
	return d
}

// record writes the audit entry and fans out alerts. Both collaborators are
// optional; an audit write failure is logged but does not change the
// decision, which has already been made.
func (ic *Interceptor) record(req Request, d model.Decision) {
	reason := d.DenialMessage
	if reason == "" && d.Partial != nil {
		reason = d.Partial.BlockedQuery
	}

	if ic.auditLog != nil {
		err := ic.auditLog.Record(audit.AuditEntry{
			TraceID:       req.TraceID,
			SessionID:     req.SessionID,
			Caller:        audit.AuditCaller{Role: string(req.Caller.Role), ID: req.Caller.ID},
			Intent:        req.Intent,
			Outcome:       string(d.Outcome),
			SecurityLevel: string(d.SecurityLevel),
			Reason:        reason,
			BlockedFields: d.BlockedFields,
			CatalogHash:   ic.store.Hash(),
		})
		if err != nil {
			ic.logger.Error("audit write failed", zap.Error(err), zap.String("trace_id", req.TraceID))
		}
	}

	if ic.alerts != nil {
		ic.alerts.Dispatch(alert.AlertEvent{
			Timestamp:     identity.UTCNowISO(),
			TraceID:       req.TraceID,
			CallerRole:    string(req.Caller.Role),
			CallerID:      req.Caller.ID,
			Intent:        req.Intent,
			Outcome:       string(d.Outcome),
			Reason:        reason,
			SecurityLevel: string(d.SecurityLevel),
			BlockedFields: d.BlockedFields,
			CatalogHash:   ic.store.Hash(),
		})
	}
}

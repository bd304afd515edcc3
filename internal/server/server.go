// Package server exposes the interception pipeline over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/acinsight/querygate/internal/alert"
	"github.com/acinsight/querygate/internal/audit"
	"github.com/acinsight/querygate/internal/catalog"
	"github.com/acinsight/querygate/internal/guard"
	"github.com/acinsight/querygate/internal/identity"
	"github.com/acinsight/querygate/internal/intercept"
	"github.com/acinsight/querygate/internal/scan"
)

// Config holds HTTP server configuration. An empty CatalogPath serves the
// built-in catalog.
type Config struct {
	Addr            string
	CatalogPath     string
	GuardRulesPath  string
	PatternsPath    string
	AlertConfigPath string
	AuditLogPath    string
}

// Server wires the catalog store, interceptor and HTTP surface together.
type Server struct {
	store       *catalog.Store
	interceptor *intercept.Interceptor
	auditLog    *audit.Log
	logger      *zap.Logger
	cfg         Config

	sessionsMu sync.Mutex
	sessions   map[string]*identity.Session

	httpServer *http.Server
}

// New creates a server with the catalog, guard rules and paraphrase
// patterns loaded from the configured paths.
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var store *catalog.Store
	if cfg.CatalogPath != "" {
		var err error
		store, err = catalog.Open(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	} else {
		store = catalog.NewStore(catalog.Default(), catalog.DefaultHash())
	}

	g, err := guard.Load(cfg.GuardRulesPath)
	if err != nil {
		return nil, fmt.Errorf("load guard rules: %w", err)
	}

	patterns, err := scan.LoadPatterns(cfg.PatternsPath)
	if err != nil {
		return nil, fmt.Errorf("load paraphrase patterns: %w", err)
	}

	alertConfigs, err := alert.LoadConfigs(cfg.AlertConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load alert config: %w", err)
	}

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
	}

	s := &Server{
		store:    store,
		auditLog: auditLog,
		logger:   logger,
		cfg:      cfg,
		sessions: make(map[string]*identity.Session),
	}
	s.interceptor = intercept.New(store, intercept.Options{
		Guard:    g,
		Patterns: patterns,
		Audit:    auditLog,
		Alerts:   alert.NewDispatcher(alertConfigs),
		Logger:   logger,
	})
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the route table. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/intercept", s.handleIntercept)
	mux.HandleFunc("POST /v1/rewrite", s.handleRewrite)
	mux.HandleFunc("GET /v1/catalog", s.handleCatalog)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

// Serve starts the HTTP server. Blocks until Shutdown or failure.
func (s *Server) Serve() error {
	s.logger.Info("listening", zap.String("addr", s.cfg.Addr))
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Close cleans up resources.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

// sessionFor returns the caller's active session, creating one on first
// contact. The session ID lands in every audit entry the caller produces,
// correlating requests across traces.
func (s *Server) sessionFor(callerID string) *identity.Session {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	if sess, ok := s.sessions[callerID]; ok {
		return sess
	}
	sess := identity.NewSession(callerID)
	s.sessions[callerID] = sess
	return sess
}

// ReloadCatalog swaps in the catalog file's current contents. Called by the
// hot-reloader on file change; a failed parse keeps the running version.
func (s *Server) ReloadCatalog() error {
	if err := s.store.Reload(); err != nil {
		return err
	}
	s.logger.Info("catalog reloaded", zap.String("hash", s.store.Hash()))
	return nil
}

// ReloadGuardRules re-reads the guard rule file and swaps the compiled set
// into the interceptor. A parse or compile failure keeps the running rules.
func (s *Server) ReloadGuardRules() error {
	g, err := guard.Load(s.cfg.GuardRulesPath)
	if err != nil {
		return err
	}
	s.interceptor.SwapGuard(g)
	s.logger.Info("guard rules reloaded")
	return nil
}

// ReloadPatterns re-reads the paraphrase pattern file and swaps the
// compiled set into the interceptor.
func (s *Server) ReloadPatterns() error {
	ps, err := scan.LoadPatterns(s.cfg.PatternsPath)
	if err != nil {
		return err
	}
	s.interceptor.SwapPatterns(ps)
	s.logger.Info("paraphrase patterns reloaded")
	return nil
}

// ReloadPath reloads whichever policy input the changed file backs. The
// hot-reloader calls this with the path it saw change.
func (s *Server) ReloadPath(path string) error {
	switch path {
	case s.cfg.CatalogPath:
		return s.ReloadCatalog()
	case s.cfg.GuardRulesPath:
		return s.ReloadGuardRules()
	case s.cfg.PatternsPath:
		return s.ReloadPatterns()
	default:
		return fmt.Errorf("no reloadable config backed by %q", path)
	}
}

type interceptRequest struct {
	Intent  string `json:"intent"`
	TraceID string `json:"trace_id,omitempty"`
}

func (s *Server) handleIntercept(w http.ResponseWriter, r *http.Request) {
	caller, err := identity.ExtractCaller(r)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, err)
		return
	}

	var req interceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	sess := s.sessionFor(caller.ID)
	decision := s.interceptor.Intercept(intercept.Request{
		Intent:    req.Intent,
		Caller:    caller,
		TraceID:   req.TraceID,
		SessionID: sess.SessionID,
	})

	s.logger.Info("intercepted",
		zap.String("outcome", string(decision.Outcome)),
		zap.String("role", string(caller.Role)),
		zap.String("caller_id", caller.ID),
		zap.String("session_id", sess.SessionID))
	s.writeJSON(w, http.StatusOK, decision)
}

type rewriteRequest struct {
	SQL string `json:"sql"`
}

type rewriteResponse struct {
	SQL string `json:"sql"`
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	caller, err := identity.ExtractCaller(r)
	if err != nil {
		s.writeError(w, http.StatusUnauthorized, err)
		return
	}

	var req rewriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	out, err := s.interceptor.RewriteSQL(req.SQL, caller)
	if err != nil {
		if errors.Is(err, intercept.ErrRewriteInvariant) {
			// Invariant breach means the statement must not run.
			s.writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rewriteResponse{SQL: out})
}

type catalogResponse struct {
	Hash       string              `json:"hash"`
	Indicators []catalog.Indicator `json:"indicators"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	dict := s.store.Get()
	s.writeJSON(w, http.StatusOK, catalogResponse{
		Hash:       s.store.Hash(),
		Indicators: dict.Indicators,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":       "ok",
		"catalog_hash": s.store.Hash(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

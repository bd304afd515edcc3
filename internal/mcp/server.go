// Package mcp exposes the interception pipeline as MCP tools over stdio,
// for NL2SQL agents that speak the Model Context Protocol instead of HTTP.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/acinsight/querygate/internal/alert"
	"github.com/acinsight/querygate/internal/audit"
	"github.com/acinsight/querygate/internal/catalog"
	"github.com/acinsight/querygate/internal/guard"
	"github.com/acinsight/querygate/internal/identity"
	"github.com/acinsight/querygate/internal/intercept"
	"github.com/acinsight/querygate/internal/model"
	"github.com/acinsight/querygate/internal/scan"
)

// Config holds MCP server configuration. Role and UserID identify the
// caller for the whole stdio session: one MCP client, one caller.
type Config struct {
	Role            string
	UserID          string
	CatalogPath     string
	GuardRulesPath  string
	PatternsPath    string
	AlertConfigPath string
	AuditLogPath    string
}

// Server wraps the MCP SDK server around the interceptor.
type Server struct {
	mcpServer   *mcpsdk.Server
	interceptor *intercept.Interceptor
	checker     *intercept.Interceptor // same pipeline, no audit/alerts
	caller      model.Caller
	session     *identity.Session
	store       *catalog.Store
	auditLog    *audit.Log
}

// New creates an MCP server with the catalog, guard rules and patterns
// loaded from the configured paths.
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	role, ok := model.ParseRole(cfg.Role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q", cfg.Role)
	}
	if !identity.ValidID(cfg.UserID) {
		return nil, fmt.Errorf("invalid user id %q", cfg.UserID)
	}
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

	// One stdio session is one caller; every audit entry it produces
	// carries the same session ID.
	s := &Server{
		caller:   model.Caller{Role: role, ID: cfg.UserID},
		session:  identity.NewSession(cfg.UserID),
		store:    store,
		auditLog: auditLog,
	}
	s.interceptor = intercept.New(store, intercept.Options{
		Guard:    g,
		Patterns: patterns,
		Audit:    auditLog,
		Alerts:   alert.NewDispatcher(alertConfigs),
		Logger:   logger,
	})
	s.checker = intercept.New(store, intercept.Options{
		Guard:    g,
		Patterns: patterns,
		Logger:   logger,
	})

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "querygate",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the audit log if configured.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

// registerTools adds all querygate tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "querygate_intercept",
		Description: "Run a query intent through security interception. Returns the rewritten safe intent, or the denial with its reason.",
	}, s.handleIntercept)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "querygate_rewrite_sql",
		Description: "Apply row scoping, default time range and null safety to a generated SQL statement. The result is what must be executed.",
	}, s.handleRewriteSQL)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "querygate_check",
		Description: "Check what decision an intent would get without recording it (dry-run).",
	}, s.handleCheck)
}

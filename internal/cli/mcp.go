package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gatemcp "github.com/acinsight/querygate/internal/mcp"
)

var (
	mcpRole     string
	mcpUser     string
	mcpCatalog  string
	mcpGuard    string
	mcpPatterns string
	mcpAlerts   string
	mcpAuditLog string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpRole, "role", "", "Caller role for this session (Admin|Manager|Sales)")
	mcpCmd.Flags().StringVar(&mcpUser, "user", "", "Caller user ID for this session")
	mcpCmd.Flags().StringVar(&mcpCatalog, "catalog", "", "Path to catalog YAML (default: built-in)")
	mcpCmd.Flags().StringVar(&mcpGuard, "guard-rules", "", "Path to extra guard rules YAML")
	mcpCmd.Flags().StringVar(&mcpPatterns, "patterns", "", "Path to extra paraphrase patterns YAML")
	mcpCmd.Flags().StringVar(&mcpAlerts, "alerts", "", "Path to webhook alert config YAML")
	mcpCmd.Flags().StringVar(&mcpAuditLog, "audit-log", "", "Path to audit log JSONL file")
	mcpCmd.MarkFlagRequired("role")
	mcpCmd.MarkFlagRequired("user")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs querygate as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes interception tools: intercept, rewrite_sql, check.\n" +
		"The session is bound to one caller identity given by --role and --user.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	cfg := gatemcp.Config{
		Role:            mcpRole,
		UserID:          mcpUser,
		CatalogPath:     mcpCatalog,
		GuardRulesPath:  mcpGuard,
		PatternsPath:    mcpPatterns,
		AlertConfigPath: mcpAlerts,
		AuditLogPath:    mcpAuditLog,
	}

	srv, err := gatemcp.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create MCP server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "querygate MCP server running on stdio (role=%s user=%s)\n", mcpRole, mcpUser)
	return srv.Run(ctx)
}

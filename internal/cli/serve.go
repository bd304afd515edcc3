package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acinsight/querygate/internal/server"
)

var (
	serveAddr     string
	serveCatalog  string
	serveGuard    string
	servePatterns string
	serveAlerts   string
	serveAuditLog string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "HTTP listen address")
	serveCmd.Flags().StringVar(&serveCatalog, "catalog", "", "Path to catalog YAML (default: built-in)")
	serveCmd.Flags().StringVar(&serveGuard, "guard-rules", "", "Path to extra guard rules YAML")
	serveCmd.Flags().StringVar(&servePatterns, "patterns", "", "Path to extra paraphrase patterns YAML")
	serveCmd.Flags().StringVar(&serveAlerts, "alerts", "", "Path to webhook alert config YAML")
	serveCmd.Flags().StringVar(&serveAuditLog, "audit-log", "", "Path to audit log JSONL file")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP interception server",
	Long: "Runs querygate as an HTTP JSON API between NL2SQL agents and the\n" +
		"database. Supports hot-reload of the catalog, guard rule and\n" +
		"paraphrase pattern files.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	cfg := server.Config{
		Addr:            serveAddr,
		CatalogPath:     serveCatalog,
		GuardRulesPath:  serveGuard,
		PatternsPath:    servePatterns,
		AlertConfigPath: serveAlerts,
		AuditLogPath:    serveAuditLog,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloader, err := server.NewReloader(srv, logger, []string{serveCatalog, serveGuard, servePatterns})
	if err != nil {
		logger.Warn("hot-reload disabled", zap.Error(err))
	} else {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	return srv.Serve()
}

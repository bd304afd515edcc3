package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "querygate",
	Short: "Security interception gateway for NL2SQL queries",
	Long: "Intercepts natural-language query intents before SQL generation and\n" +
		"generated SQL before execution: role-based permission checks,\n" +
		"sensitive-field and paraphrase detection, injection guarding, and\n" +
		"fail-closed query rewriting.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acinsight/querygate/internal/catalog"
	"github.com/acinsight/querygate/internal/guard"
	"github.com/acinsight/querygate/internal/intercept"
	"github.com/acinsight/querygate/internal/model"
	"github.com/acinsight/querygate/internal/scan"
)

var (
	checkRole     string
	checkUser     string
	checkCatalog  string
	checkGuard    string
	checkPatterns string
	checkFormat   string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkRole, "role", "Sales", "Caller role (Admin|Manager|Sales)")
	checkCmd.Flags().StringVar(&checkUser, "user", "cli_user", "Caller user ID")
	checkCmd.Flags().StringVar(&checkCatalog, "catalog", "", "Path to catalog YAML (default: built-in)")
	checkCmd.Flags().StringVar(&checkGuard, "guard-rules", "", "Path to extra guard rules YAML")
	checkCmd.Flags().StringVar(&checkPatterns, "patterns", "", "Path to extra paraphrase patterns YAML")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
}

var checkCmd = &cobra.Command{
	Use:   "check <intent>",
	Short: "Run one intent through the interception pipeline",
	Long: "Evaluates a query intent for the given role and prints the decision.\n" +
		"Nothing is audited or alerted — this is a dry-run.\n\n" +
		"Exit code 0 for allowed or partial decisions, 1 for denials.\n" +
		"Use in CI to gate catalog changes on expected decisions.",
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	ic, err := buildInterceptor(checkCatalog, checkGuard, checkPatterns)
	if err != nil {
		return err
	}

	d := ic.Intercept(intercept.Request{
		Intent: args[0],
		Caller: model.Caller{Role: model.Role(checkRole), ID: checkUser},
	})

	switch checkFormat {
	case "json":
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		printDecision(d)
	}

	if d.Outcome == model.OutcomeDenied {
		os.Exit(1)
	}
	return nil
}

func buildInterceptor(catalogPath, guardPath, patternsPath string) (*intercept.Interceptor, error) {
	var store *catalog.Store
	if catalogPath != "" {
		var err error
		store, err = catalog.Open(catalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	} else {
		store = catalog.NewStore(catalog.Default(), catalog.DefaultHash())
	}

	g, err := guard.Load(guardPath)
	if err != nil {
		return nil, fmt.Errorf("load guard rules: %w", err)
	}
	patterns, err := scan.LoadPatterns(patternsPath)
	if err != nil {
		return nil, fmt.Errorf("load paraphrase patterns: %w", err)
	}

	return intercept.New(store, intercept.Options{Guard: g, Patterns: patterns}), nil
}

func printDecision(d model.Decision) {
	fmt.Printf("outcome:  %s\n", d.Outcome)
	fmt.Printf("level:    %s\n", d.SecurityLevel)
	if d.RewrittenQuery != "" {
		fmt.Printf("rewritten: %s\n", d.RewrittenQuery)
	}
	if d.DenialMessage != "" {
		fmt.Printf("denial:   %s\n", d.DenialMessage)
	}
	if len(d.BlockedFields) > 0 {
		fmt.Printf("blocked:  %s\n", strings.Join(d.BlockedFields, ", "))
	}
	if len(d.AllowedFields) > 0 {
		fmt.Printf("allowed:  %s\n", strings.Join(d.AllowedFields, ", "))
	}
	if d.Partial != nil && d.Partial.Suggestion != "" {
		fmt.Printf("suggest:  %s\n", d.Partial.Suggestion)
	}
}

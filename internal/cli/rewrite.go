package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acinsight/querygate/internal/model"
)

var (
	rewriteRole string
	rewriteUser string
)

func init() {
	rootCmd.AddCommand(rewriteCmd)
	rewriteCmd.Flags().StringVar(&rewriteRole, "role", "Sales", "Caller role (Admin|Manager|Sales)")
	rewriteCmd.Flags().StringVar(&rewriteUser, "user", "cli_user", "Caller user ID")
}

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <sql>",
	Short: "Apply security constraints to a SQL statement",
	Long: "Injects the caller's row-scope predicate, the default time range and\n" +
		"null-safe aggregation into a generated SQL statement, and prints the\n" +
		"result. The rewrite is idempotent.",
	Args: cobra.ExactArgs(1),
	RunE: runRewrite,
}

func runRewrite(cmd *cobra.Command, args []string) error {
	ic, err := buildInterceptor("", "", "")
	if err != nil {
		return err
	}

	out, err := ic.RewriteSQL(args[0], model.Caller{Role: model.Role(rewriteRole), ID: rewriteUser})
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

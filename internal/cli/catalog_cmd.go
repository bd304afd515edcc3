package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acinsight/querygate/internal/catalog"
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Semantic dictionary operations",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print the indicators of a catalog file (or the built-in one)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogShow,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Validate a catalog file",
	Long:  "Parses and validates a catalog YAML file. Exits non-zero with the\nfirst validation error, so it can gate catalog deploys in CI.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogValidate,
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	var dict *catalog.Dictionary
	var hash string
	if len(args) == 1 {
		var err error
		dict, hash, err = catalog.LoadWithHash(args[0])
		if err != nil {
			return err
		}
	} else {
		dict, hash = catalog.Default(), catalog.DefaultHash()
	}

	fmt.Printf("version: %s\nhash:    %s\n\n", dict.Version, hash)
	for _, ind := range dict.Indicators {
		fmt.Printf("%-14s %-8s %s  [%s]\n", ind.Key, ind.Level, ind.Name, strings.Join(ind.Fields, ", "))
	}
	return nil
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	dict, _, err := catalog.LoadWithHash(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("OK: %d indicators\n", len(dict.Indicators))
	return nil
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/acinsight/querygate/internal/catalog"
)

func init() {
	rootCmd.AddCommand(initCatalogCmd)
}

var initCatalogCmd = &cobra.Command{
	Use:   "init-catalog",
	Short: "Generate default catalog.yaml with comments",
	Long:  "Creates ~/.querygate/catalog.yaml with the built-in indicators.\nEdit this file to define your own indicators and sensitivity levels.",
	RunE:  runInitCatalog,
}

func runInitCatalog(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}

	dir := filepath.Join(home, ".querygate")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	path := filepath.Join(dir, "catalog.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("catalog.yaml already exists at %s", path)
	}

	if err := os.WriteFile(path, []byte(catalog.DefaultYAML()), 0644); err != nil {
		return fmt.Errorf("failed to write catalog.yaml: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	return nil
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/praetorian-inc/scanutil/pkg/types"
	"github.com/spf13/cobra"
)

var (
	rulesPath    string
	rulesFormat  string
	rulesInclude string
	rulesExclude string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage signatures",
	Long:  "Inspect the signature catalog used by scan and check",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available signatures",
	Long:  "Display the signature catalog with IDs, names, categories and extensions",
	Args:  cobra.NoArgs,
	RunE:  runRulesList,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesListCmd.Flags().StringVar(&rulesPath, "rules", "", "Path to a custom signature catalog (YAML)")
	rulesListCmd.Flags().StringVar(&rulesFormat, "format", "table", "Output format: table, json")
	rulesListCmd.Flags().StringVar(&rulesInclude, "rules-include", "", "Include signatures whose ID matches a regex (comma-separated)")
	rulesListCmd.Flags().StringVar(&rulesExclude, "rules-exclude", "", "Exclude signatures whose ID matches a regex (comma-separated)")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog(rulesPath, rulesInclude, rulesExclude)
	if err != nil {
		return err
	}

	switch rulesFormat {
	case "json":
		return writeJSON(cmd.OutOrStdout(), catalog)
	case "table":
		return outputRulesTable(cmd, catalog)
	default:
		return fmt.Errorf("unknown output format: %s", rulesFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func outputRulesTable(cmd *cobra.Command, catalog []*types.Signature) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tName\tCategory\tExtension\n")
	fmt.Fprintf(w, "--\t----\t--------\t---------\n")

	for _, s := range catalog {
		ext := s.Extension
		if ext == "" {
			ext = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Category, ext)
	}

	return nil
}


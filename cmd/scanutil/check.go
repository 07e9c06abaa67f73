package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/praetorian-inc/scanutil/pkg/matcher"
	"github.com/praetorian-inc/scanutil/pkg/rule"
	"github.com/spf13/cobra"
)

var (
	checkExt   string
	checkRules string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check standard input for signatures",
	Long: `Stream standard input through the signature automaton and print the last
signature seen, or "none". --ext selects the extension-bound signatures that
apply, e.g. --ext .js.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkExt, "ext", "", "Treat input as a file with this extension, e.g. .js (the dot is optional)")
	checkCmd.Flags().StringVar(&checkRules, "rules", "", "Path to a custom signature catalog (YAML)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	catalog, err := readCatalog(checkRules)
	if err != nil {
		return err
	}

	sigs := rule.ForPath(catalog, "stdin"+normalizeExt(checkExt))
	patterns := make([]string, len(sigs))
	for i, s := range sigs {
		patterns[i] = s.Pattern
	}

	sc := matcher.CompileStrings(patterns).NewScanner()
	n, err := io.Copy(sc, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	out := cmd.OutOrStdout()
	m, ok := sc.Last()
	if !ok {
		fmt.Fprintf(out, "none (%d bytes, %d signatures)\n", n, len(sigs))
		return nil
	}
	s := sigs[m.Pattern]
	fmt.Fprintf(out, "%s %s at %d-%d (%d matches)\n", s.Category.Label(), s.ID, m.Start, m.End, sc.Matches())
	return nil
}

// normalizeExt accepts an extension with or without its leading dot.
func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

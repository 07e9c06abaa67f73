package main

import (
	"fortio.org/log"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "scanutil",
	Short: "scanutil - malicious signature file scanner",
	Long: `scanutil scans the files of a directory for known malicious byte signatures
and classifies each file as JS-suspicious, Unix-suspicious, macOS-suspicious
or clean, using an Aho-Corasick automaton over the builtin signature catalog.`,
	SilenceUsage:      true,
	PersistentPreRunE: configureLogging,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(versionCmd)
}

// configureLogging maps --verbose and --quiet onto the log level.
func configureLogging(cmd *cobra.Command, args []string) error {
	switch {
	case quiet:
		log.SetLogLevel(log.Error)
	case verbose:
		log.SetLogLevel(log.Debug)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

package main

import (
	"fmt"
	"runtime"

	"fortio.org/version"
	"github.com/spf13/cobra"
)

const modulePath = "github.com/praetorian-inc/scanutil"

// Set via -ldflags; build info is used when left at the defaults.
var (
	buildVersion = "dev"
	commit       = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version of scanutil",
	RunE:  runVersion,
}

// currentVersion prefers the ldflags version, then module build info.
func currentVersion() string {
	if buildVersion != "dev" {
		return buildVersion
	}
	short, _, _ := version.FromBuildInfoPath(modulePath)
	if short == "" {
		return buildVersion
	}
	return short
}

func runVersion(cmd *cobra.Command, args []string) error {
	_, long, _ := version.FromBuildInfoPath(modulePath)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scanutil %s\n", currentVersion())
	fmt.Fprintf(out, "Commit: %s\n", commit)
	if long != "" {
		fmt.Fprintf(out, "Build: %s\n", long)
	}
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return nil
}

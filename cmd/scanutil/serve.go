package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/praetorian-inc/scanutil/pkg/serve"
	"github.com/spf13/cobra"
)

var (
	serveRules string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a streaming scan server",
	Long: `Run scanutil as a long-lived streaming server that accepts scan requests
via stdin and writes detections to stdout using NDJSON format.

The process loads the signature catalog once at startup and processes
"scan", "scan_file" and "scan_dir" requests until stdin closes, a "close"
request arrives or SIGTERM is received.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveRules, "rules", "", "Path to a custom signature catalog (YAML)")
}

func runServe(cmd *cobra.Command, args []string) error {
	catalog, err := readCatalog(serveRules)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := serve.NewServer(catalog, defaultStrategy(), cmd.InOrStdin(), cmd.OutOrStdout())
	return srv.Run(ctx)
}

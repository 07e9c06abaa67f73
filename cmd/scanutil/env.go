package main

import (
	"fmt"

	"fortio.org/log"
	"fortio.org/struct2env"
	"github.com/spf13/cobra"
)

const envPrefix = "SCANUTIL_"

// EnvConfig holds the flag defaults that can be overridden from the
// environment, e.g. SCANUTIL_MAX_CONCURRENCY=8.
type EnvConfig struct {
	Strategy       string
	MaxConcurrency int
	Color          string
	Output         string
	Timeout        string
}

var envConfig = loadEnvConfig()

func defaultEnvConfig() EnvConfig {
	return EnvConfig{
		Strategy: "automaton",
		Color:    "auto",
		Output:   ":memory:",
	}
}

func loadEnvConfig() EnvConfig {
	cfg := defaultEnvConfig()
	if errs := struct2env.SetFromEnv(envPrefix, &cfg); len(errs) > 0 {
		log.Errf("Error setting config from env: %v", errs)
	}
	return cfg
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Show supported environment variables",
	Long:  "Print the SCANUTIL_* environment variables with their effective values, in shell syntax",
	Args:  cobra.NoArgs,
	RunE:  runEnv,
}

func runEnv(cmd *cobra.Command, args []string) error {
	kv, errs := struct2env.StructToEnvVars(envConfig)
	if len(errs) > 0 {
		return fmt.Errorf("listing environment variables: %v", errs)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "# scanutil environment variables:")
	fmt.Fprint(out, struct2env.ToShellWithPrefix(envPrefix, kv, true))
	return nil
}

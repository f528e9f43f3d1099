package commands

import (
	"context"
	"fmt"
	"jobtracker-backend/internal/config"
	"jobtracker-backend/lib/telemetry"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	dumpHttp   *string
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", config.DefaultPath, "The json5 config file, <name>.local.json5 next to it overrides it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "Dump every http request/response pair into this directory (requires --verbose).")
}

var rootCmd = &cobra.Command{
	Use:   "jobtracker",
	Short: "jobtracker collects job postings, tracks what changed since the last run and reports it.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

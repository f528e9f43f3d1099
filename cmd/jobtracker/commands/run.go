package commands

import (
	"jobtracker-backend/internal/tracker"
	"jobtracker-backend/lib/serviceutil"
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--config config.json5]",
	Short: "Collects postings once, updates the snapshot and writes the report.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		flush := setupTelemetry(ctx, cfg)
		defer flush()

		t, closeStore := newTracker(ctx, cfg)
		defer closeStore()

		result, err := t.Run(ctx, cfg.Companies)
		if tracker.IsNoTargets(err) {
			slog.Warn("add companies to the config to start tracking", "config", *configPath)
			return
		}
		if err != nil {
			closeStore()
			flush()
			serviceutil.Fatal("run failed", err)
		}
		slog.Info("done", "run_id", result.RunID, "new", len(result.Diff.New))
	},
}

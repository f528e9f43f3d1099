package commands

import (
	"jobtracker-backend/internal/tracker"
	"jobtracker-backend/lib/chrono"
	"jobtracker-backend/lib/serviceutil"
	"jobtracker-backend/lib/telemetry"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

var scheduleSpec *string

func init() {
	scheduleSpec = scheduleCmd.Flags().String("spec", "", "A 5-field cron expression evaluated in Asia/Seoul, defaults to schedule.spec of the config.")
	rootCmd.AddCommand(scheduleCmd)
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule [--spec \"0 12,18 * * *\"]",
	Short: "Runs once immediately and then on a cron schedule until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg := loadConfig()

		spec := cfg.Schedule.Spec
		if *scheduleSpec != "" {
			spec = *scheduleSpec
		}
		err := chrono.ValidateSpec(spec)
		if err != nil {
			serviceutil.Fatal("invalid schedule", err)
		}
		cfg.Schedule.Spec = spec

		flush := setupTelemetry(ctx, cfg)
		defer flush()
		telemetry.InstrumentPerfStats(ctx, time.Minute)

		t, closeStore := newTracker(ctx, cfg)
		defer closeStore()

		runOnce := func() {
			result, err := t.Run(ctx, cfg.Companies)
			if tracker.IsNoTargets(err) {
				return
			}
			if err != nil {
				slog.ErrorContext(ctx, "scheduled run failed", "err", err)
				return
			}
			slog.InfoContext(ctx, "scheduled run finished", "run_id", result.RunID, "new", len(result.Diff.New))
		}

		cron := chrono.NewStandardCron(chrono.Seoul())
		err = cron.Cron(spec, runOnce)
		if err != nil {
			serviceutil.Fatal("failed to register schedule", err)
		}
		slog.InfoContext(ctx, "scheduler started", "spec", spec, "timezone", chrono.Seoul().String())

		runOnce()

		<-ctx.Done()
		slog.Info("shutting down, waiting for the running job")
		<-cron.Stop().Done()
	},
}

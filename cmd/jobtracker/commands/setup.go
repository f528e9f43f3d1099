package commands

import (
	"context"
	"jobtracker-backend/internal/collector"
	"jobtracker-backend/internal/config"
	"jobtracker-backend/internal/notify"
	"jobtracker-backend/internal/report"
	"jobtracker-backend/internal/sources"
	"jobtracker-backend/internal/store"
	"jobtracker-backend/internal/tracker"
	"jobtracker-backend/lib/chrono"
	"jobtracker-backend/lib/restyutil"
	"jobtracker-backend/lib/serviceutil"
	"jobtracker-backend/lib/telemetry"
	"log/slog"
	"time"
)

const serviceName = "jobtracker"

func loadConfig() config.Config {
	cfg, err := config.Load(*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if *dumpHttp != "" {
		cfg.HTTP.DumpDir = *dumpHttp
	}
	return cfg
}

// setupTelemetry installs the configured exporters, the returned function
// flushes them.
func setupTelemetry(ctx context.Context, cfg config.Config) func() {
	tel, err := telemetry.Setup(ctx, serviceName, cfg.Telemetry)
	if err != nil {
		slog.WarnContext(ctx, "failed to setup telemetry, continuing without exporters", "err", err)
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := tel.Shutdown(shutdownCtx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}
}

// detectRenderer returns nil when no headless browser is installed, the
// render source then reports every fetch as unavailable.
func detectRenderer(ctx context.Context, cfg config.Config) sources.Renderer {
	chrome, err := sources.NewChromeRenderer(cfg.Render)
	if err != nil {
		slog.DebugContext(ctx, "headless rendering disabled", "err", err)
		return nil
	}
	slog.DebugContext(ctx, "headless rendering enabled", "browser", chrome.ExecPath())
	return chrome
}

func buildRegistry(ctx context.Context, cfg config.Config, clock chrono.API) *sources.Registry {
	var output restyutil.InstrumentOutput
	if cfg.HTTP.DumpDir != "" {
		fsOutput, err := restyutil.NewFilesystemOutput(cfg.HTTP.DumpDir)
		if err != nil {
			slog.WarnContext(ctx, "failed to prepare http dump directory", "dir", cfg.HTTP.DumpDir, "err", err)
		} else {
			output = fsOutput
		}
	}
	client := restyutil.NewClient(restyutil.ClientOptions{
		Timeout:          cfg.HTTPTimeout(),
		CloudflareBypass: cfg.HTTP.CloudflareBypass,
		TracerName:       "jobtracker/http",
		Output:           output,
	})

	render := sources.NewRender(detectRenderer(ctx, cfg), clock)
	registry := sources.NewRegistry(
		sources.NewCareerPage(client, clock),
		sources.NewGreetingHR(client, clock),
		sources.NewLinkedIn(client, clock),
		sources.NewWanted(client, clock, cfg.Wanted),
		sources.NewSaramin(client, clock, cfg.Saramin),
		sources.NewMock(clock),
		render,
	)
	registry.RegisterAs("render", render)
	return registry
}

// newTracker wires the pipeline, the returned function releases the store.
func newTracker(ctx context.Context, cfg config.Config) (tracker.Tracker, func()) {
	clock := chrono.NewStandardImpl()
	registry := buildRegistry(ctx, cfg, clock)

	snapshots, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		serviceutil.Fatal("failed to open store", err)
	}

	t := tracker.New(
		collector.New(registry, cfg.CollectorOptions()),
		snapshots,
		report.NewMarkdown(report.Options{Path: cfg.Report.Path, Schedule: cfg.Schedule.Spec}, clock),
		notify.NewEmail(cfg.Email),
	)
	return t, func() {
		err := closeStore()
		if err != nil {
			slog.Warn("failed to close store", "err", err)
		}
	}
}

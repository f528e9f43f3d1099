package tracker

import (
	"context"
	"errors"
	"fmt"
	"jobtracker-backend/internal/collector"
	"jobtracker-backend/internal/notify"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/internal/report"
	"jobtracker-backend/internal/sources"
	"jobtracker-backend/internal/store"
	"log/slog"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("jobtracker/tracker")

// Collector gathers the current postings of a set of targets.
type Collector interface {
	Collect(ctx context.Context, targets []sources.Target) ([]posting.Posting, error)
}

type Result struct {
	RunID string
	Diff  posting.DiffResult
}

// Tracker runs the load, collect, diff, save, report and notify pipeline.
type Tracker struct {
	collector Collector
	store     store.Store
	reporter  report.Reporter
	notifier  notify.Notifier
}

// New creates a tracker, `reporter` and `notifier` may be nil.
func New(c Collector, snapshots store.Store, reporter report.Reporter, notifier notify.Notifier) Tracker {
	return Tracker{
		collector: c,
		store:     snapshots,
		reporter:  reporter,
		notifier:  notifier,
	}
}

func newRunID() string {
	id, err := random.String(8)
	if err != nil {
		return "unknown"
	}
	return id
}

func (t Tracker) Run(ctx context.Context, targets []sources.Target) (Result, error) {
	runID := newRunID()
	ctx, span := tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Int("targets", len(targets)),
	))
	defer span.End()

	log := slog.Default().With("run_id", runID)
	if len(targets) == 0 {
		log.WarnContext(ctx, "no companies configured, nothing to track")
		return Result{RunID: runID}, collector.ErrNoTargets
	}
	log.InfoContext(ctx, "starting run", "targets", len(targets))

	previous := t.store.Load(ctx)
	current, err := t.collector.Collect(ctx, targets)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to collect postings")
		return Result{RunID: runID}, err
	}

	diff := posting.Diff(previous, current)
	all := diff.AllCurrent()

	err = t.store.Save(ctx, all)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save snapshot")
		return Result{RunID: runID, Diff: diff}, fmt.Errorf("save snapshot: %w", err)
	}

	if t.reporter != nil {
		err = t.reporter.Report(ctx, diff, all)
		if err != nil {
			span.RecordError(err)
			log.ErrorContext(ctx, "failed to write report", "err", err)
		}
	}
	if t.notifier != nil && len(diff.New) > 0 {
		err = t.notifier.Notify(ctx, diff.New)
		if err != nil {
			span.RecordError(err)
			log.ErrorContext(ctx, "failed to send notification", "err", err)
		}
	}

	span.SetAttributes(
		attribute.Int("new", len(diff.New)),
		attribute.Int("removed", len(diff.Removed)),
		attribute.Int("unchanged", len(diff.Unchanged)),
	)
	log.InfoContext(
		ctx, "run complete",
		"new", len(diff.New),
		"removed", len(diff.Removed),
		"unchanged", len(diff.Unchanged),
		"total", len(all),
	)
	return Result{RunID: runID, Diff: diff}, nil
}

// IsNoTargets reports whether a run was skipped for lack of targets.
func IsNoTargets(err error) bool {
	return errors.Is(err, collector.ErrNoTargets)
}

package collector

import (
	"context"
	"errors"
	"jobtracker-backend/internal/filter"
	"jobtracker-backend/internal/posting"
	"jobtracker-backend/internal/sources"
	"jobtracker-backend/lib/textutil"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("jobtracker/collector")

var ErrNoTargets = errors.New("no targets configured")

// DefaultSkipFilter lists the sources whose postings bypass the
// experience filter.
func DefaultSkipFilter() map[string]bool {
	return map[string]bool{"mock": true}
}

type Options struct {
	// a nil filter leaves postings and their levels untouched
	Filter     *filter.Config
	SkipFilter map[string]bool
	Retrier    sources.Retrier
	// values above 1 fetch that many targets at once
	Concurrency int
}

// Collector fans targets out to their source plugins and merges the results.
type Collector struct {
	registry    *sources.Registry
	filter      *filter.Config
	skipFilter  map[string]bool
	retrier     sources.Retrier
	concurrency int
}

func New(registry *sources.Registry, opts Options) Collector {
	skip := map[string]bool{}
	for key, value := range opts.SkipFilter {
		skip[textutil.NormalizeKey(key)] = value
	}
	return Collector{
		registry:    registry,
		filter:      opts.Filter,
		skipFilter:  skip,
		retrier:     opts.Retrier,
		concurrency: max(opts.Concurrency, 1),
	}
}

type partition struct {
	key     string
	source  sources.Source
	targets []sources.Target
}

func companies(targets []sources.Target) []string {
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.Name
	}
	return names
}

// partitions groups targets by normalized source key in the order each key
// is first seen. keys without a registered plugin are logged and dropped.
func (c Collector) partitions(ctx context.Context, targets []sources.Target) []partition {
	order := []string{}
	grouped := map[string][]sources.Target{}
	for _, t := range targets {
		key := textutil.NormalizeKey(t.Source)
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], t)
	}

	out := make([]partition, 0, len(order))
	for _, key := range order {
		src, ok := c.registry.Get(key)
		if !ok {
			attrs := []any{"source", key, "companies", companies(grouped[key])}
			if suggestion, found := c.registry.Suggest(key); found {
				attrs = append(attrs, "did_you_mean", suggestion)
			}
			slog.WarnContext(ctx, "unknown source, skipping its targets", attrs...)
			continue
		}
		out = append(out, partition{key: key, source: src, targets: grouped[key]})
	}
	return out
}

// fetchSlots runs the retry wrapper for every target of every partition.
// slots[i][j] receives the postings of target j of partition i so the merge
// order never depends on scheduling.
func fetchSlots(ctx context.Context, retrier sources.Retrier, parts []partition, limit int) [][][]posting.Posting {
	slots := make([][][]posting.Posting, len(parts))
	for i, p := range parts {
		slots[i] = make([][]posting.Posting, len(p.targets))
	}

	if limit <= 1 {
		for i, p := range parts {
			for j, t := range p.targets {
				slots[i][j] = retrier.Fetch(ctx, p.source, t)
			}
		}
		return slots
	}

	var group errgroup.Group
	group.SetLimit(limit)
	for i, p := range parts {
		for j, t := range p.targets {
			group.Go(func() error {
				slots[i][j] = retrier.Fetch(ctx, p.source, t)
				return nil
			})
		}
	}
	// Retrier.Fetch never fails
	_ = group.Wait()
	return slots
}

func concat(results [][]posting.Posting) []posting.Posting {
	out := []posting.Posting{}
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// FetchAll fetches each target of `src` in order and filters the
// concatenated postings once.
func FetchAll(
	ctx context.Context,
	retrier sources.Retrier,
	src sources.Source,
	targets []sources.Target,
	cfg *filter.Config,
	skip bool,
) []posting.Posting {
	slots := fetchSlots(ctx, retrier, []partition{{key: src.Name(), source: src, targets: targets}}, 1)
	return filter.Apply(concat(slots[0]), cfg, skip)
}

// Collect returns the deduplicated postings of all targets, ordered by
// partition, then target, then plugin order.
func (c Collector) Collect(ctx context.Context, targets []sources.Target) ([]posting.Posting, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}

	ctx, span := tracer.Start(ctx, "Collect", trace.WithAttributes(
		attribute.Int("targets", len(targets)),
		attribute.Int("concurrency", c.concurrency),
	))
	defer span.End()

	parts := c.partitions(ctx, targets)
	slots := fetchSlots(ctx, c.retrier, parts, c.concurrency)

	all := []posting.Posting{}
	for i, p := range parts {
		raw := concat(slots[i])
		filtered := filter.Apply(raw, c.filter, c.skipFilter[p.key])
		slog.InfoContext(
			ctx, "collected source",
			"source", p.key,
			"targets", len(p.targets),
			"fetched", len(raw),
			"kept", len(filtered),
		)
		all = append(all, filtered...)
	}

	deduped := posting.Dedupe(all)
	slog.InfoContext(ctx, "deduplicated postings", "raw", len(all), "unique", len(deduped))
	span.SetAttributes(attribute.Int("postings", len(deduped)))
	return deduped, nil
}

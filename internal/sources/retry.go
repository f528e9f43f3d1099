package sources

import (
	"context"
	"fmt"
	"jobtracker-backend/internal/posting"
	"log/slog"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Sleeper waits for `d` or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Retrier calls a plugin up to MaxAttempts times, waiting
// BackoffBase^attempt seconds after each failed attempt but the last.
type Retrier struct {
	MaxAttempts int
	BackoffBase float64
	Sleep       Sleeper
}

func DefaultRetrier() Retrier {
	return Retrier{MaxAttempts: 3, BackoffBase: 2, Sleep: SleepContext}
}

func (r Retrier) backoff(attempt int) time.Duration {
	seconds := math.Pow(r.BackoffBase, float64(attempt))
	return time.Duration(seconds * float64(time.Second))
}

// Fetch never fails, a target that could not be fetched yields no postings.
func (r Retrier) Fetch(ctx context.Context, src Source, target Target) []posting.Posting {
	ctx, span := tracer.Start(ctx, "Fetch", trace.WithAttributes(
		attribute.String("source", src.Name()),
		attribute.String("company", target.Name),
	))
	defer span.End()

	maxAttempts := max(r.MaxAttempts, 1)
	sleep := r.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	attrs := metric.WithAttributes(attribute.String("source", src.Name()))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		postings, err := src.FetchCompany(ctx, target)
		if err == nil {
			slog.InfoContext(
				ctx, "fetched postings",
				"source", src.Name(),
				"company", target.Name,
				"count", len(postings),
				"attempt", fmt.Sprintf("%d/%d", attempt, maxAttempts),
			)
			fetchedCounter.Add(ctx, int64(len(postings)), attrs)
			return postings
		}
		lastErr = err

		if IsPermanent(err) {
			break
		}
		if attempt == maxAttempts {
			break
		}

		wait := r.backoff(attempt)
		slog.WarnContext(
			ctx, "fetch failed, retrying",
			"source", src.Name(),
			"company", target.Name,
			"attempt", fmt.Sprintf("%d/%d", attempt, maxAttempts),
			"wait", wait,
			"err", err,
		)
		retryCounter.Add(ctx, 1, attrs)
		if sleepErr := sleep(ctx, wait); sleepErr != nil {
			lastErr = fmt.Errorf("%w (wait interrupted: %v)", err, sleepErr)
			break
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "fetch failed")
	failureCounter.Add(ctx, 1, attrs)
	slog.ErrorContext(
		ctx, "fetch gave up",
		"source", src.Name(),
		"company", target.Name,
		"err", lastErr,
	)
	return []posting.Posting{}
}

package sources

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("jobtracker/sources")
var meter = otel.Meter("jobtracker/sources")

var fetchedCounter, _ = meter.Int64Counter(
	"postings_fetched",
	metric.WithDescription("postings returned by source plugins before filtering"),
)
var failureCounter, _ = meter.Int64Counter(
	"fetch_failures",
	metric.WithDescription("targets that yielded nothing after every attempt"),
)
var retryCounter, _ = meter.Int64Counter(
	"fetch_retries",
	metric.WithDescription("failed attempts that were retried"),
)

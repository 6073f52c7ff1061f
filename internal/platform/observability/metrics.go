package observability

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

var meter = otel.Meter("github.com/atlas-parcel/core/internal/platform/observability")

// StatusDriftCounter counts status values received from the tracking backend
// that this release does not recognise. A sustained non-zero rate means the
// backend schema moved ahead of the client.
var StatusDriftCounter = sync.OnceValue(func() metric.Int64Counter {
	counter, err := meter.Int64Counter(
		"parcel.status.unrecognized",
		metric.WithDescription("Parcel status values outside the known lifecycle enumeration."),
	)
	if err != nil {
		return noop.Int64Counter{}
	}
	return counter
})

// CategoryFallbackCounter counts duty assessments that fell back to the
// catch-all category because the requested key was missing from the table.
var CategoryFallbackCounter = sync.OnceValue(func() metric.Int64Counter {
	counter, err := meter.Int64Counter(
		"customs.category.fallback",
		metric.WithDescription("Duty assessments computed with the catch-all category for an unknown key."),
	)
	if err != nil {
		return noop.Int64Counter{}
	}
	return counter
})

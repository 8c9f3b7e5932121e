package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/authfront"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Lifecycle metrics
	LifecycleRunsTotal     metric.Int64Counter
	LifecycleRunsDiscarded metric.Int64Counter

	// Network metrics
	IdentityFetchTotal    metric.Int64Counter
	IdentityFetchDuration metric.Float64Histogram
	RefreshAttemptsTotal  metric.Int64Counter

	// Session metrics
	LoginsTotal  metric.Int64Counter
	LogoutsTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.LifecycleRunsTotal, _ = meter.Int64Counter(
		"authfront.lifecycle.runs.total",
		metric.WithDescription("Total number of completed session lifecycle runs by outcome"),
		metric.WithUnit("{run}"),
	)

	m.LifecycleRunsDiscarded, _ = meter.Int64Counter(
		"authfront.lifecycle.runs.discarded.total",
		metric.WithDescription("Total number of lifecycle runs whose completion was ignored because the view detached"),
		metric.WithUnit("{run}"),
	)

	m.IdentityFetchTotal, _ = meter.Int64Counter(
		"authfront.identity.fetch.total",
		metric.WithDescription("Total number of protected identity requests by result"),
		metric.WithUnit("{request}"),
	)

	m.IdentityFetchDuration, _ = meter.Float64Histogram(
		"authfront.identity.fetch.duration",
		metric.WithDescription("Duration of protected identity requests"),
		metric.WithUnit("ms"),
	)

	m.RefreshAttemptsTotal, _ = meter.Int64Counter(
		"authfront.refresh.attempts.total",
		metric.WithDescription("Total number of access token refresh attempts by result"),
		metric.WithUnit("{attempt}"),
	)

	m.LoginsTotal, _ = meter.Int64Counter(
		"authfront.logins.total",
		metric.WithDescription("Total number of login attempts by result"),
		metric.WithUnit("{login}"),
	)

	m.LogoutsTotal, _ = meter.Int64Counter(
		"authfront.logouts.total",
		metric.WithDescription("Total number of logouts"),
		metric.WithUnit("{logout}"),
	)

	return m
}

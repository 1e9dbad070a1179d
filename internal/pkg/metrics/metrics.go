package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the engine-wide metrics registry, exposed on the HTTP server's
// /metrics endpoint.
var Registry = prometheus.NewRegistry()

var (
	// SamplesIngested counts inbound position samples by outcome.
	// outcome: accepted / duplicate / rejected / failed
	SamplesIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veltrack_samples_ingested_total",
			Help: "Total number of position samples received, by outcome.",
		},
		[]string{"outcome"},
	)

	// EventsEmitted counts semantic events appended by the classifier and the
	// command processor, by event type.
	EventsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veltrack_events_emitted_total",
			Help: "Total number of semantic events appended, by type.",
		},
		[]string{"type"},
	)

	// CommandsTotal counts ignition commands by type and result.
	// result: confirmed / denied / failed
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "veltrack_ignition_commands_total",
			Help: "Total number of ignition commands processed, by type and result.",
		},
		[]string{"type", "result"},
	)

	// IngestDuration tracks the latency of the full ingest path including the
	// storage round trips.
	IngestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "veltrack_ingest_duration_seconds",
			Help:    "Latency of the telemetry ingest path.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	Registry.MustRegister(SamplesIngested)
	Registry.MustRegister(EventsEmitted)
	Registry.MustRegister(CommandsTotal)
	Registry.MustRegister(IngestDuration)
}

// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Snapshot metrics
	SnapshotLoadsTotal *prometheus.CounterVec
	SnapshotTokens     prometheus.Gauge
	FallbackLoadsTotal prometheus.Counter

	// Feed metrics
	TicksAppliedTotal prometheus.Counter
	TicksIgnoredTotal *prometheus.CounterVec
	FeedDropsTotal    *prometheus.CounterVec

	// View metrics
	DerivesTotal   prometheus.Counter
	DeriveDuration prometheus.Histogram

	// Transport metrics
	WSClientsConnected prometheus.Gauge
	WSBroadcastsTotal  prometheus.Counter

	// Health metrics
	LastDataMutation prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "axiom_pulse"
	}

	return &Metrics{
		SnapshotLoadsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "snapshot_loads_total",
			Help:      "Total number of snapshot loads by outcome",
		}, []string{"outcome"}),
		SnapshotTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "snapshot_tokens",
			Help:      "Number of tokens in the current snapshot",
		}),
		FallbackLoadsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "fallback_loads_total",
			Help:      "Total number of snapshot fetches served from the built-in fallback set",
		}),

		TicksAppliedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "ticks_applied_total",
			Help:      "Total number of price updates merged into the store",
		}),
		TicksIgnoredTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "ticks_ignored_total",
			Help:      "Total number of price updates ignored by reason",
		}, []string{"reason"}),
		FeedDropsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "drops_total",
			Help:      "Total number of feed messages dropped before merge by reason",
		}, []string{"reason"}),

		DerivesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "derives_total",
			Help:      "Total number of view derivations",
		}),
		DeriveDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "derive_duration_seconds",
			Help:      "View derivation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),

		WSClientsConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "ws_clients_connected",
			Help:      "Number of currently connected WebSocket clients",
		}),
		WSBroadcastsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "ws_broadcasts_total",
			Help:      "Total number of view updates broadcast to WebSocket clients",
		}),

		LastDataMutation: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_data_mutation_timestamp",
			Help:      "Unix timestamp of the last snapshot load or applied tick",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordSnapshotLoad records a snapshot load attempt.
func RecordSnapshotLoad(outcome string, tokens int) {
	DefaultMetrics.SnapshotLoadsTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		DefaultMetrics.SnapshotTokens.Set(float64(tokens))
	}
}

// RecordFallbackLoad increments the fallback snapshot counter.
func RecordFallbackLoad() {
	DefaultMetrics.FallbackLoadsTotal.Inc()
}

// RecordTickApplied increments the applied ticks counter.
func RecordTickApplied() {
	DefaultMetrics.TicksAppliedTotal.Inc()
}

// RecordTickIgnored increments the ignored ticks counter.
func RecordTickIgnored(reason string) {
	DefaultMetrics.TicksIgnoredTotal.WithLabelValues(reason).Inc()
}

// RecordFeedDrop increments the feed drop counter.
func RecordFeedDrop(reason string) {
	DefaultMetrics.FeedDropsTotal.WithLabelValues(reason).Inc()
}

// RecordDerive records one view derivation.
func RecordDerive(seconds float64) {
	DefaultMetrics.DerivesTotal.Inc()
	DefaultMetrics.DeriveDuration.Observe(seconds)
}

// RecordWSBroadcast increments the broadcast counter.
func RecordWSBroadcast() {
	DefaultMetrics.WSBroadcastsTotal.Inc()
}

// SetWSClients updates the connected WebSocket clients gauge.
func SetWSClients(n int) {
	DefaultMetrics.WSClientsConnected.Set(float64(n))
}

// TouchDataMutation updates the last mutation timestamp gauge.
func TouchDataMutation(unixSeconds int64) {
	DefaultMetrics.LastDataMutation.Set(float64(unixSeconds))
}

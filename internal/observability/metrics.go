package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// marker rendering pipeline.
type Metrics struct {
	FeedFetches       *prometheus.CounterVec // labels: source, outcome={success,error}
	FeedFetchDuration *prometheus.HistogramVec
	RecordsNormalized *prometheus.CounterVec // labels: source
	RecordsSkipped    *prometheus.CounterVec // labels: source, reason={bad_coords,bad_geometry,missing_fields}
	MarkersRendered   prometheus.Counter
	AreasRendered     prometheus.Counter
	PipelineState     prometheus.Gauge // 0=uninitialized, 1=initializing, 2=ready
	TooltipUpdates    prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeEnabled  prometheus.Gauge

	// Kafka sink metrics.
	MarkersPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeedFetches,
		m.FeedFetchDuration,
		m.RecordsNormalized,
		m.RecordsSkipped,
		m.MarkersRendered,
		m.AreasRendered,
		m.PipelineState,
		m.TooltipUpdates,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeEnabled,
		m.MarkersPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry,
// avoiding "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventmap",
			Name:      "feed_fetches_total",
			Help:      "Feed fetch attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		FeedFetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eventmap",
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of one feed fetch-and-normalize pass.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		RecordsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventmap",
			Name:      "records_normalized_total",
			Help:      "Raw feed records successfully normalized, by source.",
		}, []string{"source"}),
		RecordsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventmap",
			Name:      "records_skipped_total",
			Help:      "Raw feed records dropped during normalization, by source and reason.",
		}, []string{"source", "reason"}),
		MarkersRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventmap",
			Name:      "markers_rendered_total",
			Help:      "Markers placed on the map engine.",
		}),
		AreasRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventmap",
			Name:      "areas_rendered_total",
			Help:      "Area features registered with the hover layer.",
		}),
		PipelineState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventmap",
			Name:      "pipeline_state",
			Help:      "Orchestrator state: 0 uninitialized, 1 initializing, 2 ready.",
		}),
		TooltipUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventmap",
			Name:      "tooltip_updates_total",
			Help:      "Hover tooltip label changes (idempotent re-hovers excluded).",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventmap",
			Name:      "geocode_requests_total",
			Help:      "Forward geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventmap",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventmap",
			Name:      "geocode_enabled",
			Help:      "1 when address geocoding fallback is enabled, 0 otherwise.",
		}),
		MarkersPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventmap",
			Name:      "markers_published_total",
			Help:      "Normalized marker records published to the Kafka sink.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventmap",
			Name:      "publish_errors_total",
			Help:      "Failed Kafka publish batches.",
		}),
	}
}

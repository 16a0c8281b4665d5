package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// locator service.
type Metrics struct {
	StationsLoaded  prometheus.Gauge
	FilterPasses    prometheus.Counter
	VisibleStations prometheus.Gauge
	FilterDuration  prometheus.Histogram

	// Geolocation metrics.
	LocateRequests *prometheus.CounterVec // labels: outcome={success,error}
	LocateCache    *prometheus.CounterVec // labels: result={hit,miss}

	// Status feed metrics.
	StatusUpdatesApplied prometheus.Counter
	StatusUpdateErrors   prometheus.Counter
	FeedRunning          prometheus.Gauge

	// Visibility sink metrics.
	SSEClients prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		StationsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ev_locator",
			Name:      "stations_loaded",
			Help:      "Number of stations in the loaded dataset.",
		}),
		FilterPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ev_locator",
			Name:      "filter_passes_total",
			Help:      "Total full visibility recomputations.",
		}),
		VisibleStations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ev_locator",
			Name:      "visible_stations",
			Help:      "Stations visible under the current filter settings.",
		}),
		FilterDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ev_locator",
			Name:      "filter_duration_seconds",
			Help:      "Duration of one full visibility pass over all stations.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		LocateRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ev_locator",
			Name:      "locate_requests_total",
			Help:      "Geolocation requests by outcome.",
		}, []string{"outcome"}),
		LocateCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ev_locator",
			Name:      "locate_cache_total",
			Help:      "Geolocation cache lookups by result.",
		}, []string{"result"}),
		StatusUpdatesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ev_locator",
			Name:      "status_updates_applied_total",
			Help:      "Station status updates applied from the feed.",
		}),
		StatusUpdateErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ev_locator",
			Name:      "status_update_errors_total",
			Help:      "Status feed messages that could not be applied.",
		}),
		FeedRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ev_locator",
			Name:      "feed_running",
			Help:      "1 when the status feed is active, 0 when shut down.",
		}),
		SSEClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ev_locator",
			Name:      "sse_clients",
			Help:      "Currently connected visibility stream clients.",
		}),
	}

	prometheus.MustRegister(
		m.StationsLoaded,
		m.FilterPasses,
		m.VisibleStations,
		m.FilterDuration,
		m.LocateRequests,
		m.LocateCache,
		m.StatusUpdatesApplied,
		m.StatusUpdateErrors,
		m.FeedRunning,
		m.SSEClients,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		StationsLoaded:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ev_locator", Name: "stations_loaded"}),
		FilterPasses:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ev_locator", Name: "filter_passes_total"}),
		VisibleStations:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ev_locator", Name: "visible_stations"}),
		FilterDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ev_locator", Name: "filter_duration_seconds"}),
		LocateRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ev_locator", Name: "locate_requests_total"}, []string{"outcome"}),
		LocateCache:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ev_locator", Name: "locate_cache_total"}, []string{"result"}),
		StatusUpdatesApplied: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ev_locator", Name: "status_updates_applied_total"}),
		StatusUpdateErrors:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ev_locator", Name: "status_update_errors_total"}),
		FeedRunning:          prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ev_locator", Name: "feed_running"}),
		SSEClients:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ev_locator", Name: "sse_clients"}),
	}
}

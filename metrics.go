package jalur

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for jalur's call lifecycle
// and cache bridge. It is safe for concurrent use.
type MetricsCollector struct {
	callsTotal    *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	callsInFlight *prometheus.GaugeVec

	errorsTotal *prometheus.CounterVec

	prefetchesTotal    *prometheus.CounterVec
	invalidationsTotal *prometheus.CounterVec
	storeEntries       *prometheus.GaugeVec

	registry prometheus.Registerer
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	mc := &MetricsCollector{
		callsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jalur_calls_total",
				Help: "Total number of remote calls dispatched",
			},
			[]string{"kind", "status_code", "route"},
		),
		callDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jalur_call_duration_seconds",
				Help:    "Duration of remote calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "status_code", "route"},
		),
		callsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "jalur_calls_in_flight",
				Help: "Number of remote calls currently in flight",
			},
			[]string{"kind", "route"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jalur_errors_total",
				Help: "Total number of call failures by kind",
			},
			[]string{"error_kind", "route"},
		),
		prefetchesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jalur_prefetches_total",
				Help: "Total number of prefetch requests handed to the store",
			},
			[]string{"route"},
		),
		invalidationsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "jalur_invalidations_total",
				Help: "Total number of invalidation requests handed to the store",
			},
			[]string{"route"},
		),
		storeEntries: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "jalur_store_entries",
				Help: "Current number of entries in the cache store",
			},
			[]string{"name"},
		),
		registry: registry,
	}

	return mc
}

// RecordCall records call count and duration.
func (mc *MetricsCollector) RecordCall(kind, route string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	statusCodeStr := strconv.Itoa(statusCode)
	mc.callsTotal.WithLabelValues(kind, statusCodeStr, route).Inc()
	mc.callDuration.WithLabelValues(kind, statusCodeStr, route).Observe(duration.Seconds())
}

// RecordCallStart increments in-flight gauge.
func (mc *MetricsCollector) RecordCallStart(kind, route string) {
	if mc == nil {
		return
	}

	mc.callsInFlight.WithLabelValues(kind, route).Inc()
}

// RecordCallEnd decrements in-flight gauge.
func (mc *MetricsCollector) RecordCallEnd(kind, route string) {
	if mc == nil {
		return
	}

	mc.callsInFlight.WithLabelValues(kind, route).Dec()
}

// RecordError increments failure counter by error kind.
func (mc *MetricsCollector) RecordError(errorKind, route string) {
	if mc == nil {
		return
	}

	mc.errorsTotal.WithLabelValues(errorKind, route).Inc()
}

// RecordPrefetch increments the prefetch counter.
func (mc *MetricsCollector) RecordPrefetch(route string) {
	if mc == nil {
		return
	}

	mc.prefetchesTotal.WithLabelValues(route).Inc()
}

// RecordInvalidation increments the invalidation counter.
func (mc *MetricsCollector) RecordInvalidation(route string) {
	if mc == nil {
		return
	}

	mc.invalidationsTotal.WithLabelValues(route).Inc()
}

// RecordStoreEntries sets the store entry gauge.
func (mc *MetricsCollector) RecordStoreEntries(name string, size int) {
	if mc == nil {
		return
	}

	mc.storeEntries.WithLabelValues(name).Set(float64(size))
}

// Registry exposes the underlying prometheus registry when the collector
// was built on one, else nil.
func (mc *MetricsCollector) Registry() *prometheus.Registry {
	if reg, ok := mc.registry.(*prometheus.Registry); ok {
		return reg
	}
	return nil
}

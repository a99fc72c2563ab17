package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     prometheus.CounterVec
	HTTPRequestDuration   prometheus.HistogramVec
	HTTPActiveConnections prometheus.GaugeVec

	// Identification metrics
	IdentificationsTotal   prometheus.CounterVec
	IdentificationDuration prometheus.HistogramVec

	// Enrichment metrics
	EnrichmentAttemptsTotal prometheus.CounterVec
	EnrichmentFallbackTotal prometheus.CounterVec

	// Watering metrics
	WateringsRecordedTotal    prometheus.CounterVec
	WateringChecksTotal       prometheus.CounterVec
	NotificationsEmittedTotal prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of in-flight HTTP requests",
				},
				[]string{"method", "path"},
			),
			IdentificationsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "plant_identifications_total",
					Help: "Total plant identification requests by outcome",
				},
				[]string{"outcome"}, // matched, no_match, error
			),
			IdentificationDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "plant_identification_duration_seconds",
					Help:    "PlantNet API call latency in seconds",
					Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
				},
				[]string{"outcome"},
			),
			EnrichmentAttemptsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "enrichment_attempts_total",
					Help: "Text-generation attempts by model and outcome",
				},
				[]string{"model", "outcome"}, // success, loading, failed, short
			),
			EnrichmentFallbackTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "enrichment_fallback_total",
					Help: "Enrichment calls that returned the canned fallback",
				},
				[]string{"reason"},
			),
			WateringsRecordedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "waterings_recorded_total",
					Help: "Watering events recorded",
				},
				[]string{"status"},
			),
			WateringChecksTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "watering_checks_total",
					Help: "Watering notification passes by outcome",
				},
				[]string{"outcome"},
			),
			NotificationsEmittedTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notifications_emitted_total",
					Help: "Notifications created by type",
				},
				[]string{"type"},
			),
			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Cache hits by cache name",
				},
				[]string{"cache"},
			),
			CacheMissesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Cache misses by cache name",
				},
				[]string{"cache"},
			),
			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by the rate limiter",
				},
				[]string{"endpoint", "method"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it if needed
func Get() *Metrics {
	if instance == nil {
		return Initialize()
	}
	return instance
}

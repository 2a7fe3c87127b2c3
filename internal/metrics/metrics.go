package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrorsClassified counts classified failures by kind.
	ErrorsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wlp_errors_classified_total",
			Help: "Total number of failures classified, by kind",
		},
		[]string{"kind"},
	)

	// NotificationsShown counts notification opens per surface.
	NotificationsShown = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wlp_notifications_shown_total",
			Help: "Total number of notification opens, by slot",
		},
		[]string{"slot"},
	)

	// ConnectivityOnline is 1 while the device is considered online.
	ConnectivityOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wlp_connectivity_online",
			Help: "Whether the connectivity monitor currently reports online",
		},
	)

	// WeatherFetchesTotal counts weather refresh attempts by outcome.
	WeatherFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wlp_weather_fetches_total",
			Help: "Total number of weather refresh attempts, by outcome",
		},
		[]string{"outcome"},
	)

	// WeatherFetchLatency tracks combined weather refresh latency.
	WeatherFetchLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wlp_weather_fetch_latency_seconds",
			Help:    "Latency of the combined weather refresh in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DedupSkippedTotal counts fetches skipped because the same logical
	// operation was already in flight.
	DedupSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wlp_dedup_skipped_total",
			Help: "Total number of operations skipped by the in-flight deduplicator",
		},
		[]string{"operation"},
	)

	// BackendCallsTotal counts calls against the auth/data backend.
	BackendCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wlp_backend_calls_total",
			Help: "Total number of backend API calls, by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.3, 1, 3},
		},
		[]string{"method", "route"},
	)

	InFlightRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	RealtimeSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_subscribers",
			Help: "Open realtime change feed subscriptions",
		},
	)

	RealtimeChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_changes_published_total",
			Help: "Row changes published to the realtime hub",
		},
		[]string{"table", "type"},
	)

	RealtimeDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_changes_dropped_total",
			Help: "Notifications dropped because a subscriber buffer was full",
		},
	)

	SyncedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calendar_sync_events_total",
			Help: "Calendar events processed by the export worker",
		},
		[]string{"result"},
	)

	CalendarTokenRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calendar_token_refreshes_total",
			Help: "Refreshed OAuth tokens written back after a calendar run",
		},
	)
)

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_refresh_total",
			Help: "Board refreshes by trigger source and outcome",
		},
		[]string{"trigger", "outcome"},
	)

	refreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "board_refresh_duration_seconds",
			Help:    "Duration of full board re-fetch and remap",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)

	staleResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "board_stale_responses_total",
			Help: "Fetch responses discarded because a newer fetch was issued",
		},
	)

	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "station_transitions_total",
			Help: "Operator status transitions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	announcementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "board_announcements_total",
			Help: "Audio announcements published per counter",
		},
		[]string{"counter_id"},
	)

	realtimeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_total",
			Help: "Realtime channel events by name and whether they triggered a refresh",
		},
		[]string{"event", "handled"},
	)
)

func TrackRefresh(trigger, outcome string, elapsed time.Duration) {
	refreshTotal.WithLabelValues(trigger, outcome).Inc()
	refreshDuration.Observe(elapsed.Seconds())
}

func TrackStaleResponse() {
	staleResponses.Inc()
}

func TrackTransition(action, outcome string) {
	transitionsTotal.WithLabelValues(action, outcome).Inc()
}

func TrackAnnouncement(counterID string) {
	announcementsTotal.WithLabelValues(counterID).Inc()
}

func TrackRealtimeEvent(event string, handled bool) {
	label := "false"
	if handled {
		label = "true"
	}
	realtimeEvents.WithLabelValues(event, label).Inc()
}

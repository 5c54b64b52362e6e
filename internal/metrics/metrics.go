// Package metrics exposes Prometheus counters for the input pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sweeney/pad-input/internal/logic"
)

var (
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pad_input_notifications_total",
			Help: "Raw notifications received per source",
		},
		[]string{"source"},
	)

	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pad_input_events_total",
			Help: "Decoded events published per source and edge",
		},
		[]string{"source", "edge"},
	)

	inferredReleasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pad_input_inferred_releases_total",
			Help: "Controller releases inferred from keyboard cadence",
		},
	)

	droppedEventsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pad_input_dropped_events_total",
			Help: "Events dropped because a buffered subscriber was full",
		},
	)

	publishErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pad_input_publish_errors_total",
			Help: "Failed MQTT publishes",
		},
	)
)

// ObserveNotification counts one raw notification from source.
func ObserveNotification(source logic.Source) {
	notificationsTotal.WithLabelValues(string(source)).Inc()
}

// ObserveEvent counts a published event. It has the shape of an event.Handler.
func ObserveEvent(e logic.Event) {
	eventsTotal.WithLabelValues(string(e.Source()), e.Edge().String()).Inc()
	if e.Inferred {
		inferredReleasesTotal.Inc()
	}
}

// ObserveDropped counts one dropped event.
func ObserveDropped() {
	droppedEventsTotal.Inc()
}

// ObservePublishError counts one failed publish.
func ObservePublishError() {
	publishErrorsTotal.Inc()
}

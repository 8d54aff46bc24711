// Package metrics provides Prometheus instrumentation for stream
// reconciliation: frames decoded, events applied by outcome, and how streams
// ended.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Event outcomes
const (
	OutcomeApplied = "applied"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

var (
	// EventsApplied counts events handled by the applier, labeled by event
	// type and outcome: "applied", "skipped" or "failed".
	EventsApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "easel_events_total",
		Help: "Stream events handled by the applier",
	}, []string{"type", "outcome"})

	// FramesDecoded counts frames seen by decoders, labeled by result:
	// "event", "malformed" or "ignored".
	FramesDecoded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "easel_frames_total",
		Help: "Stream frames seen by the decoder",
	}, []string{"result"})

	// StreamsCompleted counts streams by terminal state.
	StreamsCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "easel_streams_total",
		Help: "Agent streams by terminal state",
	}, []string{"state"})

	// StreamDuration records how long streams were consumed, in seconds.
	StreamDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "easel_stream_duration_seconds",
		Help:    "Time spent consuming an agent stream",
		Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	// ActiveStreams is 1 while a session is consuming a stream.
	ActiveStreams = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "easel_active_streams",
		Help: "Streams currently being consumed",
	})
)

func init() {
	prometheus.MustRegister(
		EventsApplied,
		FramesDecoded,
		StreamsCompleted,
		StreamDuration,
		ActiveStreams,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

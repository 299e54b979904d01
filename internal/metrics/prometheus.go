package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/cowell/pkg/dynamo"
)

var (
	propagationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cowell_propagations_total",
			Help: "Total number of propagations by mode and result.",
		},
		[]string{"mode", "result"},
	)

	propagationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cowell_propagation_duration_seconds",
			Help:    "Wall time of a propagation in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	stepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cowell_steps_total",
			Help: "Integrator steps by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	evalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cowell_term_evaluations_total",
			Help: "Right-hand side evaluations by mode.",
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(propagationsTotal)
	prometheus.MustRegister(propagationDurationSeconds)
	prometheus.MustRegister(stepsTotal)
	prometheus.MustRegister(evalsTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPropagation updates the collectors for one finished propagation.
func RecordPropagation(mode string, sol *dynamo.Solution, elapsed time.Duration) {
	propagationsTotal.WithLabelValues(mode, sol.Result.String()).Inc()
	propagationDurationSeconds.WithLabelValues(mode).Observe(elapsed.Seconds())
	stepsTotal.WithLabelValues(mode, "accepted").Add(float64(sol.Stats.NumAccepted))
	stepsTotal.WithLabelValues(mode, "rejected").Add(float64(sol.Stats.NumRejected))
	evalsTotal.WithLabelValues(mode).Add(float64(sol.Stats.NumEvals))
}

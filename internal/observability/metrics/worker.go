package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	jobTotal    *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	jobInFlight prometheus.Gauge
	inputChars  *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	jobTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "summarize_jobs_total",
			Help:      "Total summarize jobs answered by outcome.",
		},
		[]string{"service", "outcome"},
	)
	jobDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "summarize_job_duration_seconds",
			Help:      "Summarize job duration in seconds by outcome.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"service", "outcome"},
	)
	jobInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "summarize_jobs_in_flight",
			Help:      "Number of in-flight summarize jobs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	inputChars := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "summarize_input_chars",
			Help:      "Size of the text handed to the summarizer.",
			Buckets:   prometheus.ExponentialBuckets(500, 2, 10),
		},
		[]string{"service"},
	)

	registry.MustRegister(jobTotal, jobDuration, jobInFlight, inputChars)

	return &WorkerMetrics{
		registry:    registry,
		jobTotal:    jobTotal,
		jobDuration: jobDuration,
		jobInFlight: jobInFlight,
		inputChars:  inputChars,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartJob(service string, chars int) {
	m.jobInFlight.Inc()
	m.inputChars.WithLabelValues(service).Observe(float64(chars))
}

func (m *WorkerMetrics) FinishJob(service, outcome string, duration time.Duration) {
	m.jobInFlight.Dec()
	if outcome == "" {
		outcome = "unknown"
	}
	m.jobTotal.WithLabelValues(service, outcome).Inc()
	m.jobDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
}

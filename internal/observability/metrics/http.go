package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "digest"

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	documentsTotal     *prometheus.CounterVec
	documentPages      *prometheus.HistogramVec
	documentBlocks     *prometheus.HistogramVec
	summariesTotal     *prometheus.CounterVec
	summaryDuration    *prometheus.HistogramVec
	summaryWords       *prometheus.HistogramVec
	activeSessionsFunc prometheus.GaugeFunc
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Documents loaded into sessions by extraction completeness.",
		},
		[]string{"service", "complete"},
	)
	documentPages := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "document_pages",
			Help:      "Pages extracted per loaded document.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 250, 500},
		},
		[]string{"service"},
	)
	documentBlocks := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "document_blocks",
			Help:      "Text blocks produced per loaded document.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"service"},
	)
	summariesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "summaries_total",
			Help:      "Summarization requests by outcome.",
		},
		[]string{"service", "outcome"},
	)
	summaryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "summary_duration_seconds",
			Help:      "Summarization duration in seconds by outcome.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"service", "outcome"},
	)
	summaryWords := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "summary_words",
			Help:      "Word count of successful summaries.",
			Buckets:   []float64{25, 50, 100, 150, 200, 300, 400, 500, 750},
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		documentsTotal,
		documentPages,
		documentBlocks,
		summariesTotal,
		summaryDuration,
		summaryWords,
	)

	return &HTTPServerMetrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		documentsTotal:  documentsTotal,
		documentPages:   documentPages,
		documentBlocks:  documentBlocks,
		summariesTotal:  summariesTotal,
		summaryDuration: summaryDuration,
		summaryWords:    summaryWords,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TrackSessions exposes the live session count read from fn on every scrape.
func (m *HTTPServerMetrics) TrackSessions(service string, fn func() float64) {
	if m.activeSessionsFunc != nil || fn == nil {
		return
	}
	m.activeSessionsFunc = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace:   namespace,
			Subsystem:   "pipeline",
			Name:        "active_sessions",
			Help:        "Sessions currently held by the session store.",
			ConstLabels: prometheus.Labels{"service": service},
		},
		fn,
	)
	m.registry.MustRegister(m.activeSessionsFunc)
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath folds session ids so label cardinality stays bounded.
func normalizePath(path string) string {
	const prefix = "/v1/sessions/"
	if !strings.HasPrefix(path, prefix) {
		return path
	}
	rest := strings.TrimPrefix(path, prefix)
	if rest == "" {
		return path
	}
	if slash := strings.Index(rest, "/"); slash >= 0 {
		return prefix + "{session_id}" + rest[slash:]
	}
	return prefix + "{session_id}"
}

func (m *HTTPServerMetrics) RecordDocument(service string, pages, blocks int, complete bool) {
	m.documentsTotal.WithLabelValues(service, strconv.FormatBool(complete)).Inc()
	m.documentPages.WithLabelValues(service).Observe(float64(pages))
	m.documentBlocks.WithLabelValues(service).Observe(float64(blocks))
}

// RecordSummary counts one summarization attempt. outcome is "success" or a
// failure kind.
func (m *HTTPServerMetrics) RecordSummary(service, outcome string, duration time.Duration, words int) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.summariesTotal.WithLabelValues(service, outcome).Inc()
	m.summaryDuration.WithLabelValues(service, outcome).Observe(duration.Seconds())
	if outcome == "success" {
		m.summaryWords.WithLabelValues(service).Observe(float64(words))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}

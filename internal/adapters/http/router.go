package httpadapter

import (
	"net/http"

	"github.com/kirillkom/pdf-digest/internal/config"
	"github.com/kirillkom/pdf-digest/internal/core/ports"
	"github.com/kirillkom/pdf-digest/internal/observability/metrics"
)

const metricsService = "api"

type Router struct {
	cfg       config.Config
	ingest    ports.DocumentIngestor
	summaries ports.SummaryService
	sessions  ports.SessionReader
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingest ports.DocumentIngestor,
	summaries ports.SummaryService,
	sessions ports.SessionReader,
) *Router {
	return &Router{
		cfg:       cfg,
		ingest:    ingest,
		summaries: summaries,
		sessions:  sessions,
	}
}

// WithMetrics enables the /metrics endpoint and request instrumentation.
func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.yaml", serveOpenAPI)
	mux.HandleFunc("GET /v1/summary-length", rt.summaryLength)

	mux.HandleFunc("POST /v1/sessions", rt.createSession)
	mux.HandleFunc("GET /v1/sessions/{id}", rt.getSession)
	mux.HandleFunc("DELETE /v1/sessions/{id}", rt.deleteSession)
	mux.HandleFunc("PUT /v1/sessions/{id}/document", rt.replaceDocument)
	mux.HandleFunc("POST /v1/sessions/{id}/summary", rt.summarize)
	mux.HandleFunc("GET /v1/sessions/{id}/summary", rt.getSummary)
	mux.HandleFunc("GET /v1/sessions/{id}/export", rt.exportSession)

	var handler http.Handler = contractMiddleware(contract, mux)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware(metricsService, handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.APIBackpressureWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = recoverMiddleware(handler)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) summaryLength(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.summaries.LengthRange())
}

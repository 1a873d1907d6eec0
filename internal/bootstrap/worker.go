package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/pdf-digest/internal/config"
	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/core/ports"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/queue/nats"
	"github.com/kirillkom/pdf-digest/internal/observability/metrics"
)

const workerService = "worker"

type Worker struct {
	Queue      *nats.Queue
	Summarizer ports.Summarizer
	Metrics    *metrics.WorkerMetrics

	closeFns []func()
}

// NewWorker connects to NATS and builds the local backend that answers
// summarize requests. A worker never forwards to another worker.
func NewWorker(cfg config.Config) (*Worker, error) {
	if strings.EqualFold(strings.TrimSpace(cfg.WorkerBackend), BackendNATS) {
		return nil, fmt.Errorf("worker backend must be a local summarizer, got %q", cfg.WorkerBackend)
	}
	local, closeLocal, err := NewSummarizer(cfg, cfg.WorkerBackend)
	if err != nil {
		return nil, err
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSummarizeSubject, nats.Options{
		ClientName:     "pdf-digest-worker",
		RequestTimeout: cfg.SummarizeTimeout,
	})
	if err != nil {
		closeLocal()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	workerMetrics := metrics.NewWorkerMetrics(workerService)
	return &Worker{
		Queue:      queue,
		Summarizer: newInstrumentedSummarizer(local, workerMetrics),
		Metrics:    workerMetrics,
		closeFns:   []func(){queue.Close, closeLocal},
	}, nil
}

// Run answers requests until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	return w.Queue.ServeSummarize(ctx, w.Summarizer)
}

func (w *Worker) Close() {
	for _, fn := range w.closeFns {
		fn()
	}
	w.closeFns = nil
}

type instrumentedSummarizer struct {
	next    ports.Summarizer
	metrics *metrics.WorkerMetrics
}

func newInstrumentedSummarizer(next ports.Summarizer, m *metrics.WorkerMetrics) *instrumentedSummarizer {
	return &instrumentedSummarizer{next: next, metrics: m}
}

func (s *instrumentedSummarizer) Summarize(ctx context.Context, text string, bounds domain.SummaryLengthBounds) (string, error) {
	start := time.Now()
	s.metrics.StartJob(workerService, len(text))

	summary, err := s.next.Summarize(ctx, text, bounds)
	outcome := "success"
	if err != nil {
		outcome = domain.DescribeError(err).Kind
	}
	s.metrics.FinishJob(workerService, outcome, time.Since(start))
	return summary, err
}

package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/core/ports"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/resilience"
)

const (
	summarizeOperation = "nats_summarize"
	workerQueueGroup   = "summarizers"
	drainGrace         = 5 * time.Second
)

var errWorkerStopping = errors.New("worker is shutting down")

// Queue carries summarize requests between API replicas and workers over
// NATS request/reply.
type Queue struct {
	conn           *nats.Conn
	subject        string
	requestTimeout time.Duration
	breakers       *resilience.Breakers
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	RequestTimeout       time.Duration
	ClientName           string
	Breakers             *resilience.Breakers
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	requestTimeout := options.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 120 * time.Second
	}
	name := options.ClientName
	if name == "" {
		name = "pdf-digest"
	}

	conn, err := nats.Connect(
		url,
		nats.Name(name),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:           conn,
		subject:        subject,
		requestTimeout: requestTimeout,
		breakers:       options.Breakers,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// Summarize hands the text to whichever worker answers first. The request
// is sent once.
func (q *Queue) Summarize(ctx context.Context, text string, bounds domain.SummaryLengthBounds) (string, error) {
	payload, err := encodeRequest(text, bounds)
	if err != nil {
		return "", err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.requestTimeout)
		defer cancel()
	}

	var data []byte
	call := func(callCtx context.Context) error {
		msg, err := q.conn.RequestWithContext(callCtx, q.subject, payload)
		if err != nil {
			return fmt.Errorf("nats request: %w", err)
		}
		data = msg.Data
		return nil
	}

	if q.breakers != nil {
		err = q.breakers.Call(ctx, summarizeOperation, call, nil)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", classifyRequestFailure(err)
	}
	return decodeReply(data)
}

// ServeSummarize answers summarize requests until ctx is done, then drains
// the subscription. Requests already accepted run to completion on their own
// deadline; requests delivered after shutdown begins are answered as
// unavailable.
func (q *Queue) ServeSummarize(ctx context.Context, summarizer ports.Summarizer) error {
	sub, err := q.conn.QueueSubscribe(q.subject, workerQueueGroup, func(msg *nats.Msg) {
		q.handleMessage(ctx, summarizer, msg.Data, msg.Respond)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := waitDrained(sub, q.requestTimeout+drainGrace); err != nil {
		return err
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func (q *Queue) handleMessage(ctx context.Context, summarizer ports.Summarizer, data []byte, respond func([]byte) error) {
	var reply []byte
	if ctx.Err() != nil {
		reply = encodeReply("", domain.WrapError(domain.ErrSummarizerUnavailable, "nats worker", errWorkerStopping))
	} else {
		requestCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.requestTimeout)
		reply = HandleSummarizeRequest(requestCtx, summarizer, data)
		cancel()
	}
	if err := respond(reply); err != nil {
		slog.Error("nats_respond_failed", "subject", q.subject, "error", err)
	}
}

// waitDrained blocks until every message buffered before Drain was handled.
func waitDrained(sub *nats.Subscription, limit time.Duration) error {
	deadline := time.Now().Add(limit)
	for sub.IsValid() {
		if time.Now().After(deadline) {
			return fmt.Errorf("nats drain: still busy after %s", limit)
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}

// HandleSummarizeRequest decodes one request, runs it and encodes the reply.
func HandleSummarizeRequest(ctx context.Context, summarizer ports.Summarizer, data []byte) []byte {
	text, bounds, err := decodeRequest(data)
	if err != nil {
		return encodeReply("", err)
	}

	summary, err := summarizer.Summarize(ctx, text, bounds)
	if err != nil {
		err = classifyWorkerFailure(err)
		slog.Warn("worker_summarize_failed", "error", err, "kind", domain.DescribeError(err).Kind)
		return encodeReply("", err)
	}
	return encodeReply(summary, nil)
}

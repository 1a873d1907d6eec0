package nats

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/resilience"
)

func isTransportError(err error) bool {
	return errors.Is(err, nats.ErrNoResponders) ||
		errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrDisconnected)
}

// classifyRequestFailure maps a failed request onto the summarizer error
// kinds. A missing worker or broker is unavailable; a request timeout means
// the worker did not finish this input in time.
func classifyRequestFailure(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if resilience.IsOpen(err) || isTransportError(err) {
		return domain.WrapError(domain.ErrSummarizerUnavailable, "nats summarize", err)
	}
	return domain.WrapError(domain.ErrSummarizationRejected, "nats summarize", err)
}

// classifyWorkerFailure names the kind of an error the local backend returned
// without one. A cancelled call means the worker went away; a deadline means
// this input took too long.
func classifyWorkerFailure(err error) error {
	if err == nil || domain.DescribeError(err).Kind != domain.KindInternal {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return domain.WrapError(domain.ErrSummarizerUnavailable, "nats worker", err)
	case errors.Is(err, context.DeadlineExceeded):
		return domain.WrapError(domain.ErrSummarizationRejected, "nats worker", err)
	}
	return err
}

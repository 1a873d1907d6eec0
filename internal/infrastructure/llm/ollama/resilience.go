package ollama

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/resilience"
)

// countsAgainstOllama reports whether err says the server or model is
// unhealthy. Other 4xx answers are about this request.
func countsAgainstOllama(err error) bool {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusNotFound || isBackendDownStatus(statusErr.StatusCode)
	}
	return true
}

// classifySummarizeFailure maps a failed call onto the summarizer error kinds.
// Context errors pass through so the caller can tell its own cancellation
// apart from the backend's.
func classifySummarizeFailure(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if resilience.IsOpen(err) {
		return domain.WrapError(domain.ErrSummarizerUnavailable, "ollama summarize", err)
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusNotFound || isBackendDownStatus(statusErr.StatusCode) {
			return domain.WrapError(domain.ErrSummarizerUnavailable, "ollama summarize", err)
		}
		return domain.WrapError(domain.ErrSummarizationRejected, "ollama summarize", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return domain.WrapError(domain.ErrSummarizationRejected, "ollama summarize", err)
		}
		return domain.WrapError(domain.ErrSummarizerUnavailable, "ollama summarize", err)
	}

	return domain.WrapError(domain.ErrSummarizationRejected, "ollama summarize", err)
}

func isBackendDownStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

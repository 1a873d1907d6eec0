package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrStaleDocument):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrSummarizerUnavailable):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrSummarizationRejected):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrExtractionFailed):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	failure := domain.DescribeError(err)
	if status == http.StatusRequestEntityTooLarge {
		failure.Kind = domain.KindInvalidInput
	}
	if status >= http.StatusInternalServerError && failure.Kind == domain.KindInternal {
		slog.Error("request_failed", "error", err)
		failure.Message = "internal error"
	}
	writeJSON(w, status, failure)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

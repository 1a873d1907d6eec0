package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

type summarizeRequest struct {
	TargetLength int `json:"target_length"`
}

func (rt *Router) summarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "decode summarize request", fmt.Errorf("invalid json")))
		return
	}
	if req.TargetLength == 0 {
		req.TargetLength = rt.summaries.LengthRange().Default
	}

	start := time.Now()
	result, err := rt.summaries.Summarize(r.Context(), r.PathValue("id"), req.TargetLength)
	if err != nil {
		rt.recordSummary(domain.DescribeError(err).Kind, time.Since(start), 0)
		writeError(w, err)
		return
	}
	rt.recordSummary("success", time.Since(start), result.WordCount())
	writeJSON(w, http.StatusOK, newSummaryView(result))
}

func (rt *Router) getSummary(w http.ResponseWriter, r *http.Request) {
	session, err := rt.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryStateView{
		State:   session.State,
		Summary: newSummaryView(session.Summary),
	})
}

func (rt *Router) recordSummary(outcome string, duration time.Duration, words int) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordSummary(metricsService, outcome, duration, words)
}

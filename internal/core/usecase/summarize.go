package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/core/ports"
)

type SummarizeUseCase struct {
	store      ports.SessionStore
	policy     ports.LengthPolicy
	summarizer ports.Summarizer
	timeout    time.Duration
	locks      *sessionLocks
	now        func() time.Time
}

func NewSummarizeUseCase(
	store ports.SessionStore,
	policy ports.LengthPolicy,
	summarizer ports.Summarizer,
	timeout time.Duration,
) *SummarizeUseCase {
	return &SummarizeUseCase{
		store:      store,
		policy:     policy,
		summarizer: summarizer,
		timeout:    timeout,
		locks:      newSessionLocks(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (uc *SummarizeUseCase) LengthRange() domain.SummaryLengthRange {
	return uc.policy.Range()
}

// Summarize runs the summarizer over the active document of a session and
// stores the result. Calls for the same session run one at a time; on any
// failure the stored session is left as it was.
func (uc *SummarizeUseCase) Summarize(ctx context.Context, sessionID string, targetLength int) (*domain.SummaryResult, error) {
	bounds, err := uc.policy.Bounds(targetLength)
	if err != nil {
		return nil, err
	}

	unlock, err := uc.locks.lock(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("wait for session: %w", err)
	}
	defer unlock()

	session, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	text := session.Document.Text
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrSummarizationRejected, "summarize", errors.New("document has no extracted text"))
	}

	start := uc.now()
	summary, err := uc.callSummarizer(ctx, text, bounds)
	if err != nil {
		slog.Warn("summarize_failed",
			"session_id", sessionID,
			"document_id", session.Document.ID,
			"max_length", bounds.MaxLength,
			"error", err,
		)
		return nil, err
	}

	result := domain.SummaryResult{
		DocumentID:   session.Document.ID,
		Text:         summary,
		TargetLength: targetLength,
		Bounds:       bounds,
		Duration:     uc.now().Sub(start),
		CreatedAt:    uc.now(),
	}
	if _, err := uc.store.SaveSummary(ctx, sessionID, result); err != nil {
		return nil, fmt.Errorf("save summary: %w", err)
	}
	return &result, nil
}

func (uc *SummarizeUseCase) callSummarizer(ctx context.Context, text string, bounds domain.SummaryLengthBounds) (string, error) {
	callCtx := ctx
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	summary, err := uc.summarizer.Summarize(callCtx, text, bounds)
	if err != nil {
		return "", classifySummarizeError(ctx, err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", domain.WrapError(domain.ErrSummarizationRejected, "summarize", errors.New("summarizer returned empty text"))
	}
	return summary, nil
}

// classifySummarizeError makes sure every failure leaving the use case carries
// one of the two summarization kinds. Anything unclassified, including a
// deadline hit by this call, counts as a rejection of the input.
func classifySummarizeError(parent context.Context, err error) error {
	switch {
	case domain.IsKind(err, domain.ErrSummarizerUnavailable), domain.IsKind(err, domain.ErrSummarizationRejected):
		return err
	case parent.Err() != nil:
		return fmt.Errorf("summarize: %w", err)
	default:
		return domain.WrapError(domain.ErrSummarizationRejected, "summarize", err)
	}
}

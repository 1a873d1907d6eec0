package domain

import (
	"fmt"
	"time"
)

type SummaryState string

const (
	SummaryStateEmpty      SummaryState = "empty"
	SummaryStateHasSummary SummaryState = "has_summary"
)

// Session is one user interaction: the active document and at most one summary.
// Values returned by stores are snapshots; mutate only through the methods below.
type Session struct {
	ID        string         `json:"id"`
	Document  DocumentDigest `json:"document"`
	State     SummaryState   `json:"state"`
	Summary   *SummaryResult `json:"summary,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func NewSession(id string, doc DocumentDigest, now time.Time) *Session {
	return &Session{
		ID:        id,
		Document:  doc,
		State:     SummaryStateEmpty,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ReplaceDocument starts over with a new document and drops any summary.
func (s *Session) ReplaceDocument(doc DocumentDigest, now time.Time) {
	s.Document = doc
	s.State = SummaryStateEmpty
	s.Summary = nil
	s.UpdatedAt = now
}

// ApplySummary replaces the current summary. The result must belong to the
// active document.
func (s *Session) ApplySummary(result SummaryResult, now time.Time) error {
	if result.DocumentID != s.Document.ID {
		return WrapError(ErrStaleDocument, "apply summary", fmt.Errorf("summary for %s, active document %s", result.DocumentID, s.Document.ID))
	}
	switch s.State {
	case SummaryStateEmpty, SummaryStateHasSummary:
	default:
		return fmt.Errorf("apply summary: unknown state %q", s.State)
	}
	copyResult := result
	s.Summary = &copyResult
	s.State = SummaryStateHasSummary
	s.UpdatedAt = now
	return nil
}

// Clone returns a deep copy safe to hand to readers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Document = s.Document.clone()
	if s.Summary != nil {
		summary := *s.Summary
		out.Summary = &summary
	}
	return &out
}

package httpadapter

import (
	"time"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

type documentView struct {
	ID          string   `json:"id"`
	Filename    string   `json:"filename"`
	MimeType    string   `json:"mime_type"`
	SizeBytes   int64    `json:"size_bytes"`
	PageCount   int      `json:"page_count"`
	WordCount   int      `json:"word_count"`
	BlockCount  int      `json:"block_count"`
	Blocks      []string `json:"blocks"`
	Complete    bool     `json:"complete"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

type summaryView struct {
	Text         string    `json:"text"`
	WordCount    int       `json:"word_count"`
	TargetLength int       `json:"target_length"`
	MinLength    int       `json:"min_length"`
	MaxLength    int       `json:"max_length"`
	DurationMS   float64   `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

type sessionView struct {
	ID        string              `json:"id"`
	State     domain.SummaryState `json:"state"`
	Document  documentView        `json:"document"`
	Summary   *summaryView        `json:"summary,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type summaryStateView struct {
	State   domain.SummaryState `json:"state"`
	Summary *summaryView        `json:"summary,omitempty"`
}

// newSessionView shows the first visible blocks; visible <= 0 shows all.
func newSessionView(session *domain.Session, visible int) sessionView {
	doc := session.Document
	return sessionView{
		ID:    session.ID,
		State: session.State,
		Document: documentView{
			ID:          doc.ID,
			Filename:    doc.Filename,
			MimeType:    doc.MimeType,
			SizeBytes:   doc.SizeBytes,
			PageCount:   doc.PageCount,
			WordCount:   doc.WordCount(),
			BlockCount:  len(doc.Blocks),
			Blocks:      domain.VisibleBlocks(doc.Blocks, visible),
			Complete:    doc.Complete,
			Diagnostics: doc.Diagnostics,
		},
		Summary:   newSummaryView(session.Summary),
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

func newSummaryView(result *domain.SummaryResult) *summaryView {
	if result == nil {
		return nil
	}
	return &summaryView{
		Text:         result.Text,
		WordCount:    result.WordCount(),
		TargetLength: result.TargetLength,
		MinLength:    result.Bounds.MinLength,
		MaxLength:    result.Bounds.MaxLength,
		DurationMS:   float64(result.Duration.Microseconds()) / 1000.0,
		CreatedAt:    result.CreatedAt,
	}
}

package ports

import (
	"context"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

// PageTextExtractor turns one uploaded document into ordered page texts.
// On a document level failure it returns the pages read so far together with
// an error of kind domain.ErrExtractionFailed.
type PageTextExtractor interface {
	ExtractPages(ctx context.Context, upload domain.Upload) (domain.Extraction, error)
}

// Summarizer maps text and generation bounds to a summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string, bounds domain.SummaryLengthBounds) (string, error)
}

// SessionStore keeps interaction scoped state. Implementations return copies
// and apply every mutation atomically.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	ReplaceDocument(ctx context.Context, id string, doc domain.DocumentDigest) (*domain.Session, error)
	SaveSummary(ctx context.Context, id string, result domain.SummaryResult) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// Segmenter splits assembled text into display blocks.
type Segmenter interface {
	Segment(text string) []string
}

// LengthPolicy derives generation bounds from a user chosen target length.
type LengthPolicy interface {
	Bounds(target int) (domain.SummaryLengthBounds, error)
	Range() domain.SummaryLengthRange
}

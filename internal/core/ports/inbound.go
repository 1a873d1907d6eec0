package ports

import (
	"context"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

// DocumentIngestor loads a document into a new or existing interaction.
type DocumentIngestor interface {
	Open(ctx context.Context, upload domain.Upload) (*domain.Session, error)
	Replace(ctx context.Context, sessionID string, upload domain.Upload) (*domain.Session, error)
}

// SummaryService runs user triggered summarization.
type SummaryService interface {
	Summarize(ctx context.Context, sessionID string, targetLength int) (*domain.SummaryResult, error)
	LengthRange() domain.SummaryLengthRange
}

// SessionReader is the read model for the active interaction.
type SessionReader interface {
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Close(ctx context.Context, sessionID string) error
}

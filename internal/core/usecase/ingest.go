package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/core/ports"
	"github.com/kirillkom/pdf-digest/internal/core/textproc"
)

type IngestDocumentUseCase struct {
	extractor ports.PageTextExtractor
	segmenter ports.Segmenter
	store     ports.SessionStore
	now       func() time.Time
}

func NewIngestDocumentUseCase(
	extractor ports.PageTextExtractor,
	segmenter ports.Segmenter,
	store ports.SessionStore,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		extractor: extractor,
		segmenter: segmenter,
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Open starts a new interaction around the uploaded document.
func (uc *IngestDocumentUseCase) Open(ctx context.Context, upload domain.Upload) (*domain.Session, error) {
	doc, err := uc.digest(ctx, upload)
	if err != nil {
		return nil, err
	}

	session := domain.NewSession(uuid.NewString(), doc, uc.now())
	if err := uc.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session.Clone(), nil
}

// Replace loads a new document into an existing interaction. Any summary of
// the previous document is dropped.
func (uc *IngestDocumentUseCase) Replace(ctx context.Context, sessionID string, upload domain.Upload) (*domain.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "replace document", errors.New("session id is required"))
	}
	doc, err := uc.digest(ctx, upload)
	if err != nil {
		return nil, err
	}

	session, err := uc.store.ReplaceDocument(ctx, sessionID, doc)
	if err != nil {
		return nil, fmt.Errorf("replace document: %w", err)
	}
	return session, nil
}

func (uc *IngestDocumentUseCase) digest(ctx context.Context, upload domain.Upload) (domain.DocumentDigest, error) {
	if len(upload.Body) == 0 {
		return domain.DocumentDigest{}, domain.WrapError(domain.ErrInvalidInput, "digest document", errors.New("empty upload"))
	}

	extraction, err := uc.extractPages(ctx, upload)
	if err != nil {
		return domain.DocumentDigest{}, err
	}

	text := textproc.Assemble(extraction.Pages)
	return domain.DocumentDigest{
		ID:          uuid.NewString(),
		Filename:    filepath.Base(upload.Filename),
		MimeType:    upload.MimeType,
		SizeBytes:   int64(len(upload.Body)),
		PageCount:   len(extraction.Pages),
		Text:        text,
		Blocks:      uc.segmenter.Segment(text),
		Diagnostics: extraction.Diagnostics,
		Complete:    extraction.Complete,
		UploadedAt:  uc.now(),
	}, nil
}

// extractPages keeps whatever pages were read when extraction fails part way.
// Only cancellation and unsupported input abort the upload.
func (uc *IngestDocumentUseCase) extractPages(ctx context.Context, upload domain.Upload) (domain.Extraction, error) {
	extraction, err := uc.extractor.ExtractPages(ctx, upload)
	if err == nil {
		return extraction, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.Extraction{}, fmt.Errorf("extract pages: %w", ctxErr)
	}
	if domain.IsKind(err, domain.ErrInvalidInput) {
		return domain.Extraction{}, err
	}

	slog.Warn("document_extraction_incomplete",
		"filename", upload.Filename,
		"pages", len(extraction.Pages),
		"error", err,
	)
	extraction.Complete = false
	extraction.Diagnostics = append(extraction.Diagnostics, err.Error())
	return extraction, nil
}

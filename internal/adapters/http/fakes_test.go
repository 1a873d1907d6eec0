package httpadapter

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kirillkom/pdf-digest/internal/config"
	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

type ingestFake struct {
	err     error
	uploads []domain.Upload
}

func (f *ingestFake) Open(_ context.Context, upload domain.Upload) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploads = append(f.uploads, upload)
	return sampleSession("s-1", upload.Filename), nil
}

func (f *ingestFake) Replace(_ context.Context, sessionID string, upload domain.Upload) (*domain.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploads = append(f.uploads, upload)
	return sampleSession(sessionID, upload.Filename), nil
}

type summaryFake struct {
	err     error
	targets []int
}

func (f *summaryFake) Summarize(_ context.Context, sessionID string, targetLength int) (*domain.SummaryResult, error) {
	f.targets = append(f.targets, targetLength)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SummaryResult{
		DocumentID:   "d-1",
		Text:         "A compact summary of the document.",
		TargetLength: targetLength,
		Bounds:       domain.SummaryLengthBounds{MaxLength: targetLength, MinLength: targetLength - 50},
		Duration:     1500 * time.Millisecond,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (f *summaryFake) LengthRange() domain.SummaryLengthRange {
	return domain.SummaryLengthRange{Min: 100, Max: 500, Step: 10, Default: 300}
}

type sessionsFake struct {
	session *domain.Session
	closed  []string
}

func (f *sessionsFake) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	if f.session == nil || f.session.ID != sessionID {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "get session", errors.New(sessionID))
	}
	return f.session.Clone(), nil
}

func (f *sessionsFake) Close(_ context.Context, sessionID string) error {
	if f.session == nil || f.session.ID != sessionID {
		return domain.WrapError(domain.ErrSessionNotFound, "close session", errors.New(sessionID))
	}
	f.closed = append(f.closed, sessionID)
	return nil
}

func sampleSession(id, filename string) *domain.Session {
	now := time.Now().UTC()
	return &domain.Session{
		ID: id,
		Document: domain.DocumentDigest{
			ID:        "d-1",
			Filename:  filename,
			MimeType:  "application/pdf",
			PageCount: 1,
			Text:      "First. Second. Third",
			Blocks:    []string{"First", "Second.", "Third."},
			Complete:  true,
		},
		State:     domain.SummaryStateEmpty,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type testDeps struct {
	ingest    *ingestFake
	summaries *summaryFake
	sessions  *sessionsFake
}

func newTestDeps() *testDeps {
	return &testDeps{
		ingest:    &ingestFake{},
		summaries: &summaryFake{},
		sessions:  &sessionsFake{session: sampleSession("s-1", "report.pdf")},
	}
}

func (d *testDeps) handler(cfg config.Config) http.Handler {
	return NewRouter(cfg, d.ingest, d.summaries, d.sessions).Handler()
}

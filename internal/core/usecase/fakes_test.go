package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

type storeFake struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	saves    int
	saveErr  error
}

func newStoreFake() *storeFake {
	return &storeFake{sessions: make(map[string]*domain.Session)}
}

func (f *storeFake) Create(_ context.Context, session *domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.ID] = session.Clone()
	return nil
}

func (f *storeFake) Get(_ context.Context, id string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "get session", errors.New(id))
	}
	return session.Clone(), nil
}

func (f *storeFake) ReplaceDocument(_ context.Context, id string, doc domain.DocumentDigest) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "replace document", errors.New(id))
	}
	session.ReplaceDocument(doc, time.Now())
	return session.Clone(), nil
}

func (f *storeFake) SaveSummary(_ context.Context, id string, result domain.SummaryResult) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	session, ok := f.sessions[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrSessionNotFound, "save summary", errors.New(id))
	}
	if err := session.ApplySummary(result, time.Now()); err != nil {
		return nil, err
	}
	f.saves++
	return session.Clone(), nil
}

func (f *storeFake) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return domain.WrapError(domain.ErrSessionNotFound, "delete session", errors.New(id))
	}
	delete(f.sessions, id)
	return nil
}

type extractorFake struct {
	extraction domain.Extraction
	err        error
}

func (f *extractorFake) ExtractPages(context.Context, domain.Upload) (domain.Extraction, error) {
	return f.extraction, f.err
}

type segmenterFake struct{}

func (segmenterFake) Segment(text string) []string {
	if text == "" {
		return []string{}
	}
	return []string{text}
}

type summarizerFake struct {
	mu        sync.Mutex
	calls     int
	lastText  string
	bounds    domain.SummaryLengthBounds
	summary   string
	err       error
	delay     time.Duration
	active    int
	maxActive int
}

func (f *summarizerFake) Summarize(ctx context.Context, text string, bounds domain.SummaryLengthBounds) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastText = text
	f.bounds = bounds
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	delay := f.delay
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

type policyFake struct{}

func (policyFake) Bounds(target int) (domain.SummaryLengthBounds, error) {
	if target < 100 || target > 500 {
		return domain.SummaryLengthBounds{}, domain.WrapError(domain.ErrInvalidInput, "summary length", errors.New("out of range"))
	}
	return domain.SummaryLengthBounds{MaxLength: target, MinLength: max(50, target-50)}, nil
}

func (policyFake) Range() domain.SummaryLengthRange {
	return domain.SummaryLengthRange{Min: 100, Max: 500, Step: 10, Default: 300}
}

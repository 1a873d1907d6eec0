package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/core/textproc"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/session/memory"
)

func seedSession(t *testing.T, store *storeFake, text string) *domain.Session {
	t.Helper()
	session := domain.NewSession("s-1", domain.DocumentDigest{ID: "doc-1", Text: text}, time.Now())
	if err := store.Create(context.Background(), session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return session
}

func TestSummarizeStoresResult(t *testing.T) {
	store := newStoreFake()
	seedSession(t, store, "Long document text.")
	summarizer := &summarizerFake{summary: "  a short summary  "}
	uc := NewSummarizeUseCase(store, policyFake{}, summarizer, time.Second)

	result, err := uc.Summarize(context.Background(), "s-1", 300)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if result.Text != "a short summary" || result.WordCount() != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
	if summarizer.bounds != (domain.SummaryLengthBounds{MaxLength: 300, MinLength: 250}) {
		t.Fatalf("unexpected bounds %+v", summarizer.bounds)
	}
	if summarizer.lastText != "Long document text." {
		t.Fatalf("summarizer got %q", summarizer.lastText)
	}

	session, _ := store.Get(context.Background(), "s-1")
	if session.State != domain.SummaryStateHasSummary || session.Summary.Text != "a short summary" {
		t.Fatalf("session not updated: %+v", session)
	}
}

func TestSummarizeEmptyTextLeavesSessionEmpty(t *testing.T) {
	store := newStoreFake()
	seedSession(t, store, " \n\n ")
	summarizer := &summarizerFake{summary: "never"}
	uc := NewSummarizeUseCase(store, policyFake{}, summarizer, time.Second)

	_, err := uc.Summarize(context.Background(), "s-1", 300)
	if !domain.IsKind(err, domain.ErrSummarizationRejected) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if summarizer.calls != 0 {
		t.Fatalf("summarizer must not be called for empty text")
	}
	session, _ := store.Get(context.Background(), "s-1")
	if session.State != domain.SummaryStateEmpty || session.Summary != nil {
		t.Fatalf("session must stay empty, got %+v", session)
	}
}

func TestSummarizeFailureKeepsPreviousSummary(t *testing.T) {
	store := newStoreFake()
	seedSession(t, store, "Text.")
	summarizer := &summarizerFake{summary: "first"}
	uc := NewSummarizeUseCase(store, policyFake{}, summarizer, time.Second)

	if _, err := uc.Summarize(context.Background(), "s-1", 200); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}

	summarizer.err = domain.WrapError(domain.ErrSummarizerUnavailable, "ollama summarize", errors.New("connection refused"))
	_, err := uc.Summarize(context.Background(), "s-1", 300)
	if !domain.IsKind(err, domain.ErrSummarizerUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}

	summarizer.err = errors.New("model exploded")
	_, err = uc.Summarize(context.Background(), "s-1", 300)
	if !domain.IsKind(err, domain.ErrSummarizationRejected) {
		t.Fatalf("expected unclassified error to become rejection, got %v", err)
	}

	session, _ := store.Get(context.Background(), "s-1")
	if session.Summary == nil || session.Summary.Text != "first" || session.Summary.TargetLength != 200 {
		t.Fatalf("previous summary must survive, got %+v", session.Summary)
	}
}

func TestSummarizeRejectsOutOfRangeTarget(t *testing.T) {
	store := newStoreFake()
	seedSession(t, store, "Text.")
	summarizer := &summarizerFake{summary: "x"}
	uc := NewSummarizeUseCase(store, policyFake{}, summarizer, time.Second)

	if _, err := uc.Summarize(context.Background(), "s-1", 20); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if summarizer.calls != 0 {
		t.Fatalf("summarizer must not be called")
	}
}

func TestSummarizeTimeoutIsRejection(t *testing.T) {
	store := newStoreFake()
	seedSession(t, store, "Text.")
	summarizer := &summarizerFake{summary: "late", delay: time.Second}
	uc := NewSummarizeUseCase(store, policyFake{}, summarizer, 10*time.Millisecond)

	_, err := uc.Summarize(context.Background(), "s-1", 300)
	if !domain.IsKind(err, domain.ErrSummarizationRejected) {
		t.Fatalf("expected rejection on timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline cause, got %v", err)
	}
}

func TestSummarizeUnknownSession(t *testing.T) {
	uc := NewSummarizeUseCase(newStoreFake(), policyFake{}, &summarizerFake{summary: "x"}, time.Second)
	if _, err := uc.Summarize(context.Background(), "missing", 300); !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestSummarizeIsIdempotentForDeterministicSummarizer(t *testing.T) {
	store := newStoreFake()
	seedSession(t, store, "Text.")
	uc := NewSummarizeUseCase(store, policyFake{}, &summarizerFake{summary: "same"}, time.Second)

	first, err := uc.Summarize(context.Background(), "s-1", 300)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	second, err := uc.Summarize(context.Background(), "s-1", 300)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if first.Text != second.Text || first.Bounds != second.Bounds {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
	if store.saves != 2 {
		t.Fatalf("expected 2 saves, got %d", store.saves)
	}
}

func TestSummarizeSerializesPerSession(t *testing.T) {
	store := newStoreFake()
	seedSession(t, store, "Text.")
	summarizer := &summarizerFake{summary: "x", delay: 20 * time.Millisecond}
	uc := NewSummarizeUseCase(store, policyFake{}, summarizer, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := uc.Summarize(context.Background(), "s-1", 300); err != nil {
				t.Errorf("Summarize() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if summarizer.maxActive != 1 {
		t.Fatalf("expected serialized calls, saw %d concurrent", summarizer.maxActive)
	}
	if summarizer.calls != 4 || store.saves != 4 {
		t.Fatalf("expected 4 calls and saves, got %d/%d", summarizer.calls, store.saves)
	}
	if len(uc.locks.locks) != 0 {
		t.Fatalf("expected lock table to drain, got %d entries", len(uc.locks.locks))
	}
}

func TestSummarizeDiscardsResultForReplacedDocument(t *testing.T) {
	store := newStoreFake()
	seedSession(t, store, "Text.")
	store.saveErr = domain.WrapError(domain.ErrStaleDocument, "save summary", errors.New("doc-1"))
	uc := NewSummarizeUseCase(store, policyFake{}, &summarizerFake{summary: "x"}, time.Second)

	if _, err := uc.Summarize(context.Background(), "s-1", 300); !domain.IsKind(err, domain.ErrStaleDocument) {
		t.Fatalf("expected stale document, got %v", err)
	}
}

type gatedSummarizer struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedSummarizer) Summarize(ctx context.Context, text string, _ domain.SummaryLengthBounds) (string, error) {
	close(g.started)
	select {
	case <-g.release:
		return "summary of " + text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestSummarizeDropsSummaryWhenDocumentReplacedMidCall(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(0)
	extractor := &extractorFake{extraction: domain.Extraction{Pages: []string{"Old text."}, Complete: true}}
	ingest := NewIngestDocumentUseCase(extractor, textproc.NewSegmenter(""), store)

	session, err := ingest.Open(ctx, pdfUpload())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	summarizer := &gatedSummarizer{started: make(chan struct{}), release: make(chan struct{})}
	uc := NewSummarizeUseCase(store, policyFake{}, summarizer, 5*time.Second)

	errs := make(chan error, 1)
	go func() {
		_, err := uc.Summarize(ctx, session.ID, 300)
		errs <- err
	}()

	<-summarizer.started
	extractor.extraction = domain.Extraction{Pages: []string{"New text."}, Complete: true}
	replaced, err := ingest.Replace(ctx, session.ID, pdfUpload())
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	close(summarizer.release)

	if err := <-errs; !domain.IsKind(err, domain.ErrStaleDocument) {
		t.Fatalf("expected stale document, got %v", err)
	}
	current, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if current.State != domain.SummaryStateEmpty || current.Summary != nil {
		t.Fatalf("replaced document must stay without summary, got %+v", current)
	}
	if current.Document.ID != replaced.Document.ID || current.Document.Text != "New text." {
		t.Fatalf("unexpected active document %+v", current.Document)
	}
}

func TestLengthRangeComesFromPolicy(t *testing.T) {
	uc := NewSummarizeUseCase(newStoreFake(), policyFake{}, &summarizerFake{}, 0)
	if got := uc.LengthRange(); got.Default != 300 {
		t.Fatalf("unexpected range %+v", got)
	}
}

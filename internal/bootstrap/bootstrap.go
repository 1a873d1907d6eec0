package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/pdf-digest/internal/config"
	"github.com/kirillkom/pdf-digest/internal/core/ports"
	"github.com/kirillkom/pdf-digest/internal/core/textproc"
	"github.com/kirillkom/pdf-digest/internal/core/usecase"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/extractor"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/extractor/pdftext"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/pdf-digest/internal/infrastructure/session/memory"
)

type App struct {
	Config config.Config

	Sessions    ports.SessionStore
	IngestUC    *usecase.IngestDocumentUseCase
	SummarizeUC *usecase.SummarizeUseCase
	SessionUC   *usecase.SessionQueryUseCase

	memoryStore *memory.Store
	closeFns    []func()
}

// New wires the pipeline. Background session eviction runs until ctx is done.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	policy, err := textproc.NewLengthPolicy(cfg.LengthPolicy())
	if err != nil {
		return nil, fmt.Errorf("init length policy: %w", err)
	}

	app := &App{Config: cfg}
	if err := app.initSessionStore(ctx); err != nil {
		app.Close()
		return nil, err
	}

	summarizer, closeSummarizer, err := NewSummarizer(cfg, cfg.SummarizerBackend)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closeFns = append(app.closeFns, closeSummarizer)

	app.IngestUC = usecase.NewIngestDocumentUseCase(NewExtractor(cfg), textproc.NewSegmenter(cfg.SegmentTerminators), app.Sessions)
	app.SummarizeUC = usecase.NewSummarizeUseCase(app.Sessions, policy, summarizer, cfg.SummarizeTimeout)
	app.SessionUC = usecase.NewSessionQueryUseCase(app.Sessions)
	return app, nil
}

func (a *App) initSessionStore(ctx context.Context) error {
	switch strings.ToLower(strings.TrimSpace(a.Config.SessionStore)) {
	case "", "memory":
		store := memory.NewStore(a.Config.SessionTTL)
		go store.RunJanitor(ctx, a.Config.SessionSweepInterval)
		a.memoryStore = store
		a.Sessions = store
		return nil
	case "postgres":
		db, err := postgres.OpenDB(a.Config.PostgresDSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		a.closeFns = append(a.closeFns, func() { _ = db.Close() })

		repo := postgres.NewSessionRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		go runPostgresJanitor(ctx, repo, a.Config.SessionTTL, a.Config.SessionSweepInterval)
		a.Sessions = repo
		return nil
	default:
		return fmt.Errorf("unknown session store %q", a.Config.SessionStore)
	}
}

// ActiveSessions reports the in-memory session count; ok is false when
// sessions live in Postgres.
func (a *App) ActiveSessions() (count func() float64, ok bool) {
	if a.memoryStore == nil {
		return nil, false
	}
	store := a.memoryStore
	return func() float64 { return float64(store.Len()) }, true
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}

// NewExtractor registers the supported document formats.
func NewExtractor(cfg config.Config) *extractor.Registry {
	return extractor.NewRegistry().
		Register(".pdf", []string{"application/pdf", "application/x-pdf"}, pdftext.NewExtractor(cfg.PDFMaxPages)).
		Register(".txt", []string{"text/plain"}, plaintext.NewExtractor())
}

func runPostgresJanitor(ctx context.Context, repo *postgres.SessionRepository, ttl, interval time.Duration) {
	if ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := repo.DeleteIdle(ctx, time.Now().UTC().Add(-ttl))
			if err != nil {
				slog.Warn("session_sweep_failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("session_sweep", "removed", removed)
			}
		}
	}
}

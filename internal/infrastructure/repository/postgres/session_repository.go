package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

const uniqueViolation = "23505"

// SessionRepository stores one row per interaction. The document and the
// summary are kept as JSONB; transitions run inside a row locked transaction
// so the domain state machine decides every change.
type SessionRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db, now: time.Now}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *SessionRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101701)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS digest_sessions (
	id TEXT PRIMARY KEY,
	document JSONB NOT NULL,
	state TEXT NOT NULL,
	summary JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	last_seen_at TIMESTAMPTZ NOT NULL
);

ALTER TABLE digest_sessions ADD COLUMN IF NOT EXISTS last_seen_at TIMESTAMPTZ NOT NULL DEFAULT now();
CREATE INDEX IF NOT EXISTS idx_digest_sessions_last_seen_at ON digest_sessions(last_seen_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	documentJSON, summaryJSON, err := marshalSession(session)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO digest_sessions (id, document, state, summary, created_at, updated_at, last_seen_at)
VALUES ($1,$2,$3,$4,$5,$6,$6)
`, session.ID, documentJSON, string(session.State), summaryJSON, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.WrapError(domain.ErrInvalidInput, "create session", err)
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get reads a session and marks it as seen, so a session that is only being
// read stays alive.
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
UPDATE digest_sessions
SET last_seen_at = $2
WHERE id = $1
RETURNING id, document, state, summary, created_at, updated_at
`, id, r.now().UTC())
	return scanSession(row, "get session", id)
}

func (r *SessionRepository) ReplaceDocument(ctx context.Context, id string, doc domain.DocumentDigest) (*domain.Session, error) {
	return r.mutate(ctx, "replace document", id, func(session *domain.Session, now time.Time) error {
		session.ReplaceDocument(doc, now)
		return nil
	})
}

func (r *SessionRepository) SaveSummary(ctx context.Context, id string, result domain.SummaryResult) (*domain.Session, error) {
	return r.mutate(ctx, "save summary", id, func(session *domain.Session, now time.Time) error {
		return session.ApplySummary(result, now)
	})
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM digest_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrSessionNotFound, "delete session", errors.New(id))
	}
	return nil
}

// DeleteIdle removes sessions not read or written since before cutoff.
func (r *SessionRepository) DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM digest_sessions WHERE last_seen_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete idle sessions rows affected: %w", err)
	}
	return affected, nil
}

func (r *SessionRepository) mutate(
	ctx context.Context,
	operation string,
	id string,
	apply func(session *domain.Session, now time.Time) error,
) (*domain.Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin %s tx: %w", operation, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `
SELECT id, document, state, summary, created_at, updated_at
FROM digest_sessions
WHERE id = $1
FOR UPDATE
`, id)
	session, err := scanSession(row, operation, id)
	if err != nil {
		return nil, err
	}

	if err := apply(session, r.now().UTC()); err != nil {
		return nil, err
	}

	documentJSON, summaryJSON, err := marshalSession(session)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
UPDATE digest_sessions
SET document = $2, state = $3, summary = $4, updated_at = $5, last_seen_at = $5
WHERE id = $1
`, session.ID, documentJSON, string(session.State), summaryJSON, session.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: update session: %w", operation, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit %s tx: %w", operation, err)
	}
	return session, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner, operation, id string) (*domain.Session, error) {
	var (
		session     domain.Session
		documentRaw []byte
		summaryRaw  []byte
		state       string
	)
	err := row.Scan(&session.ID, &documentRaw, &state, &summaryRaw, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrSessionNotFound, operation, errors.New(id))
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if err := json.Unmarshal(documentRaw, &session.Document); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	if len(summaryRaw) > 0 {
		var summary domain.SummaryResult
		if err := json.Unmarshal(summaryRaw, &summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
		session.Summary = &summary
	}
	session.State = domain.SummaryState(state)
	return &session, nil
}

// marshalSession returns the summary as a nil interface when absent so it is
// written as SQL NULL.
func marshalSession(session *domain.Session) ([]byte, any, error) {
	documentJSON, err := json.Marshal(session.Document)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal document: %w", err)
	}
	if session.Summary == nil {
		return documentJSON, nil, nil
	}
	summaryJSON, err := json.Marshal(session.Summary)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal summary: %w", err)
	}
	return documentJSON, summaryJSON, nil
}

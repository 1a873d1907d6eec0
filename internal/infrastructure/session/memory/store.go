// Package memory keeps sessions in process. Sessions idle for longer than the
// TTL are treated as gone and removed by Sweep.
package memory

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
)

type entry struct {
	session  *domain.Session
	lastSeen time.Time
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time
}

// NewStore returns a store that evicts sessions idle for ttl. A zero ttl
// keeps sessions until they are deleted.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Store) Create(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "create session", errors.New("session id is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.live(session.ID); exists {
		return domain.WrapError(domain.ErrInvalidInput, "create session", errors.New("session already exists: "+session.ID))
	}
	s.sessions[session.ID] = &entry{session: session.Clone(), lastSeen: s.now()}
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(id)
	if !ok {
		return nil, notFound("get session", id)
	}
	e.lastSeen = s.now()
	return e.session.Clone(), nil
}

func (s *Store) ReplaceDocument(_ context.Context, id string, doc domain.DocumentDigest) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(id)
	if !ok {
		return nil, notFound("replace document", id)
	}
	now := s.now()
	e.session.ReplaceDocument(doc, now.UTC())
	e.lastSeen = now
	return e.session.Clone(), nil
}

func (s *Store) SaveSummary(_ context.Context, id string, result domain.SummaryResult) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(id)
	if !ok {
		return nil, notFound("save summary", id)
	}
	now := s.now()
	if err := e.session.ApplySummary(result, now.UTC()); err != nil {
		return nil, err
	}
	e.lastSeen = now
	return e.session.Clone(), nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live(id); !ok {
		return notFound("delete session", id)
	}
	delete(s.sessions, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and reports how many were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id := range s.sessions {
		if _, ok := s.live(id); !ok {
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				slog.Info("session_sweep", "removed", removed, "remaining", s.Len())
			}
		}
	}
}

// live must be called with the write lock held; it deletes an expired entry.
func (s *Store) live(id string) (*entry, bool) {
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(e.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	return e, true
}

func notFound(operation, id string) error {
	return domain.WrapError(domain.ErrSessionNotFound, operation, errors.New(id))
}

package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/pdf-digest/internal/core/domain"
	"github.com/kirillkom/pdf-digest/internal/core/ports"
)

type SessionQueryUseCase struct {
	store ports.SessionStore
}

func NewSessionQueryUseCase(store ports.SessionStore) *SessionQueryUseCase {
	return &SessionQueryUseCase{store: store}
}

func (uc *SessionQueryUseCase) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

// Close ends the interaction and forgets its state.
func (uc *SessionQueryUseCase) Close(ctx context.Context, sessionID string) error {
	if err := uc.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

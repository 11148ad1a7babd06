package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shamell/trustgate/internal/store"
	"github.com/shamell/trustgate/internal/utils"
	"github.com/shamell/trustgate/models"
)

// StoreResolver resolves opaque session tokens against the session
// repository. Only the BLAKE2b fingerprint of a token is ever looked up.
type StoreResolver struct {
	repo store.SessionRepository
	now  func() time.Time
}

// NewStoreResolver returns a StoreResolver reading from repo.
func NewStoreResolver(repo store.SessionRepository) *StoreResolver {
	return &StoreResolver{repo: repo, now: time.Now}
}

func (s *StoreResolver) Resolve(ctx context.Context, token string) (models.Session, error) {
	t, ok := normalizeOpaqueToken(token)
	if !ok {
		return models.Session{}, ErrMalformedToken
	}

	stored, err := s.repo.GetByTokenHash(ctx, utils.Fingerprint(t))
	if errors.Is(err, store.ErrSessionNotFound) {
		return models.Session{}, ErrNoSession
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("session lookup: %w", err)
	}

	if !stored.Active(s.now()) || stored.AccountID == "" {
		return models.Session{}, ErrNoSession
	}

	return models.Session{AccountID: stored.AccountID, ExpiresAt: stored.ExpiresAt}, nil
}

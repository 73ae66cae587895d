package repository

import (
	"context"
	"sync"

	"catalog_api/internal/common"
	"catalog_api/internal/platform/metrics"
)

// SessionRepository maps refresh tokens to the user they were issued to.
// Entries have no TTL: they live until Delete is called or the backend is
// wiped (for the memory backend, until the process exits).
type SessionRepository interface {
	Save(ctx context.Context, token string, userID int) error
	// FindUserID returns common.ErrNotFound for unknown tokens.
	FindUserID(ctx context.Context, token string) (int, error)
	// Delete is idempotent.
	Delete(ctx context.Context, token string) error
}

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]int
}

func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{sessions: make(map[string]int)}
}

func (r *memorySessionRepository) Save(ctx context.Context, token string, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[token] = userID
	metrics.ActiveRefreshTokens.Set(float64(len(r.sessions)))
	return nil
}

func (r *memorySessionRepository) FindUserID(ctx context.Context, token string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.sessions[token]
	if !ok {
		return 0, common.ErrNotFound
	}
	return userID, nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
	metrics.ActiveRefreshTokens.Set(float64(len(r.sessions)))
	return nil
}

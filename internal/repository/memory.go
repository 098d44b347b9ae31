package repository

import (
	"context"
	"sync"

	"github.com/bigkaa/document-intake/internal/domain/model"
)

// memoryTokenRepo — in-memory реализация TokenRepository.
// Содержимое теряется при перезапуске процесса.
type memoryTokenRepo struct {
	mu     sync.RWMutex
	tokens map[string]model.SignatureToken
}

// NewMemoryTokenRepository создаёт in-memory репозиторий токенов.
func NewMemoryTokenRepository() TokenRepository {
	return &memoryTokenRepo{tokens: make(map[string]model.SignatureToken)}
}

func (r *memoryTokenRepo) Put(_ context.Context, token model.SignatureToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token.Value]; ok {
		return ErrConflict
	}
	r.tokens[token.Value] = token
	return nil
}

func (r *memoryTokenRepo) Get(_ context.Context, value string) (model.SignatureToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tokens[value]
	if !ok {
		return model.SignatureToken{}, ErrNotFound
	}
	return t, nil
}

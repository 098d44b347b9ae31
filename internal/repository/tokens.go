package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bigkaa/document-intake/internal/domain/model"
)

// TokenRepository — хранилище записей token → (субъект, срок действия).
// Записи только добавляются; фильтрация по сроку действия не выполняется.
type TokenRepository interface {
	// Put сохраняет запись. Повтор значения токена даёт ErrConflict.
	Put(ctx context.Context, token model.SignatureToken) error
	// Get возвращает запись по значению токена. Если не найдена, ErrNotFound.
	Get(ctx context.Context, value string) (model.SignatureToken, error)
}

// tokenRepo — PostgreSQL-реализация TokenRepository.
type tokenRepo struct {
	db DBTX
}

// NewTokenRepository создаёт репозиторий токенов поверх таблицы signature_tokens.
func NewTokenRepository(db DBTX) TokenRepository {
	return &tokenRepo{db: db}
}

// Put сохраняет запись токена.
func (r *tokenRepo) Put(ctx context.Context, token model.SignatureToken) error {
	query := `
		INSERT INTO signature_tokens (token, subject_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.ExecContext(ctx, query,
		token.Value, token.SubjectID, token.ExpiresAt, token.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка сохранения токена %s: %w", token.Short(), err)
	}
	return nil
}

// Get возвращает запись токена по значению.
func (r *tokenRepo) Get(ctx context.Context, value string) (model.SignatureToken, error) {
	query := `
		SELECT token, subject_id, expires_at, created_at
		FROM signature_tokens
		WHERE token = $1`

	var t model.SignatureToken
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&t.Value, &t.SubjectID, &t.ExpiresAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.SignatureToken{}, ErrNotFound
		}
		return model.SignatureToken{}, fmt.Errorf("ошибка получения токена %s: %w", model.ShortToken(value), err)
	}

	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bigkaa/document-intake/internal/domain/model"
	"github.com/bigkaa/document-intake/internal/repository"
)

// TestTokenRepository_Integration проверяет репозиторий токенов
// поверх мигрированной схемы PostgreSQL.
func TestTokenRepository_Integration(t *testing.T) {
	cfg := setupTestDB(t)
	logger := testLogger()
	ctx := context.Background()

	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}
	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()
	db := OpenDB(pool)
	defer db.Close()

	repo := repository.NewTokenRepository(db)

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok := model.SignatureToken{
		Value:     "1b4e28ba-2fa1-11d2-883f-0016d3cca427",
		SubjectID: "12345678901",
		ExpiresAt: issued.Add(300 * time.Second),
		CreatedAt: issued,
	}

	if err := repo.Put(ctx, tok); err != nil {
		t.Fatalf("Put() вернул ошибку: %v", err)
	}
	if err := repo.Put(ctx, tok); !errors.Is(err, repository.ErrConflict) {
		t.Errorf("повторный Put(): ожидалась ErrConflict, получено %v", err)
	}

	got, err := repo.Get(ctx, tok.Value)
	if err != nil {
		t.Fatalf("Get() вернул ошибку: %v", err)
	}
	if got.SubjectID != tok.SubjectID || !got.ExpiresAt.Equal(tok.ExpiresAt) {
		t.Errorf("Get() = %+v, ожидалось %+v", got, tok)
	}

	if _, err := repo.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("неизвестный токен: ожидалась ErrNotFound, получено %v", err)
	}
}

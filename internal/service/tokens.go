// tokens.go — выдача и проверка токенов на скачивание подписанного документа.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/document-intake/internal/domain/model"
	"github.com/bigkaa/document-intake/internal/domain/subject"
	"github.com/bigkaa/document-intake/internal/domain/token"
	"github.com/bigkaa/document-intake/internal/repository"
)

// maxIssueAttempts — число попыток выдачи при совпадении значения токена.
const maxIssueAttempts = 3

// TokenService — выдача и проверка токенов.
type TokenService struct {
	repo   repository.TokenRepository
	cache  *CacheService
	clock  token.Clock
	ttl    time.Duration
	logger *slog.Logger
}

// NewTokenService создаёт сервис токенов.
// cache может быть nil, тогда каждая проверка обращается к хранилищу.
func NewTokenService(
	repo repository.TokenRepository,
	cache *CacheService,
	clock token.Clock,
	ttl time.Duration,
	logger *slog.Logger,
) *TokenService {
	return &TokenService{
		repo:   repo,
		cache:  cache,
		clock:  clock,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "token_service")),
	}
}

// TTL возвращает время жизни выдаваемых токенов.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue выдаёт новый токен для субъекта. Запись сохраняется в хранилище
// до возврата значения клиенту.
func (s *TokenService) Issue(ctx context.Context, subjectID string) (model.SignatureToken, error) {
	id, err := subject.Sanitize(subjectID)
	if err != nil {
		return model.SignatureToken{}, fmt.Errorf("%w: nss: %w", ErrValidation, err) //nolint:errorlint // намеренный двойной wrap
	}

	now := s.clock.Now()
	tok := model.SignatureToken{
		SubjectID: id,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	for attempt := 1; ; attempt++ {
		tok.Value = uuid.NewString()

		err = s.repo.Put(ctx, tok)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrConflict) && attempt < maxIssueAttempts {
			s.logger.Warn("Совпадение значения токена, повторная генерация",
				slog.Int("attempt", attempt),
			)
			continue
		}
		return model.SignatureToken{}, fmt.Errorf("%w: %w", ErrTokenStoreUnavailable, err) //nolint:errorlint // намеренный двойной wrap
	}

	if s.cache != nil {
		s.cache.Set(tok)
	}
	tokensIssuedTotal.Inc()

	s.logger.Info("Токен выдан",
		slog.String("subject_id", tok.SubjectID),
		slog.String("token", tok.Short()),
		slog.Time("expires_at", tok.ExpiresAt),
	)
	return tok, nil
}

// Validate возвращает запись действительного токена.
// Для неизвестного, пустого или истёкшего токена возвращается ErrUnauthorized.
// Проверка не изменяет состояние токена: повторные проверки до истечения
// срока дают тот же результат.
func (s *TokenService) Validate(ctx context.Context, value string) (model.SignatureToken, error) {
	if value == "" {
		tokenValidationsTotal.WithLabelValues(validationUnknown).Inc()
		return model.SignatureToken{}, fmt.Errorf("%w: токен не передан", ErrUnauthorized)
	}

	tok, err := s.lookup(ctx, value)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			tokenValidationsTotal.WithLabelValues(validationUnknown).Inc()
			s.logger.Info("Неизвестный токен", slog.String("token", model.ShortToken(value)))
			return model.SignatureToken{}, fmt.Errorf("%w: токен не найден", ErrUnauthorized)
		}
		return model.SignatureToken{}, fmt.Errorf("%w: %w", ErrTokenStoreUnavailable, err) //nolint:errorlint // намеренный двойной wrap
	}

	if token.StateAt(tok.ExpiresAt, s.clock.Now()) == token.StateExpired {
		tokenValidationsTotal.WithLabelValues(validationExpired).Inc()
		s.logger.Info("Токен истёк",
			slog.String("token", tok.Short()),
			slog.String("subject_id", tok.SubjectID),
			slog.Time("expires_at", tok.ExpiresAt),
		)
		return model.SignatureToken{}, fmt.Errorf("%w: срок действия токена истёк", ErrUnauthorized)
	}

	tokenValidationsTotal.WithLabelValues(validationValid).Inc()
	return tok, nil
}

// lookup читает запись через кэш. Отсутствие записи не кэшируется:
// токен мог быть выдан другим экземпляром сервиса.
func (s *TokenService) lookup(ctx context.Context, value string) (model.SignatureToken, error) {
	if s.cache != nil {
		if tok, ok := s.cache.Get(value); ok {
			return tok, nil
		}
	}

	tok, err := s.repo.Get(ctx, value)
	if err != nil {
		return model.SignatureToken{}, err
	}

	if s.cache != nil {
		s.cache.Set(tok)
	}
	return tok, nil
}

// documents.go — загрузка документов в пространства имён субъектов,
// листинг и поиск подписанного документа.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/document-intake/internal/domain/model"
	"github.com/bigkaa/document-intake/internal/domain/subject"
	"github.com/bigkaa/document-intake/internal/storage/filestore"
	"github.com/bigkaa/document-intake/internal/storage/namespace"
)

// DocumentService — операции с документами субъектов.
type DocumentService struct {
	namespaces *namespace.Store
	files      *filestore.FileStore
	logger     *slog.Logger
}

// NewDocumentService создаёт сервис документов.
func NewDocumentService(namespaces *namespace.Store, files *filestore.FileStore, logger *slog.Logger) *DocumentService {
	return &DocumentService{
		namespaces: namespaces,
		files:      files,
		logger:     logger.With(slog.String("component", "document_service")),
	}
}

// StoreDocuments сохраняет файлы в пространство имён субъекта
// и возвращает итоговые имена в порядке загрузки.
//
// Имена всех файлов проверяются до записи первого из них.
// Файлы пишутся последовательно; при ошибке уже записанные файлы
// остаются на диске, а запрос завершается ошибкой.
func (s *DocumentService) StoreDocuments(ctx context.Context, subjectID string, uploads []model.Upload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: не передано ни одного файла", ErrValidation)
	}
	id, names, err := prepare(subjectID, uploads)
	if err != nil {
		return nil, err
	}

	ns, err := s.namespaces.EnsureNamespace(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err) //nolint:errorlint // намеренный двойной wrap
	}

	return s.write(ctx, ns, model.ScopeNamespace, uploads, names)
}

// StoreSignature сохраняет подписанный документ в поддиректорию
// авторизации субъекта и возвращает итоговое имя.
func (s *DocumentService) StoreSignature(ctx context.Context, subjectID string, upload model.Upload) (string, error) {
	uploads := []model.Upload{upload}
	id, names, err := prepare(subjectID, uploads)
	if err != nil {
		return "", err
	}

	ns, err := s.namespaces.EnsureNamespace(id)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorageUnavailable, err) //nolint:errorlint // намеренный двойной wrap
	}
	auth, err := s.namespaces.EnsureAuthorization(ns)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStorageUnavailable, err) //nolint:errorlint // намеренный двойной wrap
	}

	stored, err := s.write(ctx, auth, model.ScopeAuthorization, uploads, names)
	if err != nil {
		return "", err
	}
	return stored[0], nil
}

// HasSignature сообщает, загружен ли у субъекта подписанный документ.
func (s *DocumentService) HasSignature(subjectID string) bool {
	return s.namespaces.HasSignature(subjectID)
}

// ListNamespace возвращает имена записей в пространстве имён субъекта.
// Для отсутствующего пространства имён возвращается ErrNamespaceNotFound, а не пустой список.
func (s *DocumentService) ListNamespace(subjectID string) ([]string, error) {
	names, err := s.namespaces.List(subjectID)
	if err != nil {
		return nil, mapNamespaceError(err)
	}
	return names, nil
}

// OpenSignedDocument находит и открывает текущий подписанный документ субъекта.
// Вызывающий код обязан закрыть Document.File.
func (s *DocumentService) OpenSignedDocument(subjectID string) (*namespace.Document, error) {
	doc, err := s.namespaces.LocateSignedDocument(subjectID)
	if err != nil {
		return nil, mapNamespaceError(err)
	}
	return doc, nil
}

// write последовательно сохраняет файлы в ns.
func (s *DocumentService) write(
	ctx context.Context,
	ns namespace.Namespace,
	scope model.Scope,
	uploads []model.Upload,
	names []string,
) ([]string, error) {
	stored := make([]string, 0, len(uploads))

	for i, u := range uploads {
		if err := ctx.Err(); err != nil {
			s.logPartial(ns, scope, stored, err)
			return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err) //nolint:errorlint // намеренный двойной wrap
		}

		result, err := s.files.Save(ns.Dir, names[i], u.Reader)
		if err != nil {
			s.logPartial(ns, scope, stored, err)
			return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err) //nolint:errorlint // намеренный двойной wrap
		}

		documentsStoredTotal.WithLabelValues(string(scope)).Inc()
		s.logger.Info("Документ сохранён",
			slog.String("subject_id", ns.SubjectID),
			slog.String("scope", string(scope)),
			slog.String("name", result.Name),
			slog.Int64("size", result.Size),
			slog.String("checksum", result.Checksum),
		)
		stored = append(stored, result.Name)
	}

	return stored, nil
}

// logPartial фиксирует файлы, записанные до ошибки.
func (s *DocumentService) logPartial(ns namespace.Namespace, scope model.Scope, stored []string, err error) {
	s.logger.Error("Ошибка сохранения документов",
		slog.String("subject_id", ns.SubjectID),
		slog.String("scope", string(scope)),
		slog.Any("stored", stored),
		slog.String("error", err.Error()),
	)
}

// prepare нормализует идентификатор субъекта и имена файлов.
func prepare(subjectID string, uploads []model.Upload) (string, []string, error) {
	id, err := subject.Sanitize(subjectID)
	if err != nil {
		return "", nil, fmt.Errorf("%w: nss: %w", ErrValidation, err) //nolint:errorlint // намеренный двойной wrap
	}

	names := make([]string, len(uploads))
	for i, u := range uploads {
		names[i] = subject.Clean(u.Filename)
		if names[i] == "" {
			return "", nil, fmt.Errorf("%w: недопустимое имя файла %q", ErrValidation, u.Filename)
		}
	}
	return id, names, nil
}

// mapNamespaceError переводит ошибки хранилища пространств имён в ошибки сервиса.
func mapNamespaceError(err error) error {
	switch {
	case errors.Is(err, subject.ErrEmpty), errors.Is(err, subject.ErrTooLong):
		return fmt.Errorf("%w: nss: %w", ErrValidation, err) //nolint:errorlint // намеренный двойной wrap
	case errors.Is(err, namespace.ErrNamespaceNotFound):
		return ErrNamespaceNotFound
	case errors.Is(err, namespace.ErrNoDocument):
		return ErrNoDocument
	default:
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err) //nolint:errorlint // намеренный двойной wrap
	}
}

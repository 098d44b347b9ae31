// signed.go — скачивание подписанного документа по токену.
package service

import (
	"context"
	"log/slog"

	"github.com/bigkaa/document-intake/internal/domain/model"
	"github.com/bigkaa/document-intake/internal/storage/namespace"
)

// SignedDocumentService — выдача подписанного документа по токену.
// Клиент предъявляет только токен, субъект берётся из записи токена.
type SignedDocumentService struct {
	tokens    *TokenService
	documents *DocumentService
	logger    *slog.Logger
}

// NewSignedDocumentService создаёт сервис скачивания подписанных документов.
func NewSignedDocumentService(tokens *TokenService, documents *DocumentService, logger *slog.Logger) *SignedDocumentService {
	return &SignedDocumentService{
		tokens:    tokens,
		documents: documents,
		logger:    logger.With(slog.String("component", "signed_document_service")),
	}
}

// Fetch проверяет токен и открывает текущий подписанный документ субъекта.
// Вызывающий код обязан закрыть Document.File.
func (s *SignedDocumentService) Fetch(ctx context.Context, value string) (*namespace.Document, model.SignatureToken, error) {
	tok, err := s.tokens.Validate(ctx, value)
	if err != nil {
		return nil, model.SignatureToken{}, err
	}

	doc, err := s.documents.OpenSignedDocument(tok.SubjectID)
	if err != nil {
		return nil, model.SignatureToken{}, err
	}

	s.logger.Info("Подписанный документ выдан",
		slog.String("subject_id", tok.SubjectID),
		slog.String("token", tok.Short()),
		slog.String("name", doc.Name),
		slog.Int64("size", doc.Size),
	)
	return doc, tok, nil
}

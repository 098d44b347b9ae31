// Пакет model — доменные модели Document Intake.
package model

import "time"

// SignatureToken — токен на скачивание подписанного документа субъекта.
// Запись неизменяема: срок действия фиксируется при выдаче и не продлевается.
type SignatureToken struct {
	// Value — непрозрачное случайное значение (первичный ключ)
	Value string
	// SubjectID — нормализованный идентификатор субъекта
	SubjectID string
	// ExpiresAt — абсолютный момент истечения
	ExpiresAt time.Time
	// CreatedAt — момент выдачи
	CreatedAt time.Time
}

// Short возвращает префикс токена для логов (полное значение не логируется).
func (t SignatureToken) Short() string {
	return ShortToken(t.Value)
}

// ShortToken возвращает первые 8 символов значения токена.
func ShortToken(value string) string {
	if len(value) <= 8 {
		return value
	}
	return value[:8]
}

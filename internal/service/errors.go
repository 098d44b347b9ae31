// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrNamespaceNotFound — пространство имён субъекта не найдено.
	ErrNamespaceNotFound = errors.New("пространство имён не найдено")
	// ErrNoDocument — подписанный документ субъекта не найден.
	ErrNoDocument = errors.New("подписанный документ не найден")
	// ErrUnauthorized — токен неизвестен или истёк.
	ErrUnauthorized = errors.New("токен недействителен")
	// ErrStorageUnavailable — ошибка файлового хранилища документов.
	ErrStorageUnavailable = errors.New("хранилище документов недоступно")
	// ErrTokenStoreUnavailable — ошибка хранилища токенов.
	ErrTokenStoreUnavailable = errors.New("хранилище токенов недоступно")
)

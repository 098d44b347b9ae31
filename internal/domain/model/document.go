package model

import "io"

// Scope — область пространства имён, в которую записывается файл.
type Scope string

const (
	// ScopeNamespace — корень пространства имён субъекта
	ScopeNamespace Scope = "namespace"
	// ScopeAuthorization — поддиректория подписанных документов
	ScopeAuthorization Scope = "authorization"
)

// Upload — один загружаемый файл: желаемое имя и поток данных.
type Upload struct {
	Filename string
	Reader   io.Reader
}

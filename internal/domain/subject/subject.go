// Пакет subject — нормализация идентификаторов субъектов и имён файлов.
//
// Идентификатор субъекта (NSS, налоговый номер) и имя загружаемого файла
// проходят одну и ту же очистку перед любым обращением к файловой системе:
//   - Unicode NFKD, символы вне ASCII отбрасываются
//   - разделители путей заменяются пробелами
//   - последовательности пробелов схлопываются в "_"
//   - остаются только [A-Za-z0-9._-]
//   - ведущие и завершающие "." и "_" удаляются
//
// Результат не может содержать разделителей пути и не может быть "." или "..".
package subject

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MaxLen — предельная длина идентификатора в байтах (NAME_MAX).
const MaxLen = 255

var (
	// ErrEmpty — после очистки не осталось допустимых символов.
	ErrEmpty = errors.New("идентификатор пуст после нормализации")
	// ErrTooLong — идентификатор не помещается в имя директории.
	ErrTooLong = errors.New("идентификатор длиннее 255 байт")
)

// Clean возвращает безопасное имя для использования как элемент пути.
// Для входа, не содержащего допустимых символов, возвращает пустую строку.
func Clean(raw string) string {
	decomposed := norm.NFKD.String(raw)

	var ascii strings.Builder
	ascii.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case r == '/' || r == '\\':
			ascii.WriteByte(' ')
		case r < 0x80:
			ascii.WriteRune(r)
		}
	}

	joined := strings.Join(strings.Fields(ascii.String()), "_")

	var safe strings.Builder
	safe.Grow(len(joined))
	for i := 0; i < len(joined); i++ {
		c := joined[i]
		if isSafeByte(c) {
			safe.WriteByte(c)
		}
	}

	return strings.Trim(safe.String(), "._")
}

// Sanitize очищает идентификатор субъекта. Пустой результат даёт ErrEmpty,
// результат длиннее MaxLen даёт ErrTooLong.
func Sanitize(raw string) (string, error) {
	cleaned := Clean(raw)
	switch {
	case cleaned == "":
		return "", ErrEmpty
	case len(cleaned) > MaxLen:
		return "", ErrTooLong
	}
	return cleaned, nil
}

func isSafeByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c == '.' || c == '_' || c == '-'
}

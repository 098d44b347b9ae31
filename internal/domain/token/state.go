// Пакет token — жизненный цикл токена на скачивание подписанного документа.
//
// Состояния:
//   - valid — пока now < expiresAt
//   - expired — с момента now >= expiresAt (конечное состояние)
//
// Состояние не хранится: это функция от сохранённого expiresAt и текущего
// времени, вычисляемая в момент обращения. Количество использований не
// учитывается, отзыва нет.
package token

import "time"

// State — состояние токена на момент проверки.
type State string

const (
	// StateValid — токен действителен
	StateValid State = "valid"
	// StateExpired — срок действия истёк
	StateExpired State = "expired"
)

// StateAt возвращает состояние токена со сроком expiresAt на момент now.
func StateAt(expiresAt, now time.Time) State {
	if now.Before(expiresAt) {
		return StateValid
	}
	return StateExpired
}

// Clock — источник текущего времени (подменяется в тестах).
type Clock interface {
	Now() time.Time
}

// SystemClock — реальные часы.
type SystemClock struct{}

// Now возвращает текущее время в UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc адаптирует функцию к интерфейсу Clock.
type ClockFunc func() time.Time

// Now вызывает f.
func (f ClockFunc) Now() time.Time {
	return f()
}

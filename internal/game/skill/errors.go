package skill

import "errors"

// Ошибки отклонённых запросов. Отклонение никогда не меняет состояние:
// вызывающий получает sentinel и решает сам (AI — перепланирует, игрок —
// видит отказ). Паник на публичных путях нет.
var (
	// ErrInvalidState — запрос не разрешён из текущего состояния машины.
	ErrInvalidState = errors.New("invalid state for request")

	// ErrInsufficientStamina — не хватает стамины на активацию.
	ErrInsufficientStamina = errors.New("insufficient stamina")

	// ErrActorDisabled — боец выбит, оглушён или сбит с ног.
	ErrActorDisabled = errors.New("actor disabled")

	// ErrOutOfRange — цель вне досягаемости скилла.
	ErrOutOfRange = errors.New("target out of range")

	// ErrNoTarget — атакующему скиллу не назначена цель.
	ErrNoTarget = errors.New("no target")
)

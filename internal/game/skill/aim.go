package skill

import (
	"time"

	"github.com/udisondev/duelgo/internal/config"
)

// AimTracker накапливает точность выстрела пока боец целится.
// Скорость набора растёт от focus; по неподвижной цели — ещё быстрее.
type AimTracker struct {
	tuning   *config.Tuning
	targetID uint32
	value    float64 // percent, clamped to [AimFloor, AimCeiling]
}

// NewAimTracker начинает прицеливание с нижней границы точности.
func NewAimTracker(tuning *config.Tuning, targetID uint32) *AimTracker {
	return &AimTracker{
		tuning:   tuning,
		targetID: targetID,
		value:    tuning.AimFloor,
	}
}

// Tick накапливает точность за прошедший интервал.
// targetStillFor — сколько цель уже стоит неподвижно (по данным арены).
func (a *AimTracker) Tick(dt time.Duration, focus int32, targetStillFor time.Duration) {
	rate := a.tuning.AimRatePerSecond * (1 + float64(focus)/a.tuning.AimFocusScale)
	if targetStillFor >= a.tuning.AimStillAfter {
		rate *= a.tuning.AimStillBonus
	}

	a.value += rate * dt.Seconds()
	if a.value > a.tuning.AimCeiling {
		a.value = a.tuning.AimCeiling
	}
	if a.value < a.tuning.AimFloor {
		a.value = a.tuning.AimFloor
	}
}

// Value возвращает текущую точность в процентах.
func (a *AimTracker) Value() float64 { return a.value }

// TargetID возвращает цель прицеливания.
func (a *AimTracker) TargetID() uint32 { return a.targetID }

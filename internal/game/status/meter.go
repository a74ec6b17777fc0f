package status

import (
	"log/slog"
	"time"

	"github.com/udisondev/duelgo/internal/config"
	"github.com/udisondev/duelgo/internal/model"
)

// MeterMax — порог нокдауна. Шкала всегда в [0, MeterMax].
const MeterMax = 100.0

// Meter — шкала устойчивости одного бойца. Обычные атаки накапливают её;
// на пороге боец валится с ног. Шкала остывает постоянно, в том числе
// лёжа, и НЕ сбрасывается при срабатывании.
type Meter struct {
	owner  string
	tuning *config.Tuning
	value  float64
}

// NewMeter создаёт пустую шкалу.
func NewMeter(owner string, tuning *config.Tuning) *Meter {
	return &Meter{owner: owner, tuning: tuning}
}

// Value возвращает текущее значение шкалы.
func (m *Meter) Value() float64 { return m.value }

// AddBuildup добавляет вклад одного попадания.
// comboHit — 1-based индекс удара в цепочке: чем длиннее цепочка, тем
// меньше вклад (diminishing returns). Returns true when this hit pushed
// the meter across the threshold.
func (m *Meter) AddBuildup(rawDamage float64, comboHit int, attacker, defender model.StatSnapshot) bool {
	if comboHit < 1 {
		comboHit = 1
	}

	contribution := rawDamage*m.tuning.MeterBuildupDamageFactor +
		float64(attacker.Strength)*m.tuning.MeterBuildupStrengthFactor
	contribution *= MeterMax / (MeterMax + float64(defender.Focus)*m.tuning.MeterBuildupResistFactor)
	contribution /= 1 + float64(comboHit-1)*m.tuning.ComboFalloff

	if contribution <= 0 {
		return false
	}

	before := m.value
	m.value += contribution
	if m.value > MeterMax {
		m.value = MeterMax
	}

	triggered := before < MeterMax && m.value >= MeterMax
	if triggered {
		slog.Debug("knockdown meter triggered",
			"owner", m.owner, "contribution", contribution, "combo_hit", comboHit)
	}
	return triggered
}

// Decay остужает шкалу за прошедший интервал. Работает безусловно —
// состояние бойца (включая нокдаун) на остывание не влияет.
func (m *Meter) Decay(dt time.Duration) {
	m.value -= m.tuning.MeterDecayPerSecond * dt.Seconds()
	if m.value < 0 {
		m.value = 0
	}
}

// DebugReset обнуляет шкалу. Единственный путь к мгновенному нулю.
func (m *Meter) DebugReset() {
	m.value = 0
}

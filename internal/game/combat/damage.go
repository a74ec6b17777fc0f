package combat

import (
	"time"

	"github.com/udisondev/duelgo/internal/config"
	"github.com/udisondev/duelgo/internal/data"
	"github.com/udisondev/duelgo/internal/model"
)

// Чистые формулы урона. Без случайности: при равных входах равный выход,
// вся вариативность боя приходит из таймингов и решений, не из бросков.

// RawDamage — сырой урон до защиты: (оружие + сила/делитель) * множитель скилла.
func RawDamage(snap model.StatSnapshot, weapon model.WeaponProfile, tmpl *data.SkillTemplate, tuning *config.Tuning) float64 {
	base := float64(weapon.Damage) + float64(snap.Strength)/tuning.StrengthDamageDivisor
	return base * tmpl.DamageMultiplier
}

// AppliedDamage — урон после плоской защиты. Попавший удар всегда наносит
// хотя бы 1.
func AppliedDamage(raw float64, defender model.StatSnapshot) int32 {
	dmg := raw - float64(defender.Defense)
	if dmg < 1 {
		return 1
	}
	return int32(dmg)
}

// ReducedDamage — применённый урон от доли сырого (пробитый блок).
func ReducedDamage(raw, fraction float64, defender model.StatSnapshot) int32 {
	return AppliedDamage(raw*fraction, defender)
}

// ReflectedDamage — урон контратаки: сырой урон атакующего минус его же
// защита, floor 0. Защита жертвы контратаки не участвует — удар возвращён,
// не нанесён заново.
func ReflectedDamage(raw float64, attacker model.StatSnapshot) int32 {
	dmg := raw - float64(attacker.Defense)
	if dmg < 0 {
		return 0
	}
	return int32(dmg)
}

// StunDuration — стан непрерванного попадания: база оружия * множитель скилла.
func StunDuration(weapon model.WeaponProfile, tmpl *data.SkillTemplate) time.Duration {
	return time.Duration(float64(weapon.StunBase) * tmpl.StunMultiplier)
}

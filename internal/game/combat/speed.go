package combat

import (
	"github.com/udisondev/duelgo/internal/config"
	"github.com/udisondev/duelgo/internal/data"
	"github.com/udisondev/duelgo/internal/model"
)

// Speed — скорость активации для разрешения клинча.
// Чистая формула: (оружие + ловкость/делитель) * (1 + модификатор скилла).
func Speed(snap model.StatSnapshot, weapon model.WeaponProfile, tmpl *data.SkillTemplate, tuning *config.Tuning) float64 {
	base := weapon.Speed + float64(snap.Dexterity)/tuning.DexSpeedDivisor
	return base * (1 + tmpl.SpeedModifier)
}

// Reach — дистанция срабатывания скилла с учётом оружия.
func Reach(weapon model.WeaponProfile, tmpl *data.SkillTemplate) float64 {
	return weapon.Range * tmpl.RangeMultiplier
}

package data

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/duelgo/internal/model"
)

// weaponDefs — reference-арсенал. Скорость и базовый стан разменяны против
// урона: кинжал почти не оглушает, молот вколачивает в землю.
var weaponDefs = []model.WeaponProfile{
	{Name: "dagger", Damage: 8, Speed: 1.6, Range: 1.5, StunBase: 500 * time.Millisecond},
	{Name: "shortsword", Damage: 12, Speed: 1.2, Range: 2.0, StunBase: 800 * time.Millisecond},
	{Name: "broadsword", Damage: 16, Speed: 1.0, Range: 2.2, StunBase: 1000 * time.Millisecond},
	{Name: "warhammer", Damage: 24, Speed: 0.7, Range: 2.0, StunBase: 1400 * time.Millisecond},
	{Name: "longbow", Damage: 14, Speed: 0.9, Range: 2.0, StunBase: 600 * time.Millisecond},
	{Name: "training_fists", Damage: 5, Speed: 1.4, Range: 1.2, StunBase: 400 * time.Millisecond},
}

// WeaponTable — registry профилей оружия по имени.
var WeaponTable map[string]*model.WeaponProfile

// GetWeaponProfile возвращает профиль по имени.
// Returns nil если оружие не найдено.
func GetWeaponProfile(name string) *model.WeaponProfile {
	if WeaponTable == nil {
		return nil
	}
	return WeaponTable[name]
}

// LoadWeaponProfiles строит WeaponTable из Go-литералов (weaponDefs).
func LoadWeaponProfiles() error {
	WeaponTable = make(map[string]*model.WeaponProfile, len(weaponDefs))

	for i := range weaponDefs {
		def := weaponDefs[i]
		if _, dup := WeaponTable[def.Name]; dup {
			return fmt.Errorf("duplicate weapon profile: %s", def.Name)
		}
		WeaponTable[def.Name] = &def
	}

	slog.Info("loaded weapon profiles", "count", len(WeaponTable))
	return nil
}

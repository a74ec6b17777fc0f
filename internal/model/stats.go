package model

import "time"

// StatSnapshot — неизменяемый срез характеристик бойца на момент расчёта.
// Агрегация экипировки/баффов происходит снаружи; движок читает готовые числа.
type StatSnapshot struct {
	Strength  int32 // raw damage bonus
	Dexterity int32 // charge speed and weapon speed bonus
	Focus     int32 // aim rate bonus, knockdown buildup resistance
	Defense   int32 // flat damage reduction
}

// WeaponProfile — параметры оружия, общие для всех скиллов владельца.
// Дальнобойность определяется скиллом (RangedAttack), не оружием.
type WeaponProfile struct {
	Name     string
	Damage   int32         // base hit damage before stats and skill multipliers
	Speed    float64       // base speed term for clash resolution
	Range    float64       // reach in arena units
	StunBase time.Duration // baseline stun applied by an uncontested hit
}

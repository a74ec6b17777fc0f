package data

import (
	"time"

	"github.com/udisondev/duelgo/internal/model"
)

// skillDefs — баланс скиллов в Go-литералах.
// Тяжёлые скиллы (Smash, Windmill) заряжаются дольше и медленнее в клинче,
// но валят с ног напрямую; Lunge — самый быстрый, с толчком при попадании.
var skillDefs = []SkillTemplate{
	{
		Type:             model.SkillAttack,
		ChargeTime:       300 * time.Millisecond,
		StartupTime:      200 * time.Millisecond,
		ActiveTime:       100 * time.Millisecond,
		RecoveryTime:     400 * time.Millisecond,
		StaminaCost:      5,
		DamageMultiplier: 1.0,
		StunMultiplier:   1.0,
		SpeedModifier:    0,
		RangeMultiplier:  1.0,
	},
	{
		Type:            model.SkillDefense,
		ChargeTime:      1000 * time.Millisecond,
		StartupTime:     150 * time.Millisecond,
		ActiveTime:      50 * time.Millisecond,
		RecoveryTime:    500 * time.Millisecond,
		StaminaCost:     10,
		RangeMultiplier: 1.0, // стойка перехватывает только тех, до кого оружие достаёт
		// Defensive skills deal no damage; damage/stun multipliers stay zero.
	},
	{
		Type:            model.SkillCounter,
		ChargeTime:      1200 * time.Millisecond,
		StartupTime:     150 * time.Millisecond,
		ActiveTime:      50 * time.Millisecond,
		RecoveryTime:    700 * time.Millisecond,
		StaminaCost:     12,
		RangeMultiplier: 1.0,
	},
	{
		Type:             model.SkillSmash,
		ChargeTime:       1500 * time.Millisecond,
		StartupTime:      400 * time.Millisecond,
		ActiveTime:       150 * time.Millisecond,
		RecoveryTime:     900 * time.Millisecond,
		StaminaCost:      15,
		DamageMultiplier: 2.5,
		StunMultiplier:   1.5,
		SpeedModifier:    -0.3,
		RangeMultiplier:  1.0,
		BypassMeter:      true,
	},
	{
		Type:             model.SkillWindmill,
		ChargeTime:       1800 * time.Millisecond,
		StartupTime:      300 * time.Millisecond,
		ActiveTime:       300 * time.Millisecond,
		RecoveryTime:     700 * time.Millisecond,
		StaminaCost:      20,
		DamageMultiplier: 2.0,
		StunMultiplier:   1.0,
		SpeedModifier:    -0.2,
		RangeMultiplier:  1.2,
		BypassMeter:      true,
	},
	{
		Type:             model.SkillLunge,
		ChargeTime:       800 * time.Millisecond,
		StartupTime:      250 * time.Millisecond,
		ActiveTime:       150 * time.Millisecond,
		RecoveryTime:     600 * time.Millisecond,
		StaminaCost:      12,
		DamageMultiplier: 1.5,
		StunMultiplier:   0.8,
		SpeedModifier:    0.2,
		RangeMultiplier:  1.6,
		KnockbackOnHit:   true,
	},
	{
		Type:             model.SkillRangedAttack,
		ChargeTime:       500 * time.Millisecond,
		StartupTime:      100 * time.Millisecond,
		ActiveTime:       50 * time.Millisecond,
		RecoveryTime:     500 * time.Millisecond,
		StaminaCost:      8,
		DamageMultiplier: 1.2,
		StunMultiplier:   0.5,
		SpeedModifier:    0,
		RangeMultiplier:  8.0,
	},
}

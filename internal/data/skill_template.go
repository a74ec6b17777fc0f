package data

import (
	"time"

	"github.com/udisondev/duelgo/internal/model"
)

// SkillTemplate — статические параметры скилла, общие для всех бойцов.
// Мутабельные данные боя (прогресс заряда, фазы) живут в state machine.
type SkillTemplate struct {
	Type model.SkillType

	// Phase durations. ChargeTime is the base before dexterity scaling.
	ChargeTime   time.Duration
	StartupTime  time.Duration
	ActiveTime   time.Duration
	RecoveryTime time.Duration

	// Resource
	StaminaCost float64

	// Combat multipliers
	DamageMultiplier float64 // scales raw weapon+strength damage
	StunMultiplier   float64 // scales weapon stun on uncontested hit
	SpeedModifier    float64 // speed = base * (1 + modifier)
	RangeMultiplier  float64 // reach = weapon range * multiplier

	// Knockdown behavior
	BypassMeter    bool // hit knocks down directly instead of building the meter
	KnockbackOnHit bool // uncontested hit shoves the target back
}

// IsOffensive сокращение для классификации типа.
func (t *SkillTemplate) IsOffensive() bool { return t.Type.IsOffensive() }

// IsDefensive сокращение для классификации типа.
func (t *SkillTemplate) IsDefensive() bool { return t.Type.IsDefensive() }

package model

// SkillType identifies one of the combat skills an actor can execute.
// The set is closed: the interaction matrix enumerates every pairing.
type SkillType int32

const (
	SkillAttack       SkillType = iota // Basic melee swing, builds knockdown meter
	SkillDefense                       // Defensive hold, blocks one incoming hit
	SkillCounter                       // Defensive hold, reflects one incoming hit
	SkillSmash                         // Heavy melee, breaks Defense, direct knockdown
	SkillWindmill                      // Spin attack, beats Counter, direct knockdown
	SkillLunge                         // Gap-closer melee, knocks the target back
	SkillRangedAttack                  // Aimed shot, accuracy grows while aiming
)

// skillNames — имена скиллов для логов и телеметрии.
var skillNames = [...]string{
	SkillAttack:       "Attack",
	SkillDefense:      "Defense",
	SkillCounter:      "Counter",
	SkillSmash:        "Smash",
	SkillWindmill:     "Windmill",
	SkillLunge:        "Lunge",
	SkillRangedAttack: "RangedAttack",
}

// String возвращает имя скилла.
func (s SkillType) String() string {
	if s < 0 || int(s) >= len(skillNames) {
		return "Unknown"
	}
	return skillNames[s]
}

// IsOffensive проверяет является ли скилл атакующим.
func (s SkillType) IsOffensive() bool {
	switch s {
	case SkillAttack, SkillSmash, SkillWindmill, SkillLunge, SkillRangedAttack:
		return true
	}
	return false
}

// IsDefensive проверяет является ли скилл защитным (auto-triggers from Waiting).
func (s SkillType) IsDefensive() bool {
	return s == SkillDefense || s == SkillCounter
}

// IsRanged проверяет является ли скилл дальнобойным.
func (s SkillType) IsRanged() bool {
	return s == SkillRangedAttack
}

// AllSkillTypes lists every skill in matrix order.
func AllSkillTypes() []SkillType {
	return []SkillType{
		SkillAttack, SkillDefense, SkillCounter,
		SkillSmash, SkillWindmill, SkillLunge, SkillRangedAttack,
	}
}

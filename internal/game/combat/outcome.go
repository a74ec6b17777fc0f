package combat

import "github.com/udisondev/duelgo/internal/model"

// OutcomeKind — исход одной атакующей активации. Ровно один на активацию.
type OutcomeKind int32

const (
	OutcomeUnopposed     OutcomeKind = iota // hit landed with no defensive interaction
	OutcomeBlocked                          // guard absorbed the hit completely
	OutcomeReflected                        // counter returned the hit to the attacker
	OutcomeDefenseBroken                    // guard pierced, reduced or full damage passed
	OutcomeMiss                             // nothing arrived: whiff, dead target, failed shot
	OutcomeSpeedLoss                        // out-sped in a clash, the swing never finished
)

// outcomeNames — метки исходов для логов и телеметрии.
var outcomeNames = [...]string{
	OutcomeUnopposed:     "Unopposed",
	OutcomeBlocked:       "Blocked",
	OutcomeReflected:     "Reflected",
	OutcomeDefenseBroken: "DefenseBroken",
	OutcomeMiss:          "Miss",
	OutcomeSpeedLoss:     "SpeedLoss",
}

// String возвращает метку исхода.
func (k OutcomeKind) String() string {
	if k < 0 || int(k) >= len(outcomeNames) {
		return "Unknown"
	}
	return outcomeNames[k]
}

// Outcome — результат разрешения одной атакующей активации.
type Outcome struct {
	Kind       OutcomeKind
	AttackerID uint32
	DefenderID uint32
	Skill      model.SkillType // the offensive skill
	GuardSkill model.SkillType // defensive skill involved, -1 when none
	Damage     int32           // dealt to the defender
	Reflected  int32           // returned to the attacker (Reflected only)
}

// NoGuard — значение GuardSkill когда защита не участвовала.
const NoGuard model.SkillType = -1

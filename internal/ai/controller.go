package ai

import (
	"time"

	"github.com/jakecoffman/cp"

	"github.com/udisondev/duelgo/internal/game/combat"
	"github.com/udisondev/duelgo/internal/model"
)

// Intention is the high-level goal an AI controller is pursuing.
type Intention int32

const (
	IntentionIdle   Intention = iota // controller stopped or no live target
	IntentionEngage                  // close the gap and swing
	IntentionGuard                   // hold a defensive stance
)

// intentionNames maps intentions to log labels.
var intentionNames = [...]string{
	IntentionIdle:   "Idle",
	IntentionEngage: "Engage",
	IntentionGuard:  "Guard",
}

// String returns the intention label.
func (i Intention) String() string {
	if i < 0 || int(i) >= len(intentionNames) {
		return "Unknown"
	}
	return intentionNames[i]
}

// Commander is the slice of the match command API a controller drives.
// Satisfied by *match.Match; narrowed here so tests can stub it.
type Commander interface {
	// Charge begins charging a skill (targetID 0 for defensive skills).
	Charge(actorID uint32, st model.SkillType, targetID uint32) error

	// Execute releases a held charge.
	Execute(actorID uint32) error

	// Cancel drops a charge or a held stance.
	Cancel(actorID uint32) error

	// Move files a one-tick movement intent.
	Move(actorID uint32, dir cp.Vector) error

	// Fighter returns a combatant's battle state (nil if absent).
	Fighter(id uint32) *combat.Fighter

	// Distance reports the gap between two combatants.
	Distance(a, b uint32) float64

	// DirectionTo returns the unit vector from one combatant to another.
	DirectionTo(from, to uint32) cp.Vector

	// LastOutcomes returns the outcomes resolved on the last tick.
	LastOutcomes() []combat.Outcome
}

// Controller represents an AI controller driving one combatant.
type Controller interface {
	// Start starts the controller.
	Start()

	// Stop stops the controller.
	Stop()

	// SetIntention sets the controller's intention.
	SetIntention(intention Intention)

	// CurrentIntention returns the controller's intention.
	CurrentIntention() Intention

	// Tick performs one AI decision step (called after each match tick).
	Tick(dt time.Duration)
}

package ai

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/udisondev/duelgo/internal/game/combat"
	"github.com/udisondev/duelgo/internal/game/skill"
	"github.com/udisondev/duelgo/internal/model"
)

// Duelist tuning constants.
const (
	guardChanceBase   = 0.2                     // baseline roll to open with a stance instead of a swing
	guardUrgePerHit   = 0.3                     // stance pressure added per hit taken
	guardUrgeMax      = 0.6                     // cap so the bot still swings under heavy fire
	counterBias       = 0.4                     // of stance picks, how often Counter over Defense
	smashChance       = 0.25                    // heavy swing instead of a plain attack
	rangedGapFactor   = 2.0                     // shoot when the gap exceeds weapon reach by this factor
	chaseStopFraction = 0.9                     // stop closing at this fraction of the swing's reach
	aimReleaseAt      = 70.0                    // fire as soon as aim climbs this high
	aimPatience       = 2 * time.Second         // or when aiming drags past this
	stanceTimeout     = 2500 * time.Millisecond // drop a stance nobody tested
)

// DuelistAI drives one combatant against a fixed opponent through the match
// command API. Reactive: it reads the previous tick's outcomes and shifts
// between swinging, stance play and armor-breaking heavies.
type DuelistAI struct {
	actorID  uint32
	targetID uint32
	cmd      Commander
	roll     func() float64

	isRunning atomic.Bool
	intention Intention

	clock     time.Duration
	heldSince time.Duration // when the current charge or stance began

	guardUrge   float64 // stance pressure accumulated from hits taken
	preferSmash bool    // last plain swing bounced off a shield
}

// NewDuelistAI creates a duelist controller. A nil roll falls back to the
// global RNG; simulations pass the match-seeded one for reproducible fights.
func NewDuelistAI(actorID, targetID uint32, cmd Commander, roll func() float64) *DuelistAI {
	if roll == nil {
		roll = rand.Float64
	}
	return &DuelistAI{
		actorID:  actorID,
		targetID: targetID,
		cmd:      cmd,
		roll:     roll,
	}
}

// Start starts the controller.
func (ai *DuelistAI) Start() {
	ai.isRunning.Store(true)
	ai.SetIntention(IntentionEngage)

	if IsDebugEnabled() {
		slog.Debug("duelist AI started", "actor", ai.actorID, "target", ai.targetID)
	}
}

// Stop stops the controller.
func (ai *DuelistAI) Stop() {
	ai.isRunning.Store(false)
	ai.SetIntention(IntentionIdle)

	if IsDebugEnabled() {
		slog.Debug("duelist AI stopped", "actor", ai.actorID)
	}
}

// SetIntention sets the controller's intention.
func (ai *DuelistAI) SetIntention(intention Intention) {
	old := ai.intention
	ai.intention = intention

	if old != intention && IsDebugEnabled() {
		slog.Debug("duelist AI intention changed",
			"actor", ai.actorID, "from", old, "to", intention)
	}
}

// CurrentIntention returns the controller's intention.
func (ai *DuelistAI) CurrentIntention() Intention {
	return ai.intention
}

// Tick performs one decision step. Called after the match tick so the
// controller sees this tick's outcomes and machine states.
func (ai *DuelistAI) Tick(dt time.Duration) {
	if !ai.isRunning.Load() {
		return
	}
	ai.clock += dt

	me := ai.cmd.Fighter(ai.actorID)
	if me == nil || me.Combatant.IsDefeated() {
		return
	}
	tgt := ai.cmd.Fighter(ai.targetID)
	if tgt == nil || tgt.Combatant.IsDefeated() {
		ai.SetIntention(IntentionIdle)
		return
	}

	ai.observeOutcomes()

	// Commands bounce under crowd control; wait it out.
	if me.Layer.Active() != 0 {
		return
	}

	switch me.Machine.State() {
	case skill.StateIdle:
		ai.thinkIdle(me)
	case skill.StateCharging:
		// Walk in while the charge builds.
		ai.closeIn(me)
	case skill.StateCharged:
		ai.thinkRelease(me)
	case skill.StateAiming:
		ai.thinkAim(me)
	case skill.StateWaiting:
		ai.thinkStance()
	}
	// Startup/Active/Recovery are committed: nothing to decide.
}

// observeOutcomes reads the last resolved window and adjusts pressure:
// hits taken push toward stances, a blocked swing pushes toward Smash.
func (ai *DuelistAI) observeOutcomes() {
	for _, out := range ai.cmd.LastOutcomes() {
		switch {
		case out.DefenderID == ai.actorID && out.Damage > 0:
			ai.guardUrge = min(ai.guardUrge+guardUrgePerHit, guardUrgeMax)
		case out.AttackerID == ai.actorID && out.Kind == combat.OutcomeBlocked:
			ai.preferSmash = true
		case out.AttackerID == ai.actorID && out.Kind == combat.OutcomeUnopposed:
			ai.preferSmash = false
		}
	}
}

// thinkIdle picks the next action: a stance when pressure is high enough,
// otherwise a swing chosen by the current gap.
func (ai *DuelistAI) thinkIdle(me *combat.Fighter) {
	if ai.roll() < guardChanceBase+ai.guardUrge {
		st := model.SkillDefense
		if ai.roll() < counterBias {
			st = model.SkillCounter
		}
		if err := ai.cmd.Charge(ai.actorID, st, 0); err != nil {
			if IsDebugEnabled() {
				slog.Debug("stance refused", "actor", ai.actorID, "skill", st, "err", err)
			}
			return
		}
		ai.guardUrge = 0
		ai.heldSince = ai.clock
		ai.SetIntention(IntentionGuard)
		return
	}

	ai.SetIntention(IntentionEngage)
	st := ai.pickSwing(me)
	if err := ai.cmd.Charge(ai.actorID, st, ai.targetID); err != nil {
		if IsDebugEnabled() {
			slog.Debug("swing refused", "actor", ai.actorID, "skill", st, "err", err)
		}
		return
	}
	ai.heldSince = ai.clock
}

// pickSwing chooses the offensive skill for the current distance.
func (ai *DuelistAI) pickSwing(me *combat.Fighter) model.SkillType {
	dist := ai.cmd.Distance(ai.actorID, ai.targetID)
	reach := me.Combatant.Weapon().Range

	switch {
	case dist > reach*rangedGapFactor:
		return model.SkillRangedAttack
	case ai.preferSmash:
		return model.SkillSmash
	case dist > reach:
		// The long lunge closes the last stretch by itself.
		return model.SkillLunge
	case ai.roll() < smashChance:
		return model.SkillSmash
	default:
		return model.SkillAttack
	}
}

// closeIn walks toward the target until the held swing can land.
func (ai *DuelistAI) closeIn(me *combat.Fighter) {
	reach := me.Combatant.Weapon().Range
	if tmpl := me.Machine.Template(); tmpl != nil && tmpl.IsOffensive() {
		reach = combat.Reach(me.Combatant.Weapon(), tmpl)
	}
	if ai.cmd.Distance(ai.actorID, ai.targetID) <= reach*chaseStopFraction {
		return
	}

	dir := ai.cmd.DirectionTo(ai.actorID, ai.targetID)
	if dir.Length() == 0 {
		return
	}
	if err := ai.cmd.Move(ai.actorID, dir); err != nil && IsDebugEnabled() {
		slog.Debug("chase refused", "actor", ai.actorID, "err", err)
	}
}

// thinkRelease releases a held melee charge, walking in when still short.
func (ai *DuelistAI) thinkRelease(me *combat.Fighter) {
	err := ai.cmd.Execute(ai.actorID)
	if err == nil {
		return
	}
	if errors.Is(err, skill.ErrOutOfRange) {
		ai.closeIn(me)
		return
	}
	if IsDebugEnabled() {
		slog.Debug("release refused", "actor", ai.actorID, "err", err)
	}
}

// thinkAim fires once aim is good enough or patience runs out.
func (ai *DuelistAI) thinkAim(me *combat.Fighter) {
	if me.Machine.AimValue() < aimReleaseAt && ai.clock-ai.heldSince < aimPatience {
		return
	}
	if err := ai.cmd.Execute(ai.actorID); err != nil && IsDebugEnabled() {
		slog.Debug("shot refused", "actor", ai.actorID, "err", err)
	}
}

// thinkStance drops a stance that nobody has tested for too long.
func (ai *DuelistAI) thinkStance() {
	if ai.clock-ai.heldSince < stanceTimeout {
		return
	}
	if err := ai.cmd.Cancel(ai.actorID); err != nil {
		if IsDebugEnabled() {
			slog.Debug("stance drop refused", "actor", ai.actorID, "err", err)
		}
		return
	}
	ai.SetIntention(IntentionEngage)

	if IsDebugEnabled() {
		slog.Debug("stance timed out", "actor", ai.actorID, "held", ai.clock-ai.heldSince)
	}
}

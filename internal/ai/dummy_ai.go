package ai

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/udisondev/duelgo/internal/game/skill"
	"github.com/udisondev/duelgo/internal/model"
)

// TrainingDummyAI keeps a combatant planted: it never attacks and answers
// pressure by re-raising Defense whenever the machine returns to idle.
// Used as a sparring target in scripted scenes and balance checks.
type TrainingDummyAI struct {
	actorID   uint32
	cmd       Commander
	isRunning atomic.Bool
	intention Intention
}

// NewTrainingDummyAI creates a dummy controller.
func NewTrainingDummyAI(actorID uint32, cmd Commander) *TrainingDummyAI {
	return &TrainingDummyAI{
		actorID: actorID,
		cmd:     cmd,
	}
}

// Start starts the controller.
func (ai *TrainingDummyAI) Start() {
	ai.isRunning.Store(true)
	ai.SetIntention(IntentionGuard)
	slog.Debug("training dummy started", "actor", ai.actorID)
}

// Stop stops the controller.
func (ai *TrainingDummyAI) Stop() {
	ai.isRunning.Store(false)
	ai.SetIntention(IntentionIdle)
	slog.Debug("training dummy stopped", "actor", ai.actorID)
}

// SetIntention sets the controller's intention.
func (ai *TrainingDummyAI) SetIntention(intention Intention) {
	old := ai.intention
	ai.intention = intention

	if old != intention && IsDebugEnabled() {
		slog.Debug("training dummy intention changed",
			"actor", ai.actorID, "from", old, "to", intention)
	}
}

// CurrentIntention returns the controller's intention.
func (ai *TrainingDummyAI) CurrentIntention() Intention {
	return ai.intention
}

// Tick re-raises the stance when idle; everything else waits.
func (ai *TrainingDummyAI) Tick(dt time.Duration) {
	if !ai.isRunning.Load() {
		return
	}

	me := ai.cmd.Fighter(ai.actorID)
	if me == nil || me.Combatant.IsDefeated() {
		return
	}
	if me.Layer.Active() != 0 {
		return
	}
	if me.Machine.State() != skill.StateIdle {
		return
	}

	if err := ai.cmd.Charge(ai.actorID, model.SkillDefense, 0); err != nil {
		if IsDebugEnabled() {
			slog.Debug("dummy stance refused", "actor", ai.actorID, "err", err)
		}
	}
}

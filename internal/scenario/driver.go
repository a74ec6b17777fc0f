package scenario

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/jakecoffman/cp"

	"github.com/udisondev/duelgo/internal/ai"
	"github.com/udisondev/duelgo/internal/game/combat"
)

// maxScriptErrors disables a driver after this many consecutive failures.
const maxScriptErrors = 5

// Driver runs one compiled scenario script for one combatant.
// Implements ai.Controller, so it registers in the same roster as bots.
type Driver struct {
	actorID  uint32
	targetID uint32
	cmd      ai.Commander

	compiled *tengo.Compiled
	mem      *tengo.Map

	isRunning atomic.Bool
	intention ai.Intention
	errs      int
}

// NewDriver binds a program to a combatant. The compiled script is cloned,
// so one Program can drive any number of combatants independently.
func NewDriver(prog *Program, actorID, targetID uint32, cmd ai.Commander) *Driver {
	return &Driver{
		actorID:  actorID,
		targetID: targetID,
		cmd:      cmd,
		compiled: prog.compiled.Clone(),
		mem:      &tengo.Map{Value: map[string]tengo.Object{}},
	}
}

// Start starts the driver.
func (d *Driver) Start() {
	d.isRunning.Store(true)
	d.SetIntention(ai.IntentionEngage)
	slog.Debug("scenario driver started", "actor", d.actorID)
}

// Stop stops the driver.
func (d *Driver) Stop() {
	d.isRunning.Store(false)
	d.SetIntention(ai.IntentionIdle)
	slog.Debug("scenario driver stopped", "actor", d.actorID)
}

// SetIntention sets the driver's intention.
func (d *Driver) SetIntention(intention ai.Intention) {
	d.intention = intention
}

// CurrentIntention returns the driver's intention.
func (d *Driver) CurrentIntention() ai.Intention {
	return d.intention
}

// Tick runs the script once. Repeated script failures disable the driver
// instead of spamming the fight with errors.
func (d *Driver) Tick(dt time.Duration) {
	if !d.isRunning.Load() {
		return
	}

	me := d.cmd.Fighter(d.actorID)
	if me == nil || me.Combatant.IsDefeated() {
		return
	}

	if err := d.run(d.buildAPI(me), dt); err != nil {
		d.errs++
		slog.Error("scenario script failed", "actor", d.actorID, "attempt", d.errs, "err", err)
		if d.errs >= maxScriptErrors {
			slog.Error("scenario driver disabled", "actor", d.actorID)
			d.Stop()
		}
		return
	}
	d.errs = 0
}

func (d *Driver) run(api *tengo.ImmutableMap, dt time.Duration) error {
	if err := d.compiled.Set("__api", api); err != nil {
		return err
	}
	if err := d.compiled.Set("__mem", d.mem); err != nil {
		return err
	}
	if err := d.compiled.Set("__dt", int64(dt/time.Millisecond)); err != nil {
		return err
	}
	return d.compiled.Run()
}

// buildAPI assembles the engine namespace handed to think.
func (d *Driver) buildAPI(me *combat.Fighter) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	values["charge"] = &tengo.UserFunction{Name: "charge", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		st, ok := parseSkillName(objectAsString(args[0]))
		if !ok {
			return tengo.FalseValue, nil
		}
		target := d.targetID
		if st.IsDefensive() {
			target = 0
		}
		if err := d.cmd.Charge(d.actorID, st, target); err != nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["execute"] = &tengo.UserFunction{Name: "execute", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if err := d.cmd.Execute(d.actorID); err != nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["cancel"] = &tengo.UserFunction{Name: "cancel", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if err := d.cmd.Cancel(d.actorID); err != nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["move"] = &tengo.UserFunction{Name: "move", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 {
			return tengo.FalseValue, nil
		}
		dx, okX := objectAsFloat(args[0])
		dy, okY := objectAsFloat(args[1])
		if !okX || !okY {
			return tengo.FalseValue, nil
		}
		if err := d.cmd.Move(d.actorID, cp.Vector{X: dx, Y: dy}); err != nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["move_to_target"] = &tengo.UserFunction{Name: "move_to_target", Value: func(args ...tengo.Object) (tengo.Object, error) {
		dir := d.cmd.DirectionTo(d.actorID, d.targetID)
		if dir.Length() == 0 {
			return tengo.FalseValue, nil
		}
		if err := d.cmd.Move(d.actorID, dir); err != nil {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["distance"] = &tengo.UserFunction{Name: "distance", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: d.cmd.Distance(d.actorID, d.targetID)}, nil
	}}

	values["state"] = &tengo.UserFunction{Name: "state", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.String{Value: me.Machine.State().String()}, nil
	}}

	values["status"] = &tengo.UserFunction{Name: "status", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if me.Layer.Active() == 0 {
			return &tengo.String{Value: ""}, nil
		}
		return &tengo.String{Value: me.Layer.Active().String()}, nil
	}}

	values["aim"] = &tengo.UserFunction{Name: "aim", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: me.Machine.AimValue()}, nil
	}}

	values["hp"] = &tengo.UserFunction{Name: "hp", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(me.Combatant.CurrentHP())}, nil
	}}

	values["stamina"] = &tengo.UserFunction{Name: "stamina", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Float{Value: me.Combatant.Stamina()}, nil
	}}

	values["enemy_hp"] = &tengo.UserFunction{Name: "enemy_hp", Value: func(args ...tengo.Object) (tengo.Object, error) {
		tgt := d.cmd.Fighter(d.targetID)
		if tgt == nil {
			return &tengo.Int{Value: -1}, nil
		}
		return &tengo.Int{Value: int64(tgt.Combatant.CurrentHP())}, nil
	}}

	values["guard_up"] = &tengo.UserFunction{Name: "guard_up", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if me.Machine.GuardUp() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["hit_taken"] = &tengo.UserFunction{Name: "hit_taken", Value: func(args ...tengo.Object) (tengo.Object, error) {
		for _, out := range d.cmd.LastOutcomes() {
			if out.DefenderID == d.actorID && out.Damage > 0 {
				return tengo.TrueValue, nil
			}
		}
		return tengo.FalseValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

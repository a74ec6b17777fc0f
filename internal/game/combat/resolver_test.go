package combat

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/udisondev/duelgo/internal/config"
	"github.com/udisondev/duelgo/internal/data"
	"github.com/udisondev/duelgo/internal/game/skill"
	"github.com/udisondev/duelgo/internal/game/status"
	"github.com/udisondev/duelgo/internal/model"
	"github.com/udisondev/duelgo/internal/telemetry"
)

// stubArena — плоская арена для тестов: позиции задаются напрямую,
// смещения записываются.
type stubArena struct {
	pos    map[uint32]cp.Vector
	shoves map[uint32][]cp.Vector
}

func newStubArena() *stubArena {
	return &stubArena{
		pos:    make(map[uint32]cp.Vector),
		shoves: make(map[uint32][]cp.Vector),
	}
}

func (a *stubArena) Distance(x, y uint32) float64 {
	return a.pos[x].Distance(a.pos[y])
}

func (a *stubArena) DirectionTo(from, to uint32) cp.Vector {
	d := a.pos[to].Sub(a.pos[from])
	if d.Length() == 0 {
		return cp.Vector{}
	}
	return d.Normalize()
}

func (a *stubArena) ApplyDisplacement(id uint32, shove cp.Vector) {
	a.shoves[id] = append(a.shoves[id], shove)
	a.pos[id] = a.pos[id].Add(shove)
}

type resolverFixture struct {
	tuning   config.Tuning
	fighters map[uint32]*Fighter
	arena    *stubArena
	events   []telemetry.Event
	rolls    []float64      // consumed front to back by the resolver RNG
	rollFn   func() float64 // overrides rolls when set
	r        *Resolver
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()
	if err := data.LoadSkillTemplates(); err != nil {
		t.Fatalf("LoadSkillTemplates() failed: %v", err)
	}
	if err := data.LoadWeaponProfiles(); err != nil {
		t.Fatalf("LoadWeaponProfiles() failed: %v", err)
	}

	f := &resolverFixture{
		tuning:   config.DefaultTuning(),
		fighters: make(map[uint32]*Fighter),
		arena:    newStubArena(),
	}
	sink := telemetry.SinkFunc(func(e telemetry.Event) { f.events = append(f.events, e) })
	roll := func() float64 {
		if f.rollFn != nil {
			return f.rollFn()
		}
		if len(f.rolls) == 0 {
			return 0.25
		}
		v := f.rolls[0]
		f.rolls = f.rolls[1:]
		return v
	}
	f.r = NewResolver(&f.tuning, f.fighters, f.arena, sink, roll)
	return f
}

func (f *resolverFixture) addFighter(t *testing.T, id uint32, name, weapon string, snap model.StatSnapshot, x, y float64) *Fighter {
	t.Helper()
	w := data.GetWeaponProfile(weapon)
	if w == nil {
		t.Fatalf("unknown weapon %q", weapon)
	}

	c := model.NewCombatant(id, name, int32(id), snap, *w, 500, 200, 0)
	layer := status.NewLayer(name)
	ft := &Fighter{
		Combatant: c,
		Layer:     layer,
		Meter:     status.NewMeter(name, &f.tuning),
		Combo:     status.NewComboTracker(f.tuning.ComboIdleGap),
	}
	ft.Machine = skill.NewMachine(c, layer, &f.tuning, skill.Hooks{
		OnActivation: func(a skill.Activation) { f.r.Queue(a) },
		Roll:         func() float64 { return 0 },
	})

	f.fighters[id] = ft
	f.arena.pos[id] = cp.Vector{X: x, Y: y}
	return ft
}

// raiseGuard доводит машину бойца до защитного Waiting.
func (f *resolverFixture) raiseGuard(t *testing.T, ft *Fighter, st model.SkillType) {
	t.Helper()
	if err := ft.Machine.RequestCharge(st, 0); err != nil {
		t.Fatalf("RequestCharge(%s) = %v", st, err)
	}
	for i := 0; i < 500 && ft.Machine.State() != skill.StateWaiting; i++ {
		ft.Machine.Tick(20 * time.Millisecond)
	}
	if ft.Machine.State() != skill.StateWaiting {
		t.Fatalf("guard never reached Waiting, stuck in %s", ft.Machine.State())
	}
}

// resolveWindow закрывает текущее окно одним тиком.
func (f *resolverFixture) resolveWindow() []Outcome {
	return f.r.Tick(f.tuning.SimultaneityWindow + 10*time.Millisecond)
}

func attack(actor, target uint32, st model.SkillType) skill.Activation {
	return skill.Activation{ActorID: actor, Skill: st, TargetID: target}
}

func outcomeFor(t *testing.T, outs []Outcome, attacker uint32) Outcome {
	t.Helper()
	for _, o := range outs {
		if o.AttackerID == attacker {
			return o
		}
	}
	t.Fatalf("no outcome for attacker %d in %+v", attacker, outs)
	return Outcome{}
}

func eventsOfType(evs []telemetry.Event, et telemetry.EventType) []telemetry.Event {
	var got []telemetry.Event
	for _, e := range evs {
		if e.Type == et {
			got = append(got, e)
		}
	}
	return got
}

func TestResolver_WindowBatching(t *testing.T) {
	f := newResolverFixture(t)
	f.addFighter(t, 1, "alice", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	f.addFighter(t, 2, "bob", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 10, Defense: 5}, 1, 0)

	f.r.Queue(attack(1, 2, model.SkillAttack))
	if !f.r.WindowOpen() {
		t.Fatal("first activation must open the window")
	}

	if out := f.r.Tick(50 * time.Millisecond); out != nil {
		t.Fatalf("window must not resolve early, got %+v", out)
	}

	// Вторая активация до закрытия попадает в тот же батч.
	f.r.Queue(attack(2, 1, model.SkillAttack))
	if got := f.r.PendingCount(); got != 2 {
		t.Fatalf("PendingCount() = %d, want 2", got)
	}

	if out := f.r.Tick(40 * time.Millisecond); out != nil {
		t.Fatalf("90ms < window, got %+v", out)
	}

	out := f.r.Tick(20 * time.Millisecond)
	if len(out) != 2 {
		t.Fatalf("resolved %d outcomes, want 2", len(out))
	}
	if f.r.WindowOpen() || f.r.PendingCount() != 0 {
		t.Error("window must fully reset after resolution")
	}
}

func TestResolver_UnopposedHit(t *testing.T) {
	f := newResolverFixture(t)
	f.addFighter(t, 1, "alice", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	bob := f.addFighter(t, 2, "bob", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 10, Focus: 10, Defense: 5}, 1, 0)

	f.r.Queue(attack(1, 2, model.SkillAttack))
	out := f.resolveWindow()

	got := outcomeFor(t, out, 1)
	if got.Kind != OutcomeUnopposed {
		t.Fatalf("Kind = %s, want Unopposed", got.Kind)
	}
	// (12 + 20/4) * 1.0 - 5 = 12
	if got.Damage != 12 {
		t.Errorf("Damage = %d, want 12", got.Damage)
	}
	if got.GuardSkill != NoGuard {
		t.Errorf("GuardSkill = %v, want NoGuard", got.GuardSkill)
	}
	if hp := bob.Combatant.CurrentHP(); hp != 488 {
		t.Errorf("bob HP = %d, want 488", hp)
	}
	if bob.Layer.Active() != status.KindStun {
		t.Errorf("bob status = %s, want Stun", bob.Layer.Active())
	}
	if bob.Layer.Remaining() != 800*time.Millisecond {
		t.Errorf("stun duration = %v, want weapon base 800ms", bob.Layer.Remaining())
	}
	if bob.Meter.Value() <= 0 {
		t.Error("plain hit must build the knockdown meter")
	}

	if n := len(eventsOfType(f.events, telemetry.EventOutcome)); n != 1 {
		t.Errorf("outcome events = %d, want 1", n)
	}
	if n := len(eventsOfType(f.events, telemetry.EventDamage)); n != 1 {
		t.Errorf("damage events = %d, want 1", n)
	}
	if n := len(eventsOfType(f.events, telemetry.EventStatus)); n != 1 {
		t.Errorf("status events = %d, want 1", n)
	}
}

func TestResolver_BlockedConsumesGuard(t *testing.T) {
	f := newResolverFixture(t)
	alice := f.addFighter(t, 1, "alice", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	bob := f.addFighter(t, 2, "bob", "broadsword", model.StatSnapshot{Strength: 15, Dexterity: 10, Defense: 5}, 1, 0)
	f.raiseGuard(t, bob, model.SkillDefense)

	f.r.Queue(attack(1, 2, model.SkillAttack))
	out := f.resolveWindow()

	got := outcomeFor(t, out, 1)
	if got.Kind != OutcomeBlocked {
		t.Fatalf("Kind = %s, want Blocked", got.Kind)
	}
	if got.Damage != 0 {
		t.Errorf("blocked damage = %d, want 0", got.Damage)
	}
	if got.GuardSkill != model.SkillDefense {
		t.Errorf("GuardSkill = %v, want Defense", got.GuardSkill)
	}
	if hp := bob.Combatant.CurrentHP(); hp != 500 {
		t.Errorf("bob HP = %d, want untouched 500", hp)
	}
	if st := bob.Machine.State(); st != skill.StateRecovery {
		t.Errorf("consumed guard state = %s, want Recovery", st)
	}
	// Отдача: атакующего шатает его же замахом.
	if alice.Layer.Active() != status.KindStun {
		t.Errorf("alice status = %s, want Stun", alice.Layer.Active())
	}
	if alice.Layer.Remaining() != 800*time.Millisecond {
		t.Errorf("rebound stun = %v, want 800ms", alice.Layer.Remaining())
	}
	if bob.Layer.Active() != 0 {
		t.Errorf("bob must stay clean, got %s", bob.Layer.Active())
	}
}

func TestResolver_SmashBreaksDefense(t *testing.T) {
	f := newResolverFixture(t)
	f.addFighter(t, 1, "alice", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	bob := f.addFighter(t, 2, "bob", "broadsword", model.StatSnapshot{Strength: 15, Dexterity: 10, Defense: 5}, 1, 0)
	f.raiseGuard(t, bob, model.SkillDefense)

	f.r.Queue(attack(1, 2, model.SkillSmash))
	out := f.resolveWindow()

	got := outcomeFor(t, out, 1)
	if got.Kind != OutcomeDefenseBroken {
		t.Fatalf("Kind = %s, want DefenseBroken", got.Kind)
	}
	// raw 42.5, четверть через блок: 10.625 - 5 = 5
	if got.Damage != 5 {
		t.Errorf("Damage = %d, want 5", got.Damage)
	}
	if hp := bob.Combatant.CurrentHP(); hp != 495 {
		t.Errorf("bob HP = %d, want 495", hp)
	}
	if bob.Layer.Active() != status.KindKnockdown {
		t.Fatalf("bob status = %s, want Knockdown", bob.Layer.Active())
	}
	if bob.Layer.ActiveSource() != status.SourceInteraction {
		t.Errorf("knockdown source = %s, want Interaction", bob.Layer.ActiveSource())
	}
	if st := bob.Machine.State(); st != skill.StateIdle {
		t.Errorf("floored defender machine = %s, want Idle", st)
	}
	// Нокдаун-скиллы идут мимо шкалы и не кормят её.
	if v := bob.Meter.Value(); v != 0 {
		t.Errorf("meter = %v, want 0 for bypass skills", v)
	}

	shoves := f.arena.shoves[2]
	if len(shoves) != 1 {
		t.Fatalf("shoves = %d, want 1", len(shoves))
	}
	if !almostEqual(shoves[0].X, f.tuning.KnockdownDistance) || !almostEqual(shoves[0].Y, 0) {
		t.Errorf("shove = %+v, want {%v 0}", shoves[0], f.tuning.KnockdownDistance)
	}
}

func TestResolver_WindmillIgnoresDefense(t *testing.T) {
	f := newResolverFixture(t)
	f.addFighter(t, 1, "alice", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	bob := f.addFighter(t, 2, "bob", "broadsword", model.StatSnapshot{Strength: 15, Dexterity: 10, Defense: 5}, 1, 0)
	f.raiseGuard(t, bob, model.SkillDefense)

	f.r.Queue(attack(1, 2, model.SkillWindmill))
	out := f.resolveWindow()

	got := outcomeFor(t, out, 1)
	// Не Blocked и не DefenseBroken: стойка просто не отвечает на спин.
	if got.Kind != OutcomeUnopposed {
		t.Fatalf("Kind = %s, want Unopposed", got.Kind)
	}
	if got.GuardSkill != NoGuard {
		t.Errorf("GuardSkill = %v, want NoGuard", got.GuardSkill)
	}
	// raw (12+5)*2.0 = 34 - 5 = 29, полный урон
	if got.Damage != 29 {
		t.Errorf("Damage = %d, want full 29", got.Damage)
	}
	if bob.Layer.Active() != status.KindKnockdown {
		t.Errorf("bob status = %s, want Knockdown", bob.Layer.Active())
	}
	if st := bob.Machine.State(); st != skill.StateIdle {
		t.Errorf("knocked down hold = %s, want Idle", st)
	}
}

func TestResolver_CounterReflects(t *testing.T) {
	f := newResolverFixture(t)
	alice := f.addFighter(t, 1, "alice", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	bob := f.addFighter(t, 2, "bob", "broadsword", model.StatSnapshot{Strength: 15, Dexterity: 10, Defense: 5}, 1, 0)
	f.raiseGuard(t, bob, model.SkillCounter)

	f.r.Queue(attack(1, 2, model.SkillAttack))
	out := f.resolveWindow()

	got := outcomeFor(t, out, 1)
	if got.Kind != OutcomeReflected {
		t.Fatalf("Kind = %s, want Reflected", got.Kind)
	}
	if got.Damage != 0 {
		t.Errorf("defender damage = %d, want 0", got.Damage)
	}
	// raw 17 минус собственная защита атакующего 2
	if got.Reflected != 15 {
		t.Errorf("Reflected = %d, want 15", got.Reflected)
	}
	if hp := bob.Combatant.CurrentHP(); hp != 500 {
		t.Errorf("bob HP = %d, want untouched 500", hp)
	}
	if hp := alice.Combatant.CurrentHP(); hp != 485 {
		t.Errorf("alice HP = %d, want 485", hp)
	}
	if alice.Layer.Active() != status.KindKnockdown {
		t.Errorf("alice status = %s, want Knockdown", alice.Layer.Active())
	}
	// Атакующего отбрасывает от контратаковавшего.
	shoves := f.arena.shoves[1]
	if len(shoves) != 1 {
		t.Fatalf("attacker shoves = %d, want 1", len(shoves))
	}
	if shoves[0].X >= 0 {
		t.Errorf("shove.X = %v, want negative (away from bob)", shoves[0].X)
	}
	if st := bob.Machine.State(); st != skill.StateRecovery {
		t.Errorf("consumed counter state = %s, want Recovery", st)
	}
}

func TestResolver_WindmillBreaksCounter(t *testing.T) {
	f := newResolverFixture(t)
	f.addFighter(t, 1, "alice", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	bob := f.addFighter(t, 2, "bob", "broadsword", model.StatSnapshot{Strength: 15, Dexterity: 10, Defense: 5}, 1, 0)
	f.raiseGuard(t, bob, model.SkillCounter)

	f.r.Queue(attack(1, 2, model.SkillWindmill))
	out := f.resolveWindow()

	got := outcomeFor(t, out, 1)
	if got.Kind != OutcomeDefenseBroken {
		t.Fatalf("Kind = %s, want DefenseBroken", got.Kind)
	}
	// Спин ломает контратаку полным уроном: 34 - 5 = 29.
	if got.Damage != 29 {
		t.Errorf("Damage = %d, want 29", got.Damage)
	}
	if got.Reflected != 0 {
		t.Errorf("Reflected = %d, want 0", got.Reflected)
	}
	if bob.Layer.Active() != status.KindKnockdown {
		t.Errorf("bob status = %s, want Knockdown", bob.Layer.Active())
	}
}

func TestResolver_RangedShotAgainstGuard(t *testing.T) {
	t.Run("miss leaves the guard untouched", func(t *testing.T) {
		f := newResolverFixture(t)
		f.addFighter(t, 1, "archer", "longbow", model.StatSnapshot{Strength: 10, Dexterity: 25, Focus: 20, Defense: 2}, 0, 0)
		bob := f.addFighter(t, 2, "bob", "broadsword", model.StatSnapshot{Strength: 15, Dexterity: 10, Defense: 5}, 6, 0)
		f.raiseGuard(t, bob, model.SkillDefense)

		act := attack(1, 2, model.SkillRangedAttack)
		act.RangedHit = false
		f.r.Queue(act)
		out := f.resolveWindow()

		if got := outcomeFor(t, out, 1); got.Kind != OutcomeMiss {
			t.Fatalf("Kind = %s, want Miss", got.Kind)
		}
		if st := bob.Machine.State(); st != skill.StateWaiting {
			t.Errorf("missed shot must not consume the guard, state = %s", st)
		}
		if hp := bob.Combatant.CurrentHP(); hp != 500 {
			t.Errorf("bob HP = %d, want 500", hp)
		}
	})

	t.Run("hit is blocked across any distance without rebound", func(t *testing.T) {
		f := newResolverFixture(t)
		archer := f.addFighter(t, 1, "archer", "longbow", model.StatSnapshot{Strength: 10, Dexterity: 25, Focus: 20, Defense: 2}, 0, 0)
		bob := f.addFighter(t, 2, "bob", "broadsword", model.StatSnapshot{Strength: 15, Dexterity: 10, Defense: 5}, 6, 0)
		f.raiseGuard(t, bob, model.SkillDefense)

		act := attack(1, 2, model.SkillRangedAttack)
		act.RangedHit = true
		f.r.Queue(act)
		out := f.resolveWindow()

		got := outcomeFor(t, out, 1)
		if got.Kind != OutcomeBlocked {
			t.Fatalf("Kind = %s, want Blocked", got.Kind)
		}
		if st := bob.Machine.State(); st != skill.StateRecovery {
			t.Errorf("blocking a shot must consume the guard, state = %s", st)
		}
		// Стрелка не шатает от блока на дистанции.
		if archer.Layer.Active() != 0 {
			t.Errorf("archer status = %s, want none", archer.Layer.Active())
		}
	})
}

func TestResolver_TwoAttackersOneGuard(t *testing.T) {
	queueOrders := [][]uint32{{1, 2}, {2, 1}}
	for _, order := range queueOrders {
		f := newResolverFixture(t)
		f.addFighter(t, 1, "quick", "dagger", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
		f.addFighter(t, 2, "heavy", "warhammer", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 3}, 2, 0)
		carol := f.addFighter(t, 3, "carol", "broadsword", model.StatSnapshot{Strength: 15, Dexterity: 10, Focus: 10, Defense: 5}, 1, 0)
		f.raiseGuard(t, carol, model.SkillDefense)

		for _, id := range order {
			f.r.Queue(attack(id, 3, model.SkillAttack))
		}
		out := f.resolveWindow()

		// Кинжал быстрее молота: блок достаётся быстрому, медленный
		// проходит в уже снятую стойку. Порядок очереди не важен.
		if got := outcomeFor(t, out, 1); got.Kind != OutcomeBlocked {
			t.Fatalf("order %v: quick outcome = %s, want Blocked", order, got.Kind)
		}
		if got := outcomeFor(t, out, 2); got.Kind != OutcomeUnopposed {
			t.Fatalf("order %v: heavy outcome = %s, want Unopposed", order, got.Kind)
		}
		if out[0].AttackerID != 1 {
			t.Errorf("order %v: faster attacker must commit first, got %d", order, out[0].AttackerID)
		}
		// (24 + 20/4) - 5 = 24 от молота, кинжал заблокирован.
		if hp := carol.Combatant.CurrentHP(); hp != 476 {
			t.Errorf("order %v: carol HP = %d, want 476", order, hp)
		}
	}
}

func TestResolver_SpeedClash_FasterWins(t *testing.T) {
	f := newResolverFixture(t)
	alice := f.addFighter(t, 1, "alice", "dagger", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	bob := f.addFighter(t, 2, "bob", "warhammer", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 5}, 1, 0)

	f.r.Queue(attack(1, 2, model.SkillAttack))
	f.r.Queue(attack(2, 1, model.SkillAttack))
	out := f.resolveWindow()

	if len(out) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(out))
	}
	if got := outcomeFor(t, out, 1); got.Kind != OutcomeUnopposed {
		t.Errorf("fast attacker outcome = %s, want Unopposed", got.Kind)
	}
	slow := outcomeFor(t, out, 2)
	if slow.Kind != OutcomeSpeedLoss {
		t.Errorf("slow attacker outcome = %s, want SpeedLoss", slow.Kind)
	}
	if slow.Damage != 0 {
		t.Errorf("lost swing damage = %d, want 0", slow.Damage)
	}
	// (8 + 5) - 5 = 8 по проигравшему, победитель не тронут.
	if hp := bob.Combatant.CurrentHP(); hp != 492 {
		t.Errorf("bob HP = %d, want 492", hp)
	}
	if hp := alice.Combatant.CurrentHP(); hp != 500 {
		t.Errorf("alice HP = %d, want 500", hp)
	}
	if bob.Layer.Active() != status.KindStun {
		t.Errorf("loser status = %s, want Stun", bob.Layer.Active())
	}
	// Стан от сорванного замаха перекрывает стан от попадания кинжала:
	// остаётся база собственного молота.
	if got := bob.Layer.Remaining(); got != 1400*time.Millisecond {
		t.Errorf("loser stun = %v, want the warhammer base 1400ms", got)
	}
	if n := len(eventsOfType(f.events, telemetry.EventClash)); n != 0 {
		t.Errorf("decisive clash must not emit a coin-flip event, got %d", n)
	}
}

func TestResolver_SpeedClash_TieCoinFlip(t *testing.T) {
	stats := model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 5}

	run := func(t *testing.T, roll float64) (uint32, []Outcome, *resolverFixture) {
		t.Helper()
		f := newResolverFixture(t)
		f.addFighter(t, 1, "alice", "shortsword", stats, 0, 0)
		f.addFighter(t, 2, "bob", "shortsword", stats, 1, 0)
		f.rolls = []float64{roll}

		f.r.Queue(attack(1, 2, model.SkillAttack))
		f.r.Queue(attack(2, 1, model.SkillAttack))
		out := f.resolveWindow()

		clashes := eventsOfType(f.events, telemetry.EventClash)
		if len(clashes) != 1 {
			t.Fatalf("clash events = %d, want 1", len(clashes))
		}
		return clashes[0].Winner, out, f
	}

	t.Run("low roll favors the first", func(t *testing.T) {
		winner, out, f := run(t, 0.2)
		if winner != 1 {
			t.Fatalf("winner = %d, want 1", winner)
		}
		if out[0].AttackerID != 1 {
			t.Errorf("flip winner must commit first, got %d", out[0].AttackerID)
		}
		// Ничья — обоюдный размен: оба удара проходят полностью.
		for id := uint32(1); id <= 2; id++ {
			if got := outcomeFor(t, out, id); got.Kind != OutcomeUnopposed {
				t.Errorf("attacker %d outcome = %s, want Unopposed", id, got.Kind)
			}
			if hp := f.fighters[id].Combatant.CurrentHP(); hp != 488 {
				t.Errorf("fighter %d HP = %d, want 488", id, hp)
			}
		}
	})

	t.Run("high roll favors the second", func(t *testing.T) {
		winner, out, _ := run(t, 0.8)
		if winner != 2 {
			t.Fatalf("winner = %d, want 2", winner)
		}
		if out[0].AttackerID != 2 {
			t.Errorf("flip winner must commit first, got %d", out[0].AttackerID)
		}
	})
}

func TestResolver_TieCoinFlip_Statistics(t *testing.T) {
	stats := model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 5}

	f := newResolverFixture(t)
	alice := f.addFighter(t, 1, "alice", "shortsword", stats, 0, 0)
	bob := f.addFighter(t, 2, "bob", "shortsword", stats, 1, 0)

	rng := rand.New(rand.NewPCG(0xD0E1, 0xF00D))
	f.rollFn = rng.Float64

	const rounds = 400
	firstWins := 0
	for i := 0; i < rounds; i++ {
		f.events = nil
		alice.Combatant.SetCurrentHP(500)
		bob.Combatant.SetCurrentHP(500)
		alice.Layer.Clear()
		bob.Layer.Clear()
		alice.Meter.DebugReset()
		bob.Meter.DebugReset()

		f.r.Queue(attack(1, 2, model.SkillAttack))
		f.r.Queue(attack(2, 1, model.SkillAttack))
		f.resolveWindow()

		clashes := eventsOfType(f.events, telemetry.EventClash)
		if len(clashes) != 1 {
			t.Fatalf("round %d: clash events = %d, want 1", i, len(clashes))
		}
		if clashes[0].Winner == 1 {
			firstWins++
		}
	}

	// Монетка честная: на 400 бросках доля побед держится около половины.
	if firstWins < rounds*2/5 || firstWins > rounds*3/5 {
		t.Errorf("first fighter won %d/%d ties, want within [%d, %d]",
			firstWins, rounds, rounds*2/5, rounds*3/5)
	}
}

func TestResolver_OutOfRangeMiss(t *testing.T) {
	f := newResolverFixture(t)
	f.addFighter(t, 1, "alice", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	bob := f.addFighter(t, 2, "bob", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 10, Defense: 5}, 10, 0)

	f.r.Queue(attack(1, 2, model.SkillAttack))
	out := f.resolveWindow()

	if got := outcomeFor(t, out, 1); got.Kind != OutcomeMiss {
		t.Fatalf("Kind = %s, want Miss", got.Kind)
	}
	if hp := bob.Combatant.CurrentHP(); hp != 500 {
		t.Errorf("bob HP = %d, want 500", hp)
	}
	if len(eventsOfType(f.events, telemetry.EventDamage)) != 0 {
		t.Error("miss must not deal damage")
	}
}

func TestResolver_DefeatedTargetMiss(t *testing.T) {
	f := newResolverFixture(t)
	f.addFighter(t, 1, "alice", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	bob := f.addFighter(t, 2, "bob", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 10, Defense: 5}, 1, 0)
	bob.Combatant.DoDefeat()

	f.r.Queue(attack(1, 2, model.SkillAttack))
	out := f.resolveWindow()

	if got := outcomeFor(t, out, 1); got.Kind != OutcomeMiss {
		t.Fatalf("Kind = %s, want Miss", got.Kind)
	}
}

func TestResolver_LungeKnocksBack(t *testing.T) {
	f := newResolverFixture(t)
	f.addFighter(t, 1, "alice", "dagger", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	bob := f.addFighter(t, 2, "bob", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 10, Defense: 5}, 1, 0)

	f.r.Queue(attack(1, 2, model.SkillLunge))
	out := f.resolveWindow()

	got := outcomeFor(t, out, 1)
	if got.Kind != OutcomeUnopposed {
		t.Fatalf("Kind = %s, want Unopposed", got.Kind)
	}
	// (8 + 5) * 1.5 = 19.5 - 5 = 14
	if got.Damage != 14 {
		t.Errorf("Damage = %d, want 14", got.Damage)
	}
	if bob.Layer.Active() != status.KindKnockback {
		t.Fatalf("bob status = %s, want Knockback", bob.Layer.Active())
	}
	if bob.Layer.Remaining() != f.tuning.KnockbackDuration {
		t.Errorf("knockback duration = %v, want %v", bob.Layer.Remaining(), f.tuning.KnockbackDuration)
	}
	shoves := f.arena.shoves[2]
	if len(shoves) != 1 || !almostEqual(shoves[0].X, f.tuning.KnockbackDistance) {
		t.Errorf("shove = %+v, want {%v 0}", shoves, f.tuning.KnockbackDistance)
	}
}

func TestResolver_ComboFinisherKnocksBack(t *testing.T) {
	f := newResolverFixture(t)
	f.addFighter(t, 1, "alice", "training_fists", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	bob := f.addFighter(t, 2, "bob", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 10, Focus: 10, Defense: 5}, 1, 0)

	for hit := 1; hit <= 3; hit++ {
		f.r.Queue(attack(1, 2, model.SkillAttack))
		out := f.resolveWindow()
		if got := outcomeFor(t, out, 1); got.Kind != OutcomeUnopposed {
			t.Fatalf("hit %d: Kind = %s, want Unopposed", hit, got.Kind)
		}

		want := status.KindStun
		if hit == f.tuning.ComboKnockbackHits {
			// Финальный удар серии отбрасывает.
			want = status.KindKnockback
		}
		if got := bob.Layer.Active(); got != want {
			t.Fatalf("hit %d: status = %s, want %s", hit, got, want)
		}
	}
}

func TestResolver_MeterTriggersKnockdown(t *testing.T) {
	f := newResolverFixture(t)
	// Один удар гарантированно переполняет шкалу.
	f.tuning.MeterBuildupDamageFactor = 10

	f.addFighter(t, 1, "alice", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	bob := f.addFighter(t, 2, "bob", "shortsword", model.StatSnapshot{Strength: 20, Dexterity: 10, Focus: 10, Defense: 5}, 1, 0)

	f.r.Queue(attack(1, 2, model.SkillAttack))
	out := f.resolveWindow()

	if got := outcomeFor(t, out, 1); got.Kind != OutcomeUnopposed {
		t.Fatalf("Kind = %s, want Unopposed", got.Kind)
	}
	if bob.Layer.Active() != status.KindKnockdown {
		t.Fatalf("bob status = %s, want Knockdown", bob.Layer.Active())
	}
	if bob.Layer.ActiveSource() != status.SourceMeter {
		t.Errorf("knockdown source = %s, want Meter", bob.Layer.ActiveSource())
	}
	if v := bob.Meter.Value(); v != status.MeterMax {
		t.Errorf("meter = %v, want pinned at %v", v, status.MeterMax)
	}
	if n := len(eventsOfType(f.events, telemetry.EventMeter)); n != 1 {
		t.Errorf("meter events = %d, want 1", n)
	}
}

func TestResolver_GuardOutOfReachIsBypassed(t *testing.T) {
	f := newResolverFixture(t)
	f.addFighter(t, 1, "alice", "broadsword", model.StatSnapshot{Strength: 20, Dexterity: 20, Defense: 2}, 0, 0)
	// Кинжальная стойка достаёт на 1.5, атакующий выпад бьёт с 2.0.
	bob := f.addFighter(t, 2, "bob", "dagger", model.StatSnapshot{Strength: 15, Dexterity: 10, Defense: 5}, 2, 0)
	f.raiseGuard(t, bob, model.SkillDefense)

	f.r.Queue(attack(1, 2, model.SkillLunge))
	out := f.resolveWindow()

	got := outcomeFor(t, out, 1)
	if got.Kind != OutcomeUnopposed {
		t.Fatalf("Kind = %s, want Unopposed past the short guard", got.Kind)
	}
	if bob.Layer.Active() != status.KindKnockback {
		t.Errorf("bob status = %s, want Knockback", bob.Layer.Active())
	}
	if st := bob.Machine.State(); st != skill.StateIdle {
		t.Errorf("bypassed guard must collapse from the hit, state = %s", st)
	}
}

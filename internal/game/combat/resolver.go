// Package combat сводит одновременные активации скиллов в исходы.
// Активации копятся в окне одновременности; на его закрытии батч
// разрешается целиком против снимка состояния до первого коммита, так что
// порядок внутри батча не даёт никому преимущества.
package combat

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/udisondev/duelgo/internal/config"
	"github.com/udisondev/duelgo/internal/data"
	"github.com/udisondev/duelgo/internal/game/skill"
	"github.com/udisondev/duelgo/internal/game/status"
	"github.com/udisondev/duelgo/internal/model"
	"github.com/udisondev/duelgo/internal/telemetry"
)

// Arena — пространственные запросы, нужные resolver'у. Реализуется ареной
// матча; в тестах подменяется стабом с фиксированными дистанциями.
type Arena interface {
	// Distance returns the gap between two combatants' bodies.
	Distance(a, b uint32) float64
	// DirectionTo returns a unit vector pointing from one combatant to
	// another (zero when they overlap).
	DirectionTo(from, to uint32) cp.Vector
	// ApplyDisplacement shoves a combatant, clamped by walls and bodies.
	ApplyDisplacement(id uint32, shove cp.Vector)
}

// Fighter — боевое состояние одного участника, собранное матчем.
type Fighter struct {
	Combatant *model.Combatant
	Machine   *skill.Machine
	Layer     *status.Layer
	Meter     *status.Meter
	Combo     *status.ComboTracker
}

// Resolver собирает активации в окна одновременности и разрешает их.
// Не потокобезопасен: живёт внутри однопоточного цикла матча.
type Resolver struct {
	tuning   *config.Tuning
	fighters map[uint32]*Fighter
	arena    Arena
	sink     telemetry.Sink
	roll     func() float64 // uniform [0,1) from the match RNG

	clock         time.Duration
	pending       []skill.Activation
	windowCloseAt time.Duration
	windowOpen    bool
}

// NewResolver создаёт resolver поверх бойцов матча.
func NewResolver(tuning *config.Tuning, fighters map[uint32]*Fighter, arena Arena, sink telemetry.Sink, roll func() float64) *Resolver {
	if sink == nil {
		sink = telemetry.NopSink{}
	}
	return &Resolver{
		tuning:   tuning,
		fighters: fighters,
		arena:    arena,
		sink:     sink,
		roll:     roll,
	}
}

// Queue принимает активацию. Первая активация открывает окно; все
// последующие до его закрытия попадают в тот же батч.
func (r *Resolver) Queue(act skill.Activation) {
	if !r.windowOpen {
		r.windowOpen = true
		r.windowCloseAt = r.clock + r.tuning.SimultaneityWindow
		slog.Debug("simultaneity window opened", "actor", act.ActorID, "closes_at", r.windowCloseAt)
	}
	r.pending = append(r.pending, act)
}

// WindowOpen — открыто ли окно одновременности.
func (r *Resolver) WindowOpen() bool { return r.windowOpen }

// PendingCount — сколько активаций ждёт разрешения.
func (r *Resolver) PendingCount() int { return len(r.pending) }

// Tick продвигает часы resolver'а. Когда окно дозрело, батч разрешается
// и возвращаются исходы в порядке коммита (пустой срез между окнами).
func (r *Resolver) Tick(dt time.Duration) []Outcome {
	r.clock += dt
	if !r.windowOpen || r.clock < r.windowCloseAt {
		return nil
	}

	batch := r.pending
	r.pending = nil
	r.windowOpen = false

	return r.resolve(batch)
}

// attackPlan — одна атакующая активация с числами, снятыми до коммитов.
type attackPlan struct {
	act      skill.Activation
	attacker *Fighter
	tmpl     *data.SkillTemplate
	atkSnap  model.StatSnapshot
	weapon   model.WeaponProfile

	speed float64
	reach float64
	raw   float64
	dist  float64 // to the target at window close

	speedLoss bool // lost a speed clash outright
	clashWin  bool // won a coin-flip tie, commits first
}

// defenderInfo — снимок защитника до первого коммита батча. Решения
// попал/заблокирован принимаются только по нему.
type defenderInfo struct {
	snap     model.StatSnapshot
	defeated bool

	guardSkill     model.SkillType
	guardReach     float64
	guardAvailable bool
}

// resolve разрешает батч: снимок → клинчи → сортировка по скорости →
// последовательный коммит. Все чтения идут из снимка, поэтому порядок
// коммитов не влияет на то, кто попал и кто заблокировал.
func (r *Resolver) resolve(batch []skill.Activation) []Outcome {
	plans := r.buildPlans(batch)
	if len(plans) == 0 {
		return nil
	}

	infos := r.snapshotDefenders()
	r.detectClashes(plans)

	// Faster commits first; coin-flip winners beat their partner inside
	// the epsilon band; actor id keeps the order reproducible.
	sort.SliceStable(plans, func(i, j int) bool {
		d := plans[i].speed - plans[j].speed
		if d > r.tuning.SpeedEpsilon {
			return true
		}
		if d < -r.tuning.SpeedEpsilon {
			return false
		}
		if plans[i].clashWin != plans[j].clashWin {
			return plans[i].clashWin
		}
		return plans[i].act.ActorID < plans[j].act.ActorID
	})

	outcomes := make([]Outcome, 0, len(plans))
	for _, p := range plans {
		outcomes = append(outcomes, r.commit(p, infos))
	}
	return outcomes
}

// buildPlans отбирает атакующие активации и снимает их числа.
// Защитные активации исхода не порождают: стойка видна через GuardUp.
func (r *Resolver) buildPlans(batch []skill.Activation) []*attackPlan {
	plans := make([]*attackPlan, 0, len(batch))
	for _, act := range batch {
		f := r.fighters[act.ActorID]
		if f == nil || f.Combatant.IsDefeated() {
			continue
		}

		tmpl := data.GetSkillTemplate(act.Skill)
		if tmpl == nil || !tmpl.IsOffensive() {
			continue
		}

		snap := f.Combatant.Stats()
		weapon := f.Combatant.Weapon()
		p := &attackPlan{
			act:      act,
			attacker: f,
			tmpl:     tmpl,
			atkSnap:  snap,
			weapon:   weapon,
			speed:    Speed(snap, weapon, tmpl, r.tuning),
			reach:    Reach(weapon, tmpl),
			raw:      RawDamage(snap, weapon, tmpl, r.tuning),
			dist:     math.Inf(1),
		}
		if r.fighters[act.TargetID] != nil {
			p.dist = r.arena.Distance(act.ActorID, act.TargetID)
		}
		plans = append(plans, p)
	}
	return plans
}

// snapshotDefenders снимает статы и стойки всех бойцов до коммитов.
func (r *Resolver) snapshotDefenders() map[uint32]*defenderInfo {
	infos := make(map[uint32]*defenderInfo, len(r.fighters))
	for id, f := range r.fighters {
		info := &defenderInfo{
			snap:       f.Combatant.Stats(),
			defeated:   f.Combatant.IsDefeated(),
			guardSkill: NoGuard,
		}
		if f.Machine.GuardUp() {
			info.guardSkill = f.Machine.Skill()
			info.guardReach = Reach(f.Combatant.Weapon(), f.Machine.Template())
			info.guardAvailable = true
		}
		infos[id] = info
	}
	return infos
}

// detectClashes находит пары взаимных атак и решает их скоростью.
// Внутри эпсилона — монетка: оба удара проходят, победитель броска
// коммитится раньше. Вне эпсилона медленный теряет замах целиком.
func (r *Resolver) detectClashes(plans []*attackPlan) {
	for i := 0; i < len(plans); i++ {
		for j := i + 1; j < len(plans); j++ {
			pi, pj := plans[i], plans[j]
			if pi.act.TargetID != pj.act.ActorID || pj.act.TargetID != pi.act.ActorID {
				continue
			}
			if !pi.connects() || !pj.connects() {
				continue
			}

			d := pi.speed - pj.speed
			switch {
			case d > r.tuning.SpeedEpsilon:
				pj.speedLoss = true
			case d < -r.tuning.SpeedEpsilon:
				pi.speedLoss = true
			default:
				winner, loser := pi, pj
				if r.roll() >= 0.5 {
					winner, loser = pj, pi
				}
				winner.clashWin = true
				slog.Debug("clash tie",
					"winner", winner.act.ActorID, "loser", loser.act.ActorID,
					"speed", winner.speed)
				r.sink.Emit(telemetry.Event{
					At:     r.clock,
					Type:   telemetry.EventClash,
					Actor:  pi.act.ActorID,
					Target: pj.act.ActorID,
					Winner: winner.act.ActorID,
				})
			}
		}
	}
}

// connects — дотянется ли удар до цели: дистанция в пределах досягаемости,
// а для выстрела ещё и сам бросок на попадание.
func (p *attackPlan) connects() bool {
	if p.tmpl.Type.IsRanged() && !p.act.RangedHit {
		return false
	}
	return p.dist <= p.reach
}

// commit разрешает и применяет один план. Чтения — из снимка infos,
// записи — в живое состояние; исход строится по пути.
func (r *Resolver) commit(p *attackPlan, infos map[uint32]*defenderInfo) Outcome {
	out := Outcome{
		AttackerID: p.act.ActorID,
		DefenderID: p.act.TargetID,
		Skill:      p.act.Skill,
		GuardSkill: NoGuard,
	}

	switch {
	case p.speedLoss:
		// Обогнали: замах пропал, собственная инерция шатает проигравшего.
		// Удар победителя дойдёт своим планом.
		out.Kind = OutcomeSpeedLoss
		r.applyStatus(p.attacker, p.act.ActorID, p.act.TargetID, status.Stun(StunDuration(p.weapon, p.tmpl)))

	case r.missed(p, infos):
		out.Kind = OutcomeMiss

	default:
		info := infos[p.act.TargetID]
		resp, guarded := r.guardAnswer(p, info)
		if guarded {
			r.commitGuarded(p, info, resp, &out)
		} else {
			r.commitUnopposed(p, info, &out)
		}
	}

	r.sink.Emit(telemetry.Event{
		At:      r.clock,
		Type:    telemetry.EventOutcome,
		Actor:   out.AttackerID,
		Target:  out.DefenderID,
		Skill:   out.Skill.String(),
		Outcome: out.Kind.String(),
		Amount:  out.Damage,
	})
	return out
}

// missed — промах: цель исчезла, пала до окна, вне досягаемости или
// стрела ушла мимо. Промах не трогает ничью стойку.
func (r *Resolver) missed(p *attackPlan, infos map[uint32]*defenderInfo) bool {
	info := infos[p.act.TargetID]
	if info == nil || info.defeated {
		return true
	}
	if p.tmpl.Type.IsRanged() && !p.act.RangedHit {
		return true
	}
	return p.dist > p.reach
}

// guardAnswer — ответит ли стойка цели на этот удар. Стойка уже снятая
// этим батчем не отвечает; меле-удар из-за пределов досягаемости
// защитника проходит мимо стойки; Windmill против Defense ответа не имеет.
// Удар, прошедший мимо стойки, всё равно может сломать её своим CC —
// это видно по машине защитника после коммита.
func (r *Resolver) guardAnswer(p *attackPlan, info *defenderInfo) (guardResponse, bool) {
	if !info.guardAvailable {
		return guardResponse{}, false
	}
	if !p.tmpl.Type.IsRanged() && info.guardReach < p.dist {
		return guardResponse{}, false
	}

	resp, ok := respondTo(p.act.Skill, info.guardSkill, r.tuning)
	if !ok {
		return guardResponse{}, false
	}
	info.guardAvailable = false
	return resp, true
}

// commitGuarded применяет ответ стойки: блок, перехват или пробой.
func (r *Resolver) commitGuarded(p *attackPlan, info *defenderInfo, resp guardResponse, out *Outcome) {
	defender := r.fighters[p.act.TargetID]
	out.Kind = resp.kind
	out.GuardSkill = info.guardSkill

	if resp.damageFraction > 0 {
		out.Damage = ReducedDamage(p.raw, resp.damageFraction, info.snap)
		r.dealDamage(p.act.ActorID, p.act.TargetID, out.Damage)
	}

	// Стойка израсходована перехватом: Waiting → Recovery.
	defender.Machine.ConsumeGuard()

	if resp.reflect {
		out.Reflected = ReflectedDamage(p.raw, p.atkSnap)
		r.dealDamage(p.act.TargetID, p.act.ActorID, out.Reflected)
	}

	if resp.defenderKnockdown {
		eff := status.Knockdown(
			r.tuning.KnockdownDuration,
			r.arena.DirectionTo(p.act.ActorID, p.act.TargetID).Mult(r.tuning.KnockdownDistance),
			status.SourceInteraction,
		)
		landed := r.applyStatus(defender, p.act.TargetID, p.act.ActorID, eff)
		kind := status.Kind(0)
		if landed {
			kind = eff.Kind
		}
		defender.Machine.OnDamaged(kind)
	}

	if resp.attackerKnockdown {
		eff := status.Knockdown(
			r.tuning.KnockdownDuration,
			r.arena.DirectionTo(p.act.TargetID, p.act.ActorID).Mult(r.tuning.KnockdownDistance),
			status.SourceInteraction,
		)
		landed := r.applyStatus(p.attacker, p.act.ActorID, p.act.TargetID, eff)
		kind := status.Kind(0)
		if landed {
			kind = eff.Kind
		}
		p.attacker.Machine.OnDamaged(kind)
	}

	if resp.attackerStun {
		// Отдача от блока: шатает собственным замахом, урона нет.
		eff := status.Stun(StunDuration(p.weapon, p.tmpl))
		r.applyStatus(p.attacker, p.act.ActorID, p.act.TargetID, eff)
	}

	slog.Debug("guard answered",
		"attacker", p.act.ActorID, "defender", p.act.TargetID,
		"skill", p.act.Skill, "guard", info.guardSkill, "outcome", out.Kind)
}

// commitUnopposed применяет чистое попадание: полный урон, эффект по
// лестнице нокдаун-скиллы → шкала → толчок → стан, вклад в шкалу.
func (r *Resolver) commitUnopposed(p *attackPlan, info *defenderInfo, out *Outcome) {
	defender := r.fighters[p.act.TargetID]
	out.Kind = OutcomeUnopposed
	out.Damage = AppliedDamage(p.raw, info.snap)

	r.dealDamage(p.act.ActorID, p.act.TargetID, out.Damage)

	var eff status.Effect
	dir := r.arena.DirectionTo(p.act.ActorID, p.act.TargetID)

	if p.tmpl.BypassMeter {
		// Smash и Windmill валят напрямую, мимо шкалы и без вклада в неё.
		eff = status.Knockdown(
			r.tuning.KnockdownDuration,
			dir.Mult(r.tuning.KnockdownDistance),
			status.SourceInteraction,
		)
	} else {
		comboHit := defender.Combo.Advance(p.act.ActorID, r.clock)
		triggered := defender.Meter.AddBuildup(p.raw, comboHit, p.atkSnap, info.snap)

		switch {
		case triggered:
			eff = status.Knockdown(
				r.tuning.KnockdownDuration,
				dir.Mult(r.tuning.KnockdownDistance),
				status.SourceMeter,
			)
			r.sink.Emit(telemetry.Event{
				At:     r.clock,
				Type:   telemetry.EventMeter,
				Actor:  p.act.TargetID,
				Target: p.act.ActorID,
				Amount: int32(defender.Meter.Value()),
				Source: status.SourceMeter.String(),
			})
		case p.tmpl.KnockbackOnHit || comboHit == r.tuning.ComboKnockbackHits:
			// Выпад и финальный удар серии отбрасывают вместо стана.
			eff = status.Knockback(
				r.tuning.KnockbackDuration,
				dir.Mult(r.tuning.KnockbackDistance),
			)
		default:
			eff = status.Stun(StunDuration(p.weapon, p.tmpl))
		}
	}

	landed := r.applyStatus(defender, p.act.TargetID, p.act.ActorID, eff)
	kind := status.Kind(0)
	if landed {
		kind = eff.Kind
	}
	defender.Machine.OnDamaged(kind)

	// CC мог сломать Waiting: упавшая стойка не отвечает остатку батча.
	if info.guardAvailable && !defender.Machine.GuardUp() {
		info.guardAvailable = false
	}
}

// dealDamage применяет урон и публикует событие. Ноль не публикуется.
func (r *Resolver) dealDamage(dealer, victim uint32, amount int32) {
	if amount <= 0 {
		return
	}
	f := r.fighters[victim]
	f.Combatant.ReduceCurrentHP(amount)
	r.sink.Emit(telemetry.Event{
		At:     r.clock,
		Type:   telemetry.EventDamage,
		Actor:  dealer,
		Target: victim,
		Amount: amount,
	})
}

// applyStatus накладывает эффект на бойца: слой, смещение на арене,
// событие. Returns false when a stronger effect swallowed it.
func (r *Resolver) applyStatus(f *Fighter, victim, inflictor uint32, eff status.Effect) bool {
	if !f.Layer.Apply(eff) {
		return false
	}

	if eff.Displacement != (cp.Vector{}) {
		r.arena.ApplyDisplacement(victim, eff.Displacement)
	}

	ev := telemetry.Event{
		At:       r.clock,
		Type:     telemetry.EventStatus,
		Actor:    victim,
		Target:   inflictor,
		Status:   eff.Kind.String(),
		Duration: eff.Duration,
	}
	if eff.Kind == status.KindKnockdown {
		ev.Source = eff.Source.String()
	}
	r.sink.Emit(ev)
	return true
}

package skill

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/duelgo/internal/config"
	"github.com/udisondev/duelgo/internal/data"
	"github.com/udisondev/duelgo/internal/game/status"
	"github.com/udisondev/duelgo/internal/model"
)

// Activation — факт входа скилла в активную фазу. Машина порождает ровно
// одну активацию на исполнение; resolver собирает их в батчи.
type Activation struct {
	ActorID   uint32
	Skill     model.SkillType
	TargetID  uint32        // 0 for defensive skills
	At        time.Duration // machine clock when Active began
	RangedHit bool          // ranged shots resolve their own roll at release
}

// Hooks — инъецируемые коллбеки машины. Разрывают цикл импортов:
// машина не знает ни про resolver, ни про арену, ни про RNG матча.
type Hooks struct {
	// OnActivation delivers the activation the moment Active begins.
	OnActivation func(Activation)

	// TargetStillFor reports how long a combatant has been motionless.
	TargetStillFor func(targetID uint32) time.Duration

	// Roll returns a uniform float in [0,1) from the match RNG.
	Roll func() float64
}

// Machine — машина исполнения скиллов одного бойца.
// Idle → Charging → {Charged | Aiming} → Startup → Active → {Recovery | Waiting} → Idle.
// Атакующие скиллы держатся на полном заряде до RequestExecute; защитные
// исполняются сами и повисают в Waiting до перехвата удара.
type Machine struct {
	owner  *model.Combatant
	layer  *status.Layer
	tuning *config.Tuning
	hooks  Hooks

	state    State
	tmpl     *data.SkillTemplate // nil in Idle
	targetID uint32

	clock         time.Duration // sum of ticked dt
	chargeElapsed time.Duration
	chargeNeeded  time.Duration // dexterity- and weapon-scaled
	phaseLeft     time.Duration // startup/active/recovery countdown

	aim           *AimTracker
	rangedHit     bool
	lastRangedHit bool

	belowUpkeep time.Duration // time spent in Waiting with stamina under cost
}

// NewMachine создаёт машину в Idle.
func NewMachine(owner *model.Combatant, layer *status.Layer, tuning *config.Tuning, hooks Hooks) *Machine {
	return &Machine{
		owner:  owner,
		layer:  layer,
		tuning: tuning,
		hooks:  hooks,
		state:  StateIdle,
	}
}

// State возвращает текущее состояние.
func (m *Machine) State() State { return m.state }

// Skill возвращает тип заряжаемого/исполняемого скилла.
// Valid only outside Idle.
func (m *Machine) Skill() model.SkillType {
	if m.tmpl == nil {
		return -1
	}
	return m.tmpl.Type
}

// Template возвращает шаблон текущего скилла (nil в Idle).
func (m *Machine) Template() *data.SkillTemplate { return m.tmpl }

// TargetID возвращает назначенную цель (0 если нет).
func (m *Machine) TargetID() uint32 { return m.targetID }

// ChargeProgress возвращает прогресс заряда в [0,1].
// Held states report 1, Idle reports 0.
func (m *Machine) ChargeProgress() float64 {
	switch m.state {
	case StateCharging:
		if m.chargeNeeded <= 0 {
			return 1
		}
		p := float64(m.chargeElapsed) / float64(m.chargeNeeded)
		if p > 1 {
			p = 1
		}
		return p
	case StateCharged, StateAiming:
		return 1
	default:
		return 0
	}
}

// AimValue возвращает накопленную точность (0 если не целимся).
func (m *Machine) AimValue() float64 {
	if m.aim == nil {
		return 0
	}
	return m.aim.Value()
}

// LastRangedHit — результат броска последнего выстрела.
func (m *Machine) LastRangedHit() bool { return m.lastRangedHit }

// GuardUp reports whether a defensive skill is ready to intercept:
// the Waiting hold, or the instant the guard comes up in Active.
func (m *Machine) GuardUp() bool {
	if m.tmpl == nil || !m.tmpl.IsDefensive() {
		return false
	}
	return m.state == StateWaiting || m.state == StateActive
}

// RequestCharge начинает зарядку скилла. Цель обязательна для атакующих
// скиллов и фиксируется на всю попытку.
func (m *Machine) RequestCharge(t model.SkillType, targetID uint32) error {
	// 1. Only from Idle
	if m.state != StateIdle {
		return fmt.Errorf("charge %s from %s: %w", t, m.state, ErrInvalidState)
	}

	// 2. Template must exist
	tmpl := data.GetSkillTemplate(t)
	if tmpl == nil {
		return fmt.Errorf("charge: unknown skill %s", t)
	}

	// 3. Defeated or CC'd actors cannot begin actions
	if m.owner.IsDefeated() {
		return fmt.Errorf("charge %s: defeated: %w", t, ErrActorDisabled)
	}
	if !m.layer.CanBeginAction() {
		return fmt.Errorf("charge %s under %s: %w", t, m.layer.Active(), ErrActorDisabled)
	}

	// 4. Offensive skills need a victim up front
	if tmpl.IsOffensive() && targetID == 0 {
		return fmt.Errorf("charge %s: %w", t, ErrNoTarget)
	}

	// 5. Stamina must cover the activation cost (consumed at execution)
	if m.owner.Stamina() < tmpl.StaminaCost {
		return fmt.Errorf("charge %s: need %.0f, have %.0f: %w",
			t, tmpl.StaminaCost, m.owner.Stamina(), ErrInsufficientStamina)
	}

	m.state = StateCharging
	m.tmpl = tmpl
	m.targetID = targetID
	m.chargeElapsed = 0
	m.chargeNeeded = m.scaledChargeTime(tmpl)
	m.aim = nil
	m.rangedHit = false

	slog.Debug("skill charging",
		"actor", m.owner.Name(), "skill", t, "charge_time", m.chargeNeeded)
	return nil
}

// RequestExecute высвобождает удержанный заряд. Only from Charged/Aiming.
func (m *Machine) RequestExecute() error {
	// 1. Only a held charge can be released
	if m.state != StateCharged && m.state != StateAiming {
		return fmt.Errorf("execute from %s: %w", m.state, ErrInvalidState)
	}

	// 2. Release is a new action: CC blocks it even though the hold survives
	if !m.layer.CanBeginAction() {
		return fmt.Errorf("execute %s under %s: %w", m.tmpl.Type, m.layer.Active(), ErrActorDisabled)
	}

	// 3. Stamina is consumed here, not at charge time
	if !m.owner.TrySpendStamina(m.tmpl.StaminaCost) {
		return fmt.Errorf("execute %s: need %.0f, have %.0f: %w",
			m.tmpl.Type, m.tmpl.StaminaCost, m.owner.Stamina(), ErrInsufficientStamina)
	}

	// 4. Ranged shots roll against accumulated aim at the moment of release
	if m.state == StateAiming {
		chance := m.aim.Value() / 100
		m.rangedHit = m.hooks.Roll() < chance
		m.lastRangedHit = m.rangedHit
		slog.Debug("ranged shot released",
			"actor", m.owner.Name(), "aim", m.aim.Value(), "hit", m.rangedHit)
	}

	m.state = StateStartup
	m.phaseLeft = m.tmpl.StartupTime
	return nil
}

// Cancel прерывает зарядку или удержание. Защитный Waiting возвращает
// часть стамины; незавершённая зарядка ничего не тратила и не возвращает.
func (m *Machine) Cancel() error {
	switch m.state {
	case StateCharging, StateCharged, StateAiming:
		slog.Debug("skill canceled", "actor", m.owner.Name(), "skill", m.tmpl.Type, "state", m.state)
		m.reset()
		return nil
	case StateWaiting:
		refund := m.tmpl.StaminaCost * m.tuning.DefensiveCancelRefund
		m.owner.RestoreStamina(refund)
		slog.Debug("defensive hold canceled",
			"actor", m.owner.Name(), "skill", m.tmpl.Type, "refund", refund)
		m.reset()
		return nil
	default:
		return fmt.Errorf("cancel from %s: %w", m.state, ErrInvalidState)
	}
}

// Tick продвигает фазовые таймеры машины.
func (m *Machine) Tick(dt time.Duration) {
	m.clock += dt

	switch m.state {
	case StateIdle:

	case StateCharging:
		// Knockback/knockdown freeze the charge; stun does not.
		if m.layer.BlocksChargeProgress() {
			return
		}
		m.chargeElapsed += dt
		if m.chargeElapsed >= m.chargeNeeded {
			m.finishCharge()
		}

	case StateCharged:
		// Held until RequestExecute or Cancel.

	case StateAiming:
		still := time.Duration(0)
		if m.hooks.TargetStillFor != nil {
			still = m.hooks.TargetStillFor(m.targetID)
		}
		m.aim.Tick(dt, m.owner.Stats().Focus, still)

	case StateStartup:
		m.phaseLeft -= dt
		if m.phaseLeft <= 0 {
			m.enterActive()
		}

	case StateActive:
		m.phaseLeft -= dt
		if m.phaseLeft <= 0 {
			switch {
			case !m.tmpl.IsDefensive():
				m.state = StateRecovery
				m.phaseLeft = m.tmpl.RecoveryTime
			case m.layer.Active() != 0:
				// Свалили пока стойка поднималась: ждать нечего.
				slog.Debug("defensive hold broken before waiting",
					"actor", m.owner.Name(), "effect", m.layer.Active())
				m.reset()
			default:
				m.state = StateWaiting
				m.belowUpkeep = 0
			}
		}

	case StateRecovery:
		m.phaseLeft -= dt
		if m.phaseLeft <= 0 {
			m.reset()
		}

	case StateWaiting:
		m.tickWaiting(dt)
	}
}

// finishCharge — конец зарядки: защитные исполняются сами, лук переходит
// в прицеливание, остальные повисают на полном заряде.
func (m *Machine) finishCharge() {
	switch {
	case m.tmpl.IsDefensive():
		if !m.owner.TrySpendStamina(m.tmpl.StaminaCost) {
			slog.Debug("auto-execute failed, stamina drained during charge",
				"actor", m.owner.Name(), "skill", m.tmpl.Type)
			m.reset()
			return
		}
		m.state = StateStartup
		m.phaseLeft = m.tmpl.StartupTime

	case m.tmpl.Type.IsRanged():
		m.state = StateAiming
		m.aim = NewAimTracker(m.tuning, m.targetID)

	default:
		m.state = StateCharged
	}
}

// enterActive — вход в активную фазу и единственная точка эмиссии активации.
func (m *Machine) enterActive() {
	m.state = StateActive
	m.phaseLeft = m.tmpl.ActiveTime

	act := Activation{
		ActorID:   m.owner.ID(),
		Skill:     m.tmpl.Type,
		At:        m.clock,
		RangedHit: m.rangedHit,
	}
	if m.tmpl.IsOffensive() {
		act.TargetID = m.targetID
	}

	slog.Debug("skill active",
		"actor", m.owner.Name(), "skill", m.tmpl.Type, "target", act.TargetID)

	if m.hooks.OnActivation != nil {
		m.hooks.OnActivation(act)
	}
}

// tickWaiting — upkeep защитной стойки и льготный период при нехватке
// стамины на повторную активацию.
func (m *Machine) tickWaiting(dt time.Duration) {
	m.owner.DrainStamina(m.tuning.DefenseUpkeepPerSecond * dt.Seconds())

	if m.owner.Stamina() >= m.tmpl.StaminaCost {
		m.belowUpkeep = 0
		return
	}

	m.belowUpkeep += dt
	if m.belowUpkeep > m.tuning.WaitingGracePeriod {
		slog.Debug("defensive hold collapsed, stamina under cost past grace period",
			"actor", m.owner.Name(), "skill", m.tmpl.Type)
		m.reset()
	}
}

// ConsumeGuard гасит защитную стойку перехватившую удар: Waiting → Recovery.
// No-op если защита не выставлена.
func (m *Machine) ConsumeGuard() {
	if !m.GuardUp() {
		return
	}
	m.state = StateRecovery
	m.phaseLeft = m.tmpl.RecoveryTime
	slog.Debug("guard consumed", "actor", m.owner.Name(), "skill", m.tmpl.Type)
}

// OnDamaged — реакция машины на входящий урон с эффектом effect
// (0 — чистый урон без CC). Вызывается resolver'ом при коммите.
func (m *Machine) OnDamaged(effect status.Kind) {
	switch m.state {
	case StateStartup, StateRecovery:
		// Wind-up and lag break on any hit.
		slog.Debug("skill interrupted", "actor", m.owner.Name(), "skill", m.tmpl.Type, "state", m.state)
		m.reset()

	case StateCharging, StateCharged, StateAiming:
		// Knockdown dumps the charge back to zero. Stun preserves it
		// (charging keeps running), knockback merely freezes the timer.
		if effect == status.KindKnockdown {
			slog.Debug("charge lost to knockdown", "actor", m.owner.Name(), "skill", m.tmpl.Type)
			m.state = StateCharging
			m.chargeElapsed = 0
			m.aim = nil
			m.rangedHit = false
		}

	case StateWaiting:
		// Any CC collapses the hold; plain damage does not.
		if effect != 0 {
			slog.Debug("defensive hold broken", "actor", m.owner.Name(), "effect", effect)
			m.reset()
		}

	case StateActive:
		// Never interrupted.
	}
}

// ForceIdle сбрасывает машину безусловно (terminal defeat).
func (m *Machine) ForceIdle() {
	m.reset()
}

// reset возвращает машину в Idle и чистит всё кроме lastRangedHit.
func (m *Machine) reset() {
	m.state = StateIdle
	m.tmpl = nil
	m.targetID = 0
	m.chargeElapsed = 0
	m.chargeNeeded = 0
	m.phaseLeft = 0
	m.aim = nil
	m.rangedHit = false
	m.belowUpkeep = 0
}

// scaledChargeTime — базовое время заряда, ускоренное ловкостью и оружием.
func (m *Machine) scaledChargeTime(tmpl *data.SkillTemplate) time.Duration {
	dex := float64(m.owner.Stats().Dexterity)
	speed := m.owner.Weapon().Speed
	if speed <= 0 {
		speed = 1
	}
	scale := (1 + dex/m.tuning.DexChargeDivisor) * speed
	return time.Duration(float64(tmpl.ChargeTime) / scale)
}

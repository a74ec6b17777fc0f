// Package match — контекст одного боя. Владеет бойцами, ареной и
// resolver'ом, прогоняет однопоточный тик-пайплайн и следит за концом боя:
// движение → физика → реген → статусы → шкалы → машины → resolver → выбывание.
package match

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jakecoffman/cp"

	"github.com/udisondev/duelgo/internal/arena"
	"github.com/udisondev/duelgo/internal/config"
	"github.com/udisondev/duelgo/internal/data"
	"github.com/udisondev/duelgo/internal/game/combat"
	"github.com/udisondev/duelgo/internal/game/skill"
	"github.com/udisondev/duelgo/internal/game/status"
	"github.com/udisondev/duelgo/internal/model"
	"github.com/udisondev/duelgo/internal/telemetry"
)

// Result — состояние боя после тика.
type Result int32

const (
	ResultContinue Result = iota // bout still running
	ResultVictory                // one team stands alone
	ResultDraw                   // timeout or mutual defeat
)

// resultNames — метки результатов.
var resultNames = [...]string{
	ResultContinue: "Continue",
	ResultVictory:  "Victory",
	ResultDraw:     "Draw",
}

// String возвращает метку результата.
func (r Result) String() string {
	if r < 0 || int(r) >= len(resultNames) {
		return "Unknown"
	}
	return resultNames[r]
}

// Participant описывает бойца при входе в матч.
type Participant struct {
	ID   uint32
	Name string
	Team int32

	Stats  model.StatSnapshot
	Weapon string // weapon profile name

	MaxHP        int32
	MaxStamina   float64
	StaminaRegen float64 // per second

	X, Y float64 // starting position
}

// Options — параметры матча.
type Options struct {
	Width   float64
	Height  float64
	Timeout time.Duration // 0 = no timeout
	Seed    uint64
	Sink    telemetry.Sink
}

// Match — один бой от входа бойцов до результата.
// Не потокобезопасен: все вызовы из одной горутины.
type Match struct {
	tuning *config.Tuning
	sink   telemetry.Sink
	rng    *rand.Rand

	arena    *arena.Arena
	fighters map[uint32]*combat.Fighter
	order    []uint32 // join order, fixes every iteration
	resolver *combat.Resolver

	moveIntents map[uint32]cp.Vector

	clock      time.Duration
	timeout    time.Duration
	finished   bool
	result     Result
	winnerTeam int32

	lastOutcomes []combat.Outcome
}

// New создаёт пустой матч. Tuning общий для всех слоёв матча и может
// горячо подменяться через ApplyTuning.
func New(tuning *config.Tuning, opts Options) *Match {
	sink := opts.Sink
	if sink == nil {
		sink = telemetry.NopSink{}
	}

	m := &Match{
		tuning:      tuning,
		sink:        sink,
		rng:         rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9E3779B97F4A7C15)),
		arena:       arena.New(opts.Width, opts.Height),
		fighters:    make(map[uint32]*combat.Fighter, 4),
		moveIntents: make(map[uint32]cp.Vector, 4),
		timeout:     opts.Timeout,
	}
	m.resolver = combat.NewResolver(tuning, m.fighters, m.arena, sink, m.rng.Float64)
	return m
}

// Join вводит бойца в матч.
func (m *Match) Join(p Participant) error {
	if _, ok := m.fighters[p.ID]; ok {
		return fmt.Errorf("combatant %d already joined", p.ID)
	}

	weapon := data.GetWeaponProfile(p.Weapon)
	if weapon == nil {
		return fmt.Errorf("join %s: unknown weapon %q", p.Name, p.Weapon)
	}

	if err := m.arena.Place(p.ID, cp.Vector{X: p.X, Y: p.Y}); err != nil {
		return fmt.Errorf("join %s: %w", p.Name, err)
	}

	c := model.NewCombatant(p.ID, p.Name, p.Team, p.Stats, *weapon, p.MaxHP, p.MaxStamina, p.StaminaRegen)
	layer := status.NewLayer(p.Name)
	f := &combat.Fighter{
		Combatant: c,
		Layer:     layer,
		Meter:     status.NewMeter(p.Name, m.tuning),
		Combo:     status.NewComboTracker(m.tuning.ComboIdleGap),
	}
	f.Machine = skill.NewMachine(c, layer, m.tuning, skill.Hooks{
		OnActivation:   m.resolver.Queue,
		TargetStillFor: m.arena.StillFor,
		Roll:           m.rng.Float64,
	})

	m.fighters[p.ID] = f
	m.order = append(m.order, p.ID)

	slog.Info("combatant joined",
		"id", p.ID, "name", p.Name, "team", p.Team, "weapon", p.Weapon)
	return nil
}

// Fighter возвращает боевое состояние бойца (nil если не в матче).
func (m *Match) Fighter(id uint32) *combat.Fighter { return m.fighters[id] }

// Arena возвращает арену матча.
func (m *Match) Arena() *arena.Arena { return m.arena }

// Clock возвращает часы матча.
func (m *Match) Clock() time.Duration { return m.clock }

// Finished — закончен ли бой.
func (m *Match) Finished() bool { return m.finished }

// Outcome возвращает результат боя (Continue пока бой идёт).
func (m *Match) Outcome() Result { return m.result }

// WinnerTeam возвращает команду-победителя (0 пока нет или ничья).
func (m *Match) WinnerTeam() int32 { return m.winnerTeam }

// LastOutcomes возвращает исходы окна, разрешённого на последнем тике.
// Nil на тиках без разрешения: реакции читаются в тот же тик.
func (m *Match) LastOutcomes() []combat.Outcome { return m.lastOutcomes }

// Distance возвращает дистанцию между двумя бойцами.
func (m *Match) Distance(a, b uint32) float64 { return m.arena.Distance(a, b) }

// DirectionTo возвращает единичный вектор от одного бойца к другому.
func (m *Match) DirectionTo(from, to uint32) cp.Vector { return m.arena.DirectionTo(from, to) }

// ApplyTuning горячо подменяет баланс между тиками. Все слои матча
// держат общий указатель, поэтому значения видны сразу.
func (m *Match) ApplyTuning(t config.Tuning) {
	*m.tuning = t
	slog.Info("tuning applied", "move_speed", t.MoveSpeed, "window", t.SimultaneityWindow)
}

// Charge начинает зарядку скилла бойца.
func (m *Match) Charge(actorID uint32, st model.SkillType, targetID uint32) error {
	f, err := m.aliveFighter(actorID)
	if err != nil {
		return err
	}
	if targetID != 0 && m.fighters[targetID] == nil {
		return fmt.Errorf("charge %s: target %d not in match: %w", st, targetID, skill.ErrNoTarget)
	}
	return f.Machine.RequestCharge(st, targetID)
}

// Execute высвобождает удержанный заряд. Атакующий скилл требует цель
// в досягаемости на момент запроса; во время замаха цель ещё может уйти.
func (m *Match) Execute(actorID uint32) error {
	f, err := m.aliveFighter(actorID)
	if err != nil {
		return err
	}

	if tmpl := f.Machine.Template(); tmpl != nil && tmpl.IsOffensive() {
		reach := combat.Reach(f.Combatant.Weapon(), tmpl)
		if !m.arena.WithinRange(actorID, f.Machine.TargetID(), reach) {
			return fmt.Errorf("execute %s: target %d beyond %.1f: %w",
				tmpl.Type, f.Machine.TargetID(), reach, skill.ErrOutOfRange)
		}
	}
	return f.Machine.RequestExecute()
}

// Cancel прерывает зарядку или удержание бойца.
func (m *Match) Cancel(actorID uint32) error {
	f, err := m.aliveFighter(actorID)
	if err != nil {
		return err
	}
	return f.Machine.Cancel()
}

// Move подаёт намерение двигаться в направлении dir на ближайший тик.
// Запрещено под CC и в зафиксированных фазах исполнения.
func (m *Match) Move(actorID uint32, dir cp.Vector) error {
	f, err := m.aliveFighter(actorID)
	if err != nil {
		return err
	}
	if !f.Layer.CanMove() {
		return fmt.Errorf("move under %s: %w", f.Layer.Active(), skill.ErrActorDisabled)
	}
	if !movableState(f.Machine.State()) {
		return fmt.Errorf("move during %s: %w", f.Machine.State(), skill.ErrInvalidState)
	}
	if dir.Length() == 0 {
		delete(m.moveIntents, actorID)
		return nil
	}
	m.moveIntents[actorID] = dir.Normalize()
	return nil
}

// Forfeit — добровольная сдача: боец выбывает на следующем тике.
func (m *Match) Forfeit(actorID uint32) error {
	f, err := m.aliveFighter(actorID)
	if err != nil {
		return err
	}
	f.Combatant.SetCurrentHP(0)
	slog.Info("combatant forfeits", "id", actorID, "name", f.Combatant.Name())
	return nil
}

// Tick продвигает бой на dt. Возвращает результат после тика.
func (m *Match) Tick(dt time.Duration) Result {
	if m.finished {
		return m.result
	}
	m.clock += dt

	// 1. Движение: намерения живут один тик.
	for _, id := range m.order {
		f := m.fighters[id]
		intent, ok := m.moveIntents[id]
		if !ok || f.Combatant.IsDefeated() || !f.Layer.CanMove() || !movableState(f.Machine.State()) {
			continue
		}
		m.arena.SetVelocity(id, intent.Mult(m.tuning.MoveSpeed))
	}
	clear(m.moveIntents)
	m.arena.Step(dt)

	// 2. Реген и фоновые слои.
	for _, id := range m.order {
		f := m.fighters[id]
		if f.Combatant.IsDefeated() {
			continue
		}
		f.Combatant.RegenStamina(dt.Seconds())
		f.Layer.Tick(dt)
		f.Meter.Decay(dt)
	}

	// 3. Машины скиллов: активации уходят в resolver через хук.
	for _, id := range m.order {
		f := m.fighters[id]
		if f.Combatant.IsDefeated() {
			continue
		}
		f.Machine.Tick(dt)
	}

	// 4. Разрешение окна одновременности.
	m.lastOutcomes = m.resolver.Tick(dt)

	// 5. Выбывание и конец боя.
	m.sweepDefeated()
	m.checkEnd()
	return m.result
}

// sweepDefeated переводит бойцов с нулевым HP в терминальное состояние.
// Урон сам по себе не выбивает: только этот проход после разрешения.
func (m *Match) sweepDefeated() {
	for _, id := range m.order {
		f := m.fighters[id]
		if f.Combatant.IsDefeated() || f.Combatant.CurrentHP() > 0 {
			continue
		}
		if !f.Combatant.DoDefeat() {
			continue
		}

		f.Machine.ForceIdle()
		f.Layer.Clear()
		f.Combo.Reset()
		m.arena.Remove(id)

		slog.Info("combatant defeated", "id", id, "name", f.Combatant.Name(), "at", m.clock)
		m.sink.Emit(telemetry.Event{
			At:    m.clock,
			Type:  telemetry.EventDefeat,
			Actor: id,
		})
	}
}

// checkEnd проверяет условия конца боя: одна команда на ногах или таймаут.
func (m *Match) checkEnd() {
	if m.finished {
		return
	}

	aliveTeams := make(map[int32]bool, 2)
	var lastTeam int32
	for _, id := range m.order {
		f := m.fighters[id]
		if !f.Combatant.IsDefeated() {
			aliveTeams[f.Combatant.Team()] = true
			lastTeam = f.Combatant.Team()
		}
	}

	switch {
	case len(m.order) > 0 && len(aliveTeams) == 0:
		// Обоюдное выбывание в одном окне.
		m.finish(ResultDraw, 0)
	case len(m.order) > 1 && len(aliveTeams) == 1:
		m.finish(ResultVictory, lastTeam)
	case m.timeout > 0 && m.clock >= m.timeout:
		m.finish(ResultDraw, 0)
	}
}

func (m *Match) finish(r Result, winner int32) {
	m.finished = true
	m.result = r
	m.winnerTeam = winner

	slog.Info("match finished", "result", r, "winner_team", winner, "elapsed", m.clock)
	m.sink.Emit(telemetry.Event{
		At:     m.clock,
		Type:   telemetry.EventMatchEnd,
		Winner: uint32(winner),
	})
}

// aliveFighter возвращает живого бойца или ошибку команды.
func (m *Match) aliveFighter(id uint32) (*combat.Fighter, error) {
	f := m.fighters[id]
	if f == nil {
		return nil, fmt.Errorf("combatant %d not in match", id)
	}
	if f.Combatant.IsDefeated() {
		return nil, fmt.Errorf("combatant %d defeated: %w", id, skill.ErrActorDisabled)
	}
	return f, nil
}

// movableState — можно ли перемещаться в данном состоянии машины.
// Зарядка и удержание не приковывают, фазы исполнения — да.
func movableState(s skill.State) bool {
	switch s {
	case skill.StateStartup, skill.StateActive, skill.StateRecovery:
		return false
	default:
		return true
	}
}

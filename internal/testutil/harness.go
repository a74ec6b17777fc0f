package testutil

import (
	"testing"
	"time"

	"github.com/udisondev/duelgo/internal/config"
	"github.com/udisondev/duelgo/internal/data"
	"github.com/udisondev/duelgo/internal/game/match"
	"github.com/udisondev/duelgo/internal/telemetry"
)

// TickStep — шаг симуляции в тестах, 50 тиков на секунду боя.
const TickStep = 20 * time.Millisecond

// DuelHarness поднимает готовый матч для интеграционных тестов: таблицы
// данных загружены, журнал телеметрии подключён, бойцы добавляются одной
// строкой с параметрами из Fixtures.
type DuelHarness struct {
	TB      testing.TB
	Tuning  config.Tuning
	Match   *match.Match
	Journal *telemetry.Journal
}

// NewDuelHarness создаёт матч с дефолтным тюнингом и заданным сидом.
func NewDuelHarness(tb testing.TB, seed uint64) *DuelHarness {
	tb.Helper()

	if err := data.LoadSkillTemplates(); err != nil {
		tb.Fatalf("loading skill templates: %v", err)
	}
	if err := data.LoadWeaponProfiles(); err != nil {
		tb.Fatalf("loading weapon profiles: %v", err)
	}

	h := &DuelHarness{
		TB:      tb,
		Tuning:  config.DefaultTuning(),
		Journal: telemetry.NewJournal(),
	}
	h.Match = match.New(&h.Tuning, match.Options{
		Width:   Fixtures.ArenaWidth,
		Height:  Fixtures.ArenaHeight,
		Timeout: 2 * time.Minute,
		Seed:    seed,
		Sink:    h.Journal,
	})
	return h
}

// Join добавляет бойца со сбалансированным профилем и дефолтными пулами.
func (h *DuelHarness) Join(id uint32, name string, team int32, weapon string, x, y float64) {
	h.TB.Helper()
	err := h.Match.Join(match.Participant{
		ID:           id,
		Name:         name,
		Team:         team,
		Stats:        Fixtures.Balanced,
		Weapon:       weapon,
		MaxHP:        Fixtures.MaxHP,
		MaxStamina:   Fixtures.MaxStamina,
		StaminaRegen: Fixtures.StaminaRegen,
		X:            x,
		Y:            y,
	})
	if err != nil {
		h.TB.Fatalf("joining %s: %v", name, err)
	}
}

// JoinPair ставит двух бойцов друг напротив друга в радиусе ближнего боя.
func (h *DuelHarness) JoinPair(weaponA, weaponB string) {
	h.Join(1, "alice", 1, weaponA, 14.2, 15)
	h.Join(2, "bob", 2, weaponB, 15.8, 15)
}

// StepUntil крутит матч до условия; падает, если условие не наступило.
func (h *DuelHarness) StepUntil(max int, what string, cond func() bool) {
	h.TB.Helper()
	for i := 0; i < max; i++ {
		if cond() {
			return
		}
		h.Match.Tick(TickStep)
	}
	h.TB.Fatalf("%s: not reached after %d ticks", what, max)
}

// Run крутит матч до завершения или до лимита тиков.
func (h *DuelHarness) Run(max int) {
	h.TB.Helper()
	h.StepUntil(max, "match end", h.Match.Finished)
}

package testutil

import "github.com/udisondev/duelgo/internal/model"

// Fixtures — канонические параметры бойцов для тестов, чтобы не
// дублировать наборы статов по пакетам.
var Fixtures = struct {
	// Профили статов
	Balanced model.StatSnapshot // ровный профиль без перекосов
	Heavy    model.StatSnapshot // урон и броня ценой скорости заряда
	Swift    model.StatSnapshot // быстрый заряд, лёгкая рука

	// Пулы по умолчанию
	MaxHP        int32
	MaxStamina   float64
	StaminaRegen float64

	// Арена по умолчанию
	ArenaWidth  float64
	ArenaHeight float64
}{
	Balanced: model.StatSnapshot{Strength: 20, Dexterity: 15, Focus: 10, Defense: 3},
	Heavy:    model.StatSnapshot{Strength: 32, Dexterity: 8, Focus: 6, Defense: 8},
	Swift:    model.StatSnapshot{Strength: 14, Dexterity: 26, Focus: 14, Defense: 2},

	MaxHP:        200,
	MaxStamina:   100,
	StaminaRegen: 15,

	ArenaWidth:  30,
	ArenaHeight: 30,
}

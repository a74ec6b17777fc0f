package model

import (
	"sync"
)

// Combatant — живой участник боя. Держит пулы HP/стамины и идентичность;
// состояние скиллов и статус-эффектов живёт в соответствующих слоях движка.
type Combatant struct {
	mu sync.RWMutex

	id     uint32
	name   string
	team   int32
	snap   StatSnapshot
	weapon WeaponProfile

	currentHP  int32
	maxHP      int32
	stamina    float64
	maxStamina float64
	regen      float64 // stamina per second

	defeatOnce sync.Once // protects DoDefeat from double execution
	defeated   bool
}

// NewCombatant создаёт бойца с полными пулами.
func NewCombatant(id uint32, name string, team int32, snap StatSnapshot, weapon WeaponProfile, maxHP int32, maxStamina, regen float64) *Combatant {
	return &Combatant{
		id:         id,
		name:       name,
		team:       team,
		snap:       snap,
		weapon:     weapon,
		currentHP:  maxHP,
		maxHP:      maxHP,
		stamina:    maxStamina,
		maxStamina: maxStamina,
		regen:      regen,
	}
}

// ID возвращает идентификатор бойца.
func (c *Combatant) ID() uint32 { return c.id }

// Name возвращает имя бойца.
func (c *Combatant) Name() string { return c.name }

// Team возвращает номер команды.
func (c *Combatant) Team() int32 { return c.team }

// Stats возвращает срез характеристик.
func (c *Combatant) Stats() StatSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// SetStats заменяет срез характеристик (внешняя агрегация экипировки/баффов).
func (c *Combatant) SetStats(snap StatSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
}

// Weapon возвращает профиль оружия.
func (c *Combatant) Weapon() WeaponProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.weapon
}

// SetWeapon заменяет профиль оружия.
func (c *Combatant) SetWeapon(w WeaponProfile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weapon = w
}

// CurrentHP возвращает текущее HP.
func (c *Combatant) CurrentHP() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentHP
}

// MaxHP возвращает максимальное HP.
func (c *Combatant) MaxHP() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxHP
}

// SetCurrentHP устанавливает текущее HP с валидацией (clamp 0..maxHP).
func (c *Combatant) SetCurrentHP(hp int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hp < 0 {
		hp = 0
	}
	if hp > c.maxHP {
		hp = c.maxHP
	}
	c.currentHP = hp
}

// ReduceCurrentHP уменьшает HP на величину урона (floor 0).
func (c *Combatant) ReduceCurrentHP(damage int32) {
	if damage <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.currentHP -= damage
	if c.currentHP < 0 {
		c.currentHP = 0
	}
}

// HPPercentage возвращает процент HP (0..100).
func (c *Combatant) HPPercentage() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.maxHP == 0 {
		return 0
	}
	return float64(c.currentHP) / float64(c.maxHP) * 100.0
}

// Stamina возвращает текущую стамину.
func (c *Combatant) Stamina() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stamina
}

// MaxStamina возвращает максимальную стамину.
func (c *Combatant) MaxStamina() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxStamina
}

// TrySpendStamina атомарно списывает стамину если её хватает.
// Returns false without touching the pool when the cost cannot be covered.
func (c *Combatant) TrySpendStamina(cost float64) bool {
	if cost <= 0 {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stamina < cost {
		return false
	}
	c.stamina -= cost
	return true
}

// DrainStamina списывает стамину без проверки (floor 0). Used by upkeep costs.
func (c *Combatant) DrainStamina(amount float64) {
	if amount <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stamina -= amount
	if c.stamina < 0 {
		c.stamina = 0
	}
}

// RestoreStamina возвращает стамину в пул (clamp до максимума).
func (c *Combatant) RestoreStamina(amount float64) {
	if amount <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stamina += amount
	if c.stamina > c.maxStamina {
		c.stamina = c.maxStamina
	}
}

// RegenStamina начисляет реген за прошедший интервал.
func (c *Combatant) RegenStamina(dt float64) {
	c.RestoreStamina(c.regen * dt)
}

// IsDefeated проверяет выбыл ли боец (терминальное состояние).
func (c *Combatant) IsDefeated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defeated
}

// DoDefeat handles the terminal defeat transition. Returns true if this call
// performed it; repeated calls are no-ops.
func (c *Combatant) DoDefeat() bool {
	executed := false
	c.defeatOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.currentHP > 0 {
			c.currentHP = 0
		}
		c.defeated = true
		executed = true
	})
	return executed
}

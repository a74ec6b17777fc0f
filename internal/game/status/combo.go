package status

import "time"

// comboState — цепочка попаданий одного атакующего по владельцу трекера.
type comboState struct {
	count   int
	lastHit time.Duration // match clock of the latest hit
}

// ComboTracker считает последовательные попадания по одному защитнику,
// отдельно для каждого атакующего. Пауза длиннее idleGap обнуляет цепочку.
type ComboTracker struct {
	idleGap time.Duration
	chains  map[uint32]comboState
}

// NewComboTracker создаёт трекер с заданным окном цепочки.
func NewComboTracker(idleGap time.Duration) *ComboTracker {
	return &ComboTracker{
		idleGap: idleGap,
		chains:  make(map[uint32]comboState, 4),
	}
}

// Advance регистрирует попадание атакующего на отметке now (часы матча).
// Returns the 1-based hit index within the current chain.
func (ct *ComboTracker) Advance(attackerID uint32, now time.Duration) int {
	chain := ct.chains[attackerID]
	if chain.count > 0 && now-chain.lastHit > ct.idleGap {
		chain.count = 0
	}
	chain.count++
	chain.lastHit = now
	ct.chains[attackerID] = chain
	return chain.count
}

// Peek возвращает текущую длину цепочки без продвижения (0 если пусто
// или окно истекло).
func (ct *ComboTracker) Peek(attackerID uint32, now time.Duration) int {
	chain, ok := ct.chains[attackerID]
	if !ok {
		return 0
	}
	if now-chain.lastHit > ct.idleGap {
		return 0
	}
	return chain.count
}

// Reset обнуляет все цепочки (terminal defeat владельца).
func (ct *ComboTracker) Reset() {
	clear(ct.chains)
}

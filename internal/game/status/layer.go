package status

import (
	"log/slog"
	"time"
)

// Layer держит ноль или один активный CC-эффект бойца.
// Правила замещения: старший Kind вытесняет младшего, одинаковый Kind
// освежает длительность, младший против старшего отбрасывается.
type Layer struct {
	owner     string // combatant name for logs
	kind      Kind   // 0 = no effect
	source    KnockdownSource
	remaining time.Duration
}

// NewLayer создаёт пустой слой для бойца.
func NewLayer(owner string) *Layer {
	return &Layer{owner: owner}
}

// Apply пытается наложить эффект. Returns true when the effect landed
// (fresh, refresh, or override), false when a stronger effect holds.
func (l *Layer) Apply(e Effect) bool {
	if e.Kind < l.kind {
		slog.Debug("status rejected by stronger effect",
			"owner", l.owner, "incoming", e.Kind, "active", l.kind)
		return false
	}

	if e.Kind == l.kind {
		// Same kind refreshes, never stacks. The newer cause wins.
		l.remaining = e.Duration
		l.source = e.Source
		slog.Debug("status refreshed", "owner", l.owner, "kind", e.Kind, "duration", e.Duration)
		return true
	}

	l.kind = e.Kind
	l.source = e.Source
	l.remaining = e.Duration
	slog.Debug("status applied", "owner", l.owner, "kind", e.Kind, "duration", e.Duration)
	return true
}

// Tick списывает прошедшее время. Returns true when the active effect
// expired on this tick.
func (l *Layer) Tick(dt time.Duration) bool {
	if l.kind == 0 {
		return false
	}

	l.remaining -= dt
	if l.remaining > 0 {
		return false
	}

	slog.Debug("status expired", "owner", l.owner, "kind", l.kind)
	l.kind = 0
	l.source = SourceNone
	l.remaining = 0
	return true
}

// Clear снимает эффект немедленно (terminal defeat, debug).
func (l *Layer) Clear() {
	l.kind = 0
	l.source = SourceNone
	l.remaining = 0
}

// Active возвращает текущий Kind (0 если слой пуст).
func (l *Layer) Active() Kind { return l.kind }

// ActiveSource возвращает источник активного нокдауна.
func (l *Layer) ActiveSource() KnockdownSource { return l.source }

// Remaining возвращает остаток длительности.
func (l *Layer) Remaining() time.Duration { return l.remaining }

// CanMove — можно ли перемещаться. Любой CC запрещает движение.
func (l *Layer) CanMove() bool { return l.kind == 0 }

// CanBeginAction — можно ли начинать новое действие (зарядку скилла).
func (l *Layer) CanBeginAction() bool { return l.kind == 0 }

// BlocksChargeProgress — замораживает ли эффект уже идущую зарядку.
// Stun не замораживает: начатый заряд продолжает накапливаться.
func (l *Layer) BlocksChargeProgress() bool {
	return l.kind == KindKnockback || l.kind == KindKnockdown
}

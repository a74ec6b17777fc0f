package status

import (
	"time"

	"github.com/jakecoffman/cp"
)

// Kind identifies a crowd-control effect. Ordering is priority:
// a higher kind always overrides a lower one, never the reverse.
type Kind int32

const (
	KindStun      Kind = 1 // cannot move or begin actions; an active charge keeps running
	KindKnockback Kind = 2 // shoved back; cannot move or act, charge progress frozen
	KindKnockdown Kind = 3 // floored; cannot move or act, charge progress lost
)

// kindNames — имена эффектов для логов и телеметрии.
var kindNames = map[Kind]string{
	KindStun:      "Stun",
	KindKnockback: "Knockback",
	KindKnockdown: "Knockdown",
}

// String возвращает имя эффекта.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// KnockdownSource records what floored the combatant.
type KnockdownSource int32

const (
	SourceNone        KnockdownSource = iota // not a knockdown
	SourceMeter                              // knockdown meter crossed the threshold
	SourceInteraction                        // skill interaction (Smash, Windmill, Counter)
)

// String возвращает имя источника.
func (s KnockdownSource) String() string {
	switch s {
	case SourceMeter:
		return "Meter"
	case SourceInteraction:
		return "Interaction"
	default:
		return "None"
	}
}

// Effect — одно CC-состояние. Displacement отдаётся арене при применении;
// слой хранит только длительность и источник.
type Effect struct {
	Kind         Kind
	Duration     time.Duration
	Displacement cp.Vector       // world-space shove, zero for stun
	Source       KnockdownSource // set for knockdowns only
}

// Stun builds a stun effect.
func Stun(d time.Duration) Effect {
	return Effect{Kind: KindStun, Duration: d}
}

// Knockback builds a knockback effect with a shove vector.
func Knockback(d time.Duration, displacement cp.Vector) Effect {
	return Effect{Kind: KindKnockback, Duration: d, Displacement: displacement}
}

// Knockdown builds a knockdown effect with a shove vector and source.
func Knockdown(d time.Duration, displacement cp.Vector, source KnockdownSource) Effect {
	return Effect{Kind: KindKnockdown, Duration: d, Displacement: displacement, Source: source}
}

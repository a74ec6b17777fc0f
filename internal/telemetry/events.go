// Package telemetry публикует события боя наружу: рендеру, логам, записи
// реплеев. Движок только пишет в Sink; подписчики не могут влиять на бой.
package telemetry

import "time"

// EventType classifies a battle event.
type EventType int32

const (
	EventDamage   EventType = iota // damage applied to a combatant
	EventStatus                    // crowd-control effect landed
	EventOutcome                   // an offensive activation resolved
	EventMeter                     // knockdown meter crossed the threshold
	EventDefeat                    // combatant left the fight
	EventClash                     // speed tie resolved by coin flip
	EventMatchEnd                  // match finished
)

// eventNames — имена событий для логов и дайджеста.
var eventNames = [...]string{
	EventDamage:   "Damage",
	EventStatus:   "Status",
	EventOutcome:  "Outcome",
	EventMeter:    "Meter",
	EventDefeat:   "Defeat",
	EventClash:    "Clash",
	EventMatchEnd: "MatchEnd",
}

// String возвращает имя типа события.
func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventNames) {
		return "Unknown"
	}
	return eventNames[t]
}

// Event — одно событие боя. Плоская структура: все поля опциональны кроме
// At и Type, осмысленность зависит от типа. Строковые метки вместо enum'ов
// движка, чтобы подписчики не тянули его пакеты.
type Event struct {
	At     time.Duration // match clock
	Type   EventType
	Actor  uint32 // subject (attacker, victim of a status, defeated...)
	Target uint32 // counterparty when there is one

	Skill   string // offensive/defensive skill label
	Outcome string // interaction outcome label
	Status  string // CC kind label
	Source  string // knockdown source label

	Amount   int32         // damage points, meter value
	Duration time.Duration // effect duration
	Winner   uint32        // clash winner
}

// Sink принимает события боя. Реализации должны быть дешёвыми:
// вызовы идут синхронно из цикла матча.
type Sink interface {
	Emit(Event)
}

// NopSink отбрасывает события.
type NopSink struct{}

// Emit ничего не делает.
func (NopSink) Emit(Event) {}

// FanOut рассылает события нескольким приёмникам по порядку.
type FanOut []Sink

// Emit передаёт событие каждому приёмнику.
func (f FanOut) Emit(e Event) {
	for _, s := range f {
		s.Emit(e)
	}
}

// SinkFunc адаптирует функцию под Sink (observer в тестах).
type SinkFunc func(Event)

// Emit вызывает функцию.
func (fn SinkFunc) Emit(e Event) { fn(e) }

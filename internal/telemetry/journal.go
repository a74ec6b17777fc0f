package telemetry

import (
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Journal записывает события и ведёт бегущий blake2b-дайджест.
// Два прогона одного сида обязаны дать одинаковый дайджест: это дешёвая
// проверка детерминизма движка без побайтового сравнения реплеев.
type Journal struct {
	events []Event
	hasher hash.Hash
	seq    uint64
}

// NewJournal создаёт пустой журнал.
func NewJournal() *Journal {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 fails only on bad key sizes; nil key never does.
		panic(fmt.Sprintf("blake2b init: %v", err))
	}
	return &Journal{hasher: h}
}

// Emit записывает событие и подмешивает его в дайджест.
func (j *Journal) Emit(e Event) {
	j.seq++
	j.events = append(j.events, e)

	// Canonical line format: every field in fixed order. Chunked through
	// Fprintf so the digest does not depend on struct layout.
	fmt.Fprintf(j.hasher, "%d|%d|%s|%d|%d|%s|%s|%s|%s|%d|%d|%d\n",
		j.seq, e.At.Nanoseconds(), e.Type,
		e.Actor, e.Target,
		e.Skill, e.Outcome, e.Status, e.Source,
		e.Amount, e.Duration.Nanoseconds(), e.Winner,
	)
}

// Events возвращает записанные события (слайс журнала, не копия).
func (j *Journal) Events() []Event { return j.events }

// Len возвращает число записанных событий.
func (j *Journal) Len() int { return len(j.events) }

// Digest возвращает hex-дайджест журнала на текущий момент.
func (j *Journal) Digest() string {
	return hex.EncodeToString(j.hasher.Sum(nil))
}

// CountByType подсчитывает события каждого типа (сводка для отчёта).
func (j *Journal) CountByType() map[EventType]int {
	counts := make(map[EventType]int, 8)
	for _, e := range j.events {
		counts[e.Type]++
	}
	return counts
}

// CountOutcomes подсчитывает исходы по меткам (Unopposed, Blocked...).
func (j *Journal) CountOutcomes() map[string]int {
	counts := make(map[string]int, 8)
	for _, e := range j.events {
		if e.Type == EventOutcome {
			counts[e.Outcome]++
		}
	}
	return counts
}

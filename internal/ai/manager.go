package ai

import (
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// Roster owns the AI controllers of one match and ticks them in
// registration order after each simulation step. The match loop drives
// time; the roster never spins a goroutine of its own, and the fixed
// order keeps replays reproducible.
// Not safe for concurrent use: register and tick from the loop goroutine.
type Roster struct {
	controllers map[uint32]Controller
	order       []uint32
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{
		controllers: make(map[uint32]Controller),
	}
}

// Register registers and starts a controller for a combatant.
// Re-registering an ID replaces the controller but keeps its tick slot.
func (r *Roster) Register(actorID uint32, controller Controller) {
	if old, ok := r.controllers[actorID]; ok {
		old.Stop()
	} else {
		r.order = append(r.order, actorID)
	}
	r.controllers[actorID] = controller
	controller.Start()

	slog.Debug("AI controller registered",
		"actor", actorID, "intention", controller.CurrentIntention())
}

// Unregister stops and removes a controller.
func (r *Roster) Unregister(actorID uint32) {
	controller, ok := r.controllers[actorID]
	if !ok {
		return
	}
	delete(r.controllers, actorID)
	r.order = slices.DeleteFunc(r.order, func(id uint32) bool { return id == actorID })
	controller.Stop()

	slog.Debug("AI controller unregistered", "actor", actorID)
}

// TickAll ticks every controller in registration order.
func (r *Roster) TickAll(dt time.Duration) {
	for _, id := range r.order {
		r.controllers[id].Tick(dt)
	}
}

// Count returns the number of registered controllers.
func (r *Roster) Count() int {
	return len(r.controllers)
}

// Controller returns the controller driving a combatant.
func (r *Roster) Controller(actorID uint32) (Controller, error) {
	controller, ok := r.controllers[actorID]
	if !ok {
		return nil, fmt.Errorf("no controller for actor %d", actorID)
	}
	return controller, nil
}

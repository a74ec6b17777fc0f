package skill

// State represents a phase of skill execution.
type State int32

const (
	StateIdle     State = iota // no skill in flight
	StateCharging              // accumulating charge
	StateCharged               // offensive skill held at full charge
	StateAiming                // ranged skill held, accuracy accumulating
	StateStartup               // wind-up before the hit connects
	StateActive                // hit window, never interrupted
	StateRecovery              // post-swing lag
	StateWaiting               // defensive hold, waiting for an incoming hit
)

// stateNames — имена состояний для логов и телеметрии.
var stateNames = [...]string{
	StateIdle:     "Idle",
	StateCharging: "Charging",
	StateCharged:  "Charged",
	StateAiming:   "Aiming",
	StateStartup:  "Startup",
	StateActive:   "Active",
	StateRecovery: "Recovery",
	StateWaiting:  "Waiting",
}

// String возвращает имя состояния.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// IsHold reports whether the state is a player-released hold
// (cancelable without losing anything but the charge itself).
func (s State) IsHold() bool {
	return s == StateCharged || s == StateAiming || s == StateWaiting
}

package evolution

// State is the lifecycle state of a Controller.
type State int32

const (
	// StateIdle means Run has not been called.
	StateIdle State = iota
	// StateRunning means generations are being evaluated.
	StateRunning
	// StateConverged means the best score stopped improving for plateau_patience generations.
	StateConverged
	// StateStopped means max_generations was reached or the context was cancelled.
	StateStopped
	// StateFailed means the run could not start or hit a fatal error.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateConverged:
		return "converged"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is one of the end states.
func (s State) Terminal() bool {
	return s == StateConverged || s == StateStopped || s == StateFailed
}

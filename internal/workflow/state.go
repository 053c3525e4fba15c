package workflow

// State is the phase of the current analysis attempt.
type State int

const (
	StateIdle State = iota
	StateSelected
	StateAnalyzing
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelected:
		return "selected"
	case StateAnalyzing:
		return "analyzing"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends an attempt.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

package signalgrid

// Transition represents a natural phase change taken when the phase timer expires
type Transition struct {
	Source   Phase
	Target   Phase
	Duration int // seconds allotted to the target phase
}

// NewTransition creates a new transition
func NewTransition(source, target Phase, duration int) Transition {
	return Transition{
		Source:   source,
		Target:   target,
		Duration: duration,
	}
}

// Phase durations used by the natural cycle and by manual overrides
const (
	GreenDuration = 45
	AmberDuration = 5
	RedDuration   = 30
)

var naturalCycle = map[Phase]Transition{
	PhaseGreen: NewTransition(PhaseGreen, PhaseAmber, AmberDuration),
	PhaseAmber: NewTransition(PhaseAmber, PhaseRed, RedDuration),
	PhaseRed:   NewTransition(PhaseRed, PhaseGreen, GreenDuration),
}

// NextTransition returns the transition taken when a phase's timer runs out
func NextTransition(p Phase) (Transition, bool) {
	t, ok := naturalCycle[p]
	return t, ok
}

// Cycle returns the natural transitions in green, amber, red order
func Cycle() []Transition {
	return []Transition{
		naturalCycle[PhaseGreen],
		naturalCycle[PhaseAmber],
		naturalCycle[PhaseRed],
	}
}

// forcedDuration is the timer a manual override sets for each phase
func forcedDuration(p Phase) int {
	switch p {
	case PhaseGreen:
		return GreenDuration
	case PhaseAmber:
		return AmberDuration
	default:
		return RedDuration
	}
}

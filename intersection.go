package signalgrid

import (
	"fmt"
	"strings"
)

// Coordinates place an intersection on the operator's map
type Coordinates struct {
	X float64
	Y float64
}

// Intersection is the state of one signalised intersection.
// Values returned by the Controller are copies; mutating them has no effect.
type Intersection struct {
	ID   int
	Name string

	Phase       Phase
	Timer       int
	PhaseBudget int

	Cars   int
	Trucks int
	Bikes  int
	Buses  int

	QueueLength             int
	EmergencyVehiclePresent bool
	Congestion              CongestionLevel
	Status                  Status
	Coordinates             Coordinates

	SuggestedAction    ActionKind
	Confidence         int
	LastDecisionLabel  string
	LastDecisionReason string
}

// WeightedLoad weights heavier vehicles: cars + 2*trucks + 3*buses
func (in Intersection) WeightedLoad() int {
	return in.Cars + 2*in.Trucks + 3*in.Buses
}

// TotalVehicles counts every vehicle class at the intersection
func (in Intersection) TotalVehicles() int {
	return in.Cars + in.Trucks + in.Bikes + in.Buses
}

// Online reports whether the intersection takes part in ticks and decisions
func (in Intersection) Online() bool {
	return in.Status == StatusOnline
}

// Validate checks the structural invariants of an intersection
func (in Intersection) Validate() error {
	if in.ID <= 0 {
		return NewArgumentError("id", fmt.Sprint(in.ID), "must be positive")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewArgumentError("name", in.Name, "must not be empty")
	}
	if !in.Phase.Valid() {
		return NewArgumentError("phase", string(in.Phase), "must be one of red, amber, green")
	}
	if !in.Status.Valid() {
		return NewArgumentError("status", string(in.Status), "must be one of online, offline, maintenance")
	}
	if in.Timer < 0 {
		return NewArgumentError("timer", fmt.Sprint(in.Timer), "must not be negative")
	}
	if in.Timer > in.PhaseBudget {
		return NewArgumentError("phase_budget", fmt.Sprint(in.PhaseBudget), "must be at least the timer")
	}
	for field, v := range map[string]int{
		"cars": in.Cars, "trucks": in.Trucks, "bikes": in.Bikes, "buses": in.Buses, "queue_length": in.QueueLength,
	} {
		if v < 0 {
			return NewArgumentError(field, fmt.Sprint(v), "must not be negative")
		}
	}
	if in.Confidence < 0 || in.Confidence > 100 {
		return NewArgumentError("confidence", fmt.Sprint(in.Confidence), "must be within [0,100]")
	}
	return nil
}

// advance runs one tick of the phase timer. The timer is decremented and,
// when it reaches zero, the natural transition is taken on the same tick.
// It reports whether the phase changed.
func (in *Intersection) advance() (Transition, bool) {
	if in.Timer > 0 {
		in.Timer--
	}
	if in.Timer > 0 {
		return Transition{}, false
	}
	t, ok := NextTransition(in.Phase)
	if !ok {
		return Transition{}, false
	}
	in.Phase = t.Target
	in.Timer = t.Duration
	in.PhaseBudget = t.Duration
	return t, true
}

// force sets the phase directly, as an operator override does
func (in *Intersection) force(p Phase) {
	in.Phase = p
	in.Timer = forcedDuration(p)
	if in.PhaseBudget < in.Timer {
		in.PhaseBudget = in.Timer
	}
}

func (in *Intersection) reclassify() {
	in.Congestion = ClassifyCongestion(in.QueueLength)
}

// decisionLabel turns an action token into the operator-facing label, e.g. EXTEND GREEN
func decisionLabel(a ActionKind) string {
	return strings.ToUpper(strings.ReplaceAll(string(a), "_", " "))
}

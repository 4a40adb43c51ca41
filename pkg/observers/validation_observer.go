package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/signalgrid"
)

// ValidationObserver checks that timer-driven phase changes follow the
// natural cycle and that the system never decides while in manual mode
type ValidationObserver struct {
	signalgrid.BaseObserver

	allowedTransitions map[signalgrid.Phase]signalgrid.Phase
	visitedPhases      map[signalgrid.Phase]bool
	manual             bool
	violations         []string
	mutex              sync.RWMutex
}

// NewValidationObserver creates a new validation observer. initial is the
// system mode the controller was created with.
func NewValidationObserver(initial signalgrid.SystemMode) *ValidationObserver {
	allowed := make(map[signalgrid.Phase]signalgrid.Phase)
	for _, t := range signalgrid.Cycle() {
		allowed[t.Source] = t.Target
	}
	return &ValidationObserver{
		allowedTransitions: allowed,
		visitedPhases:      make(map[signalgrid.Phase]bool),
		manual:             initial.Control == signalgrid.ModeManual,
		violations:         make([]string, 0),
	}
}

// addViolation adds a violation; the caller holds the lock
func (o *ValidationObserver) addViolation(format string, args ...any) {
	o.violations = append(o.violations, fmt.Sprintf(format, args...))
}

// OnDecision validates that AI decisions only happen outside manual mode
func (o *ValidationObserver) OnDecision(d signalgrid.Decision, in signalgrid.Intersection) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.manual && d.Type != signalgrid.DecisionManual {
		o.addViolation("%s decision %s at intersection %d while in manual mode", d.Type, d.Action, d.IntersectionID)
	}
	if in.Timer < 0 || in.Timer > in.PhaseBudget {
		o.addViolation("intersection %d timer %d outside [0,%d]", in.ID, in.Timer, in.PhaseBudget)
	}
}

// OnPhaseChange validates timer-driven transitions
func (o *ValidationObserver) OnPhaseChange(id int, from, to signalgrid.Phase, cause string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedPhases[to] = true
	if cause != signalgrid.CauseTimer {
		return
	}
	if next, ok := o.allowedTransitions[from]; !ok || next != to {
		o.addViolation("invalid transition from '%s' to '%s' at intersection %d", from, to, id)
	}
}

// OnModeChange tracks the control mode
func (o *ValidationObserver) OnModeChange(_, to signalgrid.SystemMode) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.manual = to.Control == signalgrid.ModeManual
}

// OnError records errors as violations
func (o *ValidationObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.addViolation("error occurred: %v", err)
}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// GetUnvisitedPhases returns the phases no intersection has changed into
func (o *ValidationObserver) GetUnvisitedPhases() []signalgrid.Phase {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	var unvisited []signalgrid.Phase
	for _, t := range signalgrid.Cycle() {
		if !o.visitedPhases[t.Target] {
			unvisited = append(unvisited, t.Target)
		}
	}
	return unvisited
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset resets the validation state
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedPhases = make(map[signalgrid.Phase]bool)
	o.violations = make([]string, 0)
}

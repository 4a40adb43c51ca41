package signalgrid

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestObserver is a mock observer that captures every callback
type TestObserver struct {
	mutex        sync.RWMutex
	Decisions    []Decision
	PhaseChanges []PhaseChangeEvent
	Ticks        []uint64
	Suppressions []SuppressionEvent
	ModeChanges  []SystemMode
	Statuses     []Status
	Emergencies  []int
	Errors       []error
	Started      int
	Stopped      int
	Paused       int
	Resumed      int
}

type PhaseChangeEvent struct {
	IntersectionID int
	From           Phase
	To             Phase
	Cause          string
}

type SuppressionEvent struct {
	IntersectionID int
	Reason         string
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{}
}

func (o *TestObserver) OnDecision(decision Decision, intersection Intersection) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Decisions = append(o.Decisions, decision)
}

func (o *TestObserver) OnPhaseChange(id int, from, to Phase, cause string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.PhaseChanges = append(o.PhaseChanges, PhaseChangeEvent{IntersectionID: id, From: from, To: to, Cause: cause})
}

func (o *TestObserver) OnTick(seq uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Ticks = append(o.Ticks, seq)
}

func (o *TestObserver) OnSuppressed(id int, reason string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Suppressions = append(o.Suppressions, SuppressionEvent{IntersectionID: id, Reason: reason})
}

func (o *TestObserver) OnModeChange(from, to SystemMode) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.ModeChanges = append(o.ModeChanges, to)
}

func (o *TestObserver) OnStatusChange(id int, from, to Status) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Statuses = append(o.Statuses, to)
}

func (o *TestObserver) OnEmergencyDetected(intersection Intersection) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Emergencies = append(o.Emergencies, intersection.ID)
}

func (o *TestObserver) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
}

func (o *TestObserver) OnControllerStarted() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Started++
}

func (o *TestObserver) OnControllerStopped() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Stopped++
}

func (o *TestObserver) OnPaused() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Paused++
}

func (o *TestObserver) OnResumed() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Resumed++
}

// TickCount returns the number of observed ticks
func (o *TestObserver) TickCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Ticks)
}

// DecisionCount returns the number of observed decisions
func (o *TestObserver) DecisionCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Decisions)
}

// scriptedRand replays fixed draws. Once a script runs out Float64 returns
// 0.99 (no event fires) and IntN returns 0.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	i := r.ints[0]
	r.ints = r.ints[1:]
	if i >= n {
		return n - 1
	}
	return i
}

// quietRand never fires a random event
func quietRand() *scriptedRand {
	return &scriptedRand{}
}

var testEpoch = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testEpoch
}

// newTestGrid builds a grid over fleet with the default policy
func newTestGrid(t *testing.T, fleet []Intersection, rng Random, mode ControlMode) (*grid, *TestObserver) {
	t.Helper()
	observers := NewObserverManager()
	observer := NewTestObserver()
	observers.AddObserver(observer)
	probs := DefaultOptions().Probabilities
	g, err := newGrid(fleet, DefaultPolicy(), rng, probs, DefaultDecisionLogSize, SystemMode{Control: mode}, fixedClock, observers)
	require.NoError(t, err)
	return g, observer
}

// testIntersection returns a valid, online intersection
func testIntersection(id int, phase Phase, timer int) Intersection {
	return Intersection{
		ID:          id,
		Name:        "Test Ave",
		Phase:       phase,
		Timer:       timer,
		PhaseBudget: max(timer, 60),
		Status:      StatusOnline,
	}
}

package signalgrid

import (
	"fmt"
	"strings"
	"time"
)

// Random is the source of randomness used by the scheduler.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// Probabilities of the per-tick random events
type Probabilities struct {
	AIDecision  float64 // once per tick for the whole fleet
	Fluctuation float64 // once per tick for the whole fleet
	Emergency   float64 // per intersection during a fluctuation
}

// Bounds of the per-fluctuation vehicle deltas
const (
	carDeltaMin, carDeltaMax     = -3, 3
	queueDeltaMin, queueDeltaMax = -2, 2
	slowDeltaMin, slowDeltaMax   = -1, 2 // trucks and bikes

	maxOperatorLength = 64
)

// grid is the intersection fleet plus the decision log and system mode.
// It is owned by a single goroutine and performs no locking.
type grid struct {
	intersections []*Intersection
	byID          map[int]*Intersection
	log           *DecisionLog
	mode          SystemMode
	policy        DecisionPolicy
	rng           Random
	probs         Probabilities
	now           func() time.Time
	observers     *ObserverManager

	seq   uint64
	ticks uint64
}

func newGrid(fleet []Intersection, policy DecisionPolicy, rng Random, probs Probabilities, logSize int, mode SystemMode, now func() time.Time, observers *ObserverManager) (*grid, error) {
	g := &grid{
		intersections: make([]*Intersection, 0, len(fleet)),
		byID:          make(map[int]*Intersection, len(fleet)),
		log:           NewDecisionLog(logSize),
		mode:          mode,
		policy:        policy,
		rng:           rng,
		probs:         probs,
		now:           now,
		observers:     observers,
	}
	for _, in := range fleet {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("intersection %d: %w", in.ID, err)
		}
		if _, dup := g.byID[in.ID]; dup {
			return nil, NewConfigurationError("fleet", fmt.Sprintf("duplicate intersection id %d", in.ID))
		}
		in.reclassify()
		g.intersections = append(g.intersections, &in)
		g.byID[in.ID] = &in
	}
	return g, nil
}

func (g *grid) lookup(id int) (*Intersection, error) {
	in, ok := g.byID[id]
	if !ok {
		return nil, NewNotFoundError(id)
	}
	return in, nil
}

// tick advances every online intersection by one second, then rolls the
// fleet-wide AI decision and traffic fluctuation events.
func (g *grid) tick() {
	g.ticks++

	for _, in := range g.intersections {
		if !in.Online() {
			continue
		}
		from := in.Phase
		if t, changed := in.advance(); changed {
			g.observers.NotifyPhaseChange(in.ID, from, t.Target, CauseTimer)
		}
	}

	if g.rng.Float64() < g.probs.AIDecision && len(g.intersections) > 0 {
		target := g.intersections[g.rng.IntN(len(g.intersections))]
		_, _ = g.applyAIDecision(target.ID)
	}

	if g.rng.Float64() < g.probs.Fluctuation {
		g.fluctuate()
	}

	g.observers.NotifyTick(g.ticks)
}

// delta draws a uniform integer in [lo, hi]
func (g *grid) delta(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

// fluctuate perturbs vehicle counts and queues of every online intersection
// and may raise the emergency flag, which is never cleared here.
func (g *grid) fluctuate() {
	for _, in := range g.intersections {
		if !in.Online() {
			continue
		}
		in.Cars = max(0, in.Cars+g.delta(carDeltaMin, carDeltaMax))
		in.QueueLength = max(0, in.QueueLength+g.delta(queueDeltaMin, queueDeltaMax))
		in.Trucks = max(0, in.Trucks+g.delta(slowDeltaMin, slowDeltaMax))
		in.Bikes = max(0, in.Bikes+g.delta(slowDeltaMin, slowDeltaMax))
		if g.rng.Float64() < g.probs.Emergency && !in.EmergencyVehiclePresent {
			in.EmergencyVehiclePresent = true
			g.observers.NotifyEmergencyDetected(*in)
		}
		in.reclassify()
	}
}

func (g *grid) record(id int, action ActionKind, reason string, confidence int, typ DecisionType, operator string) Decision {
	g.seq++
	d := newDecision(g.seq, g.now(), id, action, reason, confidence, typ)
	d.Operator = operator
	g.log.Append(d)
	return d
}

// suppress reports a request that was not applied
func (g *grid) suppress(in *Intersection, reason string) *Outcome {
	g.observers.NotifySuppressed(in.ID, reason)
	return NewOutcome(in.ID, false, false, in.Phase, in.Phase).WithSuppression(reason)
}

func (g *grid) applyAIDecision(id int) (*Outcome, error) {
	in, err := g.lookup(id)
	if err != nil {
		return nil, err
	}
	if g.mode.Control == ModeManual {
		return g.suppress(in, SuppressedManualMode), nil
	}
	if !in.Online() {
		return g.suppress(in, SuppressedNotOnline), nil
	}

	proposal := g.policy.Evaluate(*in)
	typ := DecisionAI
	if in.EmergencyVehiclePresent {
		typ = DecisionEmergency
	}

	from := in.Phase
	changed := Apply(in, proposal.Action)
	in.SuggestedAction = proposal.Action
	in.Confidence = proposal.Confidence
	in.LastDecisionLabel = decisionLabel(proposal.Action)
	in.LastDecisionReason = proposal.Reason

	d := g.record(in.ID, proposal.Action, proposal.Reason, proposal.Confidence, typ, "")
	if in.Phase != from {
		g.observers.NotifyPhaseChange(in.ID, from, in.Phase, string(proposal.Action))
	}
	g.observers.NotifyDecision(d, *in)

	return NewOutcome(in.ID, true, changed, from, in.Phase).WithDecision(d), nil
}

func validateOperator(operator string) (string, error) {
	name := strings.TrimSpace(operator)
	if name == "" {
		return "", NewArgumentError("operator", operator, "must not be empty")
	}
	if len(name) > maxOperatorLength {
		return "", NewArgumentError("operator", operator, fmt.Sprintf("must be at most %d bytes", maxOperatorLength))
	}
	return name, nil
}

func (g *grid) forceSignal(id int, phase Phase, operator string) (*Outcome, error) {
	if !phase.Valid() {
		return nil, NewArgumentError("phase", string(phase), "must be one of red, amber, green")
	}
	name, err := validateOperator(operator)
	if err != nil {
		return nil, err
	}
	in, err := g.lookup(id)
	if err != nil {
		return nil, err
	}
	if !in.Online() {
		return g.suppress(in, SuppressedNotOnline), nil
	}

	from, timer, budget := in.Phase, in.Timer, in.PhaseBudget
	in.force(phase)
	reason := "Manual override by " + name
	in.LastDecisionLabel = "Manual " + strings.ToUpper(string(phase))
	in.LastDecisionReason = reason

	d := g.record(in.ID, ForceAction(phase), reason, maxConfidence, DecisionManual, name)
	if in.Phase != from {
		g.observers.NotifyPhaseChange(in.ID, from, in.Phase, string(d.Action))
	}
	g.observers.NotifyDecision(d, *in)

	changed := in.Phase != from || in.Timer != timer || in.PhaseBudget != budget
	return NewOutcome(in.ID, true, changed, from, in.Phase).WithDecision(d), nil
}

func (g *grid) setControlMode(mode ControlMode) error {
	if !mode.Valid() {
		return NewArgumentError("mode", string(mode), "must be one of auto, semi, manual")
	}
	from := g.mode
	g.mode.Control = mode
	if from != g.mode {
		g.observers.NotifyModeChange(from, g.mode)
	}
	return nil
}

func (g *grid) setFlag(flag ModeFlag, on bool) error {
	from := g.mode
	switch flag {
	case FlagEmergency:
		g.mode.EmergencyActive = on
	case FlagPeakHour:
		g.mode.PeakHourActive = on
	case FlagEventMode:
		g.mode.EventModeActive = on
	default:
		return NewArgumentError("flag", flag.String(), "unknown mode flag")
	}
	if from != g.mode {
		g.observers.NotifyModeChange(from, g.mode)
	}
	return nil
}

func (g *grid) setStatus(id int, status Status) error {
	if !status.Valid() {
		return NewArgumentError("status", string(status), "must be one of online, offline, maintenance")
	}
	in, err := g.lookup(id)
	if err != nil {
		return err
	}
	from := in.Status
	in.Status = status
	if from != status {
		g.observers.NotifyStatusChange(id, from, status)
	}
	return nil
}

func (g *grid) snapshot() []Intersection {
	out := make([]Intersection, 0, len(g.intersections))
	for _, in := range g.intersections {
		out = append(out, *in)
	}
	return out
}

// FleetSummary aggregates the fleet for overview displays
type FleetSummary struct {
	Intersections     int
	Online            int
	TotalVehicles     int
	TotalQueue        int
	Emergencies       int
	AverageConfidence float64 // over online intersections
	Congestion        map[CongestionLevel]int
	DecisionsByType   map[DecisionType]int // over the retained log
	Ticks             uint64
	Mode              SystemMode
}

func (g *grid) summary() FleetSummary {
	s := FleetSummary{
		Intersections:   len(g.intersections),
		Congestion:      make(map[CongestionLevel]int),
		DecisionsByType: make(map[DecisionType]int),
		Ticks:           g.ticks,
		Mode:            g.mode,
	}
	confidence := 0
	for _, in := range g.intersections {
		s.TotalVehicles += in.TotalVehicles()
		s.TotalQueue += in.QueueLength
		s.Congestion[in.Congestion]++
		if in.EmergencyVehiclePresent {
			s.Emergencies++
		}
		if in.Online() {
			s.Online++
			confidence += in.Confidence
		}
	}
	if s.Online > 0 {
		s.AverageConfidence = float64(confidence) / float64(s.Online)
	}
	for _, d := range g.log.Recent(g.log.Cap()) {
		s.DecisionsByType[d.Type]++
	}
	return s
}

package signalgrid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid(t *testing.T) {
	t.Run("reclassifies congestion", func(t *testing.T) {
		in := testIntersection(1, PhaseGreen, 10)
		in.QueueLength = 20
		in.Congestion = CongestionLow
		g, _ := newTestGrid(t, []Intersection{in}, quietRand(), ModeAuto)
		assert.Equal(t, CongestionHigh, g.snapshot()[0].Congestion)
	})

	t.Run("rejects duplicate ids", func(t *testing.T) {
		fleet := []Intersection{testIntersection(1, PhaseGreen, 10), testIntersection(1, PhaseRed, 10)}
		_, err := newGrid(fleet, DefaultPolicy(), quietRand(), Probabilities{}, 5, SystemMode{Control: ModeAuto}, fixedClock, NewObserverManager())
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("rejects invalid intersections", func(t *testing.T) {
		bad := testIntersection(1, PhaseGreen, 10)
		bad.Cars = -1
		_, err := newGrid([]Intersection{bad}, DefaultPolicy(), quietRand(), Probabilities{}, 5, SystemMode{Control: ModeAuto}, fixedClock, NewObserverManager())
		assert.True(t, IsInvalidArgument(err))
	})

	t.Run("copies the fleet", func(t *testing.T) {
		fleet := []Intersection{testIntersection(1, PhaseGreen, 10)}
		g, _ := newTestGrid(t, fleet, quietRand(), ModeAuto)
		fleet[0].Timer = 3
		assert.Equal(t, 10, g.snapshot()[0].Timer)
	})
}

func TestTickAdvancesTimers(t *testing.T) {
	online := testIntersection(1, PhaseGreen, 10)
	offline := testIntersection(2, PhaseRed, 1)
	offline.Status = StatusOffline
	expiring := testIntersection(3, PhaseAmber, 1)

	g, observer := newTestGrid(t, []Intersection{online, offline, expiring}, quietRand(), ModeAuto)
	g.tick()

	snap := g.snapshot()
	assert.Equal(t, 9, snap[0].Timer)
	assert.Equal(t, PhaseRed, snap[1].Phase)
	assert.Equal(t, 1, snap[1].Timer)
	assert.Equal(t, PhaseRed, snap[2].Phase)
	assert.Equal(t, RedDuration, snap[2].Timer)

	require.Len(t, observer.PhaseChanges, 1)
	assert.Equal(t, PhaseChangeEvent{IntersectionID: 3, From: PhaseAmber, To: PhaseRed, Cause: CauseTimer}, observer.PhaseChanges[0])
	assert.Equal(t, []uint64{1}, observer.Ticks)
	assert.Equal(t, 0, g.log.Len())
}

func TestTickAppliesAIDecision(t *testing.T) {
	green := testIntersection(1, PhaseGreen, 30)
	starving := testIntersection(2, PhaseRed, 5)
	starving.QueueLength = 12

	rng := &scriptedRand{floats: []float64{0.1}, ints: []int{1}}
	g, observer := newTestGrid(t, []Intersection{green, starving}, rng, ModeAuto)
	g.tick()

	in := g.snapshot()[1]
	assert.Equal(t, PhaseGreen, in.Phase)
	assert.Equal(t, 45, in.Timer)
	assert.Equal(t, 60, in.PhaseBudget)
	assert.Equal(t, ActionSwitchToGreen, in.SuggestedAction)
	assert.Equal(t, 95, in.Confidence)
	assert.Equal(t, "SWITCH TO GREEN", in.LastDecisionLabel)
	assert.Equal(t, ReasonStarvation, in.LastDecisionReason)

	recent := g.log.Recent(5)
	require.Len(t, recent, 1)
	assert.Equal(t, DecisionAI, recent[0].Type)
	assert.Equal(t, 2, recent[0].IntersectionID)
	assert.Equal(t, testEpoch, recent[0].Timestamp)
	assert.Equal(t, uint64(1), recent[0].Seq)

	require.Len(t, observer.Decisions, 1)
	require.Len(t, observer.PhaseChanges, 1)
	assert.Equal(t, string(ActionSwitchToGreen), observer.PhaseChanges[0].Cause)
}

func TestTickAIDecisionNotFired(t *testing.T) {
	rng := &scriptedRand{floats: []float64{0.30, 0.10}}
	g, _ := newTestGrid(t, []Intersection{testIntersection(1, PhaseGreen, 30)}, rng, ModeAuto)
	g.tick()
	assert.Equal(t, 0, g.log.Len())
}

func TestFluctuation(t *testing.T) {
	t.Run("lower bounds clamp at zero", func(t *testing.T) {
		in := testIntersection(1, PhaseGreen, 30)
		in.Cars, in.QueueLength = 1, 1

		rng := &scriptedRand{floats: []float64{0.9, 0.05, 0.5}, ints: []int{0, 0, 0, 0}}
		g, observer := newTestGrid(t, []Intersection{in}, rng, ModeAuto)
		g.tick()

		got := g.snapshot()[0]
		assert.Equal(t, 0, got.Cars)
		assert.Equal(t, 0, got.QueueLength)
		assert.Equal(t, 0, got.Trucks)
		assert.Equal(t, 0, got.Bikes)
		assert.False(t, got.EmergencyVehiclePresent)
		assert.Empty(t, observer.Emergencies)
	})

	t.Run("upper bounds", func(t *testing.T) {
		in := testIntersection(1, PhaseGreen, 30)
		in.Cars, in.QueueLength, in.Trucks, in.Bikes = 10, 14, 1, 1

		rng := &scriptedRand{floats: []float64{0.9, 0.05, 0.01}, ints: []int{6, 4, 3, 3}}
		g, observer := newTestGrid(t, []Intersection{in}, rng, ModeAuto)
		g.tick()

		got := g.snapshot()[0]
		assert.Equal(t, 13, got.Cars)
		assert.Equal(t, 16, got.QueueLength)
		assert.Equal(t, 3, got.Trucks)
		assert.Equal(t, 3, got.Bikes)
		assert.Equal(t, CongestionHigh, got.Congestion)
		assert.True(t, got.EmergencyVehiclePresent)
		assert.Equal(t, []int{1}, observer.Emergencies)
	})

	t.Run("offline intersections are untouched", func(t *testing.T) {
		in := testIntersection(1, PhaseGreen, 30)
		in.Cars = 10
		in.Status = StatusMaintenance

		rng := &scriptedRand{floats: []float64{0.9, 0.05, 0.01}, ints: []int{6, 4, 3, 3}}
		g, _ := newTestGrid(t, []Intersection{in}, rng, ModeAuto)
		g.tick()

		got := g.snapshot()[0]
		assert.Equal(t, 10, got.Cars)
		assert.Equal(t, 30, got.Timer)
		assert.False(t, got.EmergencyVehiclePresent)
	})
}

func TestApplyAIDecision(t *testing.T) {
	t.Run("emergency decisions are typed emergency", func(t *testing.T) {
		in := testIntersection(1, PhaseRed, 20)
		in.EmergencyVehiclePresent = true
		g, _ := newTestGrid(t, []Intersection{in}, quietRand(), ModeSemi)

		out, err := g.applyAIDecision(1)
		require.NoError(t, err)
		assert.True(t, out.Success())
		assert.True(t, out.Changed)
		assert.Equal(t, PhaseRed, out.PreviousPhase)
		assert.Equal(t, PhaseGreen, out.CurrentPhase)
		require.NotNil(t, out.Decision)
		assert.Equal(t, DecisionEmergency, out.Decision.Type)
		assert.Equal(t, ActionCreateGreenWave, out.Decision.Action)
		assert.Equal(t, 98, out.Decision.Confidence)
		assert.Equal(t, 60, g.snapshot()[0].Timer)
		assert.True(t, g.snapshot()[0].EmergencyVehiclePresent)
	})

	t.Run("maintain is logged without change", func(t *testing.T) {
		g, _ := newTestGrid(t, []Intersection{testIntersection(1, PhaseAmber, 3)}, quietRand(), ModeAuto)

		out, err := g.applyAIDecision(1)
		require.NoError(t, err)
		assert.True(t, out.Success())
		assert.False(t, out.Changed)
		assert.Equal(t, 1, g.log.Len())
		assert.Equal(t, 75, g.snapshot()[0].Confidence)
	})

	t.Run("manual mode suppresses", func(t *testing.T) {
		in := testIntersection(1, PhaseRed, 5)
		in.QueueLength = 12
		g, observer := newTestGrid(t, []Intersection{in}, quietRand(), ModeManual)
		before := g.snapshot()

		out, err := g.applyAIDecision(1)
		require.NoError(t, err)
		assert.True(t, out.Suppressed)
		assert.Equal(t, SuppressedManualMode, out.SuppressReason)
		assert.Nil(t, out.Decision)
		assert.Equal(t, before, g.snapshot())
		assert.Equal(t, 0, g.log.Len())
		assert.Equal(t, []SuppressionEvent{{IntersectionID: 1, Reason: SuppressedManualMode}}, observer.Suppressions)
	})

	t.Run("manual mode suppresses random decisions", func(t *testing.T) {
		in := testIntersection(1, PhaseRed, 5)
		in.QueueLength = 12
		rng := &scriptedRand{floats: []float64{0.0}}
		g, _ := newTestGrid(t, []Intersection{in}, rng, ModeManual)

		g.tick()
		assert.Equal(t, PhaseRed, g.snapshot()[0].Phase)
		assert.Equal(t, 0, g.log.Len())
	})

	t.Run("offline intersections are never decided", func(t *testing.T) {
		in := testIntersection(1, PhaseRed, 5)
		in.Status = StatusOffline
		g, _ := newTestGrid(t, []Intersection{in}, quietRand(), ModeAuto)

		out, err := g.applyAIDecision(1)
		require.NoError(t, err)
		assert.Equal(t, SuppressedNotOnline, out.SuppressReason)
		assert.Equal(t, 0, g.log.Len())
	})

	t.Run("unknown intersection", func(t *testing.T) {
		g, _ := newTestGrid(t, []Intersection{testIntersection(1, PhaseRed, 5)}, quietRand(), ModeAuto)
		_, err := g.applyAIDecision(99)
		assert.True(t, IsNotFound(err))
		assert.Equal(t, 0, g.log.Len())
	})
}

func TestForceSignal(t *testing.T) {
	t.Run("force amber", func(t *testing.T) {
		in := testIntersection(1, PhaseGreen, 30)
		in.SuggestedAction = ActionExtendGreen
		in.Confidence = 92
		g, observer := newTestGrid(t, []Intersection{in}, quietRand(), ModeManual)

		out, err := g.forceSignal(1, PhaseAmber, "  Ops Lead ")
		require.NoError(t, err)
		assert.True(t, out.Success())
		assert.True(t, out.Changed)

		got := g.snapshot()[0]
		assert.Equal(t, PhaseAmber, got.Phase)
		assert.Equal(t, 5, got.Timer)
		assert.Equal(t, "Manual AMBER", got.LastDecisionLabel)
		assert.Equal(t, "Manual override by Ops Lead", got.LastDecisionReason)
		assert.Equal(t, ActionExtendGreen, got.SuggestedAction)
		assert.Equal(t, 92, got.Confidence)

		recent := g.log.Recent(1)
		require.Len(t, recent, 1)
		assert.Equal(t, DecisionManual, recent[0].Type)
		assert.Equal(t, 100, recent[0].Confidence)
		assert.Equal(t, ForceAction(PhaseAmber), recent[0].Action)
		assert.Equal(t, "Ops Lead", recent[0].Operator)

		require.Len(t, observer.PhaseChanges, 1)
		assert.Equal(t, "force_amber", observer.PhaseChanges[0].Cause)
	})

	t.Run("force same phase resets timer", func(t *testing.T) {
		g, observer := newTestGrid(t, []Intersection{testIntersection(1, PhaseRed, 4)}, quietRand(), ModeAuto)

		out, err := g.forceSignal(1, PhaseRed, DefaultOperator)
		require.NoError(t, err)
		assert.True(t, out.Changed)
		assert.Equal(t, RedDuration, g.snapshot()[0].Timer)
		assert.Empty(t, observer.PhaseChanges)
		assert.Equal(t, 1, g.log.Len())
	})

	t.Run("invalid phase", func(t *testing.T) {
		g, _ := newTestGrid(t, []Intersection{testIntersection(1, PhaseRed, 4)}, quietRand(), ModeAuto)
		_, err := g.forceSignal(1, Phase("blue"), DefaultOperator)
		assert.True(t, IsInvalidArgument(err))
		assert.Equal(t, 0, g.log.Len())
	})

	t.Run("invalid operator", func(t *testing.T) {
		g, _ := newTestGrid(t, []Intersection{testIntersection(1, PhaseRed, 4)}, quietRand(), ModeAuto)
		_, err := g.forceSignal(1, PhaseGreen, "   ")
		assert.True(t, IsInvalidArgument(err))
		_, err = g.forceSignal(1, PhaseGreen, strings.Repeat("x", 65))
		assert.True(t, IsInvalidArgument(err))
		assert.Equal(t, 0, g.log.Len())
	})

	t.Run("unknown intersection", func(t *testing.T) {
		g, _ := newTestGrid(t, []Intersection{testIntersection(1, PhaseRed, 4)}, quietRand(), ModeAuto)
		_, err := g.forceSignal(42, PhaseGreen, DefaultOperator)
		assert.True(t, IsNotFound(err))
		assert.Equal(t, 0, g.log.Len())
	})

	t.Run("offline intersection", func(t *testing.T) {
		in := testIntersection(1, PhaseRed, 4)
		in.Status = StatusOffline
		g, _ := newTestGrid(t, []Intersection{in}, quietRand(), ModeAuto)

		out, err := g.forceSignal(1, PhaseGreen, DefaultOperator)
		require.NoError(t, err)
		assert.True(t, out.Suppressed)
		assert.Equal(t, PhaseRed, g.snapshot()[0].Phase)
	})
}

func TestModeAndStatus(t *testing.T) {
	g, observer := newTestGrid(t, []Intersection{testIntersection(1, PhaseRed, 4)}, quietRand(), ModeAuto)

	require.NoError(t, g.setControlMode(ModeManual))
	require.NoError(t, g.setControlMode(ModeManual))
	assert.True(t, IsInvalidArgument(g.setControlMode(ControlMode("turbo"))))
	assert.Equal(t, ModeManual, g.mode.Control)

	require.NoError(t, g.setFlag(FlagPeakHour, true))
	require.NoError(t, g.setFlag(FlagEventMode, true))
	require.NoError(t, g.setFlag(FlagEmergency, true))
	assert.True(t, IsInvalidArgument(g.setFlag(ModeFlag(7), true)))
	assert.Equal(t, SystemMode{Control: ModeManual, EmergencyActive: true, PeakHourActive: true, EventModeActive: true}, g.mode)
	assert.Len(t, observer.ModeChanges, 4)

	require.NoError(t, g.setStatus(1, StatusMaintenance))
	assert.True(t, IsNotFound(g.setStatus(5, StatusOnline)))
	assert.True(t, IsInvalidArgument(g.setStatus(1, Status("gone"))))
	assert.Equal(t, StatusMaintenance, g.snapshot()[0].Status)
	assert.Equal(t, []Status{StatusMaintenance}, observer.Statuses)
}

func TestSummary(t *testing.T) {
	g, _ := newTestGrid(t, DemoFleet(), quietRand(), ModeAuto)
	require.NoError(t, g.setStatus(4, StatusOffline))
	_, err := g.forceSignal(2, PhaseGreen, DefaultOperator)
	require.NoError(t, err)

	s := g.summary()
	assert.Equal(t, 4, s.Intersections)
	assert.Equal(t, 3, s.Online)
	assert.Equal(t, 18+10+23+11, s.TotalVehicles)
	assert.Equal(t, 12+8+15+6, s.TotalQueue)
	assert.Equal(t, 1, s.Emergencies)
	assert.InDelta(t, float64(92+88+95)/3, s.AverageConfidence, 0.001)
	assert.Equal(t, map[CongestionLevel]int{CongestionMedium: 2, CongestionLow: 2}, s.Congestion)
	assert.Equal(t, map[DecisionType]int{DecisionManual: 1}, s.DecisionsByType)
	assert.Equal(t, ModeAuto, s.Mode.Control)
}

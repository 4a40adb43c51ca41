package signalgrid

// ActionKind is the token naming a phase adjustment
type ActionKind string

const (
	ActionSwitchToGreen   ActionKind = "switch_to_green"
	ActionSwitchToRed     ActionKind = "switch_to_red"
	ActionExtendGreen     ActionKind = "extend_green"
	ActionReduceGreen     ActionKind = "reduce_green"
	ActionCreateGreenWave ActionKind = "create_green_wave"
	ActionMaintainCurrent ActionKind = "maintain_current"
)

// Limits used by the action table
const (
	switchGreenTimer  = 45
	switchGreenBudget = 60
	greenWaveDuration = 60
	extendStep        = 15
	maxGreen          = 80
	reduceStep        = 10
	minGreen          = 10
)

// ForceAction is the action token logged for a manual override to p
func ForceAction(p Phase) ActionKind {
	return ActionKind("force_" + string(p))
}

// Apply mutates the phase and timers of in according to action.
// Combinations whose precondition does not hold leave the intersection
// untouched. It reports whether anything changed.
func Apply(in *Intersection, action ActionKind) bool {
	before := *in

	switch action {
	case ActionSwitchToGreen:
		if in.Phase == PhaseRed {
			in.Phase = PhaseGreen
			in.Timer = switchGreenTimer
			in.PhaseBudget = switchGreenBudget
		}
	case ActionSwitchToRed:
		if in.Phase == PhaseGreen {
			in.Phase = PhaseAmber
			in.Timer = AmberDuration
			in.PhaseBudget = AmberDuration
		}
	case ActionExtendGreen:
		if in.Phase == PhaseGreen {
			in.Timer = min(in.Timer+extendStep, maxGreen)
			in.PhaseBudget = min(in.PhaseBudget+extendStep, maxGreen)
		}
	case ActionReduceGreen:
		if in.Phase == PhaseGreen {
			in.Timer = max(in.Timer-reduceStep, minGreen)
			in.PhaseBudget = max(in.PhaseBudget, in.Timer)
		}
	case ActionCreateGreenWave:
		in.Phase = PhaseGreen
		in.Timer = greenWaveDuration
		in.PhaseBudget = greenWaveDuration
	}

	return before.Phase != in.Phase || before.Timer != in.Timer || before.PhaseBudget != in.PhaseBudget
}

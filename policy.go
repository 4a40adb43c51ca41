package signalgrid

// Proposal is the action a policy recommends for one intersection
type Proposal struct {
	Action     ActionKind
	Reason     string
	Confidence int
	Rule       string // name of the rule that produced the proposal
}

// DecisionPolicy proposes a phase adjustment for an intersection snapshot
type DecisionPolicy interface {
	Evaluate(in Intersection) Proposal
}

// GuardFunc decides whether a rule applies to an intersection
type GuardFunc func(in Intersection) bool

// ProposeFunc builds the proposal of a rule that applies
type ProposeFunc func(in Intersection) Proposal

// Rule is one entry of an ordered rule list
type Rule struct {
	Name    string
	When    GuardFunc
	Propose ProposeFunc
}

// RulePolicy evaluates its rules top to bottom; the first rule whose guard
// holds wins. When no rule applies the fallback proposal is returned.
type RulePolicy struct {
	rules    []Rule
	fallback Proposal
}

// NewRulePolicy creates a policy from an ordered rule list
func NewRulePolicy(fallback Proposal, rules ...Rule) *RulePolicy {
	return &RulePolicy{
		rules:    append([]Rule(nil), rules...),
		fallback: fallback,
	}
}

// Rules returns the rule names in evaluation order
func (p *RulePolicy) Rules() []string {
	names := make([]string, 0, len(p.rules))
	for _, r := range p.rules {
		names = append(names, r.Name)
	}
	return names
}

// Evaluate implements DecisionPolicy
func (p *RulePolicy) Evaluate(in Intersection) Proposal {
	for _, r := range p.rules {
		if r.When != nil && r.When(in) {
			proposal := r.Propose(in)
			proposal.Rule = r.Name
			proposal.Confidence = clampConfidence(proposal.Confidence)
			return proposal
		}
	}
	return p.fallback
}

// Reasons reported by the default rules
const (
	ReasonEmergency  = "Emergency vehicle detected - creating priority corridor"
	ReasonStarvation = "High queue detected - reducing wait time"
	ReasonLowTraffic = "Low traffic - balancing network efficiency"
	ReasonHighVolume = "High traffic volume - extending green phase"
	ReasonStable     = "Traffic flow stable - maintaining current state"
)

const (
	emergencyConfidence = 98
	starvationBase      = 85
	starvationQueue     = 10
	starvationTimer     = 10
	lowLoadLimit        = 5
	lowLoadTimer        = 20
	highLoadLimit       = 15
	highLoadTimer       = 40
	reduceConfidence    = 80
	extendConfidence    = 88
	maintainConfidence  = 75
	maxConfidence       = 100
)

// DefaultRules returns the standard rule list in priority order
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "emergency_priority",
			When: func(in Intersection) bool { return in.EmergencyVehiclePresent },
			Propose: func(Intersection) Proposal {
				return Proposal{Action: ActionCreateGreenWave, Reason: ReasonEmergency, Confidence: emergencyConfidence}
			},
		},
		{
			Name: "starvation_relief",
			When: func(in Intersection) bool {
				return in.QueueLength > starvationQueue && in.Phase == PhaseRed && in.Timer < starvationTimer
			},
			Propose: func(in Intersection) Proposal {
				return Proposal{
					Action:     ActionSwitchToGreen,
					Reason:     ReasonStarvation,
					Confidence: min(starvationBase+min(in.QueueLength, starvationQueue), maxConfidence),
				}
			},
		},
		{
			Name: "green_low_load",
			When: func(in Intersection) bool {
				return in.Phase == PhaseGreen && in.WeightedLoad() < lowLoadLimit && in.Timer > lowLoadTimer
			},
			Propose: func(Intersection) Proposal {
				return Proposal{Action: ActionReduceGreen, Reason: ReasonLowTraffic, Confidence: reduceConfidence}
			},
		},
		{
			Name: "green_high_load",
			When: func(in Intersection) bool {
				return in.Phase == PhaseGreen && in.WeightedLoad() > highLoadLimit && in.Timer < highLoadTimer
			},
			Propose: func(Intersection) Proposal {
				return Proposal{Action: ActionExtendGreen, Reason: ReasonHighVolume, Confidence: extendConfidence}
			},
		},
	}
}

// DefaultPolicy returns the standard traffic policy
func DefaultPolicy() *RulePolicy {
	return NewRulePolicy(
		Proposal{Action: ActionMaintainCurrent, Reason: ReasonStable, Confidence: maintainConfidence, Rule: "default"},
		DefaultRules()...,
	)
}

func clampConfidence(c int) int {
	return max(0, min(c, maxConfidence))
}

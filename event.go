package signalgrid

// Outcome represents the result of a decision request
type Outcome struct {
	IntersectionID int
	Applied        bool
	Changed        bool // phase, timer or budget changed
	Suppressed     bool
	SuppressReason string
	PreviousPhase  Phase
	CurrentPhase   Phase
	Decision       *Decision
}

// Suppression reasons
const (
	SuppressedManualMode = "control mode is manual"
	SuppressedNotOnline  = "intersection is not online"
)

// NewOutcome creates a new outcome
func NewOutcome(id int, applied, changed bool, prevPhase, currentPhase Phase) *Outcome {
	return &Outcome{
		IntersectionID: id,
		Applied:        applied,
		Changed:        changed,
		PreviousPhase:  prevPhase,
		CurrentPhase:   currentPhase,
	}
}

// WithDecision attaches the logged decision to the outcome
func (o *Outcome) WithDecision(d Decision) *Outcome {
	o.Decision = &d
	return o
}

// WithSuppression marks the outcome as suppressed
func (o *Outcome) WithSuppression(reason string) *Outcome {
	o.Suppressed = true
	o.SuppressReason = reason
	o.Applied = false
	return o
}

// Success returns true if the decision was applied and logged
func (o *Outcome) Success() bool {
	return o.Applied && !o.Suppressed
}

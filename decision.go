package signalgrid

import (
	"time"

	"github.com/google/uuid"
)

// Decision records one action applied to an intersection
type Decision struct {
	ID             string
	Seq            uint64 // monotonically increasing within a controller
	IntersectionID int
	Timestamp      time.Time
	Action         ActionKind
	Reason         string
	Confidence     int
	Type           DecisionType
	Operator       string // set for manual decisions only
}

// newDecision creates a decision with a fresh identifier
func newDecision(seq uint64, at time.Time, intersectionID int, action ActionKind, reason string, confidence int, typ DecisionType) Decision {
	return Decision{
		ID:             uuid.New().String(),
		Seq:            seq,
		IntersectionID: intersectionID,
		Timestamp:      at,
		Action:         action,
		Reason:         reason,
		Confidence:     confidence,
		Type:           typ,
	}
}

// DefaultDecisionLogSize is the number of decisions retained
const DefaultDecisionLogSize = 20

// DecisionLog is a fixed-capacity ring buffer of decisions, read newest first.
// It is not safe for concurrent use; the Controller owns its log.
type DecisionLog struct {
	entries []Decision
	next    int
	size    int
}

// NewDecisionLog creates a log retaining at most capacity decisions
func NewDecisionLog(capacity int) *DecisionLog {
	if capacity < 1 {
		capacity = DefaultDecisionLogSize
	}
	return &DecisionLog{entries: make([]Decision, capacity)}
}

// Append records d, evicting the oldest entry when the log is full
func (l *DecisionLog) Append(d Decision) {
	l.entries[l.next] = d
	l.next = (l.next + 1) % len(l.entries)
	if l.size < len(l.entries) {
		l.size++
	}
}

// Recent returns up to limit decisions, newest first
func (l *DecisionLog) Recent(limit int) []Decision {
	limit = max(0, min(limit, l.size))
	out := make([]Decision, 0, limit)
	idx := l.next
	for i := 0; i < limit; i++ {
		idx = (idx - 1 + len(l.entries)) % len(l.entries)
		out = append(out, l.entries[idx])
	}
	return out
}

// Len returns the number of retained decisions
func (l *DecisionLog) Len() int {
	return l.size
}

// Cap returns the capacity of the log
func (l *DecisionLog) Cap() int {
	return len(l.entries)
}

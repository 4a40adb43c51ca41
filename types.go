package signalgrid

import (
	"strings"
)

// Phase is the signal color currently shown at an intersection
type Phase string

const (
	PhaseRed   Phase = "red"
	PhaseAmber Phase = "amber"
	PhaseGreen Phase = "green"
)

// Valid reports whether p is one of the three signal colors
func (p Phase) Valid() bool {
	switch p {
	case PhaseRed, PhaseAmber, PhaseGreen:
		return true
	}
	return false
}

// ParsePhase converts a case-insensitive color name into a Phase
func ParsePhase(s string) (Phase, error) {
	p := Phase(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", NewArgumentError("phase", s, "must be one of red, amber, green")
	}
	return p, nil
}

// ControlMode selects how much authority the decision engine has
type ControlMode string

const (
	// ModeAuto applies AI decisions automatically
	ModeAuto ControlMode = "auto"
	// ModeSemi applies AI decisions; operators are expected to supervise
	ModeSemi ControlMode = "semi"
	// ModeManual suppresses all AI decisions
	ModeManual ControlMode = "manual"
)

// Valid reports whether m is a known control mode
func (m ControlMode) Valid() bool {
	switch m {
	case ModeAuto, ModeSemi, ModeManual:
		return true
	}
	return false
}

// ParseControlMode converts a case-insensitive mode name into a ControlMode
func ParseControlMode(s string) (ControlMode, error) {
	m := ControlMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", NewArgumentError("mode", s, "must be one of auto, semi, manual")
	}
	return m, nil
}

// Status is the operational state of an intersection's controller hardware
type Status string

const (
	StatusOnline      Status = "online"
	StatusOffline     Status = "offline"
	StatusMaintenance Status = "maintenance"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusOffline, StatusMaintenance:
		return true
	}
	return false
}

// ParseStatus converts a case-insensitive status name into a Status
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", NewArgumentError("status", s, "must be one of online, offline, maintenance")
	}
	return st, nil
}

// CongestionLevel classifies queue length
type CongestionLevel string

const (
	CongestionLow    CongestionLevel = "low"
	CongestionMedium CongestionLevel = "medium"
	CongestionHigh   CongestionLevel = "high"
)

// Congestion thresholds on queue length
const (
	mediumQueueThreshold = 9
	highQueueThreshold   = 15
)

// ClassifyCongestion derives the congestion level from a queue length:
// low below 9, medium from 9 to 15, high above 15
func ClassifyCongestion(queueLength int) CongestionLevel {
	switch {
	case queueLength > highQueueThreshold:
		return CongestionHigh
	case queueLength >= mediumQueueThreshold:
		return CongestionMedium
	default:
		return CongestionLow
	}
}

// DecisionType tells who originated a decision
type DecisionType string

const (
	DecisionAI        DecisionType = "ai"
	DecisionManual    DecisionType = "manual"
	DecisionEmergency DecisionType = "emergency"
)

// ModeFlag names one of the informational system flags
type ModeFlag int

const (
	FlagEmergency ModeFlag = iota
	FlagPeakHour
	FlagEventMode
)

func (f ModeFlag) String() string {
	switch f {
	case FlagEmergency:
		return "emergency"
	case FlagPeakHour:
		return "peak_hour"
	case FlagEventMode:
		return "event_mode"
	}
	return "unknown"
}

// SystemMode is the process-wide control configuration
type SystemMode struct {
	Control         ControlMode
	EmergencyActive bool
	PeakHourActive  bool
	EventModeActive bool
}

// DefaultOperator is the operator name used when none is given
const DefaultOperator = "Traffic Officer"

// Package observers provides observers for monitoring the control engine
package observers

import (
	"context"
	"log/slog"
	"sync"

	"github.com/anggasct/signalgrid"
)

// LogLevel represents the logging level
type LogLevel int

const (
	// LogError logs only errors
	LogError LogLevel = iota
	// LogWarning logs errors and warnings
	LogWarning
	// LogInfo logs errors, warnings, and info
	LogInfo
	// LogDebug logs errors, warnings, info, and debug
	LogDebug
)

// slogLevel maps a LogLevel onto the slog level it is written at
func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogError:
		return slog.LevelError
	case LogWarning:
		return slog.LevelWarn
	case LogDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// LoggingObserver logs control engine events
type LoggingObserver struct {
	signalgrid.BaseObserver

	level  LogLevel
	logger *slog.Logger
	mutex  sync.RWMutex
}

// NewLoggingObserver creates a new logging observer. Records carry a
// component attribute set to prefix when it is not empty.
func NewLoggingObserver(logger *slog.Logger, level LogLevel, prefix string) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	if prefix != "" {
		logger = logger.With("component", prefix)
	}
	return &LoggingObserver{
		level:  level,
		logger: logger,
	}
}

// SetLevel changes the threshold
func (o *LoggingObserver) SetLevel(level LogLevel) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.level = level
}

// log logs a message at the specified level
func (o *LoggingObserver) log(level LogLevel, msg string, args ...any) {
	o.mutex.RLock()
	threshold := o.level
	o.mutex.RUnlock()

	if level <= threshold {
		o.logger.Log(context.Background(), level.slogLevel(), msg, args...)
	}
}

// OnDecision logs an applied decision
func (o *LoggingObserver) OnDecision(d signalgrid.Decision, in signalgrid.Intersection) {
	args := []any{
		"intersection", d.IntersectionID,
		"action", string(d.Action),
		"confidence", d.Confidence,
		"type", string(d.Type),
		"phase", string(in.Phase),
		"timer", in.Timer,
	}
	if d.Operator != "" {
		args = append(args, "operator", d.Operator)
	}
	level := LogInfo
	if d.Type == signalgrid.DecisionEmergency {
		level = LogWarning
	}
	o.log(level, "decision applied", args...)
}

// OnPhaseChange logs a phase change
func (o *LoggingObserver) OnPhaseChange(id int, from, to signalgrid.Phase, cause string) {
	level := LogInfo
	if cause == signalgrid.CauseTimer {
		level = LogDebug
	}
	o.log(level, "phase changed", "intersection", id, "from", string(from), "to", string(to), "cause", cause)
}

// OnTick logs a completed tick
func (o *LoggingObserver) OnTick(seq uint64) {
	o.log(LogDebug, "tick", "seq", seq)
}

// OnSuppressed logs a suppressed decision
func (o *LoggingObserver) OnSuppressed(id int, reason string) {
	o.log(LogDebug, "decision suppressed", "intersection", id, "reason", reason)
}

// OnModeChange logs a system mode change
func (o *LoggingObserver) OnModeChange(from, to signalgrid.SystemMode) {
	o.log(LogInfo, "mode changed",
		"from", string(from.Control),
		"to", string(to.Control),
		"emergency", to.EmergencyActive,
		"peak_hour", to.PeakHourActive,
		"event_mode", to.EventModeActive,
	)
}

// OnStatusChange logs an intersection status change
func (o *LoggingObserver) OnStatusChange(id int, from, to signalgrid.Status) {
	o.log(LogWarning, "status changed", "intersection", id, "from", string(from), "to", string(to))
}

// OnEmergencyDetected logs an emergency vehicle
func (o *LoggingObserver) OnEmergencyDetected(in signalgrid.Intersection) {
	o.log(LogWarning, "emergency vehicle detected", "intersection", in.ID, "name", in.Name, "phase", string(in.Phase))
}

// OnError logs errors
func (o *LoggingObserver) OnError(err error) {
	o.log(LogError, "error", "error", err)
}

// OnControllerStarted logs controller start
func (o *LoggingObserver) OnControllerStarted() {
	o.log(LogInfo, "controller started")
}

// OnControllerStopped logs controller stop
func (o *LoggingObserver) OnControllerStopped() {
	o.log(LogInfo, "controller stopped")
}

// OnPaused logs a pause
func (o *LoggingObserver) OnPaused() {
	o.log(LogInfo, "ticking paused")
}

// OnResumed logs a resume
func (o *LoggingObserver) OnResumed() {
	o.log(LogInfo, "ticking resumed")
}

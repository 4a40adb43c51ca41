package observers

import (
	"sync"

	"github.com/anggasct/signalgrid"
)

// MetricsObserver collects counters about the control engine
type MetricsObserver struct {
	signalgrid.BaseObserver

	actionCounts       map[signalgrid.ActionKind]int
	decisionTypeCounts map[signalgrid.DecisionType]int
	transitionCounts   map[string]int
	suppressionCounts  map[string]int
	confidenceTotal    int
	decisionCount      int
	emergencyCount     int
	tickCount          uint64
	errorCount         int
	mutex              sync.RWMutex
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		actionCounts:       make(map[signalgrid.ActionKind]int),
		decisionTypeCounts: make(map[signalgrid.DecisionType]int),
		transitionCounts:   make(map[string]int),
		suppressionCounts:  make(map[string]int),
	}
}

// OnDecision records decision metrics
func (o *MetricsObserver) OnDecision(d signalgrid.Decision, _ signalgrid.Intersection) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.actionCounts[d.Action]++
	o.decisionTypeCounts[d.Type]++
	o.confidenceTotal += d.Confidence
	o.decisionCount++
}

// OnPhaseChange records transition metrics keyed "from->to"
func (o *MetricsObserver) OnPhaseChange(_ int, from, to signalgrid.Phase, _ string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.transitionCounts[string(from)+"->"+string(to)]++
}

// OnTick records the latest tick
func (o *MetricsObserver) OnTick(seq uint64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.tickCount = seq
}

// OnSuppressed records suppression metrics by reason
func (o *MetricsObserver) OnSuppressed(_ int, reason string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.suppressionCounts[reason]++
}

// OnEmergencyDetected records emergency metrics
func (o *MetricsObserver) OnEmergencyDetected(signalgrid.Intersection) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.emergencyCount++
}

// OnError records error metrics
func (o *MetricsObserver) OnError(error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.errorCount++
}

// GetActionCounts returns the number of decisions per action
func (o *MetricsObserver) GetActionCounts() map[signalgrid.ActionKind]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[signalgrid.ActionKind]int, len(o.actionCounts))
	for action, count := range o.actionCounts {
		result[action] = count
	}
	return result
}

// GetDecisionTypeCounts returns the number of decisions per origin
func (o *MetricsObserver) GetDecisionTypeCounts() map[signalgrid.DecisionType]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[signalgrid.DecisionType]int, len(o.decisionTypeCounts))
	for typ, count := range o.decisionTypeCounts {
		result[typ] = count
	}
	return result
}

// GetTransitionCounts returns the number of times each phase change occurred
func (o *MetricsObserver) GetTransitionCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[string]int, len(o.transitionCounts))
	for transition, count := range o.transitionCounts {
		result[transition] = count
	}
	return result
}

// GetSuppressionCounts returns the number of suppressed requests per reason
func (o *MetricsObserver) GetSuppressionCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make(map[string]int, len(o.suppressionCounts))
	for reason, count := range o.suppressionCounts {
		result[reason] = count
	}
	return result
}

// GetAverageConfidence returns the mean confidence over every decision seen
func (o *MetricsObserver) GetAverageConfidence() float64 {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	if o.decisionCount == 0 {
		return 0
	}
	return float64(o.confidenceTotal) / float64(o.decisionCount)
}

// GetDecisionCount returns the number of decisions
func (o *MetricsObserver) GetDecisionCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.decisionCount
}

// GetEmergencyCount returns the number of detected emergency vehicles
func (o *MetricsObserver) GetEmergencyCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.emergencyCount
}

// GetTickCount returns the sequence number of the latest tick
func (o *MetricsObserver) GetTickCount() uint64 {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.tickCount
}

// GetErrorCount returns the number of errors
func (o *MetricsObserver) GetErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	return o.errorCount
}

// Reset resets all metrics
func (o *MetricsObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.actionCounts = make(map[signalgrid.ActionKind]int)
	o.decisionTypeCounts = make(map[signalgrid.DecisionType]int)
	o.transitionCounts = make(map[string]int)
	o.suppressionCounts = make(map[string]int)
	o.confidenceTotal = 0
	o.decisionCount = 0
	o.emergencyCount = 0
	o.tickCount = 0
	o.errorCount = 0
}

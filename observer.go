package signalgrid

import "fmt"

// CauseTimer is the phase change cause reported for natural transitions
const CauseTimer = "timer"

// Observer represents an entity that observes the control engine.
// Observers are called on the controller goroutine and must not call
// back into the Controller.
type Observer interface {
	// Required methods

	// OnDecision is called after a decision has been applied and logged
	OnDecision(decision Decision, intersection Intersection)

	// OnPhaseChange is called when an intersection changes color. cause is
	// CauseTimer for natural transitions or the action token otherwise.
	OnPhaseChange(intersectionID int, from Phase, to Phase, cause string)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnTick is called after every completed tick
	OnTick(seq uint64)

	// OnSuppressed is called when a decision request was not applied
	OnSuppressed(intersectionID int, reason string)

	// OnModeChange is called when the system mode changes
	OnModeChange(from SystemMode, to SystemMode)

	// OnStatusChange is called when an intersection's status changes
	OnStatusChange(intersectionID int, from Status, to Status)

	// OnEmergencyDetected is called when an emergency vehicle appears at an intersection
	OnEmergencyDetected(intersection Intersection)

	// OnError is called when an error occurs during processing
	OnError(err error)

	// OnControllerStarted is called when the controller loop starts
	OnControllerStarted()

	// OnControllerStopped is called when the controller loop stops
	OnControllerStopped()

	// OnPaused is called when ticking is paused
	OnPaused()

	// OnResumed is called when ticking resumes
	OnResumed()
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnDecision implements the required Observer method
func (o *BaseObserver) OnDecision(decision Decision, intersection Intersection) {
	// Default implementation - no operation
}

// OnPhaseChange implements the required Observer method
func (o *BaseObserver) OnPhaseChange(intersectionID int, from, to Phase, cause string) {
	// Default implementation - no operation
}

// OnTick implements the optional ExtendedObserver method
func (o *BaseObserver) OnTick(seq uint64) {
	// Default implementation - no operation
}

// OnSuppressed implements the optional ExtendedObserver method
func (o *BaseObserver) OnSuppressed(intersectionID int, reason string) {
	// Default implementation - no operation
}

// OnModeChange implements the optional ExtendedObserver method
func (o *BaseObserver) OnModeChange(from, to SystemMode) {
	// Default implementation - no operation
}

// OnStatusChange implements the optional ExtendedObserver method
func (o *BaseObserver) OnStatusChange(intersectionID int, from, to Status) {
	// Default implementation - no operation
}

// OnEmergencyDetected implements the optional ExtendedObserver method
func (o *BaseObserver) OnEmergencyDetected(intersection Intersection) {
	// Default implementation - no operation
}

// OnError implements the optional ExtendedObserver method
func (o *BaseObserver) OnError(err error) {
	// Default implementation - no operation
}

// OnControllerStarted implements the optional ExtendedObserver method
func (o *BaseObserver) OnControllerStarted() {
	// Default implementation - no operation
}

// OnControllerStopped implements the optional ExtendedObserver method
func (o *BaseObserver) OnControllerStopped() {
	// Default implementation - no operation
}

// OnPaused implements the optional ExtendedObserver method
func (o *BaseObserver) OnPaused() {
	// Default implementation - no operation
}

// OnResumed implements the optional ExtendedObserver method
func (o *BaseObserver) OnResumed() {
	// Default implementation - no operation
}

// ObserverManager manages a collection of observers
type ObserverManager struct {
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager) Len() int {
	return len(om.observers)
}

// call runs fn for one observer. A panicking observer is reported through
// OnError and never reaches the controller loop.
func (om *ObserverManager) call(observer Observer, method string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if extObs, ok := observer.(ExtendedObserver); ok {
				func() {
					defer func() { recover() }()
					extObs.OnError(fmt.Errorf("observer panic in %s: %v", method, r))
				}()
			}
		}
	}()
	fn()
}

// eachExtended runs fn for every observer implementing ExtendedObserver
func (om *ObserverManager) eachExtended(method string, fn func(ExtendedObserver)) {
	for _, observer := range om.observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			om.call(observer, method, func() { fn(extObs) })
		}
	}
}

// NotifyDecision notifies all observers of an applied decision
func (om *ObserverManager) NotifyDecision(decision Decision, intersection Intersection) {
	for _, observer := range om.observers {
		om.call(observer, "OnDecision", func() { observer.OnDecision(decision, intersection) })
	}
}

// NotifyPhaseChange notifies all observers of a phase change
func (om *ObserverManager) NotifyPhaseChange(id int, from, to Phase, cause string) {
	for _, observer := range om.observers {
		om.call(observer, "OnPhaseChange", func() { observer.OnPhaseChange(id, from, to, cause) })
	}
}

// NotifyTick notifies all observers of a completed tick
func (om *ObserverManager) NotifyTick(seq uint64) {
	om.eachExtended("OnTick", func(o ExtendedObserver) { o.OnTick(seq) })
}

// NotifySuppressed notifies all observers of a suppressed decision
func (om *ObserverManager) NotifySuppressed(id int, reason string) {
	om.eachExtended("OnSuppressed", func(o ExtendedObserver) { o.OnSuppressed(id, reason) })
}

// NotifyModeChange notifies all observers of a mode change
func (om *ObserverManager) NotifyModeChange(from, to SystemMode) {
	om.eachExtended("OnModeChange", func(o ExtendedObserver) { o.OnModeChange(from, to) })
}

// NotifyStatusChange notifies all observers of a status change
func (om *ObserverManager) NotifyStatusChange(id int, from, to Status) {
	om.eachExtended("OnStatusChange", func(o ExtendedObserver) { o.OnStatusChange(id, from, to) })
}

// NotifyEmergencyDetected notifies all observers of a new emergency vehicle
func (om *ObserverManager) NotifyEmergencyDetected(intersection Intersection) {
	om.eachExtended("OnEmergencyDetected", func(o ExtendedObserver) { o.OnEmergencyDetected(intersection) })
}

// NotifyError notifies all observers of errors
func (om *ObserverManager) NotifyError(err error) {
	for _, observer := range om.observers {
		if extObs, ok := observer.(ExtendedObserver); ok {
			func() {
				defer func() { recover() }()
				extObs.OnError(err)
			}()
		}
	}
}

// NotifyControllerStarted notifies all observers that the controller has started
func (om *ObserverManager) NotifyControllerStarted() {
	om.eachExtended("OnControllerStarted", func(o ExtendedObserver) { o.OnControllerStarted() })
}

// NotifyControllerStopped notifies all observers that the controller has stopped
func (om *ObserverManager) NotifyControllerStopped() {
	om.eachExtended("OnControllerStopped", func(o ExtendedObserver) { o.OnControllerStopped() })
}

// NotifyPaused notifies all observers that ticking is paused
func (om *ObserverManager) NotifyPaused() {
	om.eachExtended("OnPaused", func(o ExtendedObserver) { o.OnPaused() })
}

// NotifyResumed notifies all observers that ticking has resumed
func (om *ObserverManager) NotifyResumed() {
	om.eachExtended("OnResumed", func(o ExtendedObserver) { o.OnResumed() })
}

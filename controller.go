package signalgrid

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

// Options configures a Controller
type Options struct {
	TickInterval    time.Duration
	Probabilities   Probabilities
	DecisionLogSize int
	Mode            SystemMode
	StartPaused     bool

	Policy DecisionPolicy   // defaults to DefaultPolicy()
	Random Random           // defaults to a PCG source seeded with Seed
	Seed   uint64           // zero seeds from the clock
	Clock  func() time.Time // defaults to time.Now
	Logger *slog.Logger     // defaults to slog.Default()
}

// DefaultOptions returns the reference timing and probabilities:
// one tick per second, AI decision 0.30, fluctuation 0.10, emergency 0.05.
func DefaultOptions() Options {
	return Options{
		TickInterval: time.Second,
		Probabilities: Probabilities{
			AIDecision:  0.30,
			Fluctuation: 0.10,
			Emergency:   0.05,
		},
		DecisionLogSize: DefaultDecisionLogSize,
		Mode:            SystemMode{Control: ModeAuto},
	}
}

// Validate checks the options for values the controller cannot run with
func (o Options) Validate() error {
	if o.TickInterval <= 0 {
		return NewConfigurationError("Options", fmt.Sprintf("tick interval must be positive, got %s", o.TickInterval))
	}
	for name, p := range map[string]float64{
		"ai decision": o.Probabilities.AIDecision,
		"fluctuation": o.Probabilities.Fluctuation,
		"emergency":   o.Probabilities.Emergency,
	} {
		if p < 0 || p > 1 {
			return NewConfigurationError("Options", fmt.Sprintf("%s probability must be within [0,1], got %v", name, p))
		}
	}
	if o.DecisionLogSize < 1 {
		return NewConfigurationError("Options", fmt.Sprintf("decision log size must be at least 1, got %d", o.DecisionLogSize))
	}
	if o.Mode.Control != "" && !o.Mode.Control.Valid() {
		return NewConfigurationError("Options", fmt.Sprintf("unknown control mode %q", o.Mode.Control))
	}
	return nil
}

type controllerState int

const (
	controllerStopped controllerState = iota
	controllerStarted
)

// engine is the state owned by the controller goroutine
type engine struct {
	*grid
	interval time.Duration
	running  bool
	timer    *time.Timer
}

func (e *engine) pause() bool {
	if !e.running {
		return false
	}
	e.running = false
	e.timer.Stop()
	return true
}

// resume re-arms the timer a full interval ahead; missed ticks are not replayed
func (e *engine) resume() bool {
	if e.running {
		return false
	}
	e.running = true
	e.timer.Reset(e.interval)
	return true
}

type request func(e *engine)

// Controller runs the intersection fleet. A single goroutine owns the fleet,
// the decision log and the system mode; ticks and external calls are
// delivered to it as requests, so every call observes a fully applied state.
type Controller struct {
	engine    *engine
	observers *ObserverManager
	logger    *slog.Logger

	mutex    sync.Mutex
	state    controllerState
	requests chan request
	quit     chan struct{}
	done     chan struct{}
}

// NewController creates a controller over fleet. The controller does
// nothing until Start is called.
func NewController(fleet []Intersection, opts Options) (*Controller, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.Policy == nil {
		opts.Policy = DefaultPolicy()
	}
	if opts.Random == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		opts.Random = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Mode.Control == "" {
		opts.Mode.Control = ModeAuto
	}

	observers := NewObserverManager()
	g, err := newGrid(fleet, opts.Policy, opts.Random, opts.Probabilities, opts.DecisionLogSize, opts.Mode, opts.Clock, observers)
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(opts.TickInterval)
	timer.Stop()

	return &Controller{
		engine: &engine{
			grid:     g,
			interval: opts.TickInterval,
			running:  !opts.StartPaused,
			timer:    timer,
		},
		observers: observers,
		logger:    opts.Logger,
		state:     controllerStopped,
	}, nil
}

// Start launches the controller goroutine
func (c *Controller) Start() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state == controllerStarted {
		return NewControllerError(ErrCodeNone, "Start", "controller is already started")
	}

	c.requests = make(chan request)
	c.quit = make(chan struct{})
	c.done = make(chan struct{})
	c.state = controllerStarted

	go c.loop(c.requests, c.quit, c.done)
	return nil
}

// Stop terminates the controller goroutine and waits for it to exit.
// The fleet keeps its state; Start may be called again.
func (c *Controller) Stop() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state != controllerStarted {
		return NewNotRunningError("Stop")
	}

	close(c.quit)
	<-c.done
	c.state = controllerStopped
	return nil
}

func (c *Controller) loop(requests <-chan request, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	e := c.engine
	if e.running {
		e.timer.Reset(e.interval)
	}
	defer e.timer.Stop()

	c.logger.Debug("controller started", "intersections", len(e.intersections), "interval", e.interval, "running", e.running)
	c.observers.NotifyControllerStarted()
	defer func() {
		c.observers.NotifyControllerStopped()
		c.logger.Debug("controller stopped", "ticks", e.ticks)
	}()

	for {
		select {
		case <-quit:
			return
		case req := <-requests:
			c.serve(e, req)
		case <-e.timer.C:
			c.serve(e, func(e *engine) { e.tick() })
			if e.running {
				e.timer.Reset(e.interval)
			}
		}
	}
}

// serve runs one request; a panic is reported and the loop keeps going
func (c *Controller) serve(e *engine, req request) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("controller request panic: %v", r)
			c.logger.Error("request failed", "error", err)
			c.observers.NotifyError(err)
		}
	}()
	req(e)
}

// do delivers fn to the controller goroutine and waits for it to finish
func (c *Controller) do(ctx context.Context, operation string, fn func(e *engine)) error {
	c.mutex.Lock()
	requests, done, started := c.requests, c.done, c.state == controllerStarted
	c.mutex.Unlock()

	if !started {
		return NewNotRunningError(operation)
	}

	var panicked any
	finished := make(chan struct{})
	req := func(e *engine) {
		defer close(finished)
		defer func() {
			if r := recover(); r != nil {
				panicked = r
				panic(r)
			}
		}()
		fn(e)
	}

	select {
	case requests <- req:
	case <-done:
		return NewNotRunningError(operation)
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		if panicked != nil {
			return NewControllerError(ErrCodeNone, operation, fmt.Sprintf("request panicked: %v", panicked))
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddObserver registers an observer
func (c *Controller) AddObserver(observer Observer) {
	c.withObservers("AddObserver", func(om *ObserverManager) { om.AddObserver(observer) })
}

// RemoveObserver unregisters an observer
func (c *Controller) RemoveObserver(observer Observer) {
	c.withObservers("RemoveObserver", func(om *ObserverManager) { om.RemoveObserver(observer) })
}

// withObservers mutates the observer list directly while stopped and
// through the controller goroutine while started
func (c *Controller) withObservers(operation string, fn func(om *ObserverManager)) {
	for {
		c.mutex.Lock()
		if c.state != controllerStarted {
			fn(c.observers)
			c.mutex.Unlock()
			return
		}
		c.mutex.Unlock()

		if err := c.do(context.Background(), operation, func(*engine) { fn(c.observers) }); err == nil {
			return
		}
	}
}

// Pause stops the tick loop without touching any state
func (c *Controller) Pause(ctx context.Context) error {
	return c.do(ctx, "Pause", func(e *engine) {
		if e.pause() {
			c.observers.NotifyPaused()
		}
	})
}

// Resume restarts the tick loop from the current timers
func (c *Controller) Resume(ctx context.Context) error {
	return c.do(ctx, "Resume", func(e *engine) {
		if e.resume() {
			c.observers.NotifyResumed()
		}
	})
}

// Running reports whether the tick loop is active
func (c *Controller) Running(ctx context.Context) (bool, error) {
	var running bool
	err := c.do(ctx, "Running", func(e *engine) { running = e.running })
	return running, err
}

// Tick runs exactly one tick, whether or not the loop is paused
func (c *Controller) Tick(ctx context.Context) error {
	return c.do(ctx, "Tick", func(e *engine) { e.tick() })
}

// Snapshot returns a copy of every intersection
func (c *Controller) Snapshot(ctx context.Context) ([]Intersection, error) {
	var out []Intersection
	err := c.do(ctx, "Snapshot", func(e *engine) { out = e.snapshot() })
	return out, err
}

// Intersection returns a copy of one intersection
func (c *Controller) Intersection(ctx context.Context, id int) (Intersection, error) {
	var (
		out    Intersection
		lookup error
	)
	err := c.do(ctx, "Intersection", func(e *engine) {
		in, err := e.lookup(id)
		if err != nil {
			lookup = err
			return
		}
		out = *in
	})
	if err != nil {
		return Intersection{}, err
	}
	return out, lookup
}

// DecisionLog returns up to limit decisions, newest first
func (c *Controller) DecisionLog(ctx context.Context, limit int) ([]Decision, error) {
	if limit < 0 {
		return nil, NewArgumentError("limit", fmt.Sprint(limit), "must not be negative")
	}
	var out []Decision
	err := c.do(ctx, "DecisionLog", func(e *engine) { out = e.log.Recent(limit) })
	return out, err
}

// Mode returns the current system mode
func (c *Controller) Mode(ctx context.Context) (SystemMode, error) {
	var mode SystemMode
	err := c.do(ctx, "Mode", func(e *engine) { mode = e.mode })
	return mode, err
}

// Summary aggregates the fleet state
func (c *Controller) Summary(ctx context.Context) (FleetSummary, error) {
	var s FleetSummary
	err := c.do(ctx, "Summary", func(e *engine) { s = e.summary() })
	return s, err
}

// SetControlMode replaces the control mode; no intersection is touched
func (c *Controller) SetControlMode(ctx context.Context, mode ControlMode) error {
	if !mode.Valid() {
		return NewArgumentError("mode", string(mode), "must be one of auto, semi, manual")
	}
	var result error
	if err := c.do(ctx, "SetControlMode", func(e *engine) { result = e.setControlMode(mode) }); err != nil {
		return err
	}
	return result
}

// SetFlag sets one of the informational mode flags
func (c *Controller) SetFlag(ctx context.Context, flag ModeFlag, on bool) error {
	var result error
	if err := c.do(ctx, "SetFlag", func(e *engine) { result = e.setFlag(flag, on) }); err != nil {
		return err
	}
	return result
}

// SetStatus changes an intersection's operational status
func (c *Controller) SetStatus(ctx context.Context, id int, status Status) error {
	var result error
	if err := c.do(ctx, "SetStatus", func(e *engine) { result = e.setStatus(id, status) }); err != nil {
		return err
	}
	return result
}

// ApplyAIDecision evaluates the policy for one intersection and applies
// the proposal. In manual mode the request is suppressed, not failed.
func (c *Controller) ApplyAIDecision(ctx context.Context, id int) (*Outcome, error) {
	var (
		out    *Outcome
		result error
	)
	if err := c.do(ctx, "ApplyAIDecision", func(e *engine) { out, result = e.applyAIDecision(id) }); err != nil {
		return nil, err
	}
	return out, result
}

// ForceSignal sets an intersection's phase on behalf of an operator.
// It is honoured in every control mode.
func (c *Controller) ForceSignal(ctx context.Context, id int, phase Phase, operator string) (*Outcome, error) {
	if !phase.Valid() {
		return nil, NewArgumentError("phase", string(phase), "must be one of red, amber, green")
	}
	if _, err := validateOperator(operator); err != nil {
		return nil, err
	}
	var (
		out    *Outcome
		result error
	)
	if err := c.do(ctx, "ForceSignal", func(e *engine) { out, result = e.forceSignal(id, phase, operator) }); err != nil {
		return nil, err
	}
	return out, result
}

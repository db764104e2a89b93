// Package engine runs combo programs one at a time on a dedicated worker and
// returns the controller to neutral however a run ends.
//
// Maintenance notes:
//   - Single flight is enforced by the run handle: RequestRun claims it under
//     mu and the worker releases it as its last step. A request made while a
//     handle is outstanding is dropped, never queued.
//   - The cancel flag and the state are the only fields the trigger side and
//     the worker share. Both are atomics; mu only guards the handle.
//   - Cleanup releases every button in device.AllButtons, not only those the
//     program touched, because a fault can leave anything held.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"ComboPad/device"
	"ComboPad/motion"
	"ComboPad/timing"
)

// ErrBudgetExceeded aborts a run that outlives the configured budget.
var ErrBudgetExceeded = errors.New("run exceeded its time budget")

// ErrPanic wraps a panic recovered from a program.
var ErrPanic = errors.New("program panicked")

// ErrClosed is returned by Close when the engine was already closed.
var ErrClosed = errors.New("engine closed")

// State is the externally visible engine state.
type State int32

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Outcome is how a run ended.
type Outcome int

const (
	Completed Outcome = iota
	Cancelled
	Faulted
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Faulted:
		return "faulted"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Classify maps a run error onto its outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Completed
	case errors.Is(err, timing.ErrCancelled):
		return Cancelled
	}
	return Faulted
}

// Program is anything the engine can execute against the driver it builds
// for a run. *program.Program satisfies it.
type Program interface {
	Execute(d *motion.Driver) error
}

// Config holds the collaborators of an Engine.
type Config struct {
	// Port is the controller the engine owns. Required.
	Port device.Port

	// Scale is read on every wait. Defaults to a factor of 1.
	Scale *timing.Scale

	// Observer receives lifecycle notifications on the worker goroutine.
	// Wrap it with Marshal to move delivery elsewhere.
	Observer Observer

	// Budget aborts runs that take longer, 0 disables it.
	Budget time.Duration
}

type handle struct {
	profile string
	slot    string
	done    chan struct{}
}

// Engine is the single-flight sequencer.
type Engine struct {
	port   device.Port
	clock  *timing.Clock
	obs    Observer
	budget atomic.Int64

	cancel timing.Flag
	state  atomic.Int32
	mirror atomic.Bool
	last   atomic.Int32

	mu     sync.Mutex
	run    *handle
	closed bool
}

// New creates an idle engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Port == nil {
		return nil, errors.New("engine: no device port")
	}
	scale := cfg.Scale
	if scale == nil {
		scale = timing.NewScale(1)
	}
	e := &Engine{
		port:  cfg.Port,
		clock: timing.NewClock(scale),
		obs:   cfg.Observer,
	}
	e.budget.Store(int64(cfg.Budget))
	return e, nil
}

// Scale returns the factor read by every wait.
func (e *Engine) Scale() *timing.Scale {
	return e.clock.Scale()
}

// SetMirrored swaps forward and back for runs started afterwards.
func (e *Engine) SetMirrored(on bool) {
	e.mirror.Store(on)
}

// SetBudget replaces the run budget for runs started afterwards.
func (e *Engine) SetBudget(d time.Duration) {
	e.budget.Store(int64(d))
}

// State returns Idle or Running.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// LastOutcome returns how the most recent run ended.
func (e *Engine) LastOutcome() Outcome {
	return Outcome(e.last.Load())
}

// Current returns the profile and slot of the active run.
func (e *Engine) Current() (profile, slot string, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run == nil {
		return "", "", false
	}
	return e.run.profile, e.run.slot, true
}

// RequestRun starts p on a new worker and returns immediately. It returns
// false, and does nothing else, if a run is already active or the engine is
// closed.
func (e *Engine) RequestRun(profile, slot string, p Program) bool {
	e.mu.Lock()
	if e.run != nil || e.closed || p == nil {
		e.mu.Unlock()
		return false
	}
	e.cancel.Clear()
	h := &handle{profile: profile, slot: slot, done: make(chan struct{})}
	e.run = h
	e.state.Store(int32(Running))
	sig := &runSignal{cancel: &e.cancel}
	if b := time.Duration(e.budget.Load()); b > 0 {
		sig.deadline = time.Now().Add(b)
	}
	d := motion.NewDriver(e.port, e.clock, sig, motion.Mirrored(e.mirror.Load()))
	e.mu.Unlock()

	go e.work(h, p, d)
	return true
}

// RequestCancel asks the active run to stop at its next wait. It never blocks
// and never touches the device. It returns false when nothing is running.
func (e *Engine) RequestCancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run == nil {
		return false
	}
	e.cancel.Raise()
	return true
}

// Wait blocks until the active run, if any, has returned to Idle.
func (e *Engine) Wait() {
	e.WaitContext(context.Background())
}

// WaitContext is Wait bounded by ctx.
func (e *Engine) WaitContext(ctx context.Context) error {
	e.mu.Lock()
	h := e.run
	e.mu.Unlock()
	if h == nil {
		return nil
	}
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any active run, waits for its cleanup and refuses further
// requests.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.closed = true
	if e.run != nil {
		e.cancel.Raise()
	}
	e.mu.Unlock()
	return e.WaitContext(ctx)
}

func (e *Engine) work(h *handle, p Program, d *motion.Driver) {
	defer close(h.done)

	e.notify(func(o Observer) { o.OnStarted(h.profile, h.slot) })
	e.notify(func(o Observer) { o.OnProgress(h.slot) })

	err := e.execute(p, d)
	outcome := Classify(err)
	e.last.Store(int32(outcome))

	switch outcome {
	case Completed:
		e.notify(func(o Observer) { o.OnCompleted() })
	case Cancelled:
		e.notify(func(o Observer) { o.OnCancelled() })
	default:
		reason := err.Error()
		e.notify(func(o Observer) { o.OnFailed(reason) })
	}

	e.cleanup(h)
	e.notify(func(o Observer) { o.OnProgress("") })

	e.mu.Lock()
	e.run = nil
	e.state.Store(int32(Idle))
	e.mu.Unlock()

	// A RequestRun from here on may notify OnStarted before this OnIdle.
	e.notify(func(o Observer) { o.OnIdle() })
}

func (e *Engine) execute(p Program, d *motion.Driver) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return p.Execute(d)
}

// cleanup is best effort. A device that is gone cannot be recovered, so its
// errors are logged and dropped.
func (e *Engine) cleanup(h *handle) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Cleanup after %s/%s panicked: %v", h.profile, h.slot, r)
		}
	}()
	if err := device.Reset(e.port); err != nil {
		log.Printf("Cleanup after %s/%s failed: %v", h.profile, h.slot, err)
	}
}

func (e *Engine) notify(fn func(Observer)) {
	if e.obs == nil {
		return
	}
	deliver(e.obs, fn)
}

type runSignal struct {
	cancel   *timing.Flag
	deadline time.Time
}

func (s *runSignal) Err() error {
	if err := s.cancel.Err(); err != nil {
		return err
	}
	if !s.deadline.IsZero() && !time.Now().Before(s.deadline) {
		return ErrBudgetExceeded
	}
	return nil
}

// Package device defines the Virtual Device Port the sequencer drives and the
// concrete ports shipped with the application.
//
// A Port is assumed not to be safe for concurrent writers. The engine
// guarantees a single writer by running at most one combo at a time.
package device

import (
	"errors"
	"fmt"
)

// Port is the only component that touches the controller. Set, press and
// release stage a change; Commit makes staged state visible to the driver
// and returns once it is.
type Port interface {
	SetAxes(x, y int16) error
	PressButtons(b Buttons) error
	ReleaseButtons(b Buttons) error
	Commit() error
}

// Port operation names used in faults.
const (
	OpSetAxes        = "SetAxes"
	OpPressButtons   = "PressButtons"
	OpReleaseButtons = "ReleaseButtons"
	OpCommit         = "Commit"
)

// ErrClosed is returned by ports used after Close.
var ErrClosed = errors.New("device closed")

// Fault reports a failed port operation.
type Fault struct {
	Op  string
	Err error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("device: %s: %v", f.Op, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// Wrap returns err as a Fault for op, or nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var f *Fault
	if errors.As(err, &f) {
		return err
	}
	return &Fault{Op: op, Err: err}
}

// Report is a snapshot of controller state.
type Report struct {
	X, Y    int16
	Pressed Buttons
}

// IsNeutral reports whether the stick is centred and nothing is held.
func (r Report) IsNeutral() bool {
	return r.X == 0 && r.Y == 0 && r.Pressed == 0
}

func (r Report) String() string {
	return fmt.Sprintf("axes=(%d,%d) buttons=%s", r.X, r.Y, r.Pressed)
}

// Reset stages a fully released, centred controller and commits it.
func Reset(p Port) error {
	var errs []error
	if err := p.ReleaseButtons(AllButtons); err != nil {
		errs = append(errs, Wrap(OpReleaseButtons, err))
	}
	if err := p.SetAxes(0, 0); err != nil {
		errs = append(errs, Wrap(OpSetAxes, err))
	}
	if err := p.Commit(); err != nil {
		errs = append(errs, Wrap(OpCommit, err))
	}
	return errors.Join(errs...)
}

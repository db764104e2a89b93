// Package motion turns declarative input intents into ordered device
// operations and waits.
//
// Every primitive that waits returns the wait's error unchanged, so a
// cancellation raised anywhere inside a run reaches the engine as
// timing.ErrCancelled.
package motion

import (
	"fmt"
	"time"

	"ComboPad/device"
	"ComboPad/timing"
)

// Driver executes primitives for one run. It is not safe for concurrent use.
type Driver struct {
	port   device.Port
	clock  *timing.Clock
	sig    timing.Signal
	mirror bool
}

// Option configures a Driver.
type Option func(*Driver)

// Mirrored swaps forward and back, for a character facing left.
func Mirrored(on bool) Option {
	return func(d *Driver) { d.mirror = on }
}

// NewDriver creates a driver writing to port and waiting on clock until sig
// reports an error.
func NewDriver(port device.Port, clock *timing.Clock, sig timing.Signal, opts ...Option) *Driver {
	d := &Driver{port: port, clock: clock, sig: sig}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Driver) setStick(dir device.Direction) error {
	if !dir.Valid() {
		return fmt.Errorf("motion: invalid direction %s", dir)
	}
	if d.mirror {
		dir = dir.Mirror()
	}
	x, y := dir.Axes()
	if err := d.port.SetAxes(x, y); err != nil {
		return device.Wrap(device.OpSetAxes, err)
	}
	return device.Wrap(device.OpCommit, d.port.Commit())
}

// HoldDirection sets the stick to dir, commits and waits frames.
func (d *Driver) HoldDirection(dir device.Direction, frames timing.Frames) error {
	if err := d.setStick(dir); err != nil {
		return err
	}
	return d.clock.WaitFrames(d.sig, frames)
}

// Charge is a long HoldDirection that stores charge before a special.
func (d *Driver) Charge(dir device.Direction, frames timing.Frames) error {
	return d.HoldDirection(dir, frames)
}

// ReturnToNeutral centres the stick, commits and waits frames.
func (d *Driver) ReturnToNeutral(frames timing.Frames) error {
	return d.HoldDirection(device.Neutral, frames)
}

// PressAndRelease presses every button in b in the same commit, waits frames,
// then releases them all in the same commit. Two-button "enhanced" inputs use
// this too, with a larger set.
func (d *Driver) PressAndRelease(b device.Buttons, frames timing.Frames) error {
	if err := d.press(b); err != nil {
		return err
	}
	waitErr := d.clock.WaitFrames(d.sig, frames)
	if waitErr != nil {
		return waitErr
	}
	return d.release(b)
}

// HoldButtonFor presses b, waits the full duration and releases it. The wait
// still observes cancellation.
func (d *Driver) HoldButtonFor(b device.Buttons, frames timing.Frames) error {
	return d.PressAndRelease(b, frames)
}

// Perform runs a compound motion with every step lasting frames.
func (d *Driver) Perform(s Shape, frames timing.Frames) error {
	steps, err := Steps(s, frames)
	if err != nil {
		return err
	}
	for _, st := range steps {
		if err := d.HoldDirection(st.Direction, st.Frames); err != nil {
			return err
		}
	}
	return nil
}

// Pause waits a fixed wall-clock duration, unaffected by the scale factor.
func (d *Driver) Pause(dur time.Duration) error {
	return d.clock.Wait(d.sig, dur)
}

func (d *Driver) press(b device.Buttons) error {
	if err := d.port.PressButtons(b); err != nil {
		return device.Wrap(device.OpPressButtons, err)
	}
	return device.Wrap(device.OpCommit, d.port.Commit())
}

func (d *Driver) release(b device.Buttons) error {
	if err := d.port.ReleaseButtons(b); err != nil {
		return device.Wrap(device.OpReleaseButtons, err)
	}
	return device.Wrap(device.OpCommit, d.port.Commit())
}

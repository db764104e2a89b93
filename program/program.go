// Package program describes combo programs as ordered lists of tagged steps
// interpreted by a single executor.
//
// Maintenance notes:
//   - Programs are data. Anything that can go wrong with one (it never
//     waits, it leaves the stick held, it re-asserts a direction by accident)
//     is caught by Validate before the engine runs it.
//   - Frame durations follow the scale factor; Wait steps are wall-clock
//     milliseconds and do not.
package program

import (
	"fmt"
	"time"

	"ComboPad/device"
	"ComboPad/motion"
	"ComboPad/timing"
)

// Kind tags a Step.
type Kind int

const (
	KindHold Kind = iota
	KindNeutral
	KindCharge
	KindMotion
	KindPress
	KindHoldButton
	KindWait
)

func (k Kind) String() string {
	switch k {
	case KindHold:
		return "hold"
	case KindNeutral:
		return "neutral"
	case KindCharge:
		return "charge"
	case KindMotion:
		return "motion"
	case KindPress:
		return "press"
	case KindHoldButton:
		return "holdbutton"
	case KindWait:
		return "wait"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Step is one primitive call. Which fields matter depends on Kind.
type Step struct {
	Kind      Kind
	Direction device.Direction
	Shape     motion.Shape
	Buttons   device.Buttons
	Frames    timing.Frames
	Wait      time.Duration

	// Line is the script line the step came from, 0 when built in code.
	Line int
}

func (s Step) String() string {
	switch s.Kind {
	case KindHold, KindCharge:
		return fmt.Sprintf("%s %s %g", s.Kind, s.Direction, float64(s.Frames))
	case KindNeutral:
		return fmt.Sprintf("neutral %g", float64(s.Frames))
	case KindMotion:
		return fmt.Sprintf("%s %g", s.Shape, float64(s.Frames))
	case KindPress, KindHoldButton:
		return fmt.Sprintf("%s %s %g", s.Kind, s.Buttons, float64(s.Frames))
	case KindWait:
		return fmt.Sprintf("wait %s", s.Wait)
	}
	return s.Kind.String()
}

// frames returns the scaled duration of the step in frames.
func (s Step) frames() timing.Frames {
	if s.Kind == KindMotion {
		steps, err := motion.Steps(s.Shape, s.Frames)
		if err != nil {
			return 0
		}
		return s.Frames * timing.Frames(len(steps))
	}
	if s.Kind == KindWait {
		return 0
	}
	return s.Frames
}

// Program is a named, ordered list of steps.
type Program struct {
	Name  string
	Steps []Step
}

// NominalFrames is the total scaled duration of the program in frames.
func (p *Program) NominalFrames() timing.Frames {
	var total timing.Frames
	for _, s := range p.Steps {
		total += s.frames()
	}
	return total
}

// FixedWait is the total wall-clock wait of the program's Wait steps.
func (p *Program) FixedWait() time.Duration {
	var total time.Duration
	for _, s := range p.Steps {
		if s.Kind == KindWait {
			total += s.Wait
		}
	}
	return total
}

// Duration estimates how long the program runs at the given scale factor.
func (p *Program) Duration(scale float64) time.Duration {
	secs := timing.Seconds(p.NominalFrames(), scale)
	return time.Duration(secs*float64(time.Second)) + p.FixedWait()
}

// Execute runs every step in order on d. The first error stops the program
// and is returned wrapped with the failing step.
func (p *Program) Execute(d *motion.Driver) error {
	for i, s := range p.Steps {
		if err := execute(d, s); err != nil {
			return fmt.Errorf("%s: step %d (%s): %w", p.Name, i+1, s, err)
		}
	}
	return nil
}

func execute(d *motion.Driver, s Step) error {
	switch s.Kind {
	case KindHold:
		return d.HoldDirection(s.Direction, s.Frames)
	case KindNeutral:
		return d.ReturnToNeutral(s.Frames)
	case KindCharge:
		return d.Charge(s.Direction, s.Frames)
	case KindMotion:
		return d.Perform(s.Shape, s.Frames)
	case KindPress:
		return d.PressAndRelease(s.Buttons, s.Frames)
	case KindHoldButton:
		return d.HoldButtonFor(s.Buttons, s.Frames)
	case KindWait:
		return d.Pause(s.Wait)
	}
	return fmt.Errorf("unknown step kind %s", s.Kind)
}

package program

import (
	"time"

	"ComboPad/device"
	"ComboPad/motion"
	"ComboPad/timing"
)

// Default durations of the shorthand instructions.
const (
	DefaultHoldFrames    timing.Frames = 3
	DefaultNeutralFrames timing.Frames = 1
	DefaultPressFrames   timing.Frames = 3
	DefaultChargeFrames  timing.Frames = 8
	DefaultLinkWait                    = 50 * time.Millisecond
	DefaultCancelWait                  = 20 * time.Millisecond

	crouchFrames      timing.Frames = 2
	linkNeutralFrames timing.Frames = 2
)

// Builder appends steps fluently. Build validates the result.
type Builder struct {
	steps []Step
	line  int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) add(s Step) *Builder {
	s.Line = b.line
	b.steps = append(b.steps, s)
	return b
}

// Hold holds dir for frames.
func (b *Builder) Hold(dir device.Direction, frames timing.Frames) *Builder {
	return b.add(Step{Kind: KindHold, Direction: dir, Frames: frames})
}

// Neutral centres the stick for frames.
func (b *Builder) Neutral(frames timing.Frames) *Builder {
	return b.add(Step{Kind: KindNeutral, Direction: device.Neutral, Frames: frames})
}

// Charge holds dir for frames to store charge.
func (b *Builder) Charge(dir device.Direction, frames timing.Frames) *Builder {
	return b.add(Step{Kind: KindCharge, Direction: dir, Frames: frames})
}

// Motion performs a compound motion with frames per step.
func (b *Builder) Motion(s motion.Shape, frames timing.Frames) *Builder {
	return b.add(Step{Kind: KindMotion, Shape: s, Frames: frames})
}

// Press presses and releases buttons together.
func (b *Builder) Press(buttons device.Buttons, frames timing.Frames) *Builder {
	return b.add(Step{Kind: KindPress, Buttons: buttons, Frames: frames})
}

// HoldButton holds buttons for the full duration before releasing.
func (b *Builder) HoldButton(buttons device.Buttons, frames timing.Frames) *Builder {
	return b.add(Step{Kind: KindHoldButton, Buttons: buttons, Frames: frames})
}

// Wait pauses for a fixed wall-clock duration.
func (b *Builder) Wait(d time.Duration) *Builder {
	return b.add(Step{Kind: KindWait, Wait: d})
}

// Crouch presses buttons while holding down.
func (b *Builder) Crouch(buttons device.Buttons, frames timing.Frames) *Builder {
	return b.Hold(device.Down, crouchFrames).Press(buttons, frames)
}

// Stand presses buttons from neutral.
func (b *Builder) Stand(buttons device.Buttons, frames timing.Frames) *Builder {
	return b.Neutral(DefaultNeutralFrames).Press(buttons, frames)
}

// Link lets a normal recover before the next one.
func (b *Builder) Link(d time.Duration) *Builder {
	return b.Neutral(linkNeutralFrames).Wait(d)
}

// Cancel is the short pause before a special cancel.
func (b *Builder) Cancel(d time.Duration) *Builder {
	return b.Wait(d)
}

func (b *Builder) mark() int {
	return len(b.steps)
}

// repeat appends extra copies of the steps after from.
func (b *Builder) repeat(from, extra int) {
	body := append([]Step(nil), b.steps[from:]...)
	for i := 0; i < extra; i++ {
		b.steps = append(b.steps, body...)
	}
}

// Len returns the number of steps so far.
func (b *Builder) Len() int {
	return len(b.steps)
}

// Build returns the validated program.
func (b *Builder) Build(name string) (*Program, error) {
	p := &Program{Name: name, Steps: append([]Step(nil), b.steps...)}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

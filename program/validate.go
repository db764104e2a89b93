package program

import (
	"errors"
	"fmt"

	"ComboPad/device"
	"ComboPad/motion"
	"ComboPad/timing"
)

// Static defects.
var (
	ErrEmpty         = errors.New("program has no steps")
	ErrNeverWaits    = errors.New("program never waits")
	ErrRedundantHold = errors.New("direction held twice in a row")
	ErrNotNeutral    = errors.New("program does not end with the stick neutral")
	ErrBadDuration   = errors.New("duration out of range")
	ErrBadStep       = errors.New("malformed step")
)

// StepError locates a defect in a program.
type StepError struct {
	Program string
	Index   int
	Line    int
	Err     error
}

func (e *StepError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("program %s: line %d: %v", e.Program, e.Line, e.Err)
	}
	return fmt.Sprintf("program %s: step %d: %v", e.Program, e.Index+1, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Validate checks the program statically:
//   - it has at least one step and waits somewhere,
//   - every duration is finite and bounded, every step is well formed,
//   - no direction step repeats the token the stick already holds (a charge
//     step is the explicit way to keep holding a direction),
//   - the stick is back at neutral when the program ends.
//
// Buttons need no check: every press step releases what it pressed.
func (p *Program) Validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("program %s: %w", p.Name, ErrEmpty)
	}

	fail := func(i int, err error) error {
		return &StepError{Program: p.Name, Index: i, Line: p.Steps[i].Line, Err: err}
	}

	waits := false
	stick := device.Neutral
	prevWasDirection := false

	for i, s := range p.Steps {
		if !s.Frames.Valid() || s.Wait < 0 || s.Wait > timing.MaxWait {
			return fail(i, ErrBadDuration)
		}
		if s.frames() > 0 || s.Wait > 0 {
			waits = true
		}

		switch s.Kind {
		case KindHold, KindNeutral, KindCharge:
			dir := s.Direction
			if s.Kind == KindNeutral {
				dir = device.Neutral
			}
			if !dir.Valid() {
				return fail(i, ErrBadStep)
			}
			if prevWasDirection && dir == stick && s.Kind != KindCharge {
				return fail(i, fmt.Errorf("%w: %s", ErrRedundantHold, dir))
			}
			stick = dir
			prevWasDirection = true

		case KindMotion:
			steps, err := motion.Steps(s.Shape, s.Frames)
			if err != nil {
				return fail(i, fmt.Errorf("%w: %v", ErrBadStep, err))
			}
			if prevWasDirection && steps[0].Direction == stick {
				return fail(i, fmt.Errorf("%w: %s", ErrRedundantHold, stick))
			}
			stick = steps[len(steps)-1].Direction
			prevWasDirection = true

		case KindPress, KindHoldButton:
			if s.Buttons == 0 || s.Buttons&^device.AllButtons != 0 {
				return fail(i, ErrBadStep)
			}
			prevWasDirection = false

		case KindWait:
			prevWasDirection = false

		default:
			return fail(i, ErrBadStep)
		}
	}

	if !waits {
		return fmt.Errorf("program %s: %w", p.Name, ErrNeverWaits)
	}
	if stick != device.Neutral {
		return fail(len(p.Steps)-1, fmt.Errorf("%w (left at %s)", ErrNotNeutral, stick))
	}
	return nil
}

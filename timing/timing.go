// Package timing converts abstract frame counts into wall-clock durations and
// provides the interruptible wait used by every motion primitive.
//
// Maintenance notes:
//   - The scale factor is read at the moment of every wait, never snapshotted
//     per run. Changing it from the settings surface affects the remainder of
//     a run that is already in progress.
//   - Wait polls its Signal at PollInterval using the monotonic clock carried
//     by time.Now. Do not replace it with a single time.Sleep: a cancel request
//     must be honoured within a poll interval, not at the end of the wait.
package timing

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"
)

// FrameRate is the number of abstract frames per second.
const FrameRate = 60

// PollInterval is the granularity at which Wait observes its Signal.
const PollInterval = time.Millisecond

// ErrCancelled is returned by Wait when the run was asked to stop.
var ErrCancelled = errors.New("cancelled")

// Upper bounds for a single wait. Anything longer is a defect in the program,
// not a combo.
const (
	MaxFrames Frames = FrameRate * 60 * 10
	MaxWait          = 10 * time.Minute
)

// Frames is a non-negative number of 1/60 second units.
type Frames float64

// Valid reports whether f is finite and within [0, MaxFrames].
func (f Frames) Valid() bool {
	return f >= 0 && f <= MaxFrames
}

// Seconds converts frames to seconds under the given scale factor.
func Seconds(f Frames, scale float64) float64 {
	return float64(f) / FrameRate * scale
}

// Scale is the process-wide frame scale factor. The zero value is not usable,
// create one with NewScale.
type Scale struct {
	bits atomic.Uint64
}

// NewScale returns a Scale holding factor, or 1.0 if factor is not positive.
func NewScale(factor float64) *Scale {
	s := &Scale{}
	if err := s.Store(factor); err != nil {
		s.bits.Store(math.Float64bits(1.0))
	}
	return s
}

// Load returns the current factor.
func (s *Scale) Load() float64 {
	return math.Float64frombits(s.bits.Load())
}

// Store replaces the factor. Non-positive and non-finite values are rejected.
func (s *Scale) Store(factor float64) error {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return fmt.Errorf("timing: invalid scale factor %v", factor)
	}
	s.bits.Store(math.Float64bits(factor))
	return nil
}

// Duration converts frames to a wall-clock duration using the current factor.
func (s *Scale) Duration(f Frames) time.Duration {
	return time.Duration(Seconds(f, s.Load()) * float64(time.Second))
}

// Signal is polled during a wait. A non-nil Err aborts the wait and is
// returned to the caller unchanged.
type Signal interface {
	Err() error
}

// Clock performs interruptible waits against a Scale.
type Clock struct {
	scale *Scale
	poll  time.Duration
}

// NewClock creates a clock reading its factor from scale.
func NewClock(scale *Scale) *Clock {
	return &Clock{scale: scale, poll: PollInterval}
}

// Scale returns the factor the clock reads on every wait.
func (c *Clock) Scale() *Scale {
	return c.scale
}

// WaitFrames waits for f frames at the scale factor current at call time.
func (c *Clock) WaitFrames(sig Signal, f Frames) error {
	return c.Wait(sig, c.scale.Duration(f))
}

// Wait blocks for approximately d. It returns early with the signal's error as
// soon as sig reports one. The signal is checked before the first sleep, so a
// zero-length wait is still a cancellation point.
func (c *Clock) Wait(sig Signal, d time.Duration) error {
	deadline := time.Now().Add(d)
	for {
		if sig != nil {
			if err := sig.Err(); err != nil {
				return err
			}
		}
		if d <= 0 {
			return nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}
		if remaining > c.poll {
			remaining = c.poll
		}
		time.Sleep(remaining)
	}
}

// Flag is a Signal backed by an atomic boolean. It reports ErrCancelled while
// raised.
type Flag struct {
	raised atomic.Bool
}

// Raise sets the flag.
func (f *Flag) Raise() { f.raised.Store(true) }

// Clear resets the flag.
func (f *Flag) Clear() { f.raised.Store(false) }

// Raised reports whether the flag is set.
func (f *Flag) Raised() bool { return f.raised.Load() }

// Err implements Signal.
func (f *Flag) Err() error {
	if f.raised.Load() {
		return ErrCancelled
	}
	return nil
}

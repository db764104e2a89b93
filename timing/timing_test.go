package timing

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecondsIsLinear(t *testing.T) {
	assert.Equal(t, 0.0, Seconds(0, 1.0))
	assert.Equal(t, 0.0, Seconds(0, 2.5))
	assert.InDelta(t, 1.0, Seconds(60, 1.0), 1e-12)

	base := Seconds(12, 1.0)
	assert.InDelta(t, 2*base, Seconds(24, 1.0), 1e-12)
	assert.InDelta(t, 2*base, Seconds(12, 2.0), 1e-12)
	assert.InDelta(t, 0.5, Seconds(1.5, 20), 1e-12)
}

func TestScaleStore(t *testing.T) {
	s := NewScale(1.5)
	assert.Equal(t, 1.5, s.Load())

	require.Error(t, s.Store(0))
	require.Error(t, s.Store(-1))
	assert.Equal(t, 1.5, s.Load(), "rejected values must not change the factor")

	require.NoError(t, s.Store(2))
	assert.Equal(t, 2*time.Second, s.Duration(60))
	assert.Equal(t, time.Duration(0), s.Duration(0))

	assert.Equal(t, 1.0, NewScale(-3).Load())
}

func TestWaitDuration(t *testing.T) {
	c := NewClock(NewScale(1))
	start := time.Now()
	require.NoError(t, c.Wait(nil, 30*time.Millisecond))
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
	assert.Less(t, elapsed, 150*time.Millisecond)
}

func TestWaitFramesReadsScaleEachCall(t *testing.T) {
	scale := NewScale(1)
	c := NewClock(scale)

	start := time.Now()
	require.NoError(t, c.WaitFrames(nil, 3))
	single := time.Since(start)

	require.NoError(t, scale.Store(4))
	start = time.Now()
	require.NoError(t, c.WaitFrames(nil, 3))
	scaled := time.Since(start)

	assert.GreaterOrEqual(t, scaled, 200*time.Millisecond)
	assert.Greater(t, scaled, single)
}

func TestWaitCancelledPromptly(t *testing.T) {
	c := NewClock(NewScale(1))
	var flag Flag
	raisedAt := make(chan time.Time, 1)

	go func() {
		time.Sleep(20 * time.Millisecond)
		raisedAt <- time.Now()
		flag.Raise()
	}()

	err := c.Wait(&flag, 10*time.Second)
	returned := time.Now()

	require.ErrorIs(t, err, ErrCancelled)
	latency := returned.Sub(<-raisedAt)
	// 5 ms bound plus a few poll intervals of scheduler slack
	assert.Less(t, latency, 5*time.Millisecond+3*PollInterval, "cancel latency must not depend on the requested wait")
}

func TestWaitAlreadyCancelled(t *testing.T) {
	c := NewClock(NewScale(1))
	var flag Flag
	flag.Raise()

	assert.ErrorIs(t, c.Wait(&flag, 0), ErrCancelled)
	flag.Clear()
	assert.NoError(t, c.Wait(&flag, 0))
}

type signalFunc func() error

func (f signalFunc) Err() error { return f() }

func TestWaitPropagatesSignalError(t *testing.T) {
	boom := errors.New("boom")
	c := NewClock(NewScale(1))
	err := c.Wait(signalFunc(func() error { return boom }), time.Second)
	assert.Same(t, boom, err)
}

func TestFramesValid(t *testing.T) {
	for _, f := range []Frames{0, 1.5, 600, MaxFrames} {
		assert.True(t, f.Valid(), "%v", f)
	}
	for _, f := range []Frames{-1, MaxFrames + 1, Frames(math.Inf(1)), Frames(math.Inf(-1)), Frames(math.NaN()), 1e12} {
		assert.False(t, f.Valid(), "%v", f)
	}
}

func TestWaitNonPositiveReturnsImmediately(t *testing.T) {
	c := NewClock(NewScale(1))
	start := time.Now()
	require.NoError(t, c.Wait(nil, -time.Hour))
	require.NoError(t, c.Wait(nil, time.Duration(math.MinInt64)))
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	var flag Flag
	flag.Raise()
	assert.ErrorIs(t, c.Wait(&flag, -time.Second), ErrCancelled)
}

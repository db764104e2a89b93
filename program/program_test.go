package program

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ComboPad/device"
	"ComboPad/motion"
	"ComboPad/timing"
)

const akumaBnB = `
-- cr.MP > cr.MP xx HP Goshoryuken
cr MP; link 45
cr MP; cancel 25
dp; press HP; neutral
`

func TestParseExpandsShorthand(t *testing.T) {
	p, err := Parse("akuma_bnb_1", akumaBnB, device.ClassicLayout())
	require.NoError(t, err)

	var kinds []Kind
	for _, s := range p.Steps {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []Kind{
		KindHold, KindPress, KindNeutral, KindWait,
		KindHold, KindPress, KindWait,
		KindMotion, KindPress, KindNeutral,
	}, kinds)

	assert.Equal(t, device.Down, p.Steps[0].Direction)
	assert.Equal(t, timing.Frames(2), p.Steps[0].Frames)
	assert.Equal(t, device.ButtonY, p.Steps[1].Buttons)
	assert.Equal(t, 45*time.Millisecond, p.Steps[3].Wait)
	assert.Equal(t, 25*time.Millisecond, p.Steps[6].Wait)
	assert.Equal(t, motion.Rising, p.Steps[7].Shape)
	assert.Equal(t, device.ButtonRB, p.Steps[8].Buttons)
	assert.Equal(t, 5, p.Steps[8].Line)
}

func TestParseDefaultsAndOD(t *testing.T) {
	p, err := Parse("od", "qcb\nod MK+HK\nwait 100\nneutral", device.ClassicLayout())
	require.NoError(t, err)

	assert.Equal(t, motion.DefaultStepFrames, p.Steps[0].Frames)
	assert.Equal(t, device.ButtonB|device.ButtonRT, p.Steps[1].Buttons)
	assert.Equal(t, DefaultPressFrames, p.Steps[1].Frames)
	assert.Equal(t, DefaultNeutralFrames, p.Steps[3].Frames)

	_, err = Parse("od", "od MK\nneutral", device.ClassicLayout())
	var synErr *SyntaxError
	require.ErrorAs(t, err, &synErr)
	assert.Equal(t, 1, synErr.Line)
}

func TestParseLoop(t *testing.T) {
	script := `
st MP; link 45
do 6
  press HK 2
  wait 25
loop
neutral
`
	p, err := Parse("chunli_punish_1", script, device.ClassicLayout())
	require.NoError(t, err)

	presses := 0
	for _, s := range p.Steps {
		if s.Kind == KindPress && s.Buttons == device.ButtonRT {
			presses++
		}
	}
	assert.Equal(t, 6, presses)
}

func TestParseErrors(t *testing.T) {
	layout := device.ClassicLayout()
	cases := map[string]string{
		"unknown instruction": "jump 3",
		"bad direction":       "hold 46 2",
		"bad button":          "press ZZ",
		"bad frames":          "hold 2 -1",
		"wait needs ms":       "wait",
		"do count":            "do 0\nloop",
		"do too large":        "do 1000\nloop",
		"holdbutton frames":   "holdbutton HP",
		"infinite charge":     "charge 4 inf\nneutral",
		"nan hold":            "hold 6 NaN\nneutral",
		"huge charge":         "charge 4 1e12\nneutral",
		"huge press":          "press HP 36001\nneutral",
		"infinite wait":       "wait +Inf",
		"nan link":            "link nan",
		"huge wait":           "wait 1e12",
	}
	for name, script := range cases {
		_, err := Parse(name, script, layout)
		var synErr *SyntaxError
		assert.ErrorAs(t, err, &synErr, name)
	}

	_, err := Parse("loop", "loop", layout)
	assert.ErrorIs(t, err, ErrUnbalancedLoop)
	_, err = Parse("do", "do 2\nhold 2 1\nneutral", layout)
	assert.ErrorIs(t, err, ErrUnbalancedLoop)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		b    *Builder
		want error
	}{
		{"empty", NewBuilder(), ErrEmpty},
		{"never waits", NewBuilder().Hold(device.Down, 0).Press(device.ButtonA, 0).Neutral(0), ErrNeverWaits},
		{"redundant hold", NewBuilder().Hold(device.Down, 2).Hold(device.Down, 2).Neutral(1), ErrRedundantHold},
		{"redundant neutral", NewBuilder().Hold(device.Down, 2).Neutral(1).Neutral(1), ErrRedundantHold},
		{"motion repeats hold", NewBuilder().Hold(device.Down, 2).Motion(motion.QuarterCircleForward, 2).Neutral(1), ErrRedundantHold},
		{"ends held", NewBuilder().Motion(motion.Rising, 2).Press(device.ButtonRB, 3), ErrNotNeutral},
		{"negative", NewBuilder().Hold(device.Down, -1).Neutral(1), ErrBadDuration},
		{"infinite", NewBuilder().Charge(device.Back, timing.Frames(math.Inf(1))).Neutral(1), ErrBadDuration},
		{"nan", NewBuilder().Hold(device.Forward, timing.Frames(math.NaN())).Neutral(1), ErrBadDuration},
		{"too long", NewBuilder().Charge(device.Back, timing.MaxFrames+1).Neutral(1), ErrBadDuration},
		{"wait too long", NewBuilder().Hold(device.Down, 1).Neutral(1).Wait(timing.MaxWait + time.Second), ErrBadDuration},
		{"no buttons", NewBuilder().Press(0, 3).Neutral(1), ErrBadStep},
		{"bad direction", NewBuilder().Hold(0, 3).Neutral(1), ErrBadStep},
	}
	for _, tc := range cases {
		_, err := tc.b.Build(tc.name)
		assert.ErrorIs(t, err, tc.want, tc.name)
	}
}

func TestValidateAllowsDeliberateRepeats(t *testing.T) {
	// a charge re-asserts the held direction on purpose
	_, err := NewBuilder().Hold(device.Back, 4).Charge(device.Back, 8).Hold(device.Forward, 2).Press(device.ButtonB, 3).Neutral(1).Build("charge")
	assert.NoError(t, err)

	// a press between two identical holds keeps the stick busy
	_, err = NewBuilder().Hold(device.DownBack, 1).Press(device.ButtonX, 2).Hold(device.DownBack, 1).Press(device.ButtonX, 2).Neutral(1).Build("jabs")
	assert.NoError(t, err)

	// so does a wait
	_, err = NewBuilder().Hold(device.Down, 1).Wait(time.Millisecond).Hold(device.Down, 1).Neutral(1).Build("wait")
	assert.NoError(t, err)
}

func TestStepErrorCarriesLine(t *testing.T) {
	_, err := Parse("dup", "hold 2 2\nhold 2 2\nneutral", device.ClassicLayout())
	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, 2, stepErr.Line)
	assert.Contains(t, err.Error(), "line 2")
}

func TestDuration(t *testing.T) {
	p, err := NewBuilder().
		Motion(motion.HalfCircleForward, 2).
		Press(device.ButtonRB, 3).
		Neutral(1).
		Wait(100 * time.Millisecond).
		Build("sum")
	require.NoError(t, err)

	assert.Equal(t, timing.Frames(5*2+3+1), p.NominalFrames())
	assert.Equal(t, 100*time.Millisecond, p.FixedWait())
	want := 14.0/60.0*float64(time.Second) + float64(100*time.Millisecond)
	assert.InDelta(t, want, float64(p.Duration(1)), float64(time.Microsecond))
	assert.InDelta(t, 2*(want-float64(100*time.Millisecond)), float64(p.Duration(2)-100*time.Millisecond), float64(time.Microsecond))
}

func TestExecuteOrder(t *testing.T) {
	p, err := Parse("order", "cr MK; cancel 1\nqcf 1; press HP 1; neutral 1", device.ClassicLayout())
	require.NoError(t, err)

	rec := device.NewRecorder()
	d := motion.NewDriver(rec, timing.NewClock(timing.NewScale(0.05)), nil)
	require.NoError(t, p.Execute(d))

	dx, dy := device.DownForward.Axes()
	fx, _ := device.Forward.Axes()
	_, downY := device.Down.Axes()
	assert.Equal(t, []device.Report{
		{Y: downY},
		{Y: downY, Pressed: device.ButtonB},
		{Y: downY},
		{Y: downY},
		{X: dx, Y: dy},
		{X: fx},
		{X: fx, Pressed: device.ButtonRB},
		{X: fx},
		{},
	}, rec.Commits())
}

func TestExecuteStopsOnCancel(t *testing.T) {
	p, err := Parse("long", "charge 4 600\nhold 6 2\npress MK\nneutral", device.ClassicLayout())
	require.NoError(t, err)

	var flag timing.Flag
	flag.Raise()
	rec := device.NewRecorder()
	err = p.Execute(motion.NewDriver(rec, timing.NewClock(timing.NewScale(1)), &flag))

	require.ErrorIs(t, err, timing.ErrCancelled)
	assert.Len(t, rec.Commits(), 1, "nothing runs after the cancelled wait")
}

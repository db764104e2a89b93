package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	cases := map[string]Direction{
		"5":  Neutral,
		"2":  Down,
		"6":  Forward,
		"23": DownForward,
		"62": DownForward,
		"3":  DownForward,
		"24": DownBack,
		"1":  DownBack,
		"8":  Up,
		"9":  UpForward,
		"df": DownForward,
		"ub": UpBack,
	}
	for in, want := range cases {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "46", "28", "13", "x", "60a"} {
		_, err := ParseDirection(bad)
		assert.Error(t, err, bad)
	}
}

func TestDirectionAxesAreExtremes(t *testing.T) {
	for d := Direction(1); d <= 9; d++ {
		x, y := d.Axes()
		for _, v := range []int16{x, y} {
			assert.Contains(t, []int16{StickMin, 0, StickMax}, v, d.String())
		}
	}

	x, y := DownForward.Axes()
	assert.Equal(t, StickMax, x)
	assert.Equal(t, StickMin, y)

	x, y = Neutral.Axes()
	assert.Zero(t, x)
	assert.Zero(t, y)
}

func TestDirectionMirror(t *testing.T) {
	assert.Equal(t, Back, Forward.Mirror())
	assert.Equal(t, DownBack, DownForward.Mirror())
	assert.Equal(t, Down, Down.Mirror())
	assert.Equal(t, Neutral, Neutral.Mirror())
	for d := Direction(1); d <= 9; d++ {
		assert.Equal(t, d, d.Mirror().Mirror())
	}
}

func TestLayoutResolve(t *testing.T) {
	l := ClassicLayout()

	b, err := l.Resolve("MK+HK")
	require.NoError(t, err)
	assert.Equal(t, ButtonB|ButtonRT, b)

	b, err = l.Resolve("hp")
	require.NoError(t, err)
	assert.Equal(t, ButtonRB, b)

	b, err = l.Resolve("LB")
	require.NoError(t, err)
	assert.Equal(t, ButtonLB, b)

	_, err = l.Resolve("ZZ")
	assert.Error(t, err)

	custom, err := NewLayout(map[string]string{"hp": "y", "mp": "RB"})
	require.NoError(t, err)
	assert.Equal(t, ButtonY, custom["HP"])
	assert.Equal(t, ButtonRB, custom["MP"])
	assert.Equal(t, ButtonX, custom["LP"])

	_, err = NewLayout(map[string]string{"HP": "start"})
	assert.Error(t, err)
}

func TestButtonsString(t *testing.T) {
	assert.Equal(t, "none", Buttons(0).String())
	assert.Equal(t, "X+RB", (ButtonRB | ButtonX).String())
	assert.Equal(t, 8, AllButtons.Count())
}

func TestRecorderPressIsIdempotent(t *testing.T) {
	once := NewRecorder()
	require.NoError(t, once.PressButtons(ButtonA))
	require.NoError(t, once.Commit())

	twice := NewRecorder()
	require.NoError(t, twice.PressButtons(ButtonA))
	require.NoError(t, twice.PressButtons(ButtonA))
	require.NoError(t, twice.Commit())

	assert.Equal(t, once.State(), twice.State())

	require.NoError(t, twice.ReleaseButtons(ButtonA))
	require.NoError(t, twice.Commit())
	assert.True(t, twice.State().IsNeutral(), "one release must undo any number of presses")
}

func TestRecorderCommitPublishesStaged(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.SetAxes(StickMax, 0))
	assert.True(t, r.State().IsNeutral())
	assert.Equal(t, StickMax, r.Staged().X)

	require.NoError(t, r.Commit())
	assert.Equal(t, Report{X: StickMax}, r.State())
	assert.Len(t, r.Ops(), 2)
	assert.Equal(t, []Report{{X: StickMax}}, r.Commits())
}

func TestReset(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.SetAxes(StickMin, StickMax))
	require.NoError(t, r.PressButtons(ButtonX|ButtonLT))
	require.NoError(t, r.Commit())

	require.NoError(t, Reset(r))
	assert.True(t, r.State().IsNeutral())
}

type brokenPort struct{ Recorder }

func (b *brokenPort) Commit() error { return errors.New("unplugged") }

func TestResetReportsFault(t *testing.T) {
	err := Reset(&brokenPort{})
	require.Error(t, err)

	var f *Fault
	require.True(t, errors.As(err, &f))
	assert.Equal(t, OpCommit, f.Op)
}

func TestWrapKeepsExistingFault(t *testing.T) {
	inner := Wrap(OpSetAxes, errors.New("gone"))
	assert.Same(t, inner, Wrap(OpCommit, inner))
	assert.Nil(t, Wrap(OpCommit, nil))
}

func TestLogPort(t *testing.T) {
	var lines []string
	p := &LogPort{logf: func(format string, args ...any) { lines = append(lines, format) }}

	require.NoError(t, p.PressButtons(ButtonB))
	require.NoError(t, p.Commit())
	require.NoError(t, p.Commit())
	assert.Len(t, lines, 1, "unchanged commits are not logged")
	assert.Equal(t, ButtonB, p.State().Pressed)
}

package ui

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ComboPad/control"
	"ComboPad/device"
	"ComboPad/i18n"
	"ComboPad/registry"
)

const catalogue = `
profiles:
  - name: Ken
    color: "#ffcc02"
    notes: Jinrai auto-follows on hit.
    combos:
      - slot: F1
        label: cr.MK xx Hadouken
        script: cr MK; cancel 20; qcf; press HP; neutral
      - slot: ADV
        label: long one
        script: st MP; link 45; dp; od LP+HP; neutral
  - name: Ryu
    combos:
      - slot: F1
        label: cr.MK xx Hadouken
        script: cr MK; cancel 20; qcf; press HP; neutral
`

type fakeApp struct {
	reg  *registry.Registry
	cmds []control.Command
	keys []string
}

func (f *fakeApp) Registry() *registry.Registry         { return f.reg }
func (f *fakeApp) EnqueueCommand(cmd control.Command) { f.cmds = append(f.cmds, cmd) }
func (f *fakeApp) HandleKey(name string)              { f.keys = append(f.keys, name) }

func (f *fakeApp) KeyHint(cmd control.Command) string {
	switch {
	case cmd.Type == control.CmdCancel:
		return "Escape"
	case cmd.Type == control.CmdFire && cmd.Slot == registry.AdvancedSlot:
		return "F8"
	}
	return ""
}

func newWindow(t *testing.T) (*Window, *fakeApp) {
	t.Helper()
	i18n.SetLang("en")
	reg, err := registry.Load([]byte(catalogue), device.ClassicLayout())
	require.NoError(t, err)
	fa := &fakeApp{reg: reg}
	w := CreateMainWindow(fa, test.NewTempApp(t), NewCustomTheme(), 1.0)
	p, ok := reg.Profile("Ken")
	require.True(t, ok)
	w.ShowProfile(p)
	return w, fa
}

func TestWindowFollowsRunLifecycle(t *testing.T) {
	w, _ := newWindow(t)

	w.OnStarted("Ken", "F1")
	w.OnProgress("F1")
	assert.Equal(t, "F1", w.ActiveSlot())
	assert.Equal(t, "Running Ken F1", w.Status())
	assert.False(t, w.cancelBtn.Disabled())

	w.OnCompleted()
	w.OnProgress("")
	w.OnIdle()
	assert.Empty(t, w.ActiveSlot())
	assert.Equal(t, "Completed", w.Status())
	assert.True(t, w.cancelBtn.Disabled())

	w.OnFailed("device: Commit: gone")
	assert.Equal(t, "Failed: device: Commit: gone", w.Status())
}

func TestRowTapFiresSlot(t *testing.T) {
	w, fa := newWindow(t)

	test.Tap(w.rows["F1"].tappable)
	test.Tap(w.advButton)
	test.Tap(w.profiles["Ryu"])

	require.Len(t, fa.cmds, 3)
	assert.Equal(t, control.Fire("F1"), fa.cmds[0])
	assert.Equal(t, control.Fire(registry.AdvancedSlot), fa.cmds[1])
	assert.Equal(t, control.Command{Type: control.CmdSelect, Profile: "Ryu"}, fa.cmds[2])
}

func TestShowProfileRebuildsRows(t *testing.T) {
	w, fa := newWindow(t)

	w.OnProgress("F1")
	p, _ := fa.reg.Profile("Ryu")
	w.ShowProfile(p)

	assert.Len(t, w.rows, 1)
	assert.True(t, w.advButton.Disabled())
	assert.Equal(t, "Ryu", w.title.Text)
	// the running slot stays highlighted across a profile switch
	assert.Equal(t, "F1", w.ActiveSlot())
}

func TestLateIdleKeepsCancelEnabled(t *testing.T) {
	w, _ := newWindow(t)

	w.OnStarted("Ken", "F1")
	w.OnStarted("Ken", "F2")
	w.OnIdle()
	assert.False(t, w.cancelBtn.Disabled(), "the second run is still going")

	w.OnIdle()
	assert.True(t, w.cancelBtn.Disabled())

	w.OnIdle()
	assert.True(t, w.cancelBtn.Disabled())
}

func TestActionButtonsShowKeys(t *testing.T) {
	w, _ := newWindow(t)

	assert.Equal(t, "Advanced (F8)", w.advButton.Text)
	assert.Equal(t, "Cancel (Escape)", w.cancelBtn.Text)
}

func TestRowsFollowSlotOrder(t *testing.T) {
	w, _ := newWindow(t)

	require.Len(t, w.rowsBox.Objects, 2)
	assert.Same(t, w.rows["F1"].CanvasObject(), w.rowsBox.Objects[0])
	assert.Same(t, w.rows["ADV"].CanvasObject(), w.rowsBox.Objects[1])
}

func TestKeysReachTheApp(t *testing.T) {
	w, fa := newWindow(t)

	w.Window().Canvas().OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyF6})
	w.Window().Canvas().OnTypedKey()(&fyne.KeyEvent{Name: fyne.KeyEscape})
	assert.Equal(t, []string{"F6", "Escape"}, fa.keys)
}

func TestSetScaleDoesNotSendCommand(t *testing.T) {
	w, fa := newWindow(t)

	w.SetScale(2.5)
	assert.Equal(t, 2.5, w.slider.Value)
	assert.Equal(t, "2.50x", w.scaleLabel.Text)
	assert.Empty(t, fa.cmds)

	w.slider.OnChangeEnded(1.5)
	require.Len(t, fa.cmds, 1)
	assert.Equal(t, control.CmdSetScale, fa.cmds[0].Type)
}

func TestLogViewKeepsTail(t *testing.T) {
	v := NewLogView(3)
	for i := 0; i < 5; i++ {
		v.Append("line %d", i)
	}
	lines := v.Lines()
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "line 2")
	assert.Contains(t, lines[2], "line 4")
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xcc, B: 0x02, A: 0xff}, ParseColor("#ffcc02", AccentColor))
	assert.Equal(t, AccentColor, ParseColor("nope", AccentColor))
	assert.Equal(t, AccentColor, ParseColor("#12345", AccentColor))
	assert.Equal(t, BackgroundColor, NewCustomTheme().Color(theme.ColorNameBackground, theme.VariantLight))
}

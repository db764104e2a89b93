package ui

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Dimensions
const (
	WindowWidth   = 560
	WindowHeight  = 640
	RowHeight     = 30
	CornerRadius  = 6.0
	TitleSize     = 30
	SlotTextSize  = 14
	MaxLogLines   = 200
	ScaleStep     = 0.05
	ProfileColumn = 5
)

// TappableContainer makes any canvas object tappable.
type TappableContainer struct {
	widget.BaseWidget
	Content           fyne.CanvasObject
	OnTappedPrimary   func()
	OnTappedSecondary func(e *fyne.PointEvent)
}

func NewTappableContainer(c fyne.CanvasObject, onP func(), onS func(e *fyne.PointEvent)) *TappableContainer {
	t := &TappableContainer{
		Content:           c,
		OnTappedPrimary:   onP,
		OnTappedSecondary: onS,
	}
	t.ExtendBaseWidget(t)
	return t
}

func (t *TappableContainer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(t.Content)
}

func (t *TappableContainer) Tapped(_ *fyne.PointEvent) {
	if t.OnTappedPrimary != nil {
		t.OnTappedPrimary()
	}
}

func (t *TappableContainer) TappedSecondary(e *fyne.PointEvent) {
	if t.OnTappedSecondary != nil {
		t.OnTappedSecondary(e)
	}
}

// ComboRow shows one slot of the current profile. Tapping it fires the slot.
type ComboRow struct {
	Slot string

	background *canvas.Rectangle
	slotText   *canvas.Text
	labelText  *canvas.Text
	tappable   *TappableContainer
	odd        bool
	active     bool
}

// NewComboRow builds the row for slot. odd rows get a slightly lighter fill.
func NewComboRow(slot, label string, odd bool, onFire func(slot string)) *ComboRow {
	r := &ComboRow{Slot: slot, odd: odd}

	r.background = canvas.NewRectangle(rowColor(odd))
	r.background.CornerRadius = CornerRadius
	r.background.SetMinSize(fyne.NewSize(0, RowHeight))

	r.slotText = canvas.NewText(slot, AccentColor)
	r.slotText.TextStyle.Bold = true
	r.slotText.TextSize = SlotTextSize
	slotBox := canvas.NewRectangle(color.Transparent)
	slotBox.SetMinSize(fyne.NewSize(48, 0))

	r.labelText = canvas.NewText(label, color.NRGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff})
	r.labelText.TextSize = SlotTextSize

	content := container.New(layout.NewHBoxLayout(),
		container.NewStack(slotBox, container.NewCenter(r.slotText)),
		container.NewCenter(r.labelText),
		layout.NewSpacer(),
	)
	r.tappable = NewTappableContainer(container.NewStack(r.background, container.NewPadded(content)), func() {
		onFire(slot)
	}, nil)
	return r
}

func rowColor(odd bool) color.Color {
	if odd {
		return color.NRGBA{R: 0x0e, G: 0x0e, B: 0x1c, A: 0xff}
	}
	return PanelColor
}

// SetActive highlights the row while its combo runs.
func (r *ComboRow) SetActive(on bool) {
	if r.active == on {
		return
	}
	r.active = on
	if on {
		r.background.FillColor = ActiveRowColor
		r.labelText.Color = LogTextColor
	} else {
		r.background.FillColor = rowColor(r.odd)
		r.labelText.Color = color.NRGBA{R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff}
	}
	r.background.Refresh()
	r.labelText.Refresh()
}

// Active reports whether the row is highlighted.
func (r *ComboRow) Active() bool {
	return r.active
}

// CanvasObject returns the widget to place in a container.
func (r *ComboRow) CanvasObject() fyne.CanvasObject {
	return r.tappable
}

// LogView is a bounded, scrolling list of timestamped lines.
type LogView struct {
	lines  []string
	max    int
	label  *widget.Label
	scroll *container.Scroll
	now    func() time.Time
}

// NewLogView keeps the last max lines.
func NewLogView(max int) *LogView {
	v := &LogView{max: max, now: time.Now}
	v.label = widget.NewLabel("")
	v.label.TextStyle.Monospace = true
	v.label.Wrapping = fyne.TextWrapWord
	v.scroll = container.NewVScroll(v.label)
	v.scroll.SetMinSize(fyne.NewSize(0, 110))
	return v
}

// Append adds a line and scrolls to it.
func (v *LogView) Append(format string, args ...any) {
	line := fmt.Sprintf("[%s] %s", v.now().Format("15:04:05"), fmt.Sprintf(format, args...))
	v.lines = append(v.lines, line)
	if len(v.lines) > v.max {
		v.lines = append([]string(nil), v.lines[len(v.lines)-v.max:]...)
	}
	v.label.SetText(strings.Join(v.lines, "\n"))
	v.scroll.ScrollToBottom()
}

// Lines returns the visible lines.
func (v *LogView) Lines() []string {
	return append([]string(nil), v.lines...)
}

func (v *LogView) CanvasObject() fyne.CanvasObject {
	return v.scroll
}

// ParseColor reads "#rrggbb", falling back to def.
func ParseColor(s string, def color.Color) color.Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return def
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return def
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func withAlpha(c color.Color, alpha uint8) color.NRGBA {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: alpha}
}

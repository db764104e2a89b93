// Package ui builds the fyne window: profile selector, combo rows, notes,
// status line, scale slider and log. The window is an engine observer and
// must only be called on the fyne goroutine; wrap it with engine.Marshal and
// fyne.Do.
package ui

import (
	"fmt"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"ComboPad/config"
	"ComboPad/control"
	"ComboPad/i18n"
	"ComboPad/registry"
)

// App is what the window needs from the application.
type App interface {
	Registry() *registry.Registry
	EnqueueCommand(cmd control.Command)
	HandleKey(name string)
	KeyHint(cmd control.Command) string
}

// Window is the main window.
type Window struct {
	app   App
	win   fyne.Window
	theme *CustomTheme

	title      *canvas.Text
	accentBar  *canvas.Rectangle
	profiles   map[string]*widget.Button
	rowsBox    *fyne.Container
	rows       map[string]*ComboRow
	notes      *widget.Label
	status     *widget.Label
	advButton  *widget.Button
	cancelBtn  *widget.Button
	slider     *widget.Slider
	scaleLabel *widget.Label
	log        *LogView

	profile string
	running string
	active  int // runs started and not yet idle
}

// CreateMainWindow builds the window for every profile in the registry.
func CreateMainWindow(a App, fyneApp fyne.App, th *CustomTheme, scale float64) *Window {
	title := fyneApp.Metadata().Name
	if title == "" {
		title = "ComboPad"
	}
	w := &Window{
		app:      a,
		win:      fyneApp.NewWindow(title),
		theme:    th,
		profiles: make(map[string]*widget.Button),
		rows:     make(map[string]*ComboRow),
		log:      NewLogView(MaxLogLines),
	}

	w.title = canvas.NewText("", AccentColor)
	w.title.TextSize = TitleSize
	w.title.TextStyle.Bold = true
	w.accentBar = canvas.NewRectangle(AccentColor)
	w.accentBar.SetMinSize(fyne.NewSize(0, 2))

	selector := container.NewGridWithColumns(ProfileColumn)
	for _, name := range a.Registry().Profiles() {
		name := name
		b := widget.NewButton(name, func() {
			a.EnqueueCommand(control.Command{Type: control.CmdSelect, Profile: name})
			w.win.Canvas().Focus(nil)
		})
		w.profiles[name] = b
		selector.Add(b)
	}

	w.rowsBox = container.NewVBox()
	w.notes = widget.NewLabel("")
	w.notes.Wrapping = fyne.TextWrapWord

	w.advButton = widget.NewButton(i18n.T("Advanced"), func() {
		a.EnqueueCommand(control.Fire(registry.AdvancedSlot))
	})
	w.cancelBtn = widget.NewButton(i18n.T("Cancel"), func() {
		a.EnqueueCommand(control.Command{Type: control.CmdCancel})
	})
	w.cancelBtn.Disable()
	w.refreshHints()

	w.scaleLabel = widget.NewLabel("")
	w.slider = widget.NewSlider(config.MinScale, config.MaxScale)
	w.slider.Step = ScaleStep
	w.SetScale(scale)

	w.status = widget.NewLabel(i18n.T("Ready"))

	header := container.NewVBox(w.title, w.accentBar, selector)
	actions := container.New(layout.NewHBoxLayout(), w.advButton, w.cancelBtn, layout.NewSpacer(),
		widget.NewLabel(i18n.T("Scale")), container.NewGridWrap(fyne.NewSize(160, 36), w.slider), w.scaleLabel)
	footer := container.NewVBox(actions, w.status, widget.NewLabel(i18n.T("Log")), w.log.CanvasObject())

	w.win.SetContent(container.NewBorder(header, footer, nil, nil,
		container.NewVBox(w.rowsBox, w.notes)))
	w.win.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) { a.HandleKey(string(ev.Name)) })
	w.win.Resize(fyne.NewSize(WindowWidth, WindowHeight))
	return w
}

// Window returns the fyne window.
func (w *Window) Window() fyne.Window {
	return w.win
}

// ShowProfile switches the rows, notes and accent colour to p.
func (w *Window) ShowProfile(p registry.Profile) {
	w.profile = p.Name
	accent := ParseColor(p.Color, AccentColor)

	w.title.Text = p.Name
	w.title.Color = accent
	w.title.Refresh()
	w.accentBar.FillColor = withAlpha(accent, 0xc0)
	w.accentBar.Refresh()
	if w.theme != nil {
		w.theme.SetAccent(accent)
	}

	for name, b := range w.profiles {
		if name == p.Name {
			b.Importance = widget.HighImportance
		} else {
			b.Importance = widget.MediumImportance
		}
		b.Refresh()
	}

	labels := make(map[string]string, len(p.Combos))
	for _, c := range p.Combos {
		labels[c.Slot] = c.Label
	}
	slots, err := w.app.Registry().ListSlots(p.Name)
	if err != nil {
		w.Logf("%v", err)
	}

	w.rowsBox.RemoveAll()
	w.rows = make(map[string]*ComboRow, len(slots))
	hasAdvanced := false
	for i, slot := range slots {
		if slot == registry.AdvancedSlot {
			hasAdvanced = true
		}
		row := NewComboRow(slot, labels[slot], i%2 == 1, func(slot string) {
			w.app.EnqueueCommand(control.Fire(slot))
		})
		w.rows[slot] = row
		w.rowsBox.Add(row.CanvasObject())
	}
	w.rowsBox.Refresh()
	if hasAdvanced {
		w.advButton.Enable()
	} else {
		w.advButton.Disable()
	}

	w.refreshHints()
	w.notes.SetText(p.Notes)
	w.highlight(w.running)
	w.log.Append("%s", i18n.Tf("Profile %s", p.Name))
}

// refreshHints labels the action buttons with their bound keys.
func (w *Window) refreshHints() {
	w.advButton.SetText(withHint(i18n.T("Advanced"), w.app.KeyHint(control.Fire(registry.AdvancedSlot))))
	w.cancelBtn.SetText(withHint(i18n.T("Cancel"), w.app.KeyHint(control.Command{Type: control.CmdCancel})))
}

func withHint(label, key string) string {
	if key == "" {
		return label
	}
	return fmt.Sprintf("%s (%s)", label, key)
}

// SetScale moves the slider without sending a command.
func (w *Window) SetScale(f float64) {
	w.slider.OnChangeEnded, w.slider.OnChanged = nil, nil
	w.slider.SetValue(config.ClampScale(f))
	w.scaleLabel.SetText(formatScale(f))
	w.slider.OnChanged = func(f float64) { w.scaleLabel.SetText(formatScale(f)) }
	w.slider.OnChangeEnded = func(f float64) {
		w.app.EnqueueCommand(control.Command{Type: control.CmdSetScale, Scale: f})
	}
}

// Logf appends a line to the log and shows it in the status line.
func (w *Window) Logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	w.status.SetText(msg)
	w.log.Append("%s", msg)
}

// Status returns the status line text.
func (w *Window) Status() string {
	return w.status.Text
}

// ActiveSlot returns the highlighted slot, or "".
func (w *Window) ActiveSlot() string {
	for slot, r := range w.rows {
		if r.Active() {
			return slot
		}
	}
	return ""
}

func (w *Window) highlight(slot string) {
	for s, r := range w.rows {
		r.SetActive(slot != "" && s == slot)
	}
}

func (w *Window) OnStarted(profile, slot string) {
	w.active++
	w.cancelBtn.Enable()
	w.Logf("%s", i18n.Tf("Running %s %s", profile, slot))
}

func (w *Window) OnProgress(slot string) {
	w.running = slot
	w.highlight(slot)
}

func (w *Window) OnCompleted() { w.Logf("%s", i18n.T("Completed")) }

func (w *Window) OnCancelled() { w.Logf("%s", i18n.T("Cancelled")) }

func (w *Window) OnFailed(reason string) { w.Logf("%s", i18n.Tf("Failed: %s", reason)) }

// OnIdle may arrive after the next run's OnStarted when a new request races
// the end of a run, so Cancel stays enabled until every run has gone idle.
func (w *Window) OnIdle() {
	if w.active > 0 {
		w.active--
	}
	if w.active == 0 {
		w.cancelBtn.Disable()
	}
}

func formatScale(f float64) string {
	return fmt.Sprintf("%.2fx", math.Round(f*100)/100)
}

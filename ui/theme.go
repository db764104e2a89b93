package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// Palette of the main window.
var (
	BackgroundColor = color.NRGBA{R: 0x09, G: 0x09, B: 0x0f, A: 0xff}
	PanelColor      = color.NRGBA{R: 0x11, G: 0x11, B: 0x18, A: 0xff}
	AccentColor     = color.NRGBA{R: 0xe8, G: 0x25, B: 0x1a, A: 0xff}
	ActiveRowColor  = color.NRGBA{R: 0x1a, G: 0x2a, B: 0x1a, A: 0xff}
	LogTextColor    = color.NRGBA{R: 0x00, G: 0xff, B: 0x88, A: 0xff}
)

// CustomTheme is the dark theme with the current profile's accent colour as
// the primary colour.
type CustomTheme struct {
	fyne.Theme
	accent color.Color
}

// NewCustomTheme creates the theme with the default accent.
func NewCustomTheme() *CustomTheme {
	return &CustomTheme{Theme: theme.DefaultTheme(), accent: AccentColor}
}

// SetAccent changes the primary colour. Callers refresh the window.
func (t *CustomTheme) SetAccent(c color.Color) {
	t.accent = c
}

// Color returns the palette colour for name, always in the dark variant.
func (t *CustomTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return BackgroundColor
	case theme.ColorNameInputBackground, theme.ColorNameMenuBackground:
		return PanelColor
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return t.accent
	}
	return t.Theme.Color(name, theme.VariantDark)
}

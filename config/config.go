// Package config loads and saves the user settings file and watches it for
// changes made while the application runs.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"ComboPad/device"
)

// EnvPath overrides the settings file location.
const EnvPath = "COMBOPAD_CONFIG"

// Scale slider bounds.
const (
	MinScale = 0.5
	MaxScale = 3.0
)

// Device names.
const (
	DeviceUinput = "uinput"
	DeviceLog    = "log"
)

// Facing values.
const (
	FacingRight = "right"
	FacingLeft  = "left"
)

// Audio controls the lifecycle cues.
type Audio struct {
	Enabled bool `toml:"enabled"`
	// Cues maps an event (started, completed, cancelled, failed) to an Ogg
	// Vorbis file played instead of the built-in tone.
	Cues map[string]string `toml:"cues,omitempty"`
}

// Settings is the content of settings.toml.
type Settings struct {
	Scale         float64           `toml:"scale"`
	Facing        string            `toml:"facing"`
	Device        string            `toml:"device"`
	MaxRunSeconds float64           `toml:"max_run_seconds"`
	Combos        string            `toml:"combos,omitempty"`
	Layout        map[string]string `toml:"layout"`
	Keys          map[string]string `toml:"keys"`
	Audio         Audio             `toml:"audio"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		Scale:  1.0,
		Facing: FacingRight,
		Device: DeviceUinput,
		Layout: map[string]string{
			"LP":    "X",
			"MP":    "Y",
			"HP":    "RB",
			"LK":    "A",
			"MK":    "B",
			"HK":    "RT",
			"PARRY": "LT",
		},
		Keys: map[string]string{
			"F1":     "fire F1",
			"F2":     "fire F2",
			"F3":     "fire F3",
			"F4":     "fire F4",
			"F5":     "fire F5",
			"F6":     "next",
			"F7":     "prev",
			"F8":     "fire ADV",
			"Escape": "cancel",
		},
		Audio: Audio{Enabled: true},
	}
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	if s.Scale <= 0 || math.IsNaN(s.Scale) || math.IsInf(s.Scale, 0) {
		return fmt.Errorf("config: scale must be positive, got %v", s.Scale)
	}
	switch s.Facing {
	case FacingRight, FacingLeft:
	default:
		return fmt.Errorf("config: facing must be %q or %q, got %q", FacingRight, FacingLeft, s.Facing)
	}
	switch s.Device {
	case DeviceUinput, DeviceLog:
	default:
		return fmt.Errorf("config: unknown device %q", s.Device)
	}
	if s.MaxRunSeconds < 0 {
		return fmt.Errorf("config: max_run_seconds must not be negative")
	}
	if _, err := s.ButtonLayout(); err != nil {
		return fmt.Errorf("config: layout: %w", err)
	}
	return nil
}

// Mirrored reports whether the character faces left.
func (s Settings) Mirrored() bool {
	return s.Facing == FacingLeft
}

// Budget is the execution budget, 0 for none.
func (s Settings) Budget() time.Duration {
	return time.Duration(s.MaxRunSeconds * float64(time.Second))
}

// ButtonLayout converts the [layout] table.
func (s Settings) ButtonLayout() (device.Layout, error) {
	if len(s.Layout) == 0 {
		return device.ClassicLayout(), nil
	}
	return device.NewLayout(s.Layout)
}

// ClampScale limits f to the slider range.
func ClampScale(f float64) float64 {
	return math.Min(MaxScale, math.Max(MinScale, f))
}

// Path returns the settings file location.
func Path() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvPath)); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return filepath.Join(dir, "combopad", "settings.toml"), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
// A [keys] table replaces the default bindings as a whole, so any key it
// leaves out is unbound. [layout] entries are applied over the classic
// layout.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("config: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (Settings, error) {
	s := Default()
	defaultKeys := s.Keys
	s.Keys = nil
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return Default(), fmt.Errorf("config: %w", err)
	}
	if !md.IsDefined("keys") {
		s.Keys = defaultKeys
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Default(), fmt.Errorf("config: unknown key %s", undecoded[0])
	}
	if err := s.Validate(); err != nil {
		return Default(), err
	}
	return s, nil
}

// Save writes s to path, creating the directory if needed. The file is
// replaced atomically so a watcher never reads half of it.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.toml")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"embed"
	"io"
	"log"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"ComboPad/config"
	"ComboPad/cue"
	"ComboPad/device"
	"ComboPad/engine"
	"ComboPad/i18n"
	"ComboPad/registry"
	"ComboPad/timing"
	"ComboPad/ui"
)

//go:embed assets/*
var content embed.FS

const padName = "ComboPad Virtual Pad"

// osReader reads catalogue files from disk.
type osReader struct{}

func (osReader) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func main() {
	settingsPath, err := config.Path()
	if err != nil {
		log.Printf("Settings will not be saved. %v", err)
	}
	settings, err := config.Load(settingsPath)
	if err != nil {
		log.Printf("Using default settings. %v", err)
	}

	layout, err := settings.ButtonLayout()
	if err != nil {
		log.Fatalf("Invalid button layout: %v", err)
	}
	reg, err := loadRegistry(settings, layout)
	if err != nil {
		log.Fatalf("Failed to load combos: %v", err)
	}
	log.Printf("Loaded %d profiles.", reg.Len())

	port, dryRun := openPort(settings)
	player := openCues(settings)

	fyneApp := app.New()
	th := ui.NewCustomTheme()
	fyneApp.Settings().SetTheme(th)

	a, err := NewAppManager(reg, settings, settingsPath)
	if err != nil {
		log.Fatalf("Invalid key bindings: %v", err)
	}
	w := ui.CreateMainWindow(a, fyneApp, th, settings.Scale)

	// Log and audio observers run on the mailbox goroutine, the window on the
	// fyne goroutine.
	mailbox := engine.NewMailbox(64)
	background := engine.Observers{LogObserver{}}
	if player != nil {
		background = append(background, player)
	}
	eng, err := engine.New(engine.Config{
		Port:   port,
		Scale:  timing.NewScale(settings.Scale),
		Budget: settings.Budget(),
		Observer: engine.Observers{
			engine.Marshal(mailbox.Post, background),
			engine.Marshal(fyne.Do, w),
		},
	})
	if err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}
	eng.SetMirrored(settings.Mirrored())
	a.Start(eng, w, fyne.Do)
	if dryRun {
		w.Logf("%s", i18n.T("Dry run: no virtual gamepad"))
	}

	var watcher *config.Watcher
	if settingsPath != "" {
		watcher, err = config.Watch(settingsPath, func(s config.Settings) {
			a.ApplySettings(s)
			if player != nil {
				player.SetEnabled(s.Audio.Enabled)
			}
		})
		if err != nil {
			log.Printf("Settings will not reload. %v", err)
		}
	}

	w.Window().SetOnClosed(func() {
		if watcher != nil {
			watcher.Close()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.Shutdown(ctx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
		mailbox.Close()
		if c, ok := port.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.Printf("Failed to close device. %v", err)
			}
		}
	})

	w.Window().ShowAndRun()
}

func loadRegistry(settings config.Settings, layout device.Layout) (*registry.Registry, error) {
	if settings.Combos != "" {
		log.Printf("Loading combos from %s", settings.Combos)
		return registry.LoadFile(osReader{}, settings.Combos, layout)
	}
	return registry.LoadFile(content, registry.DefaultCatalogue, layout)
}

// openPort opens the virtual gamepad, falling back to the logging port when
// uinput is unavailable or the settings ask for a dry run.
func openPort(settings config.Settings) (device.Port, bool) {
	if settings.Device == config.DeviceLog {
		return device.NewLogPort(), true
	}
	pad, err := device.OpenGamepad(device.DefaultUinputPath, padName)
	if err != nil {
		log.Printf("Virtual gamepad unavailable, logging inputs instead. %v", err)
		return device.NewLogPort(), true
	}
	log.Printf("Opened virtual gamepad %q", padName)
	return pad, false
}

func openCues(settings config.Settings) *cue.Player {
	player, err := cue.New()
	if err != nil {
		log.Printf("Audio disabled: %v", err)
		return nil
	}
	player.SetEnabled(settings.Audio.Enabled)
	for name, path := range settings.Audio.Cues {
		f, err := os.Open(path)
		if err != nil {
			log.Printf("Failed to open cue %s: %v", path, err)
			continue
		}
		if err := player.Load(cue.Event(name), f); err != nil {
			log.Printf("Failed to load cue %s: %v", path, err)
			continue
		}
		log.Printf("Loaded cue %s from %s", name, path)
	}
	return player
}

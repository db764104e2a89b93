// Package main contains the application wiring and the AppManager which
// coordinates the engine, the combo registry, the settings file and the UI.
//
// Maintenance notes / tips:
//   - Concurrency model: every trigger (key, button, slider) becomes a
//     control.Command on `cmdCh`, handled one at a time by `commandLoop`.
//     The loop owns the current profile index, so nothing else may touch it.
//   - The loop never waits for a combo. engine.RequestRun returns at once
//     and a request made during a run is dropped by the engine, not queued.
//   - `cmdCh` is buffered. EnqueueCommand waits briefly for room and then
//     drops the command so a stuck loop can never freeze the UI.
//   - View updates go through `post` (fyne.Do in production) because the
//     loop runs on its own goroutine.
//   - Settings reloads arrive on the watcher goroutine. They only touch the
//     engine's atomics and `bindings`, which is guarded by `mu`.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"ComboPad/config"
	"ComboPad/control"
	"ComboPad/engine"
	"ComboPad/i18n"
	"ComboPad/registry"
)

// enqueueTimeout bounds how long a trigger may wait for room in cmdCh.
const enqueueTimeout = 150 * time.Millisecond

// view is what the loop needs from the window.
type view interface {
	ShowProfile(p registry.Profile)
	SetScale(f float64)
	Logf(format string, args ...any)
}

// AppManager is the main application struct, holding all state.
type AppManager struct {
	reg    *registry.Registry
	engine *engine.Engine
	view   view
	post   func(func())

	mu           sync.Mutex
	settings     config.Settings
	settingsPath string
	bindings     control.Bindings

	current int // commandLoop only

	cmdCh     chan control.Command
	cmdCtx    context.Context
	cmdCancel context.CancelFunc
	loopDone  chan struct{}
}

// NewAppManager creates a new application manager. Start must be called
// before commands are processed.
func NewAppManager(reg *registry.Registry, settings config.Settings, settingsPath string) (*AppManager, error) {
	bindings, err := control.NewBindings(settings.Keys)
	if err != nil {
		return nil, err
	}
	a := &AppManager{
		reg:          reg,
		settings:     settings,
		settingsPath: settingsPath,
		bindings:     bindings,
		cmdCh:        make(chan control.Command, 64),
		loopDone:     make(chan struct{}),
	}
	a.cmdCtx, a.cmdCancel = context.WithCancel(context.Background())
	return a, nil
}

// Start attaches the engine and the view and starts the command loop.
func (a *AppManager) Start(eng *engine.Engine, v view, post func(func())) {
	a.engine = eng
	a.view = v
	a.post = post
	a.showCurrent()
	go a.commandLoop()
}

// Registry returns the combo catalogue.
func (a *AppManager) Registry() *registry.Registry {
	return a.reg
}

// EnqueueCommand posts a command to the internal command loop.
func (a *AppManager) EnqueueCommand(cmd control.Command) {
	select {
	case a.cmdCh <- cmd:
	case <-time.After(enqueueTimeout):
		log.Printf("EnqueueCommand timeout: dropping %s", cmd)
	}
}

// Submit enqueues cmd and waits for the loop's reply.
func (a *AppManager) Submit(cmd control.Command, timeout time.Duration) error {
	cmd.Reply = make(chan error, 1)
	a.EnqueueCommand(cmd)
	select {
	case err := <-cmd.Reply:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("%s: no reply after %v", cmd, timeout)
	}
}

// HandleKey maps a key name through the bindings.
func (a *AppManager) HandleKey(name string) {
	a.mu.Lock()
	cmd, ok := a.bindings.Lookup(name)
	a.mu.Unlock()
	if ok {
		a.EnqueueCommand(cmd)
	}
}

// KeyHint returns the key bound to cmd, or "".
func (a *AppManager) KeyHint(cmd control.Command) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	key, _ := a.bindings.KeyFor(cmd)
	return key
}

// CurrentProfile returns the selected profile. Only safe on the loop.
func (a *AppManager) CurrentProfile() string {
	return a.reg.Profiles()[a.current]
}

func (a *AppManager) commandLoop() {
	defer close(a.loopDone)
	for {
		select {
		case <-a.cmdCtx.Done():
			return
		case cmd := <-a.cmdCh:
			err := a.handle(cmd)
			if err != nil {
				log.Printf("Command %s failed: %v", cmd, err)
			}
			if cmd.Reply != nil {
				select {
				case cmd.Reply <- err:
				default:
				}
			}
		}
	}
}

func (a *AppManager) handle(cmd control.Command) error {
	switch cmd.Type {
	case control.CmdFire:
		profile := cmd.Profile
		if profile == "" {
			profile = a.CurrentProfile()
		}
		started, err := a.reg.Fire(a.engine, profile, cmd.Slot)
		if err != nil {
			a.notify("%v", err)
			return err
		}
		if !started {
			log.Printf("Ignoring %s %s: a combo is already running", profile, cmd.Slot)
			a.notify("%s", i18n.T("Busy, request ignored"))
		}
	case control.CmdCancel:
		a.engine.RequestCancel()
	case control.CmdNext:
		a.cycle(1)
	case control.CmdPrev:
		a.cycle(-1)
	case control.CmdSelect:
		for i, name := range a.reg.Profiles() {
			if name == cmd.Profile {
				a.current = i
				a.showCurrent()
				return nil
			}
		}
		return fmt.Errorf("profile %q: %w", cmd.Profile, registry.ErrNotFound)
	case control.CmdSetScale:
		return a.setScale(cmd.Scale)
	default:
		return fmt.Errorf("unknown command %s", cmd.Type)
	}
	return nil
}

func (a *AppManager) cycle(step int) {
	n := a.reg.Len()
	a.current = ((a.current+step)%n + n) % n
	a.showCurrent()
}

func (a *AppManager) showCurrent() {
	p, _ := a.reg.Profile(a.CurrentProfile())
	log.Printf("Current profile: %s", p.Name)
	if a.view != nil {
		a.post(func() { a.view.ShowProfile(p) })
	}
}

func (a *AppManager) notify(format string, args ...any) {
	if a.view != nil {
		a.post(func() { a.view.Logf(format, args...) })
	}
}

func (a *AppManager) setScale(f float64) error {
	f = config.ClampScale(f)
	if err := a.engine.Scale().Store(f); err != nil {
		return err
	}
	a.mu.Lock()
	a.settings.Scale = f
	s, path := a.settings, a.settingsPath
	a.mu.Unlock()

	log.Printf("Scale set to %.2f", f)
	if path == "" {
		return nil
	}
	return config.Save(path, s)
}

// ApplySettings adopts a reloaded settings file. Layout and catalogue
// changes need a restart because programs are compiled at startup.
func (a *AppManager) ApplySettings(s config.Settings) {
	bindings, err := control.NewBindings(s.Keys)
	if err != nil {
		log.Printf("Keeping old key bindings. %v", err)
	}

	a.mu.Lock()
	if bindings != nil {
		a.bindings = bindings
	}
	a.settings = s
	a.mu.Unlock()

	if err := a.engine.Scale().Store(s.Scale); err != nil {
		log.Printf("Ignoring scale %v. %v", s.Scale, err)
	}
	a.engine.SetMirrored(s.Mirrored())
	a.engine.SetBudget(s.Budget())
	if a.view != nil {
		a.post(func() { a.view.SetScale(s.Scale) })
	}
}

// Shutdown stops the loop and lets any running combo cancel and clean up.
func (a *AppManager) Shutdown(ctx context.Context) error {
	a.cmdCancel()
	if a.engine == nil {
		return nil
	}
	<-a.loopDone
	if err := a.engine.Close(ctx); err != nil && !errors.Is(err, engine.ErrClosed) {
		return err
	}
	return nil
}

// LogObserver writes the run lifecycle to the standard logger.
type LogObserver struct{}

func (LogObserver) OnStarted(profile, slot string) { log.Printf("Started %s %s", profile, slot) }
func (LogObserver) OnProgress(slot string)         {}
func (LogObserver) OnCompleted()                   { log.Printf("Completed") }
func (LogObserver) OnCancelled()                   { log.Printf("Cancelled") }
func (LogObserver) OnFailed(reason string)         { log.Printf("Failed: %s", reason) }
func (LogObserver) OnIdle()                        { log.Printf("Idle") }

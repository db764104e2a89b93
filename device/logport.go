package device

import (
	"log"
	"sync"
)

// LogPort is a dry-run Port that logs every commit instead of driving a
// controller. It is used on machines without a virtual gamepad driver.
type LogPort struct {
	mu        sync.Mutex
	staged    Report
	committed Report
	logf      func(format string, args ...any)
}

// NewLogPort creates a dry-run port writing to the standard logger.
func NewLogPort() *LogPort {
	return &LogPort{logf: log.Printf}
}

// SetAxes implements Port.
func (p *LogPort) SetAxes(x, y int16) error {
	p.mu.Lock()
	p.staged.X, p.staged.Y = x, y
	p.mu.Unlock()
	return nil
}

// PressButtons implements Port.
func (p *LogPort) PressButtons(b Buttons) error {
	p.mu.Lock()
	p.staged.Pressed |= b
	p.mu.Unlock()
	return nil
}

// ReleaseButtons implements Port.
func (p *LogPort) ReleaseButtons(b Buttons) error {
	p.mu.Lock()
	p.staged.Pressed &^= b
	p.mu.Unlock()
	return nil
}

// Commit implements Port. Unchanged reports are not logged.
func (p *LogPort) Commit() error {
	p.mu.Lock()
	changed := p.staged != p.committed
	p.committed = p.staged
	r := p.committed
	p.mu.Unlock()
	if changed {
		p.logf("Device commit: %s", r)
	}
	return nil
}

// State returns the last committed report.
func (p *LogPort) State() Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.committed
}

// Close implements io.Closer.
func (p *LogPort) Close() error {
	return nil
}

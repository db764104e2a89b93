//go:build !linux

package device

import (
	"errors"
	"runtime"
)

// DefaultUinputPath is unused outside Linux.
const DefaultUinputPath = ""

// Gamepad is only available on Linux.
type Gamepad struct{}

// OpenGamepad always fails outside Linux.
func OpenGamepad(path, name string) (*Gamepad, error) {
	return nil, errors.New("device: virtual gamepad not supported on " + runtime.GOOS)
}

func (g *Gamepad) SetAxes(x, y int16) error      { return ErrClosed }
func (g *Gamepad) PressButtons(b Buttons) error   { return ErrClosed }
func (g *Gamepad) ReleaseButtons(b Buttons) error { return ErrClosed }
func (g *Gamepad) Commit() error                  { return ErrClosed }
func (g *Gamepad) Close() error                   { return nil }

//go:build linux

package device

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sys/unix"
)

// Linux input subsystem constants (linux/input-event-codes.h, linux/uinput.h).
const (
	evSyn = 0x00
	evKey = 0x01
	evAbs = 0x03

	synReport = 0x00

	absX  = 0x00
	absY  = 0x01
	absZ  = 0x02
	absRZ = 0x05

	btnSouth = 0x130
	btnEast  = 0x131
	btnNorth = 0x133
	btnWest  = 0x134
	btnTL    = 0x136
	btnTR    = 0x137

	absCnt = 0x40

	uiDevCreate  = 0x5501
	uiDevDestroy = 0x5502
	uiSetEvBit   = 0x40045564
	uiSetKeyBit  = 0x40045565
	uiSetAbsBit  = 0x40045567

	busUSB = 0x03

	triggerMax = 255
)

// DefaultUinputPath is where the uinput device node normally lives.
const DefaultUinputPath = "/dev/uinput"

// Xbox 360 identifiers so games pick their default gamepad mapping.
const (
	gamepadVendor  = 0x045e
	gamepadProduct = 0x028e
)

// Digital buttons and their key codes. The triggers are analog axes driven
// to their extremes.
var gamepadKeys = []struct {
	b    Buttons
	code uint16
}{
	{ButtonA, btnSouth},
	{ButtonB, btnEast},
	{ButtonX, btnNorth},
	{ButtonY, btnWest},
	{ButtonLB, btnTL},
	{ButtonRB, btnTR},
}

type uinputUserDev struct {
	Name         [80]byte
	Bustype      uint16
	Vendor       uint16
	Product      uint16
	Version      uint16
	FFEffectsMax uint32
	Absmax       [absCnt]int32
	Absmin       [absCnt]int32
	Absfuzz      [absCnt]int32
	Absflat      [absCnt]int32
}

type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Gamepad is a virtual Xbox-style controller created through uinput.
type Gamepad struct {
	mu        sync.Mutex
	fd        int
	staged    Report
	committed Report
	closed    bool
}

// OpenGamepad creates a virtual gamepad named name on the uinput node at
// path.
func OpenGamepad(path, name string) (*Gamepad, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("device: open %s: %w", path, err)
	}

	if err := setupGamepad(fd, name); err != nil {
		unix.Close(fd)
		return nil, err
	}

	log.Printf("Virtual gamepad %q created on %s", name, path)
	return &Gamepad{fd: fd}, nil
}

func setupGamepad(fd int, name string) error {
	ioctl := func(req uint, value int) error {
		if err := unix.IoctlSetInt(fd, req, value); err != nil {
			return fmt.Errorf("device: uinput ioctl %#x(%d): %w", req, value, err)
		}
		return nil
	}

	for _, ev := range []int{evKey, evAbs, evSyn} {
		if err := ioctl(uiSetEvBit, ev); err != nil {
			return err
		}
	}
	for _, k := range gamepadKeys {
		if err := ioctl(uiSetKeyBit, int(k.code)); err != nil {
			return err
		}
	}
	for _, a := range []int{absX, absY, absZ, absRZ} {
		if err := ioctl(uiSetAbsBit, a); err != nil {
			return err
		}
	}

	dev := uinputUserDev{
		Bustype: busUSB,
		Vendor:  gamepadVendor,
		Product: gamepadProduct,
		Version: 1,
	}
	copy(dev.Name[:len(dev.Name)-1], name)
	dev.Absmin[absX], dev.Absmax[absX] = int32(StickMin), int32(StickMax)
	dev.Absmin[absY], dev.Absmax[absY] = int32(StickMin), int32(StickMax)
	dev.Absmin[absZ], dev.Absmax[absZ] = 0, triggerMax
	dev.Absmin[absRZ], dev.Absmax[absRZ] = 0, triggerMax

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.NativeEndian, &dev); err != nil {
		return fmt.Errorf("device: encode uinput setup: %w", err)
	}
	if _, err := unix.Write(fd, buf.Bytes()); err != nil {
		return fmt.Errorf("device: write uinput setup: %w", err)
	}
	return ioctl(uiDevCreate, 0)
}

// SetAxes implements Port.
func (g *Gamepad) SetAxes(x, y int16) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	g.staged.X, g.staged.Y = x, y
	return nil
}

// PressButtons implements Port.
func (g *Gamepad) PressButtons(b Buttons) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	g.staged.Pressed |= b
	return nil
}

// ReleaseButtons implements Port.
func (g *Gamepad) ReleaseButtons(b Buttons) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}
	g.staged.Pressed &^= b
	return nil
}

// Commit writes every change since the previous commit followed by a sync
// report, in a single write.
func (g *Gamepad) Commit() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrClosed
	}

	var events []inputEvent
	add := func(typ, code uint16, value int32) {
		events = append(events, inputEvent{Type: typ, Code: code, Value: value})
	}

	prev, next := g.committed, g.staged
	if next.X != prev.X {
		add(evAbs, absX, int32(next.X))
	}
	if next.Y != prev.Y {
		// evdev Y grows downwards, numpad 8 is up.
		add(evAbs, absY, invertAxis(next.Y))
	}
	for _, k := range gamepadKeys {
		was, is := prev.Pressed.Has(k.b), next.Pressed.Has(k.b)
		if was != is {
			add(evKey, k.code, boolValue(is, 1))
		}
	}
	if was, is := prev.Pressed.Has(ButtonLT), next.Pressed.Has(ButtonLT); was != is {
		add(evAbs, absZ, boolValue(is, triggerMax))
	}
	if was, is := prev.Pressed.Has(ButtonRT), next.Pressed.Has(ButtonRT); was != is {
		add(evAbs, absRZ, boolValue(is, triggerMax))
	}
	if len(events) == 0 {
		return nil
	}
	add(evSyn, synReport, 0)

	var buf bytes.Buffer
	for i := range events {
		if err := binary.Write(&buf, binary.NativeEndian, &events[i]); err != nil {
			return err
		}
	}
	if _, err := unix.Write(g.fd, buf.Bytes()); err != nil {
		return err
	}
	g.committed = next
	return nil
}

// Close destroys the virtual device.
func (g *Gamepad) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	unix.IoctlSetInt(g.fd, uiDevDestroy, 0)
	return unix.Close(g.fd)
}

func invertAxis(v int16) int32 {
	if v == StickMin {
		return int32(StickMax)
	}
	return -int32(v)
}

func boolValue(b bool, on int32) int32 {
	if b {
		return on
	}
	return 0
}

// Package control defines lightweight command messages used by the UI and
// the key bindings to request actions from the application command loop.
// The command loop centralizes state changes such as the current profile so
// that triggers never touch application state directly.
package control

import (
	"fmt"
	"strconv"
	"strings"
)

// CommandType enumerates supported command operations.
type CommandType int

const (
	CmdFire CommandType = iota
	CmdCancel
	CmdNext
	CmdPrev
	CmdSelect
	CmdSetScale
)

func (t CommandType) String() string {
	switch t {
	case CmdFire:
		return "fire"
	case CmdCancel:
		return "cancel"
	case CmdNext:
		return "next"
	case CmdPrev:
		return "prev"
	case CmdSelect:
		return "select"
	case CmdSetScale:
		return "scale"
	}
	return fmt.Sprintf("CommandType(%d)", int(t))
}

// Command is the message sent to AppManager.commandLoop. The optional Reply
// channel lets the loop report the outcome back to the sender, for example a
// NotFound from an unknown slot.
type Command struct {
	Type    CommandType
	Profile string // CmdSelect, or CmdFire on a profile other than the current one
	Slot    string // CmdFire
	Scale   float64
	Reply   chan error
}

func (c Command) String() string {
	switch c.Type {
	case CmdFire:
		if c.Profile != "" {
			return fmt.Sprintf("fire %s %s", c.Profile, c.Slot)
		}
		return "fire " + c.Slot
	case CmdSelect:
		return "select " + c.Profile
	case CmdSetScale:
		return "scale " + strconv.FormatFloat(c.Scale, 'g', -1, 64)
	}
	return c.Type.String()
}

// Fire returns a fire command for slot on the current profile.
func Fire(slot string) Command {
	return Command{Type: CmdFire, Slot: slot}
}

// ParseAction turns a binding action into a command:
//
//	fire <slot> | cancel | next | prev | select <profile> | scale <factor>
func ParseAction(action string) (Command, error) {
	fields := strings.Fields(action)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("control: empty action")
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]
	want := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("control: %q takes %d argument(s)", verb, n)
		}
		return nil
	}

	switch verb {
	case "fire":
		if err := want(1); err != nil {
			return Command{}, err
		}
		return Fire(strings.ToUpper(args[0])), nil
	case "cancel":
		return Command{Type: CmdCancel}, want(0)
	case "next":
		return Command{Type: CmdNext}, want(0)
	case "prev":
		return Command{Type: CmdPrev}, want(0)
	case "select":
		if len(args) == 0 {
			return Command{}, fmt.Errorf("control: select needs a profile")
		}
		// profile names may contain spaces, e.g. "M. Bison"
		return Command{Type: CmdSelect, Profile: strings.Join(args, " ")}, nil
	case "scale":
		if err := want(1); err != nil {
			return Command{}, err
		}
		f, err := strconv.ParseFloat(args[0], 64)
		if err != nil || f <= 0 {
			return Command{}, fmt.Errorf("control: bad scale %q", args[0])
		}
		return Command{Type: CmdSetScale, Scale: f}, nil
	}
	return Command{}, fmt.Errorf("control: unknown action %q", verb)
}

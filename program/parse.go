package program

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"ComboPad/device"
	"ComboPad/motion"
	"ComboPad/timing"
)

// Limits on repetition so a script can never expand without bound.
const (
	MaxRepeat = 64
	MaxSteps  = 4096
)

// ErrUnbalancedLoop is returned for a loop without a do, or a do that is
// never closed.
var ErrUnbalancedLoop = errors.New("unbalanced do/loop")

// SyntaxError reports a malformed script line.
type SyntaxError struct {
	Program string
	Line    int
	Msg     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("program %s: line %d: %s", e.Program, e.Line, e.Msg)
}

// Parse compiles a combo script into a validated program. Each line holds one
// instruction; blank lines and lines starting with "--" or "#" are ignored.
//
//	hold <dir> [frames]          charge <dir> [frames]
//	neutral [frames]             wait <ms>
//	press <btn+btn> [frames]     od <btn+btn> [frames]
//	holdbutton <btn> <frames>    cr|st <btn+btn> [frames]
//	link [ms]                    cancel [ms]
//	qcf|qcb|dp|rdp|hcf|hcb [frames per step]
//	do <n> ... loop
//
// Several instructions may share a line when separated by ";".
func Parse(name, script string, layout device.Layout) (*Program, error) {
	b := NewBuilder()
	var loops []struct{ line, mark, count int }

	for n, raw := range strings.Split(script, "\n") {
		b.line = n + 1
		for _, instr := range strings.Split(raw, ";") {
			toks := strings.Fields(instr)
			if len(toks) == 0 || strings.HasPrefix(toks[0], "--") || strings.HasPrefix(toks[0], "#") {
				continue
			}

			synErr := func(format string, args ...any) error {
				return &SyntaxError{Program: name, Line: b.line, Msg: fmt.Sprintf(format, args...)}
			}

			cmd, args := strings.ToLower(toks[0]), toks[1:]
			switch cmd {
			case "do":
				if len(args) != 1 {
					return nil, synErr("do takes one count")
				}
				count, err := strconv.Atoi(args[0])
				if err != nil || count < 1 || count > MaxRepeat {
					return nil, synErr("do count must be 1 to %d", MaxRepeat)
				}
				loops = append(loops, struct{ line, mark, count int }{b.line, b.mark(), count})
				continue

			case "loop":
				if len(args) != 0 {
					return nil, synErr("loop takes no arguments")
				}
				if len(loops) == 0 {
					return nil, &StepError{Program: name, Line: b.line, Err: ErrUnbalancedLoop}
				}
				lp := loops[len(loops)-1]
				loops = loops[:len(loops)-1]
				if (b.Len()-lp.mark)*lp.count+lp.mark > MaxSteps {
					return nil, synErr("loop expands beyond %d steps", MaxSteps)
				}
				b.repeat(lp.mark, lp.count-1)
				continue
			}

			if err := parseInstruction(b, cmd, args, layout); err != nil {
				return nil, synErr("%s: %v", cmd, err)
			}
			if b.Len() > MaxSteps {
				return nil, synErr("program longer than %d steps", MaxSteps)
			}
		}
	}

	if len(loops) > 0 {
		return nil, &StepError{Program: name, Line: loops[len(loops)-1].line, Err: ErrUnbalancedLoop}
	}
	return b.Build(name)
}

func parseInstruction(b *Builder, cmd string, args []string, layout device.Layout) error {
	switch cmd {
	case "hold", "charge":
		def := DefaultHoldFrames
		if cmd == "charge" {
			def = DefaultChargeFrames
		}
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("want <dir> [frames]")
		}
		dir, err := device.ParseDirection(args[0])
		if err != nil {
			return err
		}
		f, err := optFrames(args[1:], def)
		if err != nil {
			return err
		}
		if cmd == "charge" {
			b.Charge(dir, f)
		} else {
			b.Hold(dir, f)
		}

	case "neutral":
		f, err := optFrames(args, DefaultNeutralFrames)
		if err != nil {
			return err
		}
		b.Neutral(f)

	case "press", "od", "cr", "st":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("want <buttons> [frames]")
		}
		buttons, err := layout.Resolve(args[0])
		if err != nil {
			return err
		}
		if cmd == "od" && buttons.Count() < 2 {
			return fmt.Errorf("needs two buttons")
		}
		f, err := optFrames(args[1:], DefaultPressFrames)
		if err != nil {
			return err
		}
		switch cmd {
		case "cr":
			b.Crouch(buttons, f)
		case "st":
			b.Stand(buttons, f)
		default:
			b.Press(buttons, f)
		}

	case "holdbutton":
		if len(args) != 2 {
			return fmt.Errorf("want <buttons> <frames>")
		}
		buttons, err := layout.Resolve(args[0])
		if err != nil {
			return err
		}
		f, err := optFrames(args[1:], 0)
		if err != nil {
			return err
		}
		b.HoldButton(buttons, f)

	case "wait", "link", "cancel":
		var def time.Duration
		switch cmd {
		case "link":
			def = DefaultLinkWait
		case "cancel":
			def = DefaultCancelWait
		default:
			if len(args) != 1 {
				return fmt.Errorf("want <ms>")
			}
		}
		d, err := optMillis(args, def)
		if err != nil {
			return err
		}
		switch cmd {
		case "link":
			b.Link(d)
		case "cancel":
			b.Cancel(d)
		default:
			b.Wait(d)
		}

	default:
		shape, err := motion.ParseShape(cmd)
		if err != nil {
			return fmt.Errorf("unknown instruction")
		}
		f, err := optFrames(args, motion.DefaultStepFrames)
		if err != nil {
			return err
		}
		b.Motion(shape, f)
	}
	return nil
}

func optFrames(args []string, def timing.Frames) (timing.Frames, error) {
	if len(args) == 0 {
		return def, nil
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("too many arguments")
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil || !timing.Frames(v).Valid() {
		return 0, fmt.Errorf("bad frame count %q", args[0])
	}
	return timing.Frames(v), nil
}

func optMillis(args []string, def time.Duration) (time.Duration, error) {
	if len(args) == 0 {
		return def, nil
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("too many arguments")
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil || !(v >= 0) || v > float64(timing.MaxWait/time.Millisecond) {
		return 0, fmt.Errorf("bad millisecond count %q", args[0])
	}
	return time.Duration(v * float64(time.Millisecond)), nil
}

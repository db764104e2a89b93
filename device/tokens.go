package device

import (
	"fmt"
	"strings"
)

// Stick extremes. Directions only ever map to these or to zero.
const (
	StickMax int16 = 32767
	StickMin int16 = -32768
)

// Direction is a stick position in numpad notation: 5 is neutral, 6 is
// forward, 4 is back, 8 is up and 2 is down, diagonals in between.
type Direction uint8

const (
	DownBack    Direction = 1
	Down        Direction = 2
	DownForward Direction = 3
	Back        Direction = 4
	Neutral     Direction = 5
	Forward     Direction = 6
	UpBack      Direction = 7
	Up          Direction = 8
	UpForward   Direction = 9
)

var directionNames = map[string]Direction{
	"n": Neutral, "neutral": Neutral,
	"d": Down, "down": Down,
	"u": Up, "up": Up,
	"f": Forward, "forward": Forward,
	"b": Back, "back": Back,
	"df": DownForward, "db": DownBack,
	"uf": UpForward, "ub": UpBack,
}

// ParseDirection accepts a numpad digit ("3"), a compound of cardinal digits
// used mid-arc ("23", "24", "62") or a name ("df", "back"). Contradictory
// compounds such as "46" are rejected.
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if d, ok := directionNames[s]; ok {
		return d, nil
	}
	if s == "" {
		return 0, fmt.Errorf("device: empty direction")
	}

	var x, y int
	for _, r := range s {
		dx, dy := 0, 0
		switch r {
		case '1':
			dx, dy = -1, -1
		case '2':
			dy = -1
		case '3':
			dx, dy = 1, -1
		case '4':
			dx = -1
		case '5':
		case '6':
			dx = 1
		case '7':
			dx, dy = -1, 1
		case '8':
			dy = 1
		case '9':
			dx, dy = 1, 1
		default:
			return 0, fmt.Errorf("device: unknown direction %q", s)
		}
		if (dx != 0 && x != 0 && dx != x) || (dy != 0 && y != 0 && dy != y) {
			return 0, fmt.Errorf("device: contradictory direction %q", s)
		}
		if dx != 0 {
			x = dx
		}
		if dy != 0 {
			y = dy
		}
	}
	return fromUnit(x, y), nil
}

func fromUnit(x, y int) Direction {
	return Direction(5 + x + 3*y)
}

func (d Direction) unit() (int, int) {
	if d < 1 || d > 9 {
		return 0, 0
	}
	i := int(d) - 1
	return i%3 - 1, i/3 - 1
}

// Axes returns the stick position for d. Every component is an extreme or
// zero.
func (d Direction) Axes() (x, y int16) {
	ux, uy := d.unit()
	return extreme(ux), extreme(uy)
}

func extreme(u int) int16 {
	switch {
	case u > 0:
		return StickMax
	case u < 0:
		return StickMin
	}
	return 0
}

// Mirror swaps forward and back.
func (d Direction) Mirror() Direction {
	x, y := d.unit()
	return fromUnit(-x, y)
}

// Valid reports whether d is one of the nine stick positions.
func (d Direction) Valid() bool {
	return d >= 1 && d <= 9
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return string(rune('0' + d))
}

// Buttons is a set of physical gamepad buttons.
type Buttons uint16

const (
	ButtonA Buttons = 1 << iota
	ButtonB
	ButtonX
	ButtonY
	ButtonLB
	ButtonRB
	ButtonLT
	ButtonRT
)

// AllButtons is every button a program could possibly hold.
const AllButtons = ButtonA | ButtonB | ButtonX | ButtonY | ButtonLB | ButtonRB | ButtonLT | ButtonRT

var buttonOrder = []struct {
	b    Buttons
	name string
}{
	{ButtonA, "A"},
	{ButtonB, "B"},
	{ButtonX, "X"},
	{ButtonY, "Y"},
	{ButtonLB, "LB"},
	{ButtonRB, "RB"},
	{ButtonLT, "LT"},
	{ButtonRT, "RT"},
}

// Each calls fn once for every button in the set, in a fixed order.
func (b Buttons) Each(fn func(Buttons)) {
	for _, bo := range buttonOrder {
		if b&bo.b != 0 {
			fn(bo.b)
		}
	}
}

// Has reports whether every button in o is in b.
func (b Buttons) Has(o Buttons) bool {
	return b&o == o
}

// Count returns the number of buttons in the set.
func (b Buttons) Count() int {
	n := 0
	b.Each(func(Buttons) { n++ })
	return n
}

func (b Buttons) String() string {
	if b == 0 {
		return "none"
	}
	var names []string
	for _, bo := range buttonOrder {
		if b&bo.b != 0 {
			names = append(names, bo.name)
		}
	}
	return strings.Join(names, "+")
}

// ParseButton resolves a physical button name.
func ParseButton(name string) (Buttons, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, bo := range buttonOrder {
		if bo.name == name {
			return bo.b, nil
		}
	}
	return 0, fmt.Errorf("device: unknown button %q", name)
}

// Layout maps logical attack names (LP, MK, ...) onto physical buttons.
type Layout map[string]Buttons

// ClassicLayout is the Xbox layout used by the classic control scheme:
// LP=X MP=Y HP=RB LK=A MK=B HK=RT PARRY=LT.
func ClassicLayout() Layout {
	return Layout{
		"LP":    ButtonX,
		"MP":    ButtonY,
		"HP":    ButtonRB,
		"LK":    ButtonA,
		"MK":    ButtonB,
		"HK":    ButtonRT,
		"PARRY": ButtonLT,
	}
}

// NewLayout builds a layout from logical → physical names, starting from the
// classic layout.
func NewLayout(names map[string]string) (Layout, error) {
	l := ClassicLayout()
	for logical, physical := range names {
		b, err := ParseButton(physical)
		if err != nil {
			return nil, fmt.Errorf("device: layout %s: %w", logical, err)
		}
		l[strings.ToUpper(logical)] = b
	}
	return l, nil
}

// Resolve turns "MK+HK" into a button set. Logical names are looked up in the
// layout first, physical names are accepted as a fallback.
func (l Layout) Resolve(names string) (Buttons, error) {
	var set Buttons
	for _, part := range strings.Split(names, "+") {
		name := strings.ToUpper(strings.TrimSpace(part))
		if b, ok := l[name]; ok {
			set |= b
			continue
		}
		b, err := ParseButton(name)
		if err != nil {
			return 0, err
		}
		set |= b
	}
	if set == 0 {
		return 0, fmt.Errorf("device: no buttons in %q", names)
	}
	return set, nil
}

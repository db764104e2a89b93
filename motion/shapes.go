package motion

import (
	"fmt"
	"sort"
	"strings"

	"ComboPad/device"
	"ComboPad/timing"
)

// Shape names a canonical compound motion.
type Shape string

const (
	QuarterCircleForward Shape = "qcf" // 236
	QuarterCircleBack    Shape = "qcb" // 214
	Rising               Shape = "dp"  // 623
	ReverseRising        Shape = "rdp" // 421
	HalfCircleForward    Shape = "hcf" // 41236
	HalfCircleBack       Shape = "hcb" // 63214
)

// DefaultStepFrames is the per-step duration used when a motion does not
// specify one.
const DefaultStepFrames timing.Frames = 2

// Step is one directional hold of a motion.
type Step struct {
	Direction device.Direction
	Frames    timing.Frames
}

type shapeDef struct {
	path       []device.Direction
	activation device.Direction
}

var shapes = map[Shape]shapeDef{
	QuarterCircleForward: {
		path:       []device.Direction{device.Down, device.DownForward, device.Forward},
		activation: device.Forward,
	},
	QuarterCircleBack: {
		path:       []device.Direction{device.Down, device.DownBack, device.Back},
		activation: device.Back,
	},
	Rising: {
		path:       []device.Direction{device.Forward, device.Down, device.DownForward},
		activation: device.DownForward,
	},
	ReverseRising: {
		path:       []device.Direction{device.Back, device.Down, device.DownBack},
		activation: device.DownBack,
	},
	HalfCircleForward: {
		path:       []device.Direction{device.Back, device.DownBack, device.Down, device.DownForward, device.Forward},
		activation: device.Forward,
	},
	HalfCircleBack: {
		path:       []device.Direction{device.Forward, device.DownForward, device.Down, device.DownBack, device.Back},
		activation: device.Back,
	},
}

func init() {
	for name, def := range shapes {
		if err := checkShape(def); err != nil {
			panic(fmt.Sprintf("motion: shape %s: %v", name, err))
		}
	}
}

func checkShape(def shapeDef) error {
	if n := len(def.path); n < 3 || n > 5 {
		return fmt.Errorf("%d steps, want 3 to 5", n)
	}
	if last := def.path[len(def.path)-1]; last != def.activation {
		return fmt.Errorf("ends on %s, activation is %s", last, def.activation)
	}
	for i := 1; i < len(def.path); i++ {
		if def.path[i] == def.path[i-1] {
			return fmt.Errorf("step %d repeats %s", i, def.path[i])
		}
	}
	return nil
}

// ParseShape resolves a motion name.
func ParseShape(name string) (Shape, error) {
	s := Shape(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := shapes[s]; !ok {
		return "", fmt.Errorf("motion: unknown shape %q", name)
	}
	return s, nil
}

// Shapes returns every known shape name, sorted.
func Shapes() []Shape {
	out := make([]Shape, 0, len(shapes))
	for s := range shapes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Steps expands a shape into its directional holds, each lasting frames.
func Steps(s Shape, frames timing.Frames) ([]Step, error) {
	def, ok := shapes[s]
	if !ok {
		return nil, fmt.Errorf("motion: unknown shape %q", s)
	}
	steps := make([]Step, len(def.path))
	for i, d := range def.path {
		steps[i] = Step{Direction: d, Frames: frames}
	}
	return steps, nil
}

// Activation returns the direction a shape must end on before the button
// press that follows it.
func Activation(s Shape) device.Direction {
	return shapes[s].activation
}

package registry

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"ComboPad/device"
	"ComboPad/program"
)

// ContentReader reads catalogue files. embed.FS and os.DirFS based readers
// both satisfy it.
type ContentReader interface {
	ReadFile(name string) ([]byte, error)
}

// DefaultCatalogue is the path of the catalogue shipped in the binary.
const DefaultCatalogue = "assets/combos.yaml"

type catalogueFile struct {
	Profiles []profileEntry `yaml:"profiles"`
}

type profileEntry struct {
	Name   string       `yaml:"name"`
	Color  string       `yaml:"color"`
	Notes  string       `yaml:"notes"`
	Combos []comboEntry `yaml:"combos"`
}

type comboEntry struct {
	Slot   string `yaml:"slot"`
	Label  string `yaml:"label"`
	Script string `yaml:"script"`
}

// LoadFile reads and parses the catalogue at name.
func LoadFile(reader ContentReader, name string, layout device.Layout) (*Registry, error) {
	data, err := reader.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("registry: read %s: %w", name, err)
	}
	return Load(data, layout)
}

// Load parses a YAML catalogue. Every script is compiled with layout and
// validated, so a catalogue that loads only holds runnable programs.
func Load(data []byte, layout device.Layout) (*Registry, error) {
	var file catalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if len(file.Profiles) == 0 {
		return nil, fmt.Errorf("registry: catalogue has no profiles")
	}

	profiles := make([]Profile, 0, len(file.Profiles))
	for _, pe := range file.Profiles {
		p := Profile{
			Name:  strings.TrimSpace(pe.Name),
			Color: pe.Color,
			Notes: strings.TrimSpace(pe.Notes),
		}
		for _, ce := range pe.Combos {
			slot := strings.ToUpper(strings.TrimSpace(ce.Slot))
			prog, err := program.Parse(p.Name+" "+slot, ce.Script, layout)
			if err != nil {
				return nil, fmt.Errorf("registry: %w", err)
			}
			p.Combos = append(p.Combos, Combo{Slot: slot, Label: ce.Label, Program: prog})
		}
		profiles = append(profiles, p)
	}
	return New(profiles...)
}

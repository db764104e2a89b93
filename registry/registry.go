// Package registry holds the immutable catalogue of combo programs, keyed by
// profile and slot, and dispatches fire requests to the engine.
package registry

import (
	"errors"
	"fmt"

	"ComboPad/engine"
	"ComboPad/program"
)

// ErrNotFound is returned when a profile or slot is unknown.
var ErrNotFound = errors.New("not found")

// AdvancedSlot is the slot of the per-profile advanced combo.
const AdvancedSlot = "ADV"

// Combo binds one slot to its program.
type Combo struct {
	Slot    string
	Label   string
	Program *program.Program
}

// Profile is a named set of combos, usually one character.
type Profile struct {
	Name   string
	Color  string
	Notes  string
	Combos []Combo
}

// Registry is safe for concurrent use because it never changes after New.
type Registry struct {
	profiles []Profile
	byName   map[string]int
	programs map[string]map[string]*program.Program
}

// New builds a registry from profiles, in the given order. Profile names must
// be unique, and so must the slots inside a profile.
func New(profiles ...Profile) (*Registry, error) {
	r := &Registry{
		byName:   make(map[string]int, len(profiles)),
		programs: make(map[string]map[string]*program.Program, len(profiles)),
	}
	for _, p := range profiles {
		if p.Name == "" {
			return nil, errors.New("registry: profile without a name")
		}
		if _, dup := r.byName[p.Name]; dup {
			return nil, fmt.Errorf("registry: duplicate profile %q", p.Name)
		}
		slots := make(map[string]*program.Program, len(p.Combos))
		for _, c := range p.Combos {
			if c.Slot == "" {
				return nil, fmt.Errorf("registry: profile %q: combo without a slot", p.Name)
			}
			if c.Program == nil {
				return nil, fmt.Errorf("registry: profile %q slot %s: no program", p.Name, c.Slot)
			}
			if _, dup := slots[c.Slot]; dup {
				return nil, fmt.Errorf("registry: profile %q: duplicate slot %s", p.Name, c.Slot)
			}
			slots[c.Slot] = c.Program
		}
		p.Combos = append([]Combo(nil), p.Combos...)
		r.byName[p.Name] = len(r.profiles)
		r.profiles = append(r.profiles, p)
		r.programs[p.Name] = slots
	}
	return r, nil
}

// Resolve returns the program bound to (profile, slot).
func (r *Registry) Resolve(profile, slot string) (*program.Program, error) {
	slots, ok := r.programs[profile]
	if !ok {
		return nil, fmt.Errorf("profile %q: %w", profile, ErrNotFound)
	}
	p, ok := slots[slot]
	if !ok {
		return nil, fmt.Errorf("profile %q slot %s: %w", profile, slot, ErrNotFound)
	}
	return p, nil
}

// ListSlots returns the slots of profile in catalogue order.
func (r *Registry) ListSlots(profile string) ([]string, error) {
	i, ok := r.byName[profile]
	if !ok {
		return nil, fmt.Errorf("profile %q: %w", profile, ErrNotFound)
	}
	combos := r.profiles[i].Combos
	out := make([]string, len(combos))
	for j, c := range combos {
		out[j] = c.Slot
	}
	return out, nil
}

// Profiles returns the profile names in catalogue order.
func (r *Registry) Profiles() []string {
	out := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		out[i] = p.Name
	}
	return out
}

// Profile returns a copy of the named profile.
func (r *Registry) Profile(name string) (Profile, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Profile{}, false
	}
	p := r.profiles[i]
	p.Combos = append([]Combo(nil), p.Combos...)
	return p, true
}

// Len returns the number of profiles.
func (r *Registry) Len() int {
	return len(r.profiles)
}

// Runner is the part of the engine the dispatcher needs.
type Runner interface {
	RequestRun(profile, slot string, p engine.Program) bool
}

// Fire resolves (profile, slot) and hands the program to run. Unknown pairs
// return ErrNotFound before anything reaches the engine. The bool is false
// when the engine dropped the request because a run was already active.
func (r *Registry) Fire(run Runner, profile, slot string) (bool, error) {
	p, err := r.Resolve(profile, slot)
	if err != nil {
		return false, err
	}
	return run.RequestRun(profile, slot, p), nil
}

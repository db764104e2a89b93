package control

import (
	"fmt"
	"sort"
	"strings"
)

// Bindings maps key names, as fyne names them ("F1", "Escape"), to commands.
// Lookups ignore case.
type Bindings map[string]Command

// NewBindings parses key → action pairs.
func NewBindings(keys map[string]string) (Bindings, error) {
	b := make(Bindings, len(keys))
	for key, action := range keys {
		cmd, err := ParseAction(action)
		if err != nil {
			return nil, fmt.Errorf("control: key %s: %w", key, err)
		}
		b[normalizeKey(key)] = cmd
	}
	return b, nil
}

// Lookup returns the command bound to key.
func (b Bindings) Lookup(key string) (Command, bool) {
	cmd, ok := b[normalizeKey(key)]
	return cmd, ok
}

// KeyFor returns the first key, in name order, bound to a command equal to
// cmd. The window shows it next to its buttons.
func (b Bindings) KeyFor(cmd Command) (string, bool) {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c := b[k]
		if c.Type == cmd.Type && c.Slot == cmd.Slot && c.Profile == cmd.Profile && c.Scale == cmd.Scale {
			return k, true
		}
	}
	return "", false
}

func normalizeKey(k string) string {
	return strings.ToUpper(strings.TrimSpace(k))
}

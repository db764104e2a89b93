package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Command
	}{
		{"fire F1", Command{Type: CmdFire, Slot: "F1"}},
		{"fire adv", Command{Type: CmdFire, Slot: "ADV"}},
		{"  cancel ", Command{Type: CmdCancel}},
		{"Next", Command{Type: CmdNext}},
		{"prev", Command{Type: CmdPrev}},
		{"select M. Bison", Command{Type: CmdSelect, Profile: "M. Bison"}},
		{"scale 1.5", Command{Type: CmdSetScale, Scale: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAction(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseActionErrors(t *testing.T) {
	for _, in := range []string{"", "fire", "fire F1 F2", "cancel now", "select", "scale x", "scale -1", "jump"} {
		_, err := ParseAction(in)
		assert.Error(t, err, in)
	}
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "fire F3", Fire("F3").String())
	assert.Equal(t, "fire Ken F3", Command{Type: CmdFire, Profile: "Ken", Slot: "F3"}.String())
	assert.Equal(t, "scale 2", Command{Type: CmdSetScale, Scale: 2}.String())
	assert.Equal(t, "next", Command{Type: CmdNext}.String())
}

func TestBindings(t *testing.T) {
	b, err := NewBindings(map[string]string{
		"F1":     "fire F1",
		"f8":     "fire ADV",
		"Escape": "cancel",
	})
	require.NoError(t, err)

	cmd, ok := b.Lookup("F1")
	require.True(t, ok)
	assert.Equal(t, Fire("F1"), cmd)

	cmd, ok = b.Lookup("F8")
	require.True(t, ok)
	assert.Equal(t, Fire("ADV"), cmd)

	cmd, ok = b.Lookup("escape")
	require.True(t, ok)
	assert.Equal(t, CmdCancel, cmd.Type)

	_, ok = b.Lookup("F2")
	assert.False(t, ok)

	key, ok := b.KeyFor(Fire("ADV"))
	require.True(t, ok)
	assert.Equal(t, "F8", key)
}

func TestBindingsRejectBadAction(t *testing.T) {
	_, err := NewBindings(map[string]string{"F1": "explode"})
	assert.ErrorContains(t, err, "F1")
}

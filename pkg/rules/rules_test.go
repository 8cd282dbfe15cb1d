package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `
layers: [F.Cu, In1.Cu, B.Cu]
via_at_smd_allowed: true
fanout_trace_length: 2000000
clearance_classes: [default, power]
clearances:
  - classes: [default, default]
    value: 200000
  - classes: [default, power]
    value: 300000
  - classes: [power, power]
    value: 500000
    layers: [In1.Cu]
net_classes:
  - name: Default
    clearance_class: default
    trace_half_width: 100000
  - name: Power
    clearance_class: power
    trace_half_width: 250000
    pull_tight: false
    ignore_cycles_with_areas: true
nets:
  - number: 1
    name: GND
    class: Power
  - number: 2
    name: SDA
`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(sampleRules))
	require.NoError(t, err)

	assert.Equal(t, 3, r.Layers.Count())
	l, ok := r.Layers.Index("In1.Cu")
	require.True(t, ok)
	assert.Equal(t, 1, l)
	assert.True(t, r.ViaAtSMDAllowed)
	assert.Equal(t, int64(2_000_000), r.FanoutTraceLength)
	assert.Equal(t, int64(1_000), r.TraceJoinHalfSize)

	tests := []struct {
		name  string
		a, b  int
		layer int
		want  int64
	}{
		{"default pair", 0, 0, 0, 200_000},
		{"mixed pair", 0, 1, 2, 300_000},
		{"mixed pair is symmetric", 1, 0, 2, 300_000},
		{"power on inner layer", 1, 1, 1, 500_000},
		{"power on outer layer", 1, 1, 0, 0},
		{"layer out of range", 0, 0, 7, 0},
		{"class out of range", 0, 9, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Clearance(tt.a, tt.b, tt.layer))
		})
	}
	assert.Equal(t, int64(500_000), r.MaxClearance(1, 1))
	assert.Equal(t, int64(300_000), r.MaxClearance(0, 1))

	gnd := r.NetClassOf(1)
	assert.Equal(t, "Power", gnd.Name)
	assert.Equal(t, 1, gnd.ClearanceClass)
	assert.False(t, gnd.PullTight)
	assert.True(t, r.IgnoreCyclesWithAreas([]int{1}))
	assert.False(t, r.IgnoreCyclesWithAreas([]int{2}))
	assert.False(t, r.IgnoreCyclesWithAreas(nil))
	assert.True(t, r.CanPullTight(2))

	n, ok := r.NetByName("SDA")
	require.True(t, ok)
	assert.Equal(t, DefaultClass, n.Class)
	assert.Len(t, r.Nets(), 2)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed yaml", "layers: [F.Cu"},
		{"unknown clearance class", "clearances:\n  - classes: [default, nope]\n    value: 1\n"},
		{"unknown layer", "clearances:\n  - classes: [default, default]\n    value: 1\n    layers: [X.Cu]\n"},
		{"negative clearance", "clearances:\n  - classes: [default, default]\n    value: -1\n"},
		{"unknown net class", "nets:\n  - number: 3\n    name: VCC\n    class: Missing\n"},
		{"net number zero", "nets:\n  - number: 0\n    name: VCC\n"},
		{"zero join size", "trace_join_half_size: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	r := Default()
	require.NoError(t, r.Validate())
	assert.Equal(t, 2, r.Layers.Count())
	assert.Equal(t, int64(200_000), r.Clearance(0, 0, 1))
	assert.False(t, r.IgnoreCyclesWithAreas([]int{42}))

	empty, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, r.Clearance(0, 0, 0), empty.Clearance(0, 0, 0))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o644))

	r, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Layers.Count())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

package pcb

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp"
)

const sampleBoard = `(kicad_pcb (version 20221018) (generator pcbnew)
  (general (thickness 1.6))
  (title_block (title "Test Board") (rev "A"))
  (layers
    (0 "F.Cu" signal)
    (31 "B.Cu" signal)
    (37 "F.SilkS" user "F.Silkscreen")
    (44 "Edge.Cuts" user))
  (net 0 "")
  (net 1 "GND")
  (net 2 "VCC")
  (footprint "Resistor_SMD:R_0603" (layer "F.Cu") (at 10 10 90)
    (property "Reference" "R1" (at 0 0 0))
    (property "Value" "10k" (at 0 1 0))
    (pad "1" smd rect (at -1 0 90) (size 1 1.2) (layers "F.Cu" "F.Paste" "F.Mask") (net 1 "GND"))
    (pad "2" smd rect (at 1 0 90) (size 1 1.2) (layers "F.Cu" "F.Paste" "F.Mask") (net 2 "VCC")))
  (footprint "Connector:TestPoint" locked (layer "B.Cu") (at 30 10)
    (fp_text reference "TP1" (at 0 0) (layer "B.SilkS"))
    (fp_text value "TP" (at 0 1) (layer "B.Fab"))
    (pad "1" thru_hole circle (at 0 2) (size 1.5 1.5) (drill 0.8) (layers "*.Cu" "*.Mask") (net 1 "GND"))
    (pad "" np_thru_hole circle (at 2 0) (size 1 1) (drill 1) (layers "*.Cu")))
  (gr_line (start 0 0) (end 40 0) (stroke (width 0.1) (type solid)) (layer "Edge.Cuts"))
  (gr_line (start 40 0) (end 40 20) (stroke (width 0.1) (type solid)) (layer "Edge.Cuts"))
  (gr_line (start 0 20) (end 40 20) (stroke (width 0.1) (type solid)) (layer "Edge.Cuts"))
  (gr_line (start 0 20) (end 0 0) (stroke (width 0.1) (type solid)) (layer "Edge.Cuts"))
  (gr_line (start 5 5) (end 6 6) (stroke (width 0.12) (type solid)) (layer "F.SilkS"))
  (segment (start 10 11) (end 20 11) (width 0.25) (layer "F.Cu") (net 1))
  (segment (start 20 11) (end 25 11) (width 0.25) (layer "F.Cu") (net 1))
  (segment (start 25 11) (end 30 12) (width 0.25) (layer "F.Cu") (locked yes) (net 1))
  (via (at 20 11) (size 0.8) (drill 0.4) (layers "F.Cu" "B.Cu") (net 1))
  (zone (net 1) (net_name "GND") (layer "B.Cu") (name "gnd")
    (polygon (pts (xy 0 0) (xy 40 0) (xy 40 20) (xy 0 20))))
  (zone (net 0) (net_name "") (layers "F.Cu" "B.Cu")
    (keepout (tracks not_allowed) (vias allowed) (pads allowed) (copperpour not_allowed))
    (polygon (pts (xy 35 15) (xy 38 15) (xy 38 18))))
)
`

func parseSample(t *testing.T) *Board {
	t.Helper()
	b, err := Parse(strings.NewReader(sampleBoard))
	require.NoError(t, err)
	return b
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantVersion int
		wantGen     string
		wantErr     bool
	}{
		{
			name:        "valid KiCad 6.0 with generator",
			input:       "(kicad_pcb (version 20211014) (generator pcbnew))",
			wantVersion: 20211014,
			wantGen:     "pcbnew",
		},
		{
			name:        "valid KiCad 6.0 with host",
			input:       `(kicad_pcb (version 20221018) (host pcbnew "(6.0.10)"))`,
			wantVersion: 20221018,
			wantGen:     "pcbnew",
		},
		{
			name:        "quoted generator",
			input:       `(kicad_pcb (version 20240108) (generator "pcbnew"))`,
			wantVersion: 20240108,
			wantGen:     "pcbnew",
		},
		{
			name:    "missing version",
			input:   "(kicad_pcb (generator pcbnew))",
			wantErr: true,
		},
		{
			name:    "old version (KiCad 5)",
			input:   "(kicad_pcb (version 20171130))",
			wantErr: true,
		},
		{
			name:        "no generator (should default to unknown)",
			input:       "(kicad_pcb (version 20211014))",
			wantVersion: 20211014,
			wantGen:     "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sexps, err := sexp.ParseString(tt.input)
			require.NoError(t, err)

			version, gen, err := parseHeader(sexps[0])
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVersion, version)
			assert.Equal(t, tt.wantGen, gen)
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not a board", "(kicad_sch (version 20230121))"},
		{"unbalanced", "(kicad_pcb (version 20221018)"},
		{"bad net number", "(kicad_pcb (version 20221018) (net x \"GND\"))"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestParseBoard(t *testing.T) {
	b := parseSample(t)

	assert.Equal(t, 20221018, b.Version)
	assert.Equal(t, 1.6, b.General.Thickness)
	assert.Equal(t, "Test Board", b.General.Title)
	assert.Equal(t, "A", b.General.Revision)

	require.Len(t, b.Layers, 4)
	assert.Equal(t, Layer{Number: 31, Name: "B.Cu", Type: "signal"}, b.Layers[1])
	assert.True(t, b.Layers[0].IsCopper())
	assert.False(t, b.Layers[3].IsCopper())
	assert.Equal(t, []string{"F.Cu", "B.Cu"}, layerNames(b.CopperLayers()))

	require.Len(t, b.Nets, 3)
	assert.Equal(t, "GND", b.Nets[1].Name)

	t.Run("footprints", func(t *testing.T) {
		require.Len(t, b.Footprints, 2)
		r1 := b.Footprints[0]
		assert.Equal(t, "Resistor_SMD", r1.Library)
		assert.Equal(t, "R_0603", r1.Name)
		assert.Equal(t, "R1", r1.Reference)
		assert.Equal(t, "10k", r1.Value)
		assert.Equal(t, Angle(90), r1.Position.Angle)
		assert.False(t, r1.OnBack())
		require.Len(t, r1.Pads, 2)
		assert.Equal(t, Size{Width: 1, Height: 1.2}, r1.Pads[0].Size)
		assert.Equal(t, "GND", r1.Pads[0].Net.Name)

		tp := b.Footprints[1]
		assert.Equal(t, "TP1", tp.Reference)
		assert.Equal(t, "TP", tp.Value)
		assert.True(t, tp.OnBack())
		assert.True(t, tp.Locked)
		require.Len(t, tp.Pads, 2)
		assert.Equal(t, 0.8, tp.Pads[0].Drill)
		assert.Equal(t, LayerSet{"*.Cu", "*.Mask"}, tp.Pads[0].Layers)
		assert.Equal(t, "np_thru_hole", tp.Pads[1].Type)
		assert.Nil(t, tp.Pads[1].Net)
	})

	t.Run("tracks and vias", func(t *testing.T) {
		require.Len(t, b.Tracks, 3)
		assert.Equal(t, Position{X: 10, Y: 11}, b.Tracks[0].Start)
		assert.Equal(t, 0.25, b.Tracks[0].Width)
		assert.False(t, b.Tracks[0].Locked)
		assert.True(t, b.Tracks[2].Locked)

		require.Len(t, b.Vias, 1)
		assert.Equal(t, LayerSet{"F.Cu", "B.Cu"}, b.Vias[0].Layers)
		assert.Equal(t, 0.4, b.Vias[0].Drill)
	})

	t.Run("zones and edges", func(t *testing.T) {
		require.Len(t, b.Zones, 3)
		assert.Equal(t, "gnd", b.Zones[0].Name)
		assert.Nil(t, b.Zones[0].Keepout)
		assert.Len(t, b.Zones[0].Outline, 4)
		require.NotNil(t, b.Zones[1].Keepout)
		assert.Equal(t, Keepout{Tracks: true}, *b.Zones[1].Keepout)
		assert.Equal(t, []string{"F.Cu", "B.Cu"}, []string{b.Zones[1].Layer, b.Zones[2].Layer})

		assert.Len(t, b.Edges, 4)
	})

	t.Run("net info", func(t *testing.T) {
		info := b.GetNetInfo("GND")
		require.NotNil(t, info)
		assert.Len(t, info.Pads, 2)
		assert.Len(t, info.Tracks, 3)
		assert.Len(t, info.Vias, 1)
		assert.Nil(t, b.GetNetInfo("missing"))
	})

	t.Run("bounding box", func(t *testing.T) {
		bbox := b.GetBoundingBox()
		assert.Equal(t, Position{X: 0, Y: 0}, bbox.Min)
		assert.Equal(t, Position{X: 40, Y: 20}, bbox.Max)
	})
}

func TestCopperLayerOrder(t *testing.T) {
	b := &Board{Layers: []Layer{
		{Number: 0, Name: "F.Cu", Type: "signal"},
		{Number: 2, Name: "B.Cu", Type: "signal"},
		{Number: 4, Name: "In1.Cu", Type: "power"},
		{Number: 6, Name: "In2.Cu", Type: "signal"},
		{Number: 25, Name: "Edge.Cuts", Type: "user"},
	}}
	assert.Equal(t, []string{"F.Cu", "In1.Cu", "In2.Cu", "B.Cu"}, layerNames(b.CopperLayers()))
}

func layerNames(layers []Layer) []string {
	out := make([]string, len(layers))
	for i, l := range layers {
		out[i] = l.Name
	}
	return out
}

package pcb

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Board represents a complete KiCad PCB
type Board struct {
	Version    int         // File format version
	Generator  string      // Generator info (e.g., "pcbnew")
	General    General     // General board properties
	Layers     []Layer     // Layer definitions
	Nets       []Net       // Electrical nets
	Footprints []Footprint // Component footprints
	Edges      []Edge      // Board outline segments from Edge.Cuts
	Tracks     []Track     // Track segments
	Vias       []Via       // Vias
	Zones      []Zone      // Zones and keepouts
}

// General contains general board properties
type General struct {
	Thickness float64 // Board thickness in mm
	Title     string  // Board title
	Date      string  // Design date
	Revision  string  // Board revision
	Company   string  // Company name
}

// Footprint represents a component footprint
type Footprint struct {
	Library   string        // Library name
	Name      string        // Footprint name
	Layer     string        // Layer (F.Cu or B.Cu typically)
	Position  PositionAngle // Position and rotation
	Pads      []Pad         // Pads
	Reference string        // Reference designator (e.g., "R1")
	Value     string        // Component value
	Locked    bool
}

// OnBack reports whether the footprint is placed on the back side.
func (fp *Footprint) OnBack() bool {
	return fp.Layer == "B.Cu"
}

// Pad represents a footprint pad
type Pad struct {
	Number string // Pad number/name
	Type   string // Pad type (thru_hole, smd, connect, np_thru_hole)
	Shape  string // Pad shape (circle, rect, oval, roundrect, ...)
	// Position is relative to the footprint; the angle is absolute, as
	// KiCad stores it.
	Position PositionAngle
	Size     Size
	Drill    float64  // Drill diameter (0 for SMD)
	Layers   LayerSet // Layers the pad appears on
	Net      *Net     // Connected net (if any)
}

// Edge is one straight piece of the board outline.
type Edge struct {
	Start Position
	End   Position
}

// Track represents a copper track segment
type Track struct {
	Start  Position // Start point
	End    Position // End point
	Width  float64  // Track width in mm
	Layer  string   // Layer name
	Net    *Net     // Connected net
	Locked bool     // Whether track is locked
}

// Via represents a via
type Via struct {
	Position Position // Via position
	Size     float64  // Via diameter
	Drill    float64  // Drill diameter
	Layers   LayerSet // Layer pair
	Net      *Net     // Connected net
	Locked   bool     // Whether via is locked
}

// Keepout lists what a rule area forbids.
type Keepout struct {
	Tracks bool
	Vias   bool
	Pads   bool
}

// Zone represents a copper zone or a rule area
type Zone struct {
	Name    string
	Net     *Net       // Connected net
	Layer   string     // Layer name
	Outline []Position // Zone outline polygon
	Keepout *Keepout   // Non-nil for rule areas
	Locked  bool
}

// GetNet returns a net by name, or nil if not found
func (b *Board) GetNet(name string) *Net {
	for i := range b.Nets {
		if b.Nets[i].Name == name {
			return &b.Nets[i]
		}
	}
	return nil
}

// GetNetPads returns all pads connected to a specific net
func (b *Board) GetNetPads(netName string) []Pad {
	var pads []Pad
	for _, fp := range b.Footprints {
		for _, pad := range fp.Pads {
			if pad.Net != nil && pad.Net.Name == netName {
				pads = append(pads, pad)
			}
		}
	}
	return pads
}

// GetNetTracks returns all tracks connected to a specific net
func (b *Board) GetNetTracks(netName string) []Track {
	var tracks []Track
	for _, track := range b.Tracks {
		if track.Net != nil && track.Net.Name == netName {
			tracks = append(tracks, track)
		}
	}
	return tracks
}

// GetNetVias returns all vias connected to a specific net
func (b *Board) GetNetVias(netName string) []Via {
	var vias []Via
	for _, via := range b.Vias {
		if via.Net != nil && via.Net.Name == netName {
			vias = append(vias, via)
		}
	}
	return vias
}

// NetInfo contains information about a net and its connections
type NetInfo struct {
	Net    *Net
	Pads   []Pad
	Tracks []Track
	Vias   []Via
}

// GetNetInfo returns complete information about a net
func (b *Board) GetNetInfo(netName string) *NetInfo {
	net := b.GetNet(netName)
	if net == nil {
		return nil
	}
	return &NetInfo{
		Net:    net,
		Pads:   b.GetNetPads(netName),
		Tracks: b.GetNetTracks(netName),
		Vias:   b.GetNetVias(netName),
	}
}

// CopperLayers returns the copper layers front to back: F.Cu, the inner
// layers by number, B.Cu.
func (b *Board) CopperLayers() []Layer {
	var out []Layer
	for _, l := range b.Layers {
		if l.IsCopper() {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(x, y Layer) int {
		return cmp.Compare(stackRank(x.Name), stackRank(y.Name))
	})
	return out
}

func stackRank(name string) int {
	switch name {
	case "F.Cu":
		return 0
	case "B.Cu":
		return 1 << 16
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "In"), ".Cu"))
	if err != nil {
		return 1 << 15
	}
	return n
}

package pcb

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp"
)

// Shared types (aliases to sexp package)
type Position = sexp.Position
type Angle = sexp.Angle
type PositionAngle = sexp.PositionAngle
type Size = sexp.Size
type BoundingBox = sexp.BoundingBox

var NewBoundingBox = sexp.NewBoundingBox

// Layer represents a PCB layer
type Layer struct {
	Number int    // Layer number (ordinal)
	Name   string // Layer name (e.g., "F.Cu", "B.Cu", "F.SilkS")
	Type   string // Layer type (e.g., "signal", "power", "user")
}

// IsCopper reports whether the layer carries copper.
func (l Layer) IsCopper() bool {
	return l.Type == "signal" || l.Type == "power" || l.Type == "mixed" || l.Type == "jumper"
}

// Net represents an electrical net
type Net struct {
	Number int    // Net number (ordinal)
	Name   string // Net name
}

// LayerSet represents a set of layer names, possibly with wildcards
// such as "*.Cu".
type LayerSet []string

// netIndex finds the declared nets of a board by number.
type netIndex map[int]*Net

func indexNets(nets []Net) netIndex {
	idx := make(netIndex, len(nets))
	for i := range nets {
		idx[nets[i].Number] = &nets[i]
	}
	return idx
}

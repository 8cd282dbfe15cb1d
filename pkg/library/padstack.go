// Package library holds the read-only padstack and package definitions that
// pins and vias derive their per-layer copper shapes from.
package library

import (
	"fmt"

	"github.com/golang/geo/r2"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
)

// ShapeKind is the geometric kind of a pad shape.
type ShapeKind int

const (
	ShapeNone ShapeKind = iota
	ShapeCircle
	ShapeRect
	ShapePolygon
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeRect:
		return "rect"
	case ShapePolygon:
		return "polygon"
	default:
		return "none"
	}
}

// PadShape is a pad outline relative to the pad centre.
type PadShape struct {
	Kind ShapeKind
	// Radius of a circle.
	Radius int64
	// Lo and Hi span a rectangle.
	Lo, Hi geometry.IntPoint
	// Points of a convex polygon.
	Points []geometry.IntPoint
}

// Circle returns a circular pad shape.
func Circle(radius int64) PadShape {
	return PadShape{Kind: ShapeCircle, Radius: radius}
}

// Rect returns a rectangular pad shape of the given size centred on the pad.
func Rect(width, height int64) PadShape {
	return PadShape{
		Kind: ShapeRect,
		Lo:   geometry.IntPoint{X: -width / 2, Y: -height / 2},
		Hi:   geometry.IntPoint{X: width - width/2, Y: height - height/2},
	}
}

// Polygon returns a polygonal pad shape.
func Polygon(points []geometry.IntPoint) PadShape {
	return PadShape{Kind: ShapePolygon, Points: append([]geometry.IntPoint(nil), points...)}
}

// IsEmpty reports whether the shape has no copper.
func (s PadShape) IsEmpty() bool {
	switch s.Kind {
	case ShapeCircle:
		return s.Radius <= 0
	case ShapeRect:
		return s.Lo.X >= s.Hi.X || s.Lo.Y >= s.Hi.Y
	case ShapePolygon:
		return len(s.Points) < 3
	default:
		return true
	}
}

// Tile returns the convex board shape of the pad placed at center, rotated by
// rotation degrees and mirrored at the y axis first if mirrored is set.
func (s PadShape) Tile(center geometry.IntPoint, rotation float64, mirrored bool) geometry.TileShape {
	c := center.Float()
	switch s.Kind {
	case ShapeCircle:
		return geometry.OctagonTile(c, float64(s.Radius))
	case ShapeRect:
		return transformTile(c, rotation, mirrored, []r2.Point{
			s.Lo.Float(),
			{X: float64(s.Hi.X), Y: float64(s.Lo.Y)},
			s.Hi.Float(),
			{X: float64(s.Lo.X), Y: float64(s.Hi.Y)},
		})
	case ShapePolygon:
		pts := make([]r2.Point, len(s.Points))
		for i, p := range s.Points {
			pts[i] = p.Float()
		}
		return transformTile(c, rotation, mirrored, pts)
	default:
		return geometry.TileShape{}
	}
}

// Extent returns the largest distance of the shape from its centre.
func (s PadShape) Extent() float64 {
	var best float64
	switch s.Kind {
	case ShapeCircle:
		best = float64(s.Radius)
	case ShapeRect:
		for _, p := range []geometry.IntPoint{s.Lo, s.Hi, {X: s.Lo.X, Y: s.Hi.Y}, {X: s.Hi.X, Y: s.Lo.Y}} {
			best = max(best, p.Float().Norm())
		}
	case ShapePolygon:
		for _, p := range s.Points {
			best = max(best, p.Float().Norm())
		}
	}
	return best
}

func (s PadShape) String() string {
	switch s.Kind {
	case ShapeCircle:
		return fmt.Sprintf("circle(%d)", s.Radius)
	case ShapeRect:
		return fmt.Sprintf("rect(%v %v)", s.Lo, s.Hi)
	case ShapePolygon:
		return fmt.Sprintf("polygon(%d points)", len(s.Points))
	default:
		return "none"
	}
}

func transformTile(center r2.Point, rotation float64, mirrored bool, pts []r2.Point) geometry.TileShape {
	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		if mirrored {
			p.X = -p.X
		}
		if rotation != 0 {
			p = rotate(p, rotation)
		}
		out[i] = center.Add(p)
	}
	return geometry.NewTileShape(out)
}

// Padstack is the per-layer pad shape definition shared by pins and vias.
type Padstack struct {
	No   int
	Name string
	// AttachAllowed permits traces to attach to a via of this padstack
	// inside a same-net SMD pad.
	AttachAllowed bool
	// Drill is the hole diameter in nanometres, 0 for SMD pads.
	Drill int64

	shapes []PadShape // indexed by layer
}

// NewPadstack creates a padstack; shapes is indexed by layer.
func NewPadstack(no int, name string, shapes []PadShape, attachAllowed bool) *Padstack {
	return &Padstack{No: no, Name: name, AttachAllowed: attachAllowed, shapes: append([]PadShape(nil), shapes...)}
}

// Shape returns the pad shape on layer.
func (p *Padstack) Shape(layer int) (PadShape, bool) {
	if p == nil || layer < 0 || layer >= len(p.shapes) || p.shapes[layer].IsEmpty() {
		return PadShape{}, false
	}
	return p.shapes[layer], true
}

// FromLayer returns the first layer with copper, or -1.
func (p *Padstack) FromLayer() int {
	if p == nil {
		return -1
	}
	for i, s := range p.shapes {
		if !s.IsEmpty() {
			return i
		}
	}
	return -1
}

// ToLayer returns the last layer with copper, or -1.
func (p *Padstack) ToLayer() int {
	if p == nil {
		return -1
	}
	for i := len(p.shapes) - 1; i >= 0; i-- {
		if !p.shapes[i].IsEmpty() {
			return i
		}
	}
	return -1
}

// LayerCount returns the number of layers the padstack was defined for.
func (p *Padstack) LayerCount() int {
	if p == nil {
		return 0
	}
	return len(p.shapes)
}

// IsSingleLayer reports whether exactly one layer carries copper.
func (p *Padstack) IsSingleLayer() bool {
	from := p.FromLayer()
	return from >= 0 && from == p.ToLayer()
}

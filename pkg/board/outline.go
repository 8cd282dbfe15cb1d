package board

import (
	"fmt"

	"github.com/golang/geo/r2"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/search"
)

// DefaultOutlineMargin is how far the keepout around the board reaches
// beyond the outline bounding box.
const DefaultOutlineMargin = 10_000_000

// Outline is the board edge. Its shapes cover everything outside the closed
// curves so that copper stays on the board.
type Outline struct {
	itemBase
	curves [][]geometry.IntPoint
	margin int64
}

// Curves returns the closed outline curves.
func (o *Outline) Curves() [][]geometry.IntPoint {
	out := make([][]geometry.IntPoint, len(o.curves))
	for i, c := range o.curves {
		out[i] = append([]geometry.IntPoint(nil), c...)
	}
	return out
}

// Contains reports whether p lies on the board.
func (o *Outline) Contains(p r2.Point) bool {
	for _, c := range o.curves {
		if (geometry.PolygonShape{Border: c}).Contains(p) {
			return true
		}
	}
	return false
}

// Keepout returns the universe box with the curves cut out.
func (o *Outline) Keepout() geometry.PolygonShape {
	r := r2.EmptyRect()
	for _, c := range o.curves {
		r = r.Union(geometry.PolygonShape{Border: c}.Bounds())
	}
	m := float64(o.margin)
	lo := geometry.RoundPoint(r.Lo().Sub(r2.Point{X: m, Y: m}))
	hi := geometry.RoundPoint(r.Hi().Add(r2.Point{X: m, Y: m}))
	shape := geometry.NewRectPolygon(lo, hi)
	shape.Holes = o.Curves()
	return shape
}

func (o *Outline) clone() Item {
	return &Outline{itemBase: o.cloneBase(), curves: o.Curves(), margin: o.margin}
}

func (o *Outline) computeLayers(b *Board) layerRange {
	return layerRange{first: 0, last: b.rules.Layers.Count() - 1}
}

func (o *Outline) computeTiles(b *Board) []search.Tile {
	shapes := o.Keepout().TileShapes()
	var tiles []search.Tile
	for l := 0; l < b.rules.Layers.Count(); l++ {
		for _, s := range shapes {
			tiles = append(tiles, search.Tile{Layer: l, Shape: s})
		}
	}
	return tiles
}

func (o *Outline) isObstacle(_ *Board, other Item) bool {
	switch other.(type) {
	case *Trace, *Via, *TraceJoin:
		return true
	}
	return false
}

// Outline returns the board outline, if set.
func (b *Board) Outline() (*Outline, bool) {
	return b.outline, b.outline != nil
}

// SetOutline replaces the board outline. A non-positive margin uses
// DefaultOutlineMargin.
func (b *Board) SetOutline(curves [][]geometry.IntPoint, margin int64, attrs Attributes) (*Outline, error) {
	if len(curves) == 0 {
		return nil, fmt.Errorf("failed to set outline: no curves")
	}
	for i, c := range curves {
		if len(c) < 3 {
			return nil, fmt.Errorf("failed to set outline: curve %d has %d points", i, len(c))
		}
	}
	if margin <= 0 {
		margin = DefaultOutlineMargin
	}
	o := &Outline{itemBase: newItemBase(attrs), margin: margin}
	o.curves = make([][]geometry.IntPoint, len(curves))
	for i, c := range curves {
		o.curves[i] = append([]geometry.IntPoint(nil), c...)
	}
	if b.outline != nil {
		b.remove(b.outline)
	}
	if err := b.insert(o); err != nil {
		return nil, err
	}
	return o, nil
}

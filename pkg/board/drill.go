package board

import (
	"fmt"

	"github.com/golang/geo/r2"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/library"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/search"
)

// Pin is a pad of a component. Its position and shapes follow from the
// component placement and the package pin.
type Pin struct {
	itemBase
	pinNo int

	placement memo[pinPlacement]
}

type pinPlacement struct {
	ok bool
	// pad is where the pad shape is drawn, center is pad corrected to lie
	// inside the pad.
	pad, center geometry.IntPoint
	rotation    float64
	mirrored    bool
	padstack    *library.Padstack
}

// PinNo returns the index of the pin in the component's package.
func (p *Pin) PinNo() int { return p.pinNo }

// Center returns the pin centre, false if component, package or padstack
// are missing.
func (p *Pin) Center(b *Board) (geometry.IntPoint, bool) {
	pl := b.pinPlacement(p)
	return pl.center, pl.ok
}

// Name returns "<component>-<pin name>".
func (p *Pin) Name(b *Board) string {
	c, ok := b.components[p.componentNo]
	if !ok {
		return fmt.Sprintf("?-%d", p.pinNo)
	}
	if pkg, ok := b.library.Package(c.Package); ok {
		if pp, ok := pkg.Pin(p.pinNo); ok {
			return c.Name + "-" + pp.Name
		}
	}
	return fmt.Sprintf("%s-%d", c.Name, p.pinNo)
}

// Padstack returns the padstack of the pin.
func (p *Pin) Padstack(b *Board) (*library.Padstack, bool) {
	pl := b.pinPlacement(p)
	return pl.padstack, pl.ok
}

// DrillAllowed reports whether a via may be placed inside the pad.
func (p *Pin) DrillAllowed(b *Board) bool {
	pl := b.pinPlacement(p)
	return pl.ok && pl.padstack.IsSingleLayer() && b.rules.ViaAtSMDAllowed
}

func (p *Pin) invalidate() {
	p.itemBase.invalidate()
	p.placement.invalidate()
}

func (p *Pin) clone() Item {
	return &Pin{itemBase: p.cloneBase(), pinNo: p.pinNo}
}

func (b *Board) pinPlacement(p *Pin) pinPlacement {
	return p.placement.get(func() pinPlacement {
		c, ok := b.components[p.componentNo]
		if !ok {
			return pinPlacement{}
		}
		pkg, ok := b.library.Package(c.Package)
		if !ok {
			return pinPlacement{}
		}
		pp, ok := pkg.Pin(p.pinNo)
		if !ok {
			return pinPlacement{}
		}
		ps, ok := b.library.Padstack(pp.Padstack)
		if !ok {
			return pinPlacement{}
		}
		place := geometry.Placement{
			Translation: c.Location.Sub(geometry.IntPoint{}),
			Rotation:    c.Rotation,
			Mirrored:    !c.OnFront,
		}
		pl := pinPlacement{ok: true, pad: place.Apply(pp.Offset), padstack: ps, mirrored: place.Mirrored}
		if pl.mirrored {
			pl.rotation = c.Rotation - pp.Rotation
		} else {
			pl.rotation = c.Rotation + pp.Rotation
		}
		pl.center = pl.pad
		for l := ps.FromLayer(); l >= 0 && l <= ps.ToLayer(); l++ {
			shape, ok := ps.Shape(l)
			if !ok {
				continue
			}
			tile := shape.Tile(pl.pad, pl.rotation, pl.mirrored)
			if !tile.IsEmpty() && !tile.Contains(pl.pad.Float()) {
				pl.center = geometry.RoundPoint(tile.Centroid())
			}
			break
		}
		return pl
	})
}

// boardLayer maps a padstack layer to the board layer it is placed on.
func (b *Board) boardLayer(padLayer int, mirrored bool) int {
	if !mirrored {
		return padLayer
	}
	return b.rules.Layers.Count() - 1 - padLayer
}

func (p *Pin) computeLayers(b *Board) layerRange {
	pl := b.pinPlacement(p)
	if !pl.ok || pl.padstack.FromLayer() < 0 {
		return layerRange{first: -1, last: -1}
	}
	from := b.boardLayer(pl.padstack.FromLayer(), pl.mirrored)
	to := b.boardLayer(pl.padstack.ToLayer(), pl.mirrored)
	return layerRange{first: min(from, to), last: max(from, to)}
}

func (p *Pin) computeTiles(b *Board) []search.Tile {
	pl := b.pinPlacement(p)
	r := b.layerRange(p)
	if !r.valid() {
		return nil
	}
	var tiles []search.Tile
	for l := r.first; l <= r.last; l++ {
		shape, ok := pl.padstack.Shape(b.boardLayer(l, pl.mirrored))
		if !ok {
			continue
		}
		tiles = append(tiles, search.Tile{Layer: l, Shape: shape.Tile(pl.pad, pl.rotation, pl.mirrored)})
	}
	return tiles
}

func (p *Pin) isObstacle(b *Board, other Item) bool {
	if other.ID() == p.id {
		return false
	}
	if _, ok := other.(*Area); ok {
		return false
	}
	if !SharesNet(p, other) {
		return true
	}
	switch o := other.(type) {
	case *Trace, *Pin, *TraceJoin, *ConductionArea:
		return false
	case *Via:
		return !(o.attachAllowed && p.DrillAllowed(b))
	}
	return true
}

// Via connects layers through a drilled hole.
type Via struct {
	itemBase
	center        geometry.IntPoint
	padstack      *library.Padstack
	attachAllowed bool
}

// Center returns the via position.
func (v *Via) Center(*Board) (geometry.IntPoint, bool) { return v.center, true }

// Position returns the via position.
func (v *Via) Position() geometry.IntPoint { return v.center }

// Padstack returns the padstack of the via.
func (v *Via) Padstack() *library.Padstack { return v.padstack }

// AttachAllowed reports whether the via may sit inside a same-net SMD pad.
func (v *Via) AttachAllowed() bool { return v.attachAllowed }

func (v *Via) clone() Item {
	c := *v
	c.itemBase = v.cloneBase()
	return &c
}

func (v *Via) computeLayers(*Board) layerRange {
	return layerRange{first: v.padstack.FromLayer(), last: v.padstack.ToLayer()}
}

func (v *Via) computeTiles(b *Board) []search.Tile {
	r := b.layerRange(v)
	if !r.valid() {
		return nil
	}
	var tiles []search.Tile
	for l := r.first; l <= r.last; l++ {
		if shape, ok := v.padstack.Shape(l); ok {
			tiles = append(tiles, search.Tile{Layer: l, Shape: shape.Tile(v.center, 0, false)})
		}
	}
	return tiles
}

func (v *Via) isObstacle(b *Board, other Item) bool {
	return drillObstacle(b, v, v.attachAllowed, other)
}

// TraceJoin is a small square point where traces of several layers meet.
type TraceJoin struct {
	itemBase
	center   geometry.IntPoint
	span     layerRange
	halfSize int64
}

// Center returns the join position.
func (j *TraceJoin) Center(*Board) (geometry.IntPoint, bool) { return j.center, true }

// Position returns the join position.
func (j *TraceJoin) Position() geometry.IntPoint { return j.center }

// HalfSize returns the half side of the join square.
func (j *TraceJoin) HalfSize() int64 { return j.halfSize }

func (j *TraceJoin) clone() Item {
	c := *j
	c.itemBase = j.cloneBase()
	return &c
}

func (j *TraceJoin) computeLayers(*Board) layerRange { return j.span }

func (j *TraceJoin) computeTiles(*Board) []search.Tile {
	if !j.span.valid() {
		return nil
	}
	size := float64(2 * j.halfSize)
	shape := geometry.RectTile(r2.RectFromCenterSize(j.center.Float(), r2.Point{X: size, Y: size}))
	tiles := make([]search.Tile, 0, j.span.last-j.span.first+1)
	for l := j.span.first; l <= j.span.last; l++ {
		tiles = append(tiles, search.Tile{Layer: l, Shape: shape})
	}
	return tiles
}

func (j *TraceJoin) isObstacle(b *Board, other Item) bool {
	return drillObstacle(b, j, true, other)
}

func drillObstacle(b *Board, self Item, attachAllowed bool, other Item) bool {
	if other.ID() == self.ID() {
		return false
	}
	if !SharesNet(self, other) {
		return true
	}
	if pin, ok := other.(*Pin); ok {
		return !(attachAllowed && pin.DrillAllowed(b))
	}
	return false
}

// InsertPin inserts pin pinNo of component componentNo. The component must
// have been added with AddComponent.
func (b *Board) InsertPin(componentNo, pinNo int, attrs Attributes) (*Pin, error) {
	if _, ok := b.components[componentNo]; !ok {
		return nil, fmt.Errorf("failed to insert pin %d: component %d not found", pinNo, componentNo)
	}
	attrs.ComponentNo = componentNo
	p := &Pin{itemBase: newItemBase(attrs), pinNo: pinNo}
	if err := b.insert(p); err != nil {
		return nil, err
	}
	return p, nil
}

// InsertVia inserts a via at center.
func (b *Board) InsertVia(center geometry.IntPoint, padstack *library.Padstack, attachAllowed bool, attrs Attributes) (*Via, error) {
	if padstack == nil || padstack.FromLayer() < 0 {
		return nil, fmt.Errorf("failed to insert via at %v: padstack has no copper", center)
	}
	v := &Via{itemBase: newItemBase(attrs), center: center, padstack: padstack, attachAllowed: attachAllowed}
	if err := b.insert(v); err != nil {
		return nil, err
	}
	return v, nil
}

// InsertTraceJoin inserts a trace join on the layers first..last. A
// non-positive halfSize uses the rules' trace join size.
func (b *Board) InsertTraceJoin(center geometry.IntPoint, first, last int, halfSize int64, attrs Attributes) (*TraceJoin, error) {
	for _, l := range []int{first, last} {
		if err := b.checkLayer(l); err != nil {
			return nil, err
		}
	}
	if halfSize <= 0 {
		halfSize = b.rules.TraceJoinHalfSize
	}
	j := &TraceJoin{
		itemBase: newItemBase(attrs),
		center:   center,
		span:     layerRange{first: min(first, last), last: max(first, last)},
		halfSize: halfSize,
	}
	if err := b.insert(j); err != nil {
		return nil, err
	}
	return j, nil
}

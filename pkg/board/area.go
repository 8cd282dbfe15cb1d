package board

import (
	"fmt"

	"github.com/golang/geo/r2"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/search"
)

// AreaShape is a polygon relative to its placement.
type AreaShape struct {
	Relative  geometry.PolygonShape
	Placement geometry.Placement
}

// Absolute returns the shape in board coordinates.
func (s AreaShape) Absolute() geometry.PolygonShape {
	return s.Relative.Transform(s.Placement)
}

type areaBase struct {
	itemBase
	name     string
	shape    AreaShape
	span     layerRange
	absolute memo[geometry.PolygonShape]
}

// Name returns the area name.
func (a *areaBase) Name() string { return a.name }

// Shape returns the relative shape and its placement.
func (a *areaBase) Shape() AreaShape { return a.shape }

// AbsoluteShape returns the polygon in board coordinates.
func (a *areaBase) AbsoluteShape() geometry.PolygonShape {
	return a.absolute.get(a.shape.Absolute)
}

// Contains reports whether p lies inside the area.
func (a *areaBase) Contains(p r2.Point) bool {
	return a.AbsoluteShape().Contains(p)
}

func (a *areaBase) invalidate() {
	a.itemBase.invalidate()
	a.absolute.invalidate()
}

func (a *areaBase) cloneArea() areaBase {
	return areaBase{itemBase: a.cloneBase(), name: a.name, shape: a.shape, span: a.span}
}

func (a *areaBase) computeLayers(*Board) layerRange { return a.span }

func (a *areaBase) computeTiles(*Board) []search.Tile {
	if !a.span.valid() {
		return nil
	}
	shapes := a.AbsoluteShape().TileShapes()
	tiles := make([]search.Tile, 0, len(shapes)*(a.span.last-a.span.first+1))
	for l := a.span.first; l <= a.span.last; l++ {
		for _, s := range shapes {
			tiles = append(tiles, search.Tile{Layer: l, Shape: s})
		}
	}
	return tiles
}

// ConductionArea is a copper plane on one layer.
type ConductionArea struct {
	areaBase
	obstacle bool
}

// Layer returns the plane layer.
func (c *ConductionArea) Layer() int { return c.span.first }

// ActsAsObstacle reports whether the plane blocks items of other nets.
func (c *ConductionArea) ActsAsObstacle() bool { return c.obstacle }

func (c *ConductionArea) clone() Item {
	return &ConductionArea{areaBase: c.cloneArea(), obstacle: c.obstacle}
}

func (c *ConductionArea) isObstacle(_ *Board, other Item) bool {
	if other.ID() == c.id {
		return false
	}
	return c.obstacle && !SharesNet(c, other)
}

// ViaKeepout forbids vias.
type ViaKeepout struct {
	areaBase
}

func (k *ViaKeepout) clone() Item { return &ViaKeepout{areaBase: k.cloneArea()} }

func (k *ViaKeepout) isObstacle(_ *Board, other Item) bool {
	_, ok := other.(*Via)
	return ok
}

// ComponentKeepout forbids pins of other components.
type ComponentKeepout struct {
	areaBase
}

func (k *ComponentKeepout) clone() Item { return &ComponentKeepout{areaBase: k.cloneArea()} }

func (k *ComponentKeepout) isObstacle(_ *Board, other Item) bool {
	p, ok := other.(*Pin)
	return ok && p.componentNo != k.componentNo
}

// Area is an obstacle area for traces and vias of other nets.
type Area struct {
	areaBase
}

func (a *Area) clone() Item { return &Area{areaBase: a.cloneArea()} }

func (a *Area) isObstacle(_ *Board, other Item) bool {
	switch other.(type) {
	case *Trace, *Via:
		return !SharesNet(a, other)
	}
	return false
}

func (b *Board) newAreaBase(name string, shape AreaShape, first, last int, attrs Attributes) (areaBase, error) {
	for _, l := range []int{first, last} {
		if err := b.checkLayer(l); err != nil {
			return areaBase{}, err
		}
	}
	if shape.Relative.IsEmpty() {
		return areaBase{}, fmt.Errorf("failed to create area %q: polygon has fewer than 3 points", name)
	}
	return areaBase{
		itemBase: newItemBase(attrs),
		name:     name,
		shape:    shape,
		span:     layerRange{first: min(first, last), last: max(first, last)},
	}, nil
}

// InsertConductionArea inserts a copper plane on layer.
func (b *Board) InsertConductionArea(name string, shape AreaShape, layer int, obstacle bool, attrs Attributes) (*ConductionArea, error) {
	base, err := b.newAreaBase(name, shape, layer, layer, attrs)
	if err != nil {
		return nil, err
	}
	c := &ConductionArea{areaBase: base, obstacle: obstacle}
	if err := b.insert(c); err != nil {
		return nil, err
	}
	return c, nil
}

// InsertViaKeepout inserts a via keepout on the layers first..last.
func (b *Board) InsertViaKeepout(name string, shape AreaShape, first, last int, attrs Attributes) (*ViaKeepout, error) {
	base, err := b.newAreaBase(name, shape, first, last, attrs)
	if err != nil {
		return nil, err
	}
	k := &ViaKeepout{areaBase: base}
	if err := b.insert(k); err != nil {
		return nil, err
	}
	return k, nil
}

// InsertComponentKeepout inserts a keepout for pins of other components.
func (b *Board) InsertComponentKeepout(name string, shape AreaShape, first, last int, attrs Attributes) (*ComponentKeepout, error) {
	base, err := b.newAreaBase(name, shape, first, last, attrs)
	if err != nil {
		return nil, err
	}
	k := &ComponentKeepout{areaBase: base}
	if err := b.insert(k); err != nil {
		return nil, err
	}
	return k, nil
}

// InsertArea inserts an obstacle area on the layers first..last.
func (b *Board) InsertArea(name string, shape AreaShape, first, last int, attrs Attributes) (*Area, error) {
	base, err := b.newAreaBase(name, shape, first, last, attrs)
	if err != nil {
		return nil, err
	}
	a := &Area{areaBase: base}
	if err := b.insert(a); err != nil {
		return nil, err
	}
	return a, nil
}

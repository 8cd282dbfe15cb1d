// Package board is the item model of a printed circuit board and the
// topology maintenance that keeps it consistent: contacts between items,
// splitting and combining traces, cycle removal and clearance checks.
//
// Items never point back to the board. Every operation that needs the
// spatial index, the rules or the library is a method on *Board.
package board

import (
	"github.com/golang/geo/r2"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/search"
)

// Item is a board item. The set of implementations is closed: *Pin, *Via,
// *TraceJoin, *Trace, *ConductionArea, *ViaKeepout, *ComponentKeepout,
// *Area and *Outline.
type Item interface {
	search.Object

	Nets() NetSet
	ClearanceClass() int
	FixedState() FixedState
	ComponentNo() int
	IsOnBoard() bool
	IsDeleteFixed() bool

	// AutorouteInfo is scratch state owned by an autorouter.
	AutorouteInfo() any
	SetAutorouteInfo(v any)

	base() *itemBase
	computeTiles(b *Board) []search.Tile
	computeLayers(b *Board) layerRange
	isObstacle(b *Board, other Item) bool
	invalidate()
	clone() Item
}

// Attributes are the properties shared by all items, given on insertion.
type Attributes struct {
	// ID is used when positive; otherwise the board assigns one.
	ID             int
	Nets           NetSet
	ClearanceClass int
	Fixed          FixedState
	ComponentNo    int
}

type layerRange struct {
	first, last int
}

func (r layerRange) valid() bool { return r.first >= 0 && r.first <= r.last }

func (r layerRange) contains(layer int) bool { return r.valid() && layer >= r.first && layer <= r.last }

func (r layerRange) overlaps(o layerRange) bool {
	return r.valid() && o.valid() && r.first <= o.last && o.first <= r.last
}

type itemBase struct {
	id             int
	nets           NetSet
	clearanceClass int
	fixed          FixedState
	componentNo    int
	onBoard        bool
	autoroute      any

	tiles  memo[[]search.Tile]
	layers memo[layerRange]
	bounds memo[r2.Rect]
}

func newItemBase(a Attributes) itemBase {
	return itemBase{
		id:             a.ID,
		nets:           a.Nets,
		clearanceClass: a.ClearanceClass,
		fixed:          a.Fixed,
		componentNo:    a.ComponentNo,
	}
}

// ID returns the item id.
func (it *itemBase) ID() int { return it.id }

// Nets returns the nets of the item.
func (it *itemBase) Nets() NetSet { return it.nets }

// ClearanceClass returns the clearance class index.
func (it *itemBase) ClearanceClass() int { return it.clearanceClass }

// FixedState returns how strongly the item is fixed.
func (it *itemBase) FixedState() FixedState { return it.fixed }

// ComponentNo returns the owning component, 0 for none.
func (it *itemBase) ComponentNo() int { return it.componentNo }

// IsOnBoard reports whether the item is inserted.
func (it *itemBase) IsOnBoard() bool { return it.onBoard }

// IsDeleteFixed reports whether DeleteItem refuses the item.
func (it *itemBase) IsDeleteFixed() bool {
	return it.fixed == DeleteFixed || it.componentNo > 0
}

func (it *itemBase) AutorouteInfo() any { return it.autoroute }

func (it *itemBase) SetAutorouteInfo(v any) { it.autoroute = v }

func (it *itemBase) base() *itemBase { return it }

func (it *itemBase) invalidate() {
	it.tiles.invalidate()
	it.layers.invalidate()
	it.bounds.invalidate()
}

// cloneBase copies the attributes without the derived data.
func (it *itemBase) cloneBase() itemBase {
	return itemBase{
		id:             it.id,
		nets:           it.nets,
		clearanceClass: it.clearanceClass,
		fixed:          it.fixed,
		componentNo:    it.componentNo,
	}
}

// SharesNet reports whether a and b have a net in common.
func SharesNet(a, b Item) bool {
	return a.Nets().Intersects(b.Nets())
}

// DrillItem is an item centred on a point: *Pin, *Via and *TraceJoin.
type DrillItem interface {
	Item
	// Center returns the drill centre, false if it cannot be derived.
	Center(b *Board) (geometry.IntPoint, bool)
}

package board

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
)

// overlapEpsilon is the smallest overlap area reported as a violation.
const overlapEpsilon = 1e-3

// ClearanceViolation is an overlap of two items grown by half their
// required clearance.
type ClearanceViolation struct {
	First, Second Item
	Layer         int
	Overlap       geometry.TileShape
}

func (v ClearanceViolation) String() string {
	return fmt.Sprintf("clearance violation between %d and %d on layer %d (area %.0f)",
		v.First.ID(), v.Second.ID(), v.Layer, v.Overlap.Area())
}

// ClearanceViolations returns the violations between it and the items
// around it, with it as First.
func (b *Board) ClearanceViolations(it Item) []ClearanceViolation {
	if !it.IsOnBoard() {
		return nil
	}
	var out []ClearanceViolation
	for _, tile := range b.Tiles(it) {
		grow := b.rules.MaxClearance(it.ClearanceClass(), tile.Layer)
		for _, e := range b.tree.Overlapping(tile.Shape.Offset(float64(grow)), tile.Layer) {
			other, ok := e.Object.(Item)
			if !ok || other.ID() == it.ID() {
				continue
			}
			if !b.IsObstacle(it, other) || !b.IsObstacle(other, it) {
				continue
			}
			if b.tiePinExempt(it, other) {
				continue
			}
			half := float64(b.rules.Clearance(it.ClearanceClass(), other.ClearanceClass(), tile.Layer)) / 2
			overlap := orderedOverlap(it.ID(), tile.Shape.Offset(half), other.ID(), e.Shape.Offset(half))
			if overlap.Area() <= overlapEpsilon {
				continue
			}
			out = append(out, ClearanceViolation{First: it, Second: other, Layer: tile.Layer, Overlap: overlap})
		}
	}
	clearanceViolations.Add(float64(len(out)))
	return out
}

// orderedOverlap intersects the shape of the lower id with the other one,
// so that the result does not depend on which item asked.
func orderedOverlap(idA int, a geometry.TileShape, idB int, c geometry.TileShape) geometry.TileShape {
	if idA > idB {
		a, c = c, a
	}
	return a.Intersection(c)
}

// AllClearanceViolations returns every violation once, with the lower id as
// First, ordered by First.
func (b *Board) AllClearanceViolations() []ClearanceViolation {
	var out []ClearanceViolation
	for _, it := range b.Items() {
		for _, v := range b.ClearanceViolations(it) {
			if v.First.ID() < v.Second.ID() {
				out = append(out, v)
			}
		}
	}
	return out
}

// tiePinExempt reports whether x and y are traces of different nets joined
// by a pin carrying several nets.
func (b *Board) tiePinExempt(x, y Item) bool {
	tx, ok := x.(*Trace)
	if !ok {
		return false
	}
	ty, ok := y.(*Trace)
	if !ok {
		return false
	}
	for _, c := range b.NormalContacts(tx) {
		pin, ok := c.(*Pin)
		if !ok || pin.nets.Len() < 2 {
			continue
		}
		if containsItem(b.NormalContacts(pin), ty) {
			return true
		}
	}
	return false
}

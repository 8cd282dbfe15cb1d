package board

import (
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
)

// SplitAtLine cuts segment lineNo of t where it meets line. The pieces
// replace t on the board; a piece with coincident endpoints is dropped and
// returned as nil. It reports false, leaving the board alone, when the cut
// would fall on an endpoint or strictly inside a same-net pin pad.
func (b *Board) SplitAtLine(t *Trace, lineNo int, line geometry.Line) (*Trace, *Trace, bool) {
	if !t.onBoard || lineNo < 1 || lineNo > t.polyline.LineCount()-2 {
		return nil, nil, false
	}
	at, ok := t.polyline.Line(lineNo).Intersection(line)
	if !ok {
		return nil, nil, false
	}
	if b.splitInsidePadProhibited(t, at) {
		return nil, nil, false
	}
	first, second, ok := t.polyline.Split(lineNo, line)
	if !ok {
		return nil, nil, false
	}

	b.StartNotify()
	defer b.EndNotify()
	b.remove(t)
	attrs := Attributes{
		Nets:           t.nets,
		ClearanceClass: t.clearanceClass,
		Fixed:          t.fixed,
		ComponentNo:    t.componentNo,
	}
	var pieces [2]*Trace
	for i, p := range []geometry.Polyline{first, second} {
		piece, err := b.InsertTraceWithoutCleaning(p, t.halfWidth, t.layer, attrs)
		if err != nil {
			b.logger.Debug("dropped split piece", "trace", t.id, "error", err)
			continue
		}
		pieces[i] = piece
	}
	traceSplits.Inc()
	return pieces[0], pieces[1], true
}

// SplitAtPoint cuts t at p, which must lie on one of its segments, with a
// line perpendicular to that segment.
func (b *Board) SplitAtPoint(t *Trace, p geometry.IntPoint) bool {
	if !t.onBoard {
		return false
	}
	rp := p.Rational()
	for k := 1; k <= t.polyline.SegmentCount(); k++ {
		if !t.polyline.SegmentContains(k, rp) {
			continue
		}
		cut := geometry.LineThrough(p, t.polyline.Line(k).Direction().Turn45(2))
		if _, _, ok := b.SplitAtLine(t, k, cut); ok {
			return true
		}
	}
	return false
}

// splitInsidePadProhibited reports whether p lies inside the pad of a
// same-net pin but not at its centre, where no other trace ends.
func (b *Board) splitInsidePadProhibited(t *Trace, p geometry.RationalPoint) bool {
	if t.nets.IsEmpty() {
		return false
	}
	padFound := false
	for _, it := range b.itemsAt(p.Float(), t.layer) {
		if !SharesNet(t, it) {
			continue
		}
		switch x := it.(type) {
		case *Pin:
			center, ok := x.Center(b)
			if ok && center.Rational().Equal(p) {
				return false
			}
			padFound = true
		case *Trace:
			if x.id != t.id && (x.FirstCorner().Equal(p) || x.LastCorner().Equal(p)) {
				return false
			}
		}
	}
	return padFound
}

// Split cuts t and the same-net traces it crosses at their intersections,
// and at the centres of same-net drill items on its segments. Redundant
// pieces forming cycles are removed. A trace whose both ends lie in the
// same same-net plane is removed. Split returns the pieces of t still on the
// board.
func (b *Board) Split(t *Trace) []*Trace {
	if !t.onBoard {
		return nil
	}
	b.StartNotify()
	defer b.EndNotify()

	var result []*Trace
	work := []*Trace{t}
	for passes := 0; len(work) > 0; passes++ {
		if passes >= b.limits.MaxSplitPasses {
			b.logger.Warn("split stopped", "limit", "MaxSplitPasses", "value", b.limits.MaxSplitPasses, "trace", t.id)
			limitsExhausted.WithLabelValues("MaxSplitPasses").Inc()
			result = append(result, work...)
			break
		}
		cur := work[0]
		work = work[1:]
		if !cur.onBoard {
			continue
		}
		pieces, split := b.splitOnce(cur)
		if !split {
			result = append(result, cur)
			continue
		}
		work = append(work, pieces...)
	}

	out := result[:0]
	for _, p := range result {
		if p.onBoard {
			out = append(out, p)
		}
	}
	return out
}

// splitOnce performs the first split of t. It returns the own pieces and
// true if t was split or removed.
func (b *Board) splitOnce(t *Trace) ([]*Trace, bool) {
	ignoreAreas := b.rules.IgnoreCyclesWithAreas(t.nets.Slice())
	tiles := b.Tiles(t)
	for k := 1; k <= t.polyline.SegmentCount(); k++ {
		shape := tiles[k-1].Shape
		entries := b.tree.Overlapping(shape, t.layer)
		restarts := 0
	scan:
		for i := 0; i < len(entries); i++ {
			e := entries[i]
			other, ok := e.Object.(Item)
			if !ok {
				continue
			}
			if other.ID() == t.id {
				if pieces, ok := b.splitSelfCrossing(t, k, e.ShapeIndex+1); ok {
					return pieces, true
				}
				continue
			}
			if !SharesNet(t, other) {
				continue
			}
			switch x := other.(type) {
			case *Trace:
				pieces, ownSplit, otherSplit := b.splitCrossing(t, k, x, e.ShapeIndex+1)
				if ownSplit {
					return pieces, true
				}
				if otherSplit && restarts < b.limits.MaxSplitPasses {
					restarts++
					entries = b.tree.Overlapping(shape, t.layer)
					i = -1
					continue scan
				}
			case DrillItem:
				center, ok := x.Center(b)
				if !ok || !t.polyline.SegmentContains(k, center.Rational()) {
					continue
				}
				cut := geometry.LineThrough(center, t.polyline.Line(k).Direction().Turn45(2))
				if first, second, ok := b.SplitAtLine(t, k, cut); ok {
					return b.removeCycles(nonNil(first, second)), true
				}
			case *ConductionArea:
				if ignoreAreas || t.fixed.IsUserFixed() {
					continue
				}
				if containsItem(b.StartContacts(t), x) && containsItem(b.EndContacts(t), x) {
					b.remove(t)
					tracesRemoved.WithLabelValues("plane").Inc()
					return nil, true
				}
			}
		}
	}
	return nil, false
}

// splitCrossing splits the other trace first, then t, where segment k of t
// meets segment m of other.
func (b *Board) splitCrossing(t *Trace, k int, other *Trace, m int) (own []*Trace, ownSplit, otherSplit bool) {
	ownLines := t.polyline.IntersectionLines(k, other.polyline, m)
	otherLines := other.polyline.IntersectionLines(m, t.polyline, k)

	otherPieces := []*Trace{other}
	for _, line := range otherLines {
		if first, second, ok := b.SplitAtLine(other, m, line); ok {
			otherPieces = nonNil(first, second)
			otherSplit = true
			break
		}
	}
	for _, line := range ownLines {
		if first, second, ok := b.SplitAtLine(t, k, line); ok {
			own = nonNil(first, second)
			ownSplit = true
			break
		}
	}
	if otherSplit || ownSplit {
		b.removeCycles(otherPieces)
		own = b.removeCycles(own)
	}
	return own, ownSplit, otherSplit
}

// splitSelfCrossing splits t where segment k crosses its own segment m.
// Neighbouring segments and segments meeting only at a common corner are
// ignored.
func (b *Board) splitSelfCrossing(t *Trace, k, m int) ([]*Trace, bool) {
	if m >= k-1 && m <= k+1 {
		return nil, false
	}
	for _, line := range t.polyline.IntersectionLines(k, t.polyline, m) {
		at, ok := t.polyline.Line(k).Intersection(line)
		if !ok || sharedCorner(t.polyline, k, m, at) {
			continue
		}
		if first, second, ok := b.SplitAtLine(t, k, line); ok {
			return b.removeCycles(nonNil(first, second)), true
		}
	}
	return nil, false
}

func sharedCorner(p geometry.Polyline, k, m int, at geometry.RationalPoint) bool {
	a0, a1 := p.SegmentCorners(k)
	b0, b1 := p.SegmentCorners(m)
	onA := at.Equal(a0) || at.Equal(a1)
	onB := at.Equal(b0) || at.Equal(b1)
	return onA && onB
}

// removeCycles removes the pieces forming a cycle and returns the others.
func (b *Board) removeCycles(pieces []*Trace) []*Trace {
	kept := pieces[:0:0]
	for _, p := range pieces {
		if b.RemoveIfCycle(p) {
			continue
		}
		if p.onBoard {
			kept = append(kept, p)
		}
	}
	return kept
}

// RemoveIfCycle removes t if it is redundant.
func (b *Board) RemoveIfCycle(t *Trace) bool {
	if !t.onBoard || !b.HasCycle(t) {
		return false
	}
	b.remove(t)
	tracesRemoved.WithLabelValues("cycle").Inc()
	return true
}

func nonNil(ts ...*Trace) []*Trace {
	out := make([]*Trace, 0, len(ts))
	for _, t := range ts {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

func containsItem(items []Item, it Item) bool {
	for _, c := range items {
		if c.ID() == it.ID() {
			return true
		}
	}
	return false
}

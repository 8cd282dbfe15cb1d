package board

import (
	"github.com/golang/geo/r2"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
)

// itemsAt returns the items whose shapes on layer touch p, sorted by id.
func (b *Board) itemsAt(p r2.Point, layer int) []Item {
	entries := b.tree.Overlapping(geometry.ProbeTile(p), layer)
	out := make([]Item, 0, len(entries))
	for _, e := range entries {
		it, ok := e.Object.(Item)
		if !ok {
			continue
		}
		if n := len(out); n > 0 && out[n-1].ID() == it.ID() {
			continue
		}
		out = append(out, it)
	}
	return out
}

// touchesPoint reports whether c makes electrical contact at p on layer:
// a trace ending there, a drill item centred there or a plane covering it.
func (b *Board) touchesPoint(c Item, p geometry.RationalPoint, layer int) bool {
	switch x := c.(type) {
	case *Trace:
		return x.layer == layer && (x.FirstCorner().Equal(p) || x.LastCorner().Equal(p))
	case DrillItem:
		center, ok := x.Center(b)
		return ok && b.IsOnLayer(x, layer) && center.Rational().Equal(p)
	case *ConductionArea:
		return x.Layer() == layer && x.Contains(p.Float())
	}
	return false
}

// contactsAt returns the items sharing a net with it that make contact at p
// on layer.
func (b *Board) contactsAt(it Item, p geometry.RationalPoint, layer int) []Item {
	var out []Item
	for _, c := range b.itemsAt(p.Float(), layer) {
		if c.ID() == it.ID() || !SharesNet(it, c) {
			continue
		}
		if b.touchesPoint(c, p, layer) {
			out = append(out, c)
		}
	}
	return out
}

// StartContacts returns the items touching the first corner of t.
func (b *Board) StartContacts(t *Trace) []Item {
	if !t.onBoard {
		return nil
	}
	return b.contactsAt(t, t.FirstCorner(), t.layer)
}

// EndContacts returns the items touching the last corner of t.
func (b *Board) EndContacts(t *Trace) []Item {
	if !t.onBoard {
		return nil
	}
	return b.contactsAt(t, t.LastCorner(), t.layer)
}

// NormalContacts returns the items in electrical contact with it, sorted by
// id. Contacts share a net and a layer with it. Traces touch at their
// endpoints, drill items at their centre and planes where they cover one of
// those points.
func (b *Board) NormalContacts(it Item) []Item {
	if !it.IsOnBoard() {
		return nil
	}
	found := make(map[int]Item)
	add := func(cs []Item) {
		for _, c := range cs {
			if b.SharesLayer(it, c) {
				found[c.ID()] = c
			}
		}
	}
	switch x := it.(type) {
	case *Trace:
		add(b.StartContacts(x))
		add(b.EndContacts(x))
	case DrillItem:
		center, ok := x.Center(b)
		if !ok {
			b.logger.Debug("no contacts for drill item without centre", "id", x.ID())
			return nil
		}
		r := b.layerRange(x)
		for l := r.first; r.valid() && l <= r.last; l++ {
			add(b.contactsAt(x, center.Rational(), l))
		}
	case *ConductionArea:
		for _, tile := range b.Tiles(x) {
			for _, e := range b.tree.Overlapping(tile.Shape, tile.Layer) {
				c, ok := e.Object.(Item)
				if !ok || c.ID() == x.ID() || !SharesNet(x, c) {
					continue
				}
				if b.areaTouches(x, c) {
					found[c.ID()] = c
				}
			}
		}
	}
	out := make([]Item, 0, len(found))
	for _, c := range found {
		out = append(out, c)
	}
	sortItems(out)
	return out
}

func (b *Board) areaTouches(a *ConductionArea, c Item) bool {
	switch x := c.(type) {
	case *Trace:
		return x.layer == a.Layer() && (a.Contains(x.FirstCorner().Float()) || a.Contains(x.LastCorner().Float()))
	case DrillItem:
		center, ok := x.Center(b)
		return ok && b.IsOnLayer(x, a.Layer()) && a.Contains(center.Float())
	}
	return false
}

func isPlane(it Item) bool {
	_, ok := it.(*ConductionArea)
	return ok
}

// ConnectedSet returns the items reachable from it through contacts, it
// included, sorted by id. With net > 0 only items on that net are added; a
// seed off that net is returned alone. With stopAtPlanes, planes not
// belonging to a component are added but not expanded.
func (b *Board) ConnectedSet(it Item, net int, stopAtPlanes bool) []Item {
	if net > 0 && !it.Nets().Contains(net) {
		return []Item{it}
	}
	visited := map[int]Item{it.ID(): it}
	stack := []Item{it}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if stopAtPlanes && cur.ID() != it.ID() && isPlane(cur) && cur.ComponentNo() == 0 {
			continue
		}
		for _, c := range b.NormalContacts(cur) {
			if net > 0 && !c.Nets().Contains(net) {
				continue
			}
			if _, ok := visited[c.ID()]; ok {
				continue
			}
			visited[c.ID()] = c
			stack = append(stack, c)
		}
	}
	out := make([]Item, 0, len(visited))
	for _, c := range visited {
		out = append(out, c)
	}
	sortItems(out)
	return out
}

// HasCycle reports whether t is redundant: its start is connected to its
// end by other items as well.
func (b *Board) HasCycle(t *Trace) bool {
	if !t.onBoard {
		return false
	}
	ignoreAreas := b.rules.IgnoreCyclesWithAreas(t.nets.Slice())
	start := b.StartContacts(t)
	end := b.EndContacts(t)
	for _, s := range start {
		if ignoreAreas && isPlane(s) {
			continue
		}
		for _, e := range end {
			if s.ID() == e.ID() {
				return true
			}
		}
	}

	type frame struct {
		item Item
		from int
	}
	visited := make(map[int]bool, len(start))
	var stack []frame
	for _, s := range start {
		visited[s.ID()] = true
		if ignoreAreas && isPlane(s) {
			continue
		}
		stack = append(stack, frame{item: s, from: t.id})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range b.NormalContacts(f.item) {
			if c.ID() == f.from {
				continue
			}
			if c.ID() == t.id {
				return true
			}
			if visited[c.ID()] {
				continue
			}
			visited[c.ID()] = true
			if ignoreAreas && isPlane(c) {
				continue
			}
			stack = append(stack, frame{item: c, from: f.item.ID()})
		}
	}
	return false
}

// IsFanoutVia reports whether v escapes a single layer pin: it touches such
// a pin directly, or through a trace shorter than the fanout length, and the
// pin has no other contact. Items in ignore are not considered.
func (b *Board) IsFanoutVia(v *Via, ignore []Item) bool {
	skip := make(map[int]bool, len(ignore))
	for _, it := range ignore {
		skip[it.ID()] = true
	}
	center := v.center.Rational()
	for _, c := range b.NormalContacts(v) {
		if skip[c.ID()] {
			continue
		}
		switch x := c.(type) {
		case *Pin:
			if b.isFanoutPin(x, v) {
				return true
			}
		case *Trace:
			if x.Length() >= float64(b.rules.FanoutTraceLength) {
				continue
			}
			var far geometry.RationalPoint
			switch {
			case x.FirstCorner().Equal(center):
				far = x.LastCorner()
			case x.LastCorner().Equal(center):
				far = x.FirstCorner()
			default:
				continue
			}
			for _, cc := range b.contactsAt(x, far, x.layer) {
				if p, ok := cc.(*Pin); ok && !skip[p.ID()] && b.isFanoutPin(p, x) {
					return true
				}
			}
		}
	}
	return false
}

// isFanoutPin reports whether p is a single layer pin whose only contact is
// via.
func (b *Board) isFanoutPin(p *Pin, via Item) bool {
	ps, ok := p.Padstack(b)
	if !ok || !ps.IsSingleLayer() {
		return false
	}
	contacts := b.NormalContacts(p)
	return len(contacts) == 1 && contacts[0].ID() == via.ID()
}

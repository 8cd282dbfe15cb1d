package board

// Combine merges t with traces continuing it at its start or end until
// nothing more combines. It reports whether t changed.
func (b *Board) Combine(t *Trace) bool {
	if !t.onBoard {
		return false
	}
	b.StartNotify()
	defer b.EndNotify()
	combined := false
	for steps := 0; ; steps++ {
		if steps >= b.limits.MaxCombineSteps {
			b.logger.Warn("combine stopped", "limit", "MaxCombineSteps", "value", b.limits.MaxCombineSteps, "trace", t.id)
			limitsExhausted.WithLabelValues("MaxCombineSteps").Inc()
			break
		}
		if !b.combineAtStart(t) && !b.combineAtEnd(t) {
			break
		}
		combined = true
	}
	return combined
}

// combinePartner returns the only trace touching t at p if it can be joined
// with t. Planes touching p are ignored.
func (b *Board) combinePartner(t *Trace, contacts []Item) (*Trace, bool) {
	var partner *Trace
	for _, c := range contacts {
		if isPlane(c) {
			continue
		}
		o, ok := c.(*Trace)
		if !ok || partner != nil {
			return nil, false
		}
		partner = o
	}
	if partner == nil || partner.id == t.id {
		return nil, false
	}
	if partner.layer != t.layer || partner.halfWidth != t.halfWidth || partner.fixed != t.fixed ||
		!partner.nets.Equal(t.nets) {
		return nil, false
	}
	return partner, true
}

func (b *Board) combineAtStart(t *Trace) bool {
	other, ok := b.combinePartner(t, b.StartContacts(t))
	if !ok {
		return false
	}
	head := other.polyline
	reversed := false
	switch {
	case head.LastCorner().Equal(t.FirstCorner()):
	case head.FirstCorner().Equal(t.FirstCorner()):
		head = head.Reverse()
		reversed = true
	default:
		return false
	}
	joined, skipped, expected, err := head.Append(t.polyline)
	if err != nil || joined.FirstCorner().Equal(joined.LastCorner()) {
		return false
	}

	skip := 0
	if skipped {
		skip = 1
	}
	b.undo.Saved(t)
	b.undo.Saved(other)
	otherSegments, ownSegments := other.polyline.SegmentCount(), t.polyline.SegmentCount()
	t.polyline = joined
	t.invalidate()
	tiles := b.Tiles(t)
	if reversed || joined.LineCount() != expected {
		b.tree.Remove(other)
		b.tree.Insert(t, tiles)
	} else {
		b.tree.MergeEntriesInFront(other, t, tiles, otherSegments-skip, ownSegments-skip)
	}
	b.dropMerged(other)
	b.notify(ItemChanged, t)
	traceCombines.Inc()
	return true
}

func (b *Board) combineAtEnd(t *Trace) bool {
	other, ok := b.combinePartner(t, b.EndContacts(t))
	if !ok {
		return false
	}
	tail := other.polyline
	reversed := false
	switch {
	case tail.FirstCorner().Equal(t.LastCorner()):
	case tail.LastCorner().Equal(t.LastCorner()):
		tail = tail.Reverse()
		reversed = true
	default:
		return false
	}
	joined, skipped, expected, err := t.polyline.Append(tail)
	if err != nil || joined.FirstCorner().Equal(joined.LastCorner()) {
		return false
	}

	skip := 0
	if skipped {
		skip = 1
	}
	b.undo.Saved(t)
	b.undo.Saved(other)
	otherSegments, ownSegments := other.polyline.SegmentCount(), t.polyline.SegmentCount()
	t.polyline = joined
	t.invalidate()
	tiles := b.Tiles(t)
	if reversed || joined.LineCount() != expected {
		b.tree.Remove(other)
		b.tree.Insert(t, tiles)
	} else {
		b.tree.MergeEntriesAtEnd(other, t, tiles, ownSegments-skip, otherSegments-skip)
	}
	b.dropMerged(other)
	b.notify(ItemChanged, t)
	traceCombines.Inc()
	return true
}

// dropMerged takes a trace whose index entries were merged into another off
// the board.
func (b *Board) dropMerged(other *Trace) {
	delete(b.items, other.id)
	other.onBoard = false
	other.invalidate()
	b.notify(ItemRemoved, other)
}

package board

import "time"

// Normalize splits t at its intersections with same-net items, removes
// degenerate pieces and combines the rest with continuing traces, repeating
// for combined results. Notifications are delivered after the whole pass.
// It reports whether the board changed.
func (b *Board) Normalize(t *Trace) bool {
	if !t.onBoard {
		return false
	}
	defer func(start time.Time) { normalizeDuration.Observe(time.Since(start).Seconds()) }(time.Now())
	b.StartNotify()
	defer b.EndNotify()

	before := b.changes
	work := []*Trace{t}
	for steps := 0; len(work) > 0; steps++ {
		if steps >= b.limits.MaxNormalizeSteps {
			b.logger.Warn("normalize stopped", "limit", "MaxNormalizeSteps", "value", b.limits.MaxNormalizeSteps, "trace", t.id)
			limitsExhausted.WithLabelValues("MaxNormalizeSteps").Inc()
			break
		}
		cur := work[0]
		work = work[1:]
		if !cur.onBoard {
			continue
		}
		for _, piece := range b.Split(cur) {
			if !piece.onBoard {
				continue
			}
			if piece.IsDegenerate() {
				b.remove(piece)
				tracesRemoved.WithLabelValues("degenerate").Inc()
				continue
			}
			if b.Combine(piece) {
				work = append(work, piece)
			}
		}
	}
	return b.changes != before
}

// NormalizeAll normalizes every trace in id order and returns how many
// traces led to changes. It stops early when stop requests it.
func (b *Board) NormalizeAll(stop Stoppable) int {
	b.StartNotify()
	defer b.EndNotify()
	changed := 0
	for _, t := range b.Traces() {
		if stopRequested(stop) {
			b.logger.Info("normalize interrupted", "changed", changed)
			break
		}
		if b.Normalize(t) {
			changed++
		}
	}
	return changed
}

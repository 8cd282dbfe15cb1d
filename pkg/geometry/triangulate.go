package geometry

import (
	"slices"

	"github.com/golang/geo/r2"
)

// Triangulate decomposes a simple polygon with holes into triangles by ear
// clipping. Holes are first bridged into the border so that a single weakly
// simple ring remains.
func Triangulate(border []r2.Point, holes [][]r2.Point) []TileShape {
	if len(border) < 3 {
		return nil
	}
	return clipEars(bridgeHoles(border, holes))
}

// bridgeHoles returns the counterclockwise border with every clockwise hole
// spliced in.
func bridgeHoles(border []r2.Point, holes [][]r2.Point) []r2.Point {
	ring := slices.Clone(border)
	if signedArea(ring) < 0 {
		reverse(ring)
	}
	pending := make([][]r2.Point, 0, len(holes))
	for _, h := range holes {
		h = slices.Clone(h)
		if signedArea(h) > 0 {
			reverse(h)
		}
		pending = append(pending, h)
	}
	// rightmost holes first, so that bridges do not cross unmerged holes
	slices.SortFunc(pending, func(a, b []r2.Point) int {
		ax, bx := maxX(a), maxX(b)
		switch {
		case ax > bx:
			return -1
		case ax < bx:
			return 1
		}
		return 0
	})
	for i, h := range pending {
		ring = bridgeHole(ring, h, pending[i+1:])
	}
	return ring
}

func maxX(pts []r2.Point) float64 {
	best := pts[0].X
	for _, p := range pts[1:] {
		best = max(best, p.X)
	}
	return best
}

// bridgeHole splices hole into ring through the shortest visible bridge from
// the hole's rightmost vertex.
func bridgeHole(ring, hole []r2.Point, others [][]r2.Point) []r2.Point {
	m := 0
	for i, p := range hole {
		if p.X > hole[m].X {
			m = i
		}
	}
	mp := hole[m]

	best := -1
	bestDist := 0.0
	for i, v := range ring {
		d := v.Sub(mp).Norm()
		if best >= 0 && d >= bestDist {
			continue
		}
		if !visible(mp, v, ring, i, hole, others) {
			continue
		}
		best, bestDist = i, d
	}
	if best < 0 {
		// no clean bridge; fall back to the nearest vertex
		for i, v := range ring {
			if d := v.Sub(mp).Norm(); best < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}
	}

	out := make([]r2.Point, 0, len(ring)+len(hole)+2)
	out = append(out, ring[:best+1]...)
	for k := 0; k <= len(hole); k++ {
		out = append(out, hole[(m+k)%len(hole)])
	}
	out = append(out, ring[best])
	out = append(out, ring[best+1:]...)
	return out
}

// visible reports whether the segment from m to ring[vi] crosses no edge of
// the ring, the hole, or the remaining holes.
func visible(m, v r2.Point, ring []r2.Point, vi int, hole []r2.Point, others [][]r2.Point) bool {
	if crossesRing(m, v, ring) || crossesRing(m, v, hole) {
		return false
	}
	for _, o := range others {
		if crossesRing(m, v, o) {
			return false
		}
	}
	// the bridge must leave v into the interior of the ring
	n := len(ring)
	prev, next := ring[(vi+n-1)%n], ring[(vi+1)%n]
	return insideCone(prev, v, next, m)
}

func crossesRing(a, b r2.Point, ring []r2.Point) bool {
	n := len(ring)
	for i := range n {
		c, d := ring[i], ring[(i+1)%n]
		if c == a || c == b || d == a || d == b {
			continue
		}
		if segmentsIntersect(a, b, c, d) {
			return true
		}
	}
	return false
}

func segmentsIntersect(a, b, c, d r2.Point) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(c, d, a)) || (d2 == 0 && onSegment(c, d, b)) ||
		(d3 == 0 && onSegment(a, b, c)) || (d4 == 0 && onSegment(a, b, d))
}

func orient(a, b, c r2.Point) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

func onSegment(a, b, p r2.Point) bool {
	return min(a.X, b.X) <= p.X && p.X <= max(a.X, b.X) &&
		min(a.Y, b.Y) <= p.Y && p.Y <= max(a.Y, b.Y)
}

// insideCone reports whether p lies inside the interior angle at v of the
// counterclockwise chain prev, v, next.
func insideCone(prev, v, next, p r2.Point) bool {
	if orient(prev, v, next) >= 0 {
		return orient(v, next, p) >= 0 && orient(prev, v, p) >= 0
	}
	return !(orient(v, prev, p) > 0 && orient(next, v, p) > 0)
}

func clipEars(ring []r2.Point) []TileShape {
	idx := make([]int, len(ring))
	for i := range idx {
		idx[i] = i
	}
	var result []TileShape
	for guard := 0; len(idx) > 3 && guard < len(ring)*len(ring); guard++ {
		n := len(idx)
		clipped := false
		for i := range n {
			a, b, c := ring[idx[(i+n-1)%n]], ring[idx[i]], ring[idx[(i+1)%n]]
			if !isEar(a, b, c, ring, idx) {
				continue
			}
			if orient(a, b, c) > 0 {
				result = append(result, NewTileShape([]r2.Point{a, b, c}))
			}
			idx = slices.Delete(idx, i, i+1)
			clipped = true
			break
		}
		if !clipped {
			// numerically stuck; drop a vertex whose triangle is flat or convex
			for i := range n {
				a, b, c := ring[idx[(i+n-1)%n]], ring[idx[i]], ring[idx[(i+1)%n]]
				if orient(a, b, c) >= 0 {
					if orient(a, b, c) > 0 {
						result = append(result, NewTileShape([]r2.Point{a, b, c}))
					}
					idx = slices.Delete(idx, i, i+1)
					clipped = true
					break
				}
			}
		}
		if !clipped {
			break
		}
	}
	if len(idx) == 3 {
		a, b, c := ring[idx[0]], ring[idx[1]], ring[idx[2]]
		if orient(a, b, c) > 0 {
			result = append(result, NewTileShape([]r2.Point{a, b, c}))
		}
	}
	return result
}

func isEar(a, b, c r2.Point, ring []r2.Point, idx []int) bool {
	if orient(a, b, c) <= 0 {
		return false
	}
	for _, k := range idx {
		p := ring[k]
		if p == a || p == b || p == c {
			continue
		}
		if orient(a, b, p) >= 0 && orient(b, c, p) >= 0 && orient(c, a, p) >= 0 {
			return false
		}
	}
	return true
}

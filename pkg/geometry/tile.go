package geometry

import (
	"math"
	"slices"

	"github.com/golang/geo/r2"
)

// chamfer is tan(22.5°), the relative corner cut of a regular octagon.
var chamfer = math.Tan(math.Pi / 8)

// ProbeHalfSize is the half side length of the square used to probe the
// shape index at a single point.
const ProbeHalfSize = 0.5

const tileEpsilon = 1e-6

// TileShape is a convex polygon with counterclockwise vertices. It is the
// unit stored in the shape index and the unit of overlap tests. Shapes with
// fewer than three vertices are degenerate points or segments.
type TileShape struct {
	vertices []r2.Point
}

// NewTileShape returns the convex hull of points.
func NewTileShape(points []r2.Point) TileShape {
	return TileShape{vertices: convexHull(points)}
}

// SegmentTile returns the octagonal outline of a segment from a to b drawn
// with the given half width.
func SegmentTile(a, b r2.Point, halfWidth float64) TileShape {
	d := b.Sub(a)
	u := r2.Point{X: 1, Y: 0}
	if l := d.Norm(); l > 0 {
		u = d.Mul(1 / l)
	}
	n := u.Ortho()
	w, c := halfWidth, halfWidth*chamfer
	return NewTileShape([]r2.Point{
		b.Add(u.Mul(c)).Sub(n.Mul(w)),
		b.Add(u.Mul(w)).Sub(n.Mul(c)),
		b.Add(u.Mul(w)).Add(n.Mul(c)),
		b.Add(u.Mul(c)).Add(n.Mul(w)),
		a.Sub(u.Mul(c)).Add(n.Mul(w)),
		a.Sub(u.Mul(w)).Add(n.Mul(c)),
		a.Sub(u.Mul(w)).Sub(n.Mul(c)),
		a.Sub(u.Mul(c)).Sub(n.Mul(w)),
	})
}

// OctagonTile returns the regular octagon circumscribing the circle of the
// given radius around center.
func OctagonTile(center r2.Point, radius float64) TileShape {
	return SegmentTile(center, center, radius)
}

// RectTile returns r as a tile shape.
func RectTile(r r2.Rect) TileShape {
	return NewTileShape([]r2.Point{
		r.Lo(),
		{X: r.X.Hi, Y: r.Y.Lo},
		r.Hi(),
		{X: r.X.Lo, Y: r.Y.Hi},
	})
}

// ProbeTile returns the tiny square used to find items at a point.
func ProbeTile(p r2.Point) TileShape {
	return RectTile(r2.RectFromCenterSize(p, r2.Point{X: 2 * ProbeHalfSize, Y: 2 * ProbeHalfSize}))
}

// Vertices returns a copy of the vertices.
func (s TileShape) Vertices() []r2.Point {
	return slices.Clone(s.vertices)
}

// IsEmpty reports whether s has no vertices.
func (s TileShape) IsEmpty() bool {
	return len(s.vertices) == 0
}

// Bounds returns the bounding box of s.
func (s TileShape) Bounds() r2.Rect {
	if len(s.vertices) == 0 {
		return r2.EmptyRect()
	}
	return r2.RectFromPoints(s.vertices...)
}

// Area returns the area of s.
func (s TileShape) Area() float64 {
	return math.Abs(signedArea(s.vertices))
}

// Centroid returns the vertex centroid of s.
func (s TileShape) Centroid() r2.Point {
	var c r2.Point
	if len(s.vertices) == 0 {
		return c
	}
	for _, v := range s.vertices {
		c = c.Add(v)
	}
	return c.Mul(1 / float64(len(s.vertices)))
}

// Contains reports whether p lies inside or on the border of s.
func (s TileShape) Contains(p r2.Point) bool {
	switch len(s.vertices) {
	case 0:
		return false
	case 1:
		return s.vertices[0].Sub(p).Norm() <= tileEpsilon
	case 2:
		return distanceToSegment(p, s.vertices[0], s.vertices[1]) <= tileEpsilon
	}
	n := len(s.vertices)
	for i := range n {
		a, b := s.vertices[i], s.vertices[(i+1)%n]
		e := b.Sub(a)
		l := e.Norm()
		if l == 0 {
			continue
		}
		if e.Cross(p.Sub(a))/l < -tileEpsilon {
			return false
		}
	}
	return true
}

// Intersects reports whether s and o overlap or touch.
func (s TileShape) Intersects(o TileShape) bool {
	if s.IsEmpty() || o.IsEmpty() {
		return false
	}
	if !s.Bounds().ExpandedByMargin(tileEpsilon).Intersects(o.Bounds()) {
		return false
	}
	return !separated(s.vertices, o.vertices) && !separated(o.vertices, s.vertices)
}

// separated reports whether an edge normal of a separates a from b.
func separated(a, b []r2.Point) bool {
	n := len(a)
	edges := n
	if n == 2 {
		edges = 1
	}
	for i := 0; i < edges && n > 1; i++ {
		e := a[(i+1)%n].Sub(a[i])
		l := e.Norm()
		if l == 0 {
			continue
		}
		axis := e.Ortho().Mul(1 / l)
		minA, maxA := project(a, axis)
		minB, maxB := project(b, axis)
		if maxA < minB-tileEpsilon || maxB < minA-tileEpsilon {
			return true
		}
	}
	return false
}

func project(pts []r2.Point, axis r2.Point) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		d := p.Dot(axis)
		lo = min(lo, d)
		hi = max(hi, d)
	}
	return lo, hi
}

// Intersection clips s against o.
func (s TileShape) Intersection(o TileShape) TileShape {
	if len(s.vertices) < 3 || len(o.vertices) < 3 {
		return TileShape{}
	}
	out := slices.Clone(s.vertices)
	n := len(o.vertices)
	for i := 0; i < n && len(out) > 0; i++ {
		a, b := o.vertices[i], o.vertices[(i+1)%n]
		out = clipHalfPlane(out, a, b)
	}
	if len(out) == 0 {
		return TileShape{}
	}
	return NewTileShape(out)
}

// clipHalfPlane keeps the part of poly left of the directed line a->b.
func clipHalfPlane(poly []r2.Point, a, b r2.Point) []r2.Point {
	e := b.Sub(a)
	inside := func(p r2.Point) bool { return e.Cross(p.Sub(a)) >= 0 }
	var out []r2.Point
	for i, cur := range poly {
		prev := poly[(i+len(poly)-1)%len(poly)]
		curIn, prevIn := inside(cur), inside(prev)
		if curIn != prevIn {
			out = append(out, lineCut(prev, cur, a, b))
		}
		if curIn {
			out = append(out, cur)
		}
	}
	return out
}

func lineCut(p, q, a, b r2.Point) r2.Point {
	e := b.Sub(a)
	d := q.Sub(p)
	denom := e.Cross(d)
	if denom == 0 {
		return p
	}
	t := a.Sub(p).Cross(e) / -denom
	return p.Add(d.Mul(t))
}

// Offset grows s outward by d. The rounded corners are replaced by tangents
// to the circle of radius d, so the result is a convex polygon enclosing
// every point within d of s.
func (s TileShape) Offset(d float64) TileShape {
	if d == 0 || s.IsEmpty() {
		return s
	}
	switch len(s.vertices) {
	case 1:
		return OctagonTile(s.vertices[0], d)
	case 2:
		return SegmentTile(s.vertices[0], s.vertices[1], d)
	}
	n := len(s.vertices)
	pts := make([]r2.Point, 0, 4*n)
	for i, v := range s.vertices {
		prev := s.vertices[(i+n-1)%n]
		next := s.vertices[(i+1)%n]
		n1 := outwardNormal(prev, v)
		n2 := outwardNormal(v, next)
		mid := n1.Add(n2)
		if l := mid.Norm(); l > 0 {
			mid = mid.Mul(1 / l)
			// mitre blunt corners, chamfer sharp ones
			if cosHalf := mid.Dot(n1); cosHalf >= 0.5 {
				pts = append(pts, v.Add(mid.Mul(d/cosHalf)))
			} else {
				k := d / (1 + cosHalf)
				pts = append(pts, v.Add(n1.Add(mid).Mul(k)), v.Add(n2.Add(mid).Mul(k)))
			}
		}
		pts = append(pts, v.Add(n1.Mul(d)), v.Add(n2.Mul(d)))
	}
	return NewTileShape(pts)
}

func outwardNormal(a, b r2.Point) r2.Point {
	e := b.Sub(a)
	l := e.Norm()
	if l == 0 {
		return r2.Point{}
	}
	return r2.Point{X: e.Y / l, Y: -e.X / l}
}

// Translate moves s by v.
func (s TileShape) Translate(v r2.Point) TileShape {
	out := make([]r2.Point, len(s.vertices))
	for i, p := range s.vertices {
		out[i] = p.Add(v)
	}
	return TileShape{vertices: out}
}

func signedArea(pts []r2.Point) float64 {
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].Cross(pts[j])
	}
	return sum / 2
}

func distanceToSegment(p, a, b r2.Point) float64 {
	d := b.Sub(a)
	l2 := d.Dot(d)
	if l2 == 0 {
		return p.Sub(a).Norm()
	}
	t := math.Max(0, math.Min(1, p.Sub(a).Dot(d)/l2))
	return p.Sub(a.Add(d.Mul(t))).Norm()
}

// convexHull returns the counterclockwise convex hull using the monotone
// chain algorithm. Collinear points are dropped.
func convexHull(points []r2.Point) []r2.Point {
	pts := slices.Clone(points)
	slices.SortFunc(pts, func(a, b r2.Point) int {
		if a.X != b.X {
			if a.X < b.X {
				return -1
			}
			return 1
		}
		switch {
		case a.Y < b.Y:
			return -1
		case a.Y > b.Y:
			return 1
		}
		return 0
	})
	pts = slices.Compact(pts)
	if len(pts) < 3 {
		return pts
	}
	turn := func(o, a, b r2.Point) float64 { return a.Sub(o).Cross(b.Sub(o)) }
	hull := make([]r2.Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && turn(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

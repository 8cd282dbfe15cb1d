package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// PolygonShape is a simple integer polygon with optional holes.
type PolygonShape struct {
	Border []IntPoint
	Holes  [][]IntPoint
}

// NewRectPolygon returns the axis parallel rectangle spanned by lo and hi.
func NewRectPolygon(lo, hi IntPoint) PolygonShape {
	return PolygonShape{Border: []IntPoint{
		lo, {X: hi.X, Y: lo.Y}, hi, {X: lo.X, Y: hi.Y},
	}}
}

// IsEmpty reports whether the border encloses no area.
func (s PolygonShape) IsEmpty() bool {
	return len(s.Border) < 3
}

// Bounds returns the bounding box of the border.
func (s PolygonShape) Bounds() r2.Rect {
	if len(s.Border) == 0 {
		return r2.EmptyRect()
	}
	return r2.RectFromPoints(toFloat(s.Border)...)
}

// Area returns the border area minus the hole areas.
func (s PolygonShape) Area() float64 {
	a := math.Abs(signedArea(toFloat(s.Border)))
	for _, h := range s.Holes {
		a -= math.Abs(signedArea(toFloat(h)))
	}
	return math.Max(a, 0)
}

// Contains reports whether p lies inside the border (boundary included) and
// not strictly inside a hole.
func (s PolygonShape) Contains(p r2.Point) bool {
	if s.IsEmpty() {
		return false
	}
	if !ringContains(toFloat(s.Border), p, true) {
		return false
	}
	for _, h := range s.Holes {
		if ringContains(toFloat(h), p, false) {
			return false
		}
	}
	return true
}

// Centroid returns the area centroid of the border.
func (s PolygonShape) Centroid() r2.Point {
	pts := toFloat(s.Border)
	a := signedArea(pts)
	if a == 0 {
		return TileShape{vertices: pts}.Centroid()
	}
	var c r2.Point
	for i := range pts {
		j := (i + 1) % len(pts)
		f := pts[i].Cross(pts[j])
		c = c.Add(pts[i].Add(pts[j]).Mul(f))
	}
	return c.Mul(1 / (6 * a))
}

// Transform applies a placement to every point.
func (s PolygonShape) Transform(pl Placement) PolygonShape {
	out := PolygonShape{Border: pl.applyAll(s.Border)}
	for _, h := range s.Holes {
		out.Holes = append(out.Holes, pl.applyAll(h))
	}
	if pl.Mirrored {
		// mirroring flips orientation
		reverse(out.Border)
		for _, h := range out.Holes {
			reverse(h)
		}
	}
	return out
}

// Translate moves the shape by v.
func (s PolygonShape) Translate(v Vector) PolygonShape {
	return s.Transform(Placement{Translation: v})
}

// TileShapes decomposes the shape into convex tiles.
func (s PolygonShape) TileShapes() []TileShape {
	if s.IsEmpty() {
		return nil
	}
	holes := make([][]r2.Point, 0, len(s.Holes))
	for _, h := range s.Holes {
		if len(h) >= 3 {
			holes = append(holes, toFloat(h))
		}
	}
	if len(holes) == 0 {
		border := toFloat(s.Border)
		if isConvex(border) {
			return []TileShape{NewTileShape(border)}
		}
	}
	return Triangulate(toFloat(s.Border), holes)
}

// Ring returns the border with the holes spliced in through zero width
// bridges. The result encloses the same area and is how KiCad stores zone
// outlines with holes.
func (s PolygonShape) Ring() []IntPoint {
	var holes [][]r2.Point
	for _, h := range s.Holes {
		if len(h) >= 3 {
			holes = append(holes, toFloat(h))
		}
	}
	if s.IsEmpty() || len(holes) == 0 {
		return s.Border
	}
	ring := bridgeHoles(toFloat(s.Border), holes)
	out := make([]IntPoint, len(ring))
	for i, p := range ring {
		out[i] = RoundPoint(p)
	}
	return out
}

// Placement positions a relative shape on the board: mirror at the y axis
// when Mirrored, then rotate counterclockwise by Rotation degrees, then
// translate.
type Placement struct {
	Translation Vector
	Rotation    float64
	Mirrored    bool
}

// Apply transforms a relative point into board coordinates.
func (pl Placement) Apply(p IntPoint) IntPoint {
	if pl.Mirrored {
		p = IntPoint{X: -p.X, Y: p.Y}
	}
	if pl.Rotation != 0 {
		p = p.Rotate(pl.Rotation, r2.Point{})
	}
	return p.Translate(pl.Translation)
}

func (pl Placement) applyAll(pts []IntPoint) []IntPoint {
	out := make([]IntPoint, len(pts))
	for i, p := range pts {
		out[i] = pl.Apply(p)
	}
	return out
}

func toFloat(pts []IntPoint) []r2.Point {
	out := make([]r2.Point, len(pts))
	for i, p := range pts {
		out[i] = p.Float()
	}
	return out
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func isConvex(pts []r2.Point) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	sign := 0
	for i := range n {
		a, b, c := pts[i], pts[(i+1)%n], pts[(i+2)%n]
		cr := b.Sub(a).Cross(c.Sub(b))
		switch {
		case cr > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case cr < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		}
	}
	return sign != 0
}

// ringContains is a crossing number test. Points on the ring count as
// inside when boundary is set.
func ringContains(ring []r2.Point, p r2.Point, boundary bool) bool {
	n := len(ring)
	for i := range n {
		if distanceToSegment(p, ring[i], ring[(i+1)%n]) <= tileEpsilon {
			return boundary
		}
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

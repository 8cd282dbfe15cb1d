package geometry

import (
	"fmt"
	"math/big"
)

// Side is the orientation of a point relative to a directed line.
type Side int

const (
	OnTheRight Side = -1
	Collinear  Side = 0
	OnTheLeft  Side = 1
)

// Line is an infinite directed line through two distinct integer points.
type Line struct {
	A IntPoint
	B IntPoint
}

// NewLine returns the line from a to b.
func NewLine(a, b IntPoint) Line {
	return Line{A: a, B: b}
}

// LineThrough returns the line through p in direction dir.
func LineThrough(p IntPoint, dir Vector) Line {
	return Line{A: p, B: p.Translate(dir)}
}

// Direction returns B - A.
func (l Line) Direction() Vector {
	return l.B.Sub(l.A)
}

// IsValid reports whether the defining points differ.
func (l Line) IsValid() bool {
	return l.A != l.B
}

// Opposite returns the line with reversed direction.
func (l Line) Opposite() Line {
	return Line{A: l.B, B: l.A}
}

// IsParallel reports whether l and o have parallel (or antiparallel)
// directions.
func (l Line) IsParallel(o Line) bool {
	return l.Direction().Determinant(o.Direction()).Sign() == 0
}

// IsEqualOrOpposite reports whether l and o describe the same point set.
func (l Line) IsEqualOrOpposite(o Line) bool {
	return l.IsParallel(o) && l.SideOfInt(o.A) == Collinear
}

// SideOfInt returns the side of p relative to l.
func (l Line) SideOfInt(p IntPoint) Side {
	d := l.Direction()
	return Side(det(d.X, d.Y, p.X-l.A.X, p.Y-l.A.Y).Sign())
}

// SideOf returns the side of the rational point p relative to l.
func (l Line) SideOf(p RationalPoint) Side {
	d := l.Direction()
	dx, dy := p.diff(l.A.Rational())
	lhs := new(big.Rat).Mul(new(big.Rat).SetInt64(d.X), dy)
	rhs := new(big.Rat).Mul(new(big.Rat).SetInt64(d.Y), dx)
	return Side(lhs.Sub(lhs, rhs).Sign())
}

// Intersection returns the exact intersection of l and o. It fails for
// parallel lines.
func (l Line) Intersection(o Line) (RationalPoint, bool) {
	d1 := l.Direction()
	d2 := o.Direction()
	denom := d1.Determinant(d2)
	if denom.Sign() == 0 {
		return RationalPoint{}, false
	}
	w := o.A.Sub(l.A)
	t := w.Determinant(d2)

	x := new(big.Int).Mul(big.NewInt(d1.X), t)
	y := new(big.Int).Mul(big.NewInt(d1.Y), t)
	rx := new(big.Rat).SetFrac(x, denom)
	ry := new(big.Rat).SetFrac(y, denom)
	rx.Add(rx, new(big.Rat).SetInt64(l.A.X))
	ry.Add(ry, new(big.Rat).SetInt64(l.A.Y))
	return RationalPoint{x: rx, y: ry}, true
}

// Translate moves l by v.
func (l Line) Translate(v Vector) Line {
	return Line{A: l.A.Translate(v), B: l.B.Translate(v)}
}

// Turn90 rotates l by factor*90 degrees around pole.
func (l Line) Turn90(factor int, pole IntPoint) Line {
	return Line{A: l.A.Turn90(factor, pole), B: l.B.Turn90(factor, pole)}
}

// Mirror mirrors l at the vertical (or horizontal) line through pole.
func (l Line) Mirror(vertical bool, pole IntPoint) Line {
	if vertical {
		return Line{A: l.A.MirrorVertical(pole), B: l.B.MirrorVertical(pole)}
	}
	return Line{A: l.A.MirrorHorizontal(pole), B: l.B.MirrorHorizontal(pole)}
}

func (l Line) String() string {
	return fmt.Sprintf("line%v->%v", l.A, l.B)
}

// betweenInclusive reports whether p lies on the closed segment from a to b,
// assuming p is collinear with it.
func betweenInclusive(p, a, b RationalPoint) bool {
	ax, ay := a.diff(p)
	bx, by := b.diff(p)
	dot := new(big.Rat).Mul(ax, bx)
	dot.Add(dot, new(big.Rat).Mul(ay, by))
	return dot.Sign() <= 0
}

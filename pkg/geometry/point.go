// Package geometry provides the exact integer and rational geometry the board
// core persists, plus the float tile shapes used for spatial queries.
//
// Corners of a trace are intersections of integer lines and therefore
// rational. Everything that decides topology (corner equality, which side of
// a line a point lies on, whether a point is on a segment) is computed
// exactly with math/big. Floats appear only in derived data: tile shapes,
// lengths and rotations by angles that are not multiples of 90 degrees.
package geometry

import (
	"fmt"
	"math"
	"math/big"

	"github.com/golang/geo/r2"
)

// IntPoint is a point with integer board coordinates (nanometres for boards
// imported from KiCad).
type IntPoint struct {
	X int64
	Y int64
}

// Sub returns the vector from o to p.
func (p IntPoint) Sub(o IntPoint) Vector {
	return Vector{X: p.X - o.X, Y: p.Y - o.Y}
}

// Translate returns p moved by v.
func (p IntPoint) Translate(v Vector) IntPoint {
	return IntPoint{X: p.X + v.X, Y: p.Y + v.Y}
}

// Float converts p to a float point.
func (p IntPoint) Float() r2.Point {
	return r2.Point{X: float64(p.X), Y: float64(p.Y)}
}

// Rational converts p to an exact rational point.
func (p IntPoint) Rational() RationalPoint {
	return RationalPoint{
		x: new(big.Rat).SetInt64(p.X),
		y: new(big.Rat).SetInt64(p.Y),
	}
}

// Turn90 rotates p by factor*90 degrees counterclockwise around pole.
func (p IntPoint) Turn90(factor int, pole IntPoint) IntPoint {
	return pole.Translate(p.Sub(pole).Turn45(2 * factor))
}

// MirrorVertical mirrors p at the vertical line through pole.
func (p IntPoint) MirrorVertical(pole IntPoint) IntPoint {
	return IntPoint{X: 2*pole.X - p.X, Y: p.Y}
}

// MirrorHorizontal mirrors p at the horizontal line through pole.
func (p IntPoint) MirrorHorizontal(pole IntPoint) IntPoint {
	return IntPoint{X: p.X, Y: 2*pole.Y - p.Y}
}

// Rotate rotates p by angle degrees around pole and rounds the result.
func (p IntPoint) Rotate(angle float64, pole r2.Point) IntPoint {
	if factor, ok := quarterTurns(angle); ok {
		rounded := IntPoint{X: int64(math.Round(pole.X)), Y: int64(math.Round(pole.Y))}
		if rounded.Float() == pole {
			return p.Turn90(factor, rounded)
		}
	}
	rad := angle * math.Pi / 180
	sin, cos := math.Sincos(rad)
	d := p.Float().Sub(pole)
	q := pole.Add(r2.Point{X: d.X*cos - d.Y*sin, Y: d.X*sin + d.Y*cos})
	return RoundPoint(q)
}

func (p IntPoint) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// RoundPoint rounds a float point to the nearest integer point.
func RoundPoint(p r2.Point) IntPoint {
	return IntPoint{X: int64(math.Round(p.X)), Y: int64(math.Round(p.Y))}
}

// quarterTurns reports whether angle is a multiple of 90 degrees.
func quarterTurns(angle float64) (int, bool) {
	q := angle / 90
	r := math.Round(q)
	if math.Abs(q-r) > 1e-9 {
		return 0, false
	}
	return int(r), true
}

// Vector is an integer displacement.
type Vector struct {
	X int64
	Y int64
}

// IsZero reports whether v has zero length.
func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Negate returns -v.
func (v Vector) Negate() Vector {
	return Vector{X: -v.X, Y: -v.Y}
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

// Turn45 turns v by factor*45 degrees counterclockwise. Odd factors scale
// the vector by sqrt(2) so that the result stays integer.
func (v Vector) Turn45(factor int) Vector {
	n := factor % 8
	if n < 0 {
		n += 8
	}
	x, y := v.X, v.Y
	switch n {
	case 1:
		return Vector{X: x - y, Y: x + y}
	case 2:
		return Vector{X: -y, Y: x}
	case 3:
		return Vector{X: -x - y, Y: x - y}
	case 4:
		return Vector{X: -x, Y: -y}
	case 5:
		return Vector{X: -x + y, Y: -x - y}
	case 6:
		return Vector{X: y, Y: -x}
	case 7:
		return Vector{X: x + y, Y: -x + y}
	default:
		return v
	}
}

// Determinant returns the exact cross product v x o.
func (v Vector) Determinant(o Vector) *big.Int {
	return det(v.X, v.Y, o.X, o.Y)
}

// Float converts v to a float vector.
func (v Vector) Float() r2.Point {
	return r2.Point{X: float64(v.X), Y: float64(v.Y)}
}

// Length returns the euclidean length of v.
func (v Vector) Length() float64 {
	return math.Hypot(float64(v.X), float64(v.Y))
}

func det(ax, ay, bx, by int64) *big.Int {
	l := new(big.Int).Mul(big.NewInt(ax), big.NewInt(by))
	r := new(big.Int).Mul(big.NewInt(ay), big.NewInt(bx))
	return l.Sub(l, r)
}

// RationalPoint is an exact point with rational coordinates. Values are
// immutable; every operation allocates its result.
type RationalPoint struct {
	x *big.Rat
	y *big.Rat
}

// NewRationalPoint creates a rational point from two rationals. The inputs
// are copied.
func NewRationalPoint(x, y *big.Rat) RationalPoint {
	return RationalPoint{x: new(big.Rat).Set(x), y: new(big.Rat).Set(y)}
}

// IsValid reports whether p was constructed (the zero value is invalid).
func (p RationalPoint) IsValid() bool {
	return p.x != nil && p.y != nil
}

// X returns a copy of the x coordinate.
func (p RationalPoint) X() *big.Rat { return new(big.Rat).Set(p.x) }

// Y returns a copy of the y coordinate.
func (p RationalPoint) Y() *big.Rat { return new(big.Rat).Set(p.y) }

// Equal reports exact equality. Invalid points are equal to nothing.
func (p RationalPoint) Equal(o RationalPoint) bool {
	if !p.IsValid() || !o.IsValid() {
		return false
	}
	return p.x.Cmp(o.x) == 0 && p.y.Cmp(o.y) == 0
}

// Float converts p to a float point.
func (p RationalPoint) Float() r2.Point {
	if !p.IsValid() {
		return r2.Point{}
	}
	x, _ := p.x.Float64()
	y, _ := p.y.Float64()
	return r2.Point{X: x, Y: y}
}

// Int returns p as an integer point if both coordinates are integers.
func (p RationalPoint) Int() (IntPoint, bool) {
	if !p.IsValid() || !p.x.IsInt() || !p.y.IsInt() {
		return IntPoint{}, false
	}
	if !p.x.Num().IsInt64() || !p.y.Num().IsInt64() {
		return IntPoint{}, false
	}
	return IntPoint{X: p.x.Num().Int64(), Y: p.y.Num().Int64()}, true
}

// Round returns the nearest integer point.
func (p RationalPoint) Round() IntPoint {
	if ip, ok := p.Int(); ok {
		return ip
	}
	return RoundPoint(p.Float())
}

// Translate returns p moved by v.
func (p RationalPoint) Translate(v Vector) RationalPoint {
	return RationalPoint{
		x: new(big.Rat).Add(p.x, new(big.Rat).SetInt64(v.X)),
		y: new(big.Rat).Add(p.y, new(big.Rat).SetInt64(v.Y)),
	}
}

// Less orders points lexicographically by x, then y.
func (p RationalPoint) Less(o RationalPoint) bool {
	if c := p.x.Cmp(o.x); c != 0 {
		return c < 0
	}
	return p.y.Cmp(o.y) < 0
}

func (p RationalPoint) String() string {
	if !p.IsValid() {
		return "(invalid)"
	}
	if ip, ok := p.Int(); ok {
		return ip.String()
	}
	return fmt.Sprintf("(%s, %s)", p.x.RatString(), p.y.RatString())
}

// diff returns p - o as rationals.
func (p RationalPoint) diff(o RationalPoint) (*big.Rat, *big.Rat) {
	return new(big.Rat).Sub(p.x, o.x), new(big.Rat).Sub(p.y, o.y)
}

// DistanceSquare returns the approximate squared distance between p and o.
func (p RationalPoint) DistanceSquare(o RationalPoint) float64 {
	a, b := p.Float(), o.Float()
	d := a.Sub(b)
	return d.Dot(d)
}

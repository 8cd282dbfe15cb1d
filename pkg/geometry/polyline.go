package geometry

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/golang/geo/r2"
)

// ErrTooFewLines is returned when a polyline would have fewer than three
// lines, that is, no segment between two end caps.
var ErrTooFewLines = errors.New("polyline needs at least 3 lines")

// Polyline is a trace centre line in line representation. Lines 0 and n-1
// are end caps; lines 1..n-2 carry the segments. Corner i is the exact
// intersection of lines i and i+1. Polylines are immutable values.
type Polyline struct {
	lines   []Line
	corners []RationalPoint
}

// NewPolyline creates a polyline from lines. Consecutive parallel lines and
// zero length interior segments are removed first.
func NewPolyline(lines []Line) (Polyline, error) {
	for i, l := range lines {
		if !l.IsValid() {
			return Polyline{}, fmt.Errorf("failed to create polyline: line %d has identical points", i)
		}
	}
	normalized := normalizeLines(lines)
	if len(normalized) < 3 {
		return Polyline{}, ErrTooFewLines
	}
	p := Polyline{lines: normalized, corners: make([]RationalPoint, len(normalized)-1)}
	for i := range p.corners {
		c, ok := normalized[i].Intersection(normalized[i+1])
		if !ok {
			return Polyline{}, fmt.Errorf("failed to create polyline: lines %d and %d are parallel", i, i+1)
		}
		p.corners[i] = c
	}
	return p, nil
}

// PolylineFromCorners creates a polyline through integer corner points. The
// end caps are perpendicular to the first and last segment. Repeated points
// are dropped.
func PolylineFromCorners(points []IntPoint) (Polyline, error) {
	pts := make([]IntPoint, 0, len(points))
	for _, p := range points {
		if len(pts) > 0 && pts[len(pts)-1] == p {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) < 2 {
		return Polyline{}, ErrTooFewLines
	}
	lines := make([]Line, 0, len(pts)+1)
	lines = append(lines, LineThrough(pts[0], pts[1].Sub(pts[0]).Turn45(2)))
	for i := 0; i+1 < len(pts); i++ {
		lines = append(lines, NewLine(pts[i], pts[i+1]))
	}
	last := len(pts) - 1
	lines = append(lines, LineThrough(pts[last], pts[last].Sub(pts[last-1]).Turn45(2)))
	return NewPolyline(lines)
}

func normalizeLines(in []Line) []Line {
	lines := append([]Line(nil), in...)
	for changed := true; changed; {
		changed = false
		for i := 1; i < len(lines); i++ {
			if lines[i].IsParallel(lines[i-1]) {
				lines = append(lines[:i], lines[i+1:]...)
				changed = true
				break
			}
		}
		if changed {
			continue
		}
		// zero length segments are only dropped while another segment remains
		for i := 1; i+1 < len(lines) && len(lines) > 3; i++ {
			c0, ok0 := lines[i-1].Intersection(lines[i])
			c1, ok1 := lines[i].Intersection(lines[i+1])
			if ok0 && ok1 && c0.Equal(c1) {
				lines = append(lines[:i], lines[i+1:]...)
				changed = true
				break
			}
		}
	}
	return lines
}

// LineCount returns the number of lines including the end caps.
func (p Polyline) LineCount() int { return len(p.lines) }

// CornerCount returns the number of corners.
func (p Polyline) CornerCount() int { return len(p.corners) }

// SegmentCount returns the number of segments.
func (p Polyline) SegmentCount() int { return max(len(p.lines)-2, 0) }

// Line returns line i.
func (p Polyline) Line(i int) Line { return p.lines[i] }

// Lines returns a copy of the lines.
func (p Polyline) Lines() []Line { return append([]Line(nil), p.lines...) }

// Corner returns corner i, the intersection of lines i and i+1.
func (p Polyline) Corner(i int) RationalPoint { return p.corners[i] }

// Corners returns a copy of the corners.
func (p Polyline) Corners() []RationalPoint { return append([]RationalPoint(nil), p.corners...) }

// FirstCorner returns the start point.
func (p Polyline) FirstCorner() RationalPoint { return p.corners[0] }

// LastCorner returns the end point.
func (p Polyline) LastCorner() RationalPoint { return p.corners[len(p.corners)-1] }

// IsEmpty reports whether p is the zero value.
func (p Polyline) IsEmpty() bool { return len(p.lines) == 0 }

// SegmentCorners returns the start and end corner of the segment on line k.
func (p Polyline) SegmentCorners(k int) (RationalPoint, RationalPoint) {
	return p.corners[k-1], p.corners[k]
}

// SegmentContains reports whether point lies on the closed segment of line k.
func (p Polyline) SegmentContains(k int, point RationalPoint) bool {
	if k < 1 || k > len(p.lines)-2 {
		return false
	}
	if p.lines[k].SideOf(point) != Collinear {
		return false
	}
	return betweenInclusive(point, p.corners[k-1], p.corners[k])
}

// IntersectionLines returns the lines along which segment k of p must be
// split where it meets segment m of q. Crossing segments yield the line of
// q's segment; overlapping collinear segments yield the neighbouring lines
// of q that cut its endpoints lying on p's segment.
func (p Polyline) IntersectionLines(k int, q Polyline, m int) []Line {
	if k < 1 || k > len(p.lines)-2 || m < 1 || m > len(q.lines)-2 {
		return nil
	}
	a0, a1 := p.corners[k-1], p.corners[k]
	b0, b1 := q.corners[m-1], q.corners[m]
	pl, ql := p.lines[k], q.lines[m]
	if !pl.IsParallel(ql) {
		ip, _ := pl.Intersection(ql)
		if betweenInclusive(ip, a0, a1) && betweenInclusive(ip, b0, b1) {
			return []Line{ql}
		}
		return nil
	}
	if pl.SideOfInt(ql.A) != Collinear {
		return nil
	}
	var result []Line
	if betweenInclusive(b0, a0, a1) {
		result = append(result, q.lines[m-1])
	}
	if betweenInclusive(b1, a0, a1) {
		result = append(result, q.lines[m+1])
	}
	return result
}

// Split cuts p at the intersection of line lineNo with endLine. The first
// piece ends and the second piece starts with endLine. Splitting at the first
// or last corner fails.
func (p Polyline) Split(lineNo int, endLine Line) (Polyline, Polyline, bool) {
	n := len(p.lines)
	if lineNo < 1 || lineNo > n-2 {
		return Polyline{}, Polyline{}, false
	}
	at, ok := p.lines[lineNo].Intersection(endLine)
	if !ok {
		return Polyline{}, Polyline{}, false
	}
	if lineNo <= 1 && at.Equal(p.FirstCorner()) {
		return Polyline{}, Polyline{}, false
	}
	if lineNo >= n-2 && at.Equal(p.LastCorner()) {
		return Polyline{}, Polyline{}, false
	}

	firstEnd, firstCap := lineNo+1, endLine
	if at.Equal(p.corners[lineNo-1]) {
		firstEnd = lineNo
		if endLine.IsParallel(p.lines[lineNo-1]) {
			firstCap = p.lines[lineNo]
		}
	}
	first := make([]Line, 0, firstEnd+1)
	first = append(first, p.lines[:firstEnd]...)
	first = append(first, firstCap)

	secondStart, secondCap := lineNo, endLine
	if at.Equal(p.corners[lineNo]) {
		secondStart = lineNo + 1
		if endLine.IsParallel(p.lines[lineNo+1]) {
			secondCap = p.lines[lineNo]
		}
	}
	second := make([]Line, 0, n-secondStart+1)
	second = append(second, secondCap)
	second = append(second, p.lines[secondStart:]...)

	a, err := NewPolyline(first)
	if err != nil {
		return Polyline{}, Polyline{}, false
	}
	b, err := NewPolyline(second)
	if err != nil {
		return Polyline{}, Polyline{}, false
	}
	return a, b, true
}

// Append joins q to the end of p; p's last corner must equal q's first
// corner. skipped reports whether the shared line at the join was merged
// into a single segment. expected is the line count before normalization.
func (p Polyline) Append(q Polyline) (joined Polyline, skipped bool, expected int, err error) {
	if p.IsEmpty() || q.IsEmpty() {
		return Polyline{}, false, 0, ErrTooFewLines
	}
	if !p.LastCorner().Equal(q.FirstCorner()) {
		return Polyline{}, false, 0, fmt.Errorf("failed to join polylines: end %v does not meet start %v", p.LastCorner(), q.FirstCorner())
	}
	keep := len(p.lines) - 1
	if p.lines[len(p.lines)-2].IsEqualOrOpposite(q.lines[1]) {
		keep--
		skipped = true
	}
	lines := make([]Line, 0, keep+len(q.lines)-1)
	lines = append(lines, p.lines[:keep]...)
	lines = append(lines, q.lines[1:]...)
	joined, err = NewPolyline(lines)
	if err != nil {
		return Polyline{}, skipped, len(lines), fmt.Errorf("failed to join polylines: %w", err)
	}
	return joined, skipped, len(lines), nil
}

// Reverse returns p traversed from the last corner to the first.
func (p Polyline) Reverse() Polyline {
	n := len(p.lines)
	lines := make([]Line, n)
	for i, l := range p.lines {
		lines[n-1-i] = l.Opposite()
	}
	corners := make([]RationalPoint, len(p.corners))
	for i, c := range p.corners {
		corners[len(p.corners)-1-i] = c
	}
	return Polyline{lines: lines, corners: corners}
}

// Translate moves p by v.
func (p Polyline) Translate(v Vector) Polyline {
	return p.mapLines(func(l Line) Line { return l.Translate(v) })
}

// Turn90 rotates p by factor*90 degrees around pole.
func (p Polyline) Turn90(factor int, pole IntPoint) Polyline {
	return p.mapLines(func(l Line) Line { return l.Turn90(factor, pole) })
}

// Mirror mirrors p at the vertical or horizontal line through pole.
func (p Polyline) Mirror(vertical bool, pole IntPoint) Polyline {
	return p.mapLines(func(l Line) Line { return l.Mirror(vertical, pole) })
}

// Rotate rotates p by angle degrees around pole. Corners are rounded to
// integers for angles that are not multiples of 90 degrees, which may make
// segments collapse.
func (p Polyline) Rotate(angle float64, pole r2.Point) (Polyline, error) {
	if factor, ok := quarterTurns(angle); ok {
		ip := RoundPoint(pole)
		if ip.Float() == pole {
			return p.Turn90(factor, ip), nil
		}
	}
	pts := make([]IntPoint, len(p.corners))
	for i, c := range p.corners {
		pts[i] = c.Round().Rotate(angle, pole)
	}
	return PolylineFromCorners(pts)
}

func (p Polyline) mapLines(f func(Line) Line) Polyline {
	lines := make([]Line, len(p.lines))
	for i, l := range p.lines {
		lines[i] = f(l)
	}
	// affine integer maps keep the line structure, so this cannot fail
	q, err := NewPolyline(lines)
	if err != nil {
		return p
	}
	return q
}

// Length returns the approximate length of the centre line.
func (p Polyline) Length() float64 {
	var length float64
	for i := 1; i < len(p.corners); i++ {
		a, b := p.corners[i-1].Float(), p.corners[i].Float()
		length += math.Hypot(b.X-a.X, b.Y-a.Y)
	}
	return length
}

// Bounds returns the bounding box of the corners.
func (p Polyline) Bounds() r2.Rect {
	pts := make([]r2.Point, len(p.corners))
	for i, c := range p.corners {
		pts[i] = c.Float()
	}
	return r2.RectFromPoints(pts...)
}

// Equal reports whether p and o have the same ordered corner sequence.
func (p Polyline) Equal(o Polyline) bool {
	if len(p.corners) != len(o.corners) {
		return false
	}
	for i := range p.corners {
		if !p.corners[i].Equal(o.corners[i]) {
			return false
		}
	}
	return true
}

func (p Polyline) String() string {
	parts := make([]string, len(p.corners))
	for i, c := range p.corners {
		parts[i] = c.String()
	}
	return "polyline[" + strings.Join(parts, " ") + "]"
}

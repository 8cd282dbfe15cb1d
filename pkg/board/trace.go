package board

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/search"
)

// Trace is a copper track of constant width on one layer.
type Trace struct {
	itemBase
	polyline  geometry.Polyline
	halfWidth int64
	layer     int
}

// Polyline returns the centre line.
func (t *Trace) Polyline() geometry.Polyline { return t.polyline }

// HalfWidth returns half the track width.
func (t *Trace) HalfWidth() int64 { return t.halfWidth }

// Layer returns the trace layer.
func (t *Trace) Layer() int { return t.layer }

// FirstCorner returns the start point.
func (t *Trace) FirstCorner() geometry.RationalPoint { return t.polyline.FirstCorner() }

// LastCorner returns the end point.
func (t *Trace) LastCorner() geometry.RationalPoint { return t.polyline.LastCorner() }

// Length returns the centre line length.
func (t *Trace) Length() float64 { return t.polyline.Length() }

// IsDegenerate reports whether start and end coincide.
func (t *Trace) IsDegenerate() bool {
	return t.FirstCorner().Equal(t.LastCorner())
}

func (t *Trace) String() string {
	return fmt.Sprintf("trace %d layer %d nets %v %v", t.id, t.layer, t.nets, t.polyline)
}

func (t *Trace) clone() Item {
	c := *t
	c.itemBase = t.cloneBase()
	return &c
}

func (t *Trace) computeLayers(*Board) layerRange {
	return layerRange{first: t.layer, last: t.layer}
}

// computeTiles returns one tile per segment; tile k-1 belongs to line k.
func (t *Trace) computeTiles(*Board) []search.Tile {
	n := t.polyline.SegmentCount()
	tiles := make([]search.Tile, 0, n)
	for k := 1; k <= n; k++ {
		a, c := t.polyline.SegmentCorners(k)
		tiles = append(tiles, search.Tile{
			Layer: t.layer,
			Shape: geometry.SegmentTile(a.Float(), c.Float(), float64(t.halfWidth)),
		})
	}
	return tiles
}

func (t *Trace) isObstacle(_ *Board, other Item) bool {
	if other.ID() == t.id {
		return false
	}
	switch o := other.(type) {
	case *ViaKeepout, *ComponentKeepout:
		return false
	case *ConductionArea:
		if !o.obstacle {
			return false
		}
	}
	return !SharesNet(t, other)
}

func (b *Board) newTrace(p geometry.Polyline, halfWidth int64, layer int, attrs Attributes) (*Trace, error) {
	if err := b.checkLayer(layer); err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return nil, fmt.Errorf("failed to create trace: %w", geometry.ErrTooFewLines)
	}
	if p.FirstCorner().Equal(p.LastCorner()) {
		return nil, fmt.Errorf("failed to create trace at %v: %w", p.FirstCorner(), ErrDegenerateTrace)
	}
	return &Trace{itemBase: newItemBase(attrs), polyline: p, halfWidth: halfWidth, layer: layer}, nil
}

// InsertTraceWithoutCleaning inserts a trace and leaves the topology alone.
func (b *Board) InsertTraceWithoutCleaning(p geometry.Polyline, halfWidth int64, layer int, attrs Attributes) (*Trace, error) {
	t, err := b.newTrace(p, halfWidth, layer, attrs)
	if err != nil {
		return nil, err
	}
	if err := b.insert(t); err != nil {
		return nil, err
	}
	return t, nil
}

// InsertTrace inserts a trace and normalizes it: it is split where it
// meets same-net items, combined with a continuing trace and redundant
// cycles are removed. The returned trace may no longer be on the board.
func (b *Board) InsertTrace(p geometry.Polyline, halfWidth int64, layer int, attrs Attributes) (*Trace, error) {
	t, err := b.InsertTraceWithoutCleaning(p, halfWidth, layer, attrs)
	if err != nil {
		return nil, err
	}
	b.Normalize(t)
	return t, nil
}

// InsertTraceCorners is InsertTrace for a trace through integer corners.
func (b *Board) InsertTraceCorners(corners []geometry.IntPoint, halfWidth int64, layer int, attrs Attributes) (*Trace, error) {
	p, err := geometry.PolylineFromCorners(corners)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace: %w", err)
	}
	return b.InsertTrace(p, halfWidth, layer, attrs)
}

// SetPolyline replaces the centre line of t. Index entries of the segments
// shared at the start and the end are kept.
func (b *Board) SetPolyline(t *Trace, p geometry.Polyline) error {
	if p.IsEmpty() {
		return fmt.Errorf("failed to change trace %d: %w", t.id, geometry.ErrTooFewLines)
	}
	if p.FirstCorner().Equal(p.LastCorner()) {
		return fmt.Errorf("failed to change trace %d: %w", t.id, ErrDegenerateTrace)
	}
	front, back := commonSegments(t.polyline, p)
	b.undo.Saved(t)
	t.polyline = p
	t.invalidate()
	if t.onBoard {
		b.tree.ChangeEntries(t, b.Tiles(t), front, back)
	}
	b.notify(ItemChanged, t)
	return nil
}

// commonSegments counts the equal segments at the start and at the end of
// two polylines, without overlapping.
func commonSegments(p, q geometry.Polyline) (front, back int) {
	n := min(p.SegmentCount(), q.SegmentCount())
	same := func(i, j int) bool {
		a0, a1 := p.SegmentCorners(i)
		b0, b1 := q.SegmentCorners(j)
		return a0.Equal(b0) && a1.Equal(b1)
	}
	for front < n && same(front+1, front+1) {
		front++
	}
	for back < n-front && same(p.SegmentCount()-back, q.SegmentCount()-back) {
		back++
	}
	return front, back
}

package board

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
)

type areaItem interface {
	Item
	area() *areaBase
}

func (a *areaBase) area() *areaBase { return a }

// pointTransform maps board points and placements the same way.
type pointTransform struct {
	point     func(geometry.IntPoint) geometry.IntPoint
	polyline  func(geometry.Polyline) (geometry.Polyline, error)
	placement func(geometry.Placement) geometry.Placement
}

// MoveBy translates it by v. Pins move with their component only.
func (b *Board) MoveBy(it Item, v geometry.Vector) error {
	return b.transform(it, pointTransform{
		point: func(p geometry.IntPoint) geometry.IntPoint { return p.Translate(v) },
		polyline: func(p geometry.Polyline) (geometry.Polyline, error) {
			return p.Translate(v), nil
		},
		placement: func(pl geometry.Placement) geometry.Placement {
			pl.Translation = pl.Translation.Add(v)
			return pl
		},
	})
}

// Rotate90 turns it by factor*90 degrees counterclockwise around pole.
func (b *Board) Rotate90(it Item, factor int, pole geometry.IntPoint) error {
	return b.transform(it, pointTransform{
		point: func(p geometry.IntPoint) geometry.IntPoint { return p.Turn90(factor, pole) },
		polyline: func(p geometry.Polyline) (geometry.Polyline, error) {
			return p.Turn90(factor, pole), nil
		},
		placement: func(pl geometry.Placement) geometry.Placement {
			t := translationPoint(pl).Turn90(factor, pole)
			pl.Translation = t.Sub(geometry.IntPoint{})
			pl.Rotation = normalizeAngle(pl.Rotation + 90*float64(factor))
			return pl
		},
	})
}

// Rotate turns it by angle degrees counterclockwise around pole. Corners
// are rounded to integers.
func (b *Board) Rotate(it Item, angle float64, pole r2.Point) error {
	return b.transform(it, pointTransform{
		point: func(p geometry.IntPoint) geometry.IntPoint { return p.Rotate(angle, pole) },
		polyline: func(p geometry.Polyline) (geometry.Polyline, error) {
			return p.Rotate(angle, pole)
		},
		placement: func(pl geometry.Placement) geometry.Placement {
			t := translationPoint(pl).Rotate(angle, pole)
			pl.Translation = t.Sub(geometry.IntPoint{})
			pl.Rotation = normalizeAngle(pl.Rotation + angle)
			return pl
		},
	})
}

// Mirror mirrors it at the vertical line through pole, or at the horizontal
// one if vertical is false.
func (b *Board) Mirror(it Item, vertical bool, pole geometry.IntPoint) error {
	mirror := func(p geometry.IntPoint) geometry.IntPoint {
		if vertical {
			return p.MirrorVertical(pole)
		}
		return p.MirrorHorizontal(pole)
	}
	return b.transform(it, pointTransform{
		point: mirror,
		polyline: func(p geometry.Polyline) (geometry.Polyline, error) {
			return p.Mirror(vertical, pole), nil
		},
		placement: func(pl geometry.Placement) geometry.Placement {
			pl.Translation = mirror(translationPoint(pl)).Sub(geometry.IntPoint{})
			pl.Mirrored = !pl.Mirrored
			if vertical {
				pl.Rotation = normalizeAngle(-pl.Rotation)
			} else {
				pl.Rotation = normalizeAngle(180 - pl.Rotation)
			}
			return pl
		},
	})
}

func (b *Board) transform(it Item, tr pointTransform) error {
	if !it.IsOnBoard() {
		return fmt.Errorf("failed to transform item %d: %w", it.ID(), ErrNotOnBoard)
	}
	switch x := it.(type) {
	case *Pin:
		return fmt.Errorf("failed to transform pin %d: %w", x.id, ErrNotMovable)
	case *Trace:
		p, err := tr.polyline(x.polyline)
		if err != nil {
			return fmt.Errorf("failed to transform trace %d: %w", x.id, err)
		}
		if p.FirstCorner().Equal(p.LastCorner()) {
			return fmt.Errorf("failed to transform trace %d: %w", x.id, ErrDegenerateTrace)
		}
		b.change(x, func() { x.polyline = p })
	case *Via:
		b.change(x, func() { x.center = tr.point(x.center) })
	case *TraceJoin:
		b.change(x, func() { x.center = tr.point(x.center) })
	case areaItem:
		a := x.area()
		b.change(x, func() { a.shape.Placement = tr.placement(a.shape.Placement) })
	case *Outline:
		b.change(x, func() {
			for _, c := range x.curves {
				for i, p := range c {
					c[i] = tr.point(p)
				}
			}
		})
	}
	return nil
}

func translationPoint(pl geometry.Placement) geometry.IntPoint {
	return geometry.IntPoint{X: pl.Translation.X, Y: pl.Translation.Y}
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

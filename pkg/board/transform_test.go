package board

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/library"
)

func TestMoveBy(t *testing.T) {
	b := newTestBoard(t)
	tr := addTrace(t, b, 1, 0, pt(0, 0), pt(10, 0))
	v := addVia(t, b, 1, pt(20, 0))

	require.NoError(t, b.MoveBy(tr, geometry.Vector{X: mm, Y: 2 * mm}))
	assert.Equal(t, []geometry.IntPoint{pt(1, 2), pt(11, 2)}, corners(tr))
	assert.Contains(t, ids(b.itemsAt(pt(5, 2).Float(), 0)), tr.ID())
	assert.NotContains(t, ids(b.itemsAt(pt(5, 0).Float(), 0)), tr.ID())

	require.NoError(t, b.MoveBy(v, geometry.Vector{X: -9 * mm, Y: 2 * mm}))
	assert.Equal(t, pt(11, 2), v.Position())
	assert.Equal(t, []int{tr.ID()}, ids(b.NormalContacts(v)))
	assert.InDelta(t, float64(11*mm), b.Bounds(v).Center().X, 1)
}

func TestRotate(t *testing.T) {
	b := newTestBoard(t)
	tr := addTrace(t, b, 1, 0, pt(0, 0), pt(10, 0))
	v := addVia(t, b, 1, pt(10, 0))

	require.NoError(t, b.Rotate90(v, 1, pt(0, 0)))
	assert.Equal(t, pt(0, 10), v.Position())

	require.NoError(t, b.Rotate(tr, 90, r2.Point{}))
	assert.Equal(t, []geometry.IntPoint{pt(0, 0), pt(0, 10)}, corners(tr))
	assert.Equal(t, []int{v.ID()}, ids(b.NormalContacts(tr)))

	require.NoError(t, b.Rotate90(tr, 2, pt(0, 0)))
	assert.Equal(t, []geometry.IntPoint{pt(0, 0), pt(0, -10)}, corners(tr))
}

func TestMirrorArea(t *testing.T) {
	b := newTestBoard(t)
	plane, err := b.InsertConductionArea("gnd", rectArea(pt(10, 0), pt(20, 10)), 0, false, onNet(1))
	require.NoError(t, err)

	require.NoError(t, b.Mirror(plane, true, pt(0, 0)))
	assert.True(t, plane.Contains(pt(-15, 5).Float()))
	assert.False(t, plane.Contains(pt(15, 5).Float()))
	assert.True(t, plane.Shape().Placement.Mirrored)

	require.NoError(t, b.Mirror(plane, true, pt(0, 0)))
	assert.True(t, plane.Contains(pt(15, 5).Float()))
}

func TestTransformRejects(t *testing.T) {
	b := newTestBoard(t)
	pin := addPin(t, b, smdPadstack, 1, pt(0, 0))
	tr := addTrace(t, b, 1, 0, pt(0, 0), pt(10, 0))
	require.True(t, b.RemoveItem(tr))

	assert.ErrorIs(t, b.MoveBy(pin, geometry.Vector{X: mm}), ErrNotMovable)
	assert.ErrorIs(t, b.Rotate90(pin, 1, pt(0, 0)), ErrNotMovable)
	assert.ErrorIs(t, b.MoveBy(tr, geometry.Vector{X: mm}), ErrNotOnBoard)

	center, ok := pin.Center(b)
	require.True(t, ok)
	assert.Equal(t, pt(0, 0), center)
}

func TestPinPlacement(t *testing.T) {
	tests := []struct {
		name    string
		onFront bool
		layer   int
		center  geometry.IntPoint
	}{
		{"front", true, 0, pt(12, 5)},
		{"back", false, 1, pt(8, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBoard(t)
			pkg := b.Library().NextPackageNo()
			b.Library().AddPackage(&library.Package{No: pkg, Name: "R", Pins: []library.PackagePin{
				{Name: "1", Padstack: smdPadstack, Offset: pt(2, 0)},
			}})
			b.AddComponent(Component{No: 1, Name: "R1", Package: pkg, Location: pt(10, 5), OnFront: tt.onFront})
			pin, err := b.InsertPin(1, 0, onNet(1))
			require.NoError(t, err)

			center, ok := pin.Center(b)
			require.True(t, ok)
			assert.Equal(t, tt.center, center)
			assert.Equal(t, tt.layer, b.FirstLayer(pin))
			assert.Equal(t, tt.layer, b.LastLayer(pin))
			assert.Equal(t, "R1-1", pin.Name(b))
			assert.True(t, pin.IsDeleteFixed())
		})
	}
}

package library

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
)

func TestPadstackLayers(t *testing.T) {
	tests := []struct {
		name       string
		shapes     []PadShape
		wantFrom   int
		wantTo     int
		wantSingle bool
	}{
		{"through hole", []PadShape{Circle(300), Circle(300)}, 0, 1, false},
		{"front smd", []PadShape{Rect(1000, 500), {}}, 0, 0, true},
		{"back smd", []PadShape{{}, Rect(1000, 500)}, 1, 1, true},
		{"empty", []PadShape{{}, {}}, -1, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPadstack(1, tt.name, tt.shapes, false)
			assert.Equal(t, tt.wantFrom, p.FromLayer())
			assert.Equal(t, tt.wantTo, p.ToLayer())
			assert.Equal(t, tt.wantSingle, p.IsSingleLayer())
		})
	}

	var missing *Padstack
	_, ok := missing.Shape(0)
	assert.False(t, ok)
	assert.Equal(t, -1, missing.FromLayer())
}

func TestPadShapeTile(t *testing.T) {
	center := geometry.IntPoint{X: 1000, Y: 1000}

	rect := Rect(400, 200).Tile(center, 0, false)
	assert.InDelta(t, 80_000.0, rect.Area(), 1e-6)
	assert.True(t, rect.Contains(r2.Point{X: 1190, Y: 1090}))
	assert.False(t, rect.Contains(r2.Point{X: 1090, Y: 1190}))

	rotated := Rect(400, 200).Tile(center, 90, false)
	assert.True(t, rotated.Contains(r2.Point{X: 1090, Y: 1190}))
	assert.False(t, rotated.Contains(r2.Point{X: 1190, Y: 1090}))

	tri := Polygon([]geometry.IntPoint{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}})
	assert.True(t, tri.Tile(center, 0, false).Contains(r2.Point{X: 1010, Y: 1010}))
	assert.True(t, tri.Tile(center, 0, true).Contains(r2.Point{X: 990, Y: 1010}))

	circle := Circle(50).Tile(center, 0, false)
	assert.True(t, circle.Contains(r2.Point{X: 1049, Y: 1000}))
	assert.InDelta(t, 50.0, Circle(50).Extent(), 1e-9)
	assert.True(t, PadShape{}.Tile(center, 0, false).IsEmpty())
}

func TestLibrary(t *testing.T) {
	lib := New()
	assert.Equal(t, 1, lib.NextPadstackNo())

	lib.AddPadstack(NewPadstack(3, "via", []PadShape{Circle(300), Circle(300)}, true))
	lib.AddPadstack(NewPadstack(1, "smd", []PadShape{Rect(500, 500), {}}, false))
	assert.Equal(t, 4, lib.NextPadstackNo())

	p, ok := lib.PadstackByName("via")
	require.True(t, ok)
	assert.True(t, p.AttachAllowed)
	require.Len(t, lib.Padstacks(), 2)
	assert.Equal(t, 1, lib.Padstacks()[0].No)

	lib.AddPackage(&Package{No: 1, Name: "R0603", Pins: []PackagePin{
		{Name: "1", Padstack: 1, Offset: geometry.IntPoint{X: -800}},
		{Name: "2", Padstack: 1, Offset: geometry.IntPoint{X: 800}},
	}})
	pkg, ok := lib.Package(1)
	require.True(t, ok)
	pin, ok := pkg.Pin(1)
	require.True(t, ok)
	assert.Equal(t, "2", pin.Name)
	_, ok = pkg.Pin(2)
	assert.False(t, ok)
	assert.Equal(t, 2, lib.NextPackageNo())
}
